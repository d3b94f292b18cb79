// Package endpoint exposes the typestate façade over the spdm engine:
// RequesterInit drives initialization, and consuming its completion
// transitions the value into RequesterSession, which exposes
// application-level operations over the established channel. The
// responder side currently has no typestate split (see Responder in
// this package) since nothing in the supplemented feature set needs
// one yet.
package endpoint

import (
	"crypto/x509"

	"github.com/openspdm/spdmcore/spdm"
)

// RequesterInit wraps spdm.Requester during initialization. Only
// NextRequest and HandleMsg are exposed; there is no way to reach
// measurement or secure-messaging operations without first driving
// initialization to completion.
type RequesterInit struct {
	r *spdm.Requester
}

// NewRequesterInit constructs the initialization-phase façade.
func NewRequesterInit(cfg spdm.Config, slots *spdm.SlotTable, crypto spdm.CryptoProviders, root *x509.Certificate) (*RequesterInit, error) {
	r, err := spdm.NewRequester(cfg, slots, crypto, root)
	if err != nil {
		return nil, err
	}
	return &RequesterInit{r: r}, nil
}

// NextRequest encodes the next outbound request into out.
func (i *RequesterInit) NextRequest(out []byte) ([]byte, error) {
	return i.r.NextRequest(out)
}

// HandleMsg consumes a reply. When it returns true, initialization has
// completed and Complete must be called to obtain the RequesterSession;
// no further calls to NextRequest/HandleMsg on this value are valid.
func (i *RequesterInit) HandleMsg(in []byte) (bool, error) {
	return i.r.HandleMsg(in)
}

// Complete consumes the completed RequesterInit and returns the
// RequesterSession façade. Calling it before HandleMsg has reported
// completion fails with spdm.ErrWrongPhase.
func (i *RequesterInit) Complete() (*RequesterSession, error) {
	if !i.r.Established() {
		return nil, spdm.ErrWrongPhase
	}
	return &RequesterSession{r: i.r}, nil
}

// RequesterSession wraps an initialized spdm.Requester and exposes the
// operations the open-ended spec.md "(planned) session key
// establishment" phase and the supplemented measurement retrieval
// feature make available once initialization has finished.
type RequesterSession struct {
	r *spdm.Requester
}

// MeasurementRequest encodes a GET_MEASUREMENTS request for either all
// blocks or a single index into out.
func (s *RequesterSession) MeasurementRequest(out []byte, sigRequested bool, op spdm.MeasurementOperation, index uint8, nonce [spdm.MaxNonceSize]byte) ([]byte, error) {
	req := &spdm.GetMeasurementsRequest{
		SignatureRequested: sigRequested,
		Operation:          op,
		Index:              index,
		Nonce:              nonce,
	}
	return spdm.EncodeMessage(req, s.r.NegotiatedVersion(), out)
}

// HandleMeasurements decodes a MEASUREMENTS reply, using the
// caller-supplied bounds maxOpaque and maxDigest for the opaque-data
// and measurement-value fields.
func (s *RequesterSession) HandleMeasurements(in []byte, maxOpaque, maxDigest int) (*spdm.MeasurementsResponse, error) {
	return spdm.DecodeMeasurementsResponse(in, maxOpaque, maxDigest)
}

// SecureRequest seals plaintext for transmission over the established
// session.
func (s *RequesterSession) SecureRequest(out, plaintext []byte) ([]byte, error) {
	sess, err := s.r.SecureSession()
	if err != nil {
		return nil, err
	}
	return sess.Seal(out, plaintext)
}

// HandleSecureResponse opens a received ciphertext from the
// established session.
func (s *RequesterSession) HandleSecureResponse(out, ciphertext []byte) ([]byte, error) {
	sess, err := s.r.SecureSession()
	if err != nil {
		return nil, err
	}
	return sess.Open(out, ciphertext)
}
