package endpoint

import "github.com/openspdm/spdmcore/spdm"

// Responder is the single façade over spdm.Responder. Per the open
// question in spec.md §9, a typestate split mirroring the requester's
// Init/Session is anticipated but not required; the uniform handle_msg
// surface already carries the (written_slice, error) pair that a
// typestate split would otherwise need to preserve across the
// boundary, so there is nothing it would currently buy.
type Responder struct {
	s *spdm.Responder
}

// NewResponder constructs the façade.
func NewResponder(cfg spdm.Config, slots *spdm.SlotTable, crypto spdm.CryptoProviders) (*Responder, error) {
	s, err := spdm.NewResponder(cfg, slots, crypto)
	if err != nil {
		return nil, err
	}
	return &Responder{s: s}, nil
}

// HandleMsg parses in and writes the reply into out.
func (r *Responder) HandleMsg(in, out []byte) ([]byte, error) {
	return r.s.HandleMsg(in, out)
}

// SecureSession returns the established session once the PSK path has
// completed on the responder side.
func (r *Responder) SecureSession() (*spdm.SecureSession, error) {
	return r.s.SecureSession()
}
