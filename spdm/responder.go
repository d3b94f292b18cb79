package spdm

// responderPhase mirrors requesterPhase but from the responder's point
// of view: each value names the single request code the responder
// currently accepts.
type responderPhase int

const (
	rPhaseVersion responderPhase = iota
	rPhaseCapabilities
	rPhaseAlgorithms
	rPhaseDigests
	rPhaseCertificate
	rPhaseChallenge
	rPhasePSKExchange
	rPhasePSKFinish
	rPhaseSession
	rPhaseTerminal
)

// Responder consumes requests and emits replies, advancing through the
// same phase graph as Requester but driven purely by what arrives on
// HandleMsg. Its single surface deliberately returns the written slice
// and the result together: an ERROR reply must still reach the wire on
// a defined protocol failure, so collapsing this into a bare error
// return would lose the reply the caller needs to transmit.
type Responder struct {
	config Config
	crypto CryptoProviders
	slots  *SlotTable

	phase      responderPhase
	terminal   error
	transcript *Transcript

	version      ProtocolVersion
	negotiated   NegotiatedAlgorithms
	capabilities NegotiatedCapabilities

	activeSlot int
	sessionKeys SessionKeys
	pskPeerContext [MaxNonceSize]byte
}

// NewResponder constructs a responder bound to cfg, slots, and crypto.
// cfg.Role must be RoleResponder.
func NewResponder(cfg Config, slots *SlotTable, crypto CryptoProviders) (*Responder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Role != RoleResponder {
		return nil, &ProtocolError{Reason: "NewResponder requires Config.Role == RoleResponder"}
	}
	return &Responder{
		config:     cfg,
		crypto:     crypto,
		slots:      slots,
		phase:      rPhaseVersion,
		transcript: NewTranscript(cfg.TranscriptSize),
	}, nil
}

// Phase reports the responder's current position in the state graph.
func (s *Responder) Phase() responderPhase { return s.phase }

// HandleMsg parses in, validates it against the current phase, writes
// the reply (success or ERROR) into out, and returns the written
// sub-slice. A malformed input that cannot be classified against any
// phase yields an empty written slice rather than a reply, per §4.5:
// the caller is expected to close the transport either way.
func (s *Responder) HandleMsg(in, out []byte) ([]byte, error) {
	if s.phase == rPhaseTerminal {
		return nil, s.terminal
	}

	code, err := PeekCode(in)
	if err != nil {
		return nil, err
	}

	want, ok := expectedCode[s.phase]
	if !ok || code != want {
		return s.emitError(out, ErrUnexpectedRequest)
	}

	var (
		written []byte
		handled error
	)
	switch s.phase {
	case rPhaseVersion:
		written, handled = s.handleVersion(in, out)
	case rPhaseCapabilities:
		written, handled = s.handleCapabilities(in, out)
	case rPhaseAlgorithms:
		written, handled = s.handleAlgorithms(in, out)
	case rPhaseDigests:
		written, handled = s.handleDigests(in, out)
	case rPhaseCertificate:
		written, handled = s.handleCertificate(in, out)
	case rPhaseChallenge:
		written, handled = s.handleChallenge(in, out)
	case rPhasePSKExchange:
		written, handled = s.handlePSKExchange(in, out)
	case rPhasePSKFinish:
		written, handled = s.handlePSKFinish(in, out)
	default:
		return s.emitError(out, ErrWrongPhase)
	}
	if handled != nil {
		return s.emitError(out, handled)
	}
	return written, nil
}

var expectedCode = map[responderPhase]MessageCode{
	rPhaseVersion:      CodeGetVersion,
	rPhaseCapabilities: CodeGetCapabilities,
	rPhaseAlgorithms:   CodeNegotiateAlgorithms,
	rPhaseDigests:      CodeGetDigests,
	rPhaseCertificate:  CodeGetCertificate,
	rPhaseChallenge:    CodeChallenge,
	rPhasePSKExchange:  CodePSKExchange,
	rPhasePSKFinish:    CodePSKFinish,
}

func (s *Responder) emitError(out []byte, err error) ([]byte, error) {
	resp, ok := errorResponseFor(err)
	if !ok {
		return nil, err
	}
	written, encErr := EncodeMessage(resp, s.version, out)
	if encErr != nil {
		return nil, err
	}
	return written, err
}

func (s *Responder) handleVersion(in, out []byte) ([]byte, error) {
	var req GetVersionRequest
	if err := decodeBody(&req, ProtocolVersion{}, in); err != nil {
		return nil, err
	}
	entries := make([]VersionEntry, len(s.config.SupportedVersions))
	for i, v := range s.config.SupportedVersions {
		entries[i] = VersionEntry{Version: v}
	}
	peer := entries
	v, err := NegotiateVersion(s.config.SupportedVersions, peer)
	if err != nil {
		return nil, err
	}
	s.version = v
	resp := &VersionResponse{Entries: entries}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	s.phase = rPhaseCapabilities
	return written, nil
}

func (s *Responder) handleCapabilities(in, out []byte) ([]byte, error) {
	var req GetCapabilitiesRequest
	if err := decodeBody(&req, s.version, in); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	s.capabilities = NegotiatedCapabilities{Local: s.config.LocalCapabilities, Peer: req.Capabilities}
	resp := &CapabilitiesResponse{CTExponent: s.config.CTExponent, Capabilities: s.config.LocalCapabilities}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	if err := s.transcript.Append(written); err != nil {
		return nil, err
	}
	s.phase = rPhaseAlgorithms
	return written, nil
}

func (s *Responder) handleAlgorithms(in, out []byte) ([]byte, error) {
	var req NegotiateAlgorithmsRequest
	if err := decodeBody(&req, s.version, in); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	negotiated, err := NegotiateAlgorithms(s.config, req.Asym, req.Hash, req.AEAD, req.KeyExchange)
	if err != nil {
		return nil, err
	}
	s.negotiated = negotiated
	resp := &AlgorithmsResponse{
		Asym:        s.config.AsymAlgos,
		Hash:        s.config.HashAlgos,
		AEAD:        s.config.AEADAlgos,
		KeyExchange: s.config.KeyExchangeAlgos,
	}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	if err := s.transcript.Append(written); err != nil {
		return nil, err
	}
	if s.capabilities.UsesPSKPath() {
		s.phase = rPhasePSKExchange
	} else {
		s.phase = rPhaseDigests
	}
	return written, nil
}

func (s *Responder) handleDigests(in, out []byte) ([]byte, error) {
	var req GetDigestsRequest
	if err := decodeBody(&req, s.version, in); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	mask := s.slots.FilledMask()
	var digests [][]byte
	for i := 0; i < s.slots.Len(); i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		slot, err := s.slots.Slot(i)
		if err != nil {
			return nil, err
		}
		chain, err := slot.Chain()
		if err != nil {
			return nil, err
		}
		digest, err := hashBytes(s.crypto.Digest, s.negotiated.Hash, chain)
		if err != nil {
			return nil, err
		}
		digests = append(digests, digest)
	}
	resp := &DigestsResponse{SlotMask: mask, Digests: digests}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	if err := s.transcript.Append(written); err != nil {
		return nil, err
	}
	s.activeSlot = firstSetBit(mask)
	s.phase = rPhaseCertificate
	return written, nil
}

func (s *Responder) handleCertificate(in, out []byte) ([]byte, error) {
	var req GetCertificateRequest
	if err := decodeBody(&req, s.version, in); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	slot, err := s.slots.Slot(int(req.SlotID))
	if err != nil {
		return nil, err
	}
	chain, err := slot.Chain()
	if err != nil {
		return nil, err
	}
	if int(req.Offset) > len(chain) {
		return nil, ErrInvalidEncoding
	}
	remaining := chain[req.Offset:]
	portion := req.Length
	if int(portion) > len(remaining) {
		portion = uint16(len(remaining))
	}
	resp := &CertificateResponse{
		SlotID:          req.SlotID,
		PortionLength:   portion,
		RemainderLength: uint16(len(remaining)) - portion,
		CertChain:       remaining[:portion],
	}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	if err := s.transcript.Append(written); err != nil {
		return nil, err
	}
	if resp.RemainderLength == 0 {
		s.phase = rPhaseChallenge
	}
	return written, nil
}

func (s *Responder) handleChallenge(in, out []byte) ([]byte, error) {
	var req ChallengeRequest
	if err := decodeBody(&req, s.version, in); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	slot, err := s.slots.Slot(int(req.SlotID))
	if err != nil {
		return nil, err
	}
	chain, err := slot.Chain()
	if err != nil {
		return nil, err
	}
	chainHash, err := hashBytes(s.crypto.Digest, s.negotiated.Hash, chain)
	if err != nil {
		return nil, err
	}
	resp := &ChallengeAuthResponse{SlotID: req.SlotID, CertChainHash: chainHash, Nonce: req.Nonce}
	w := NewWriter(out)
	if err := w.WriteHeader(s.version, CodeChallengeAuth, req.SlotID, 0); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(resp.CertChainHash); err != nil {
		return nil, err
	}
	if err := w.WriteBytes(resp.Nonce[:]); err != nil {
		return nil, err
	}
	if err := w.WriteVarBytes(resp.MeasurementSummary); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(w.Bytes()); err != nil {
		return nil, err
	}
	digest, err := s.transcript.Hash(s.crypto.Digest, s.negotiated.Hash)
	if err != nil {
		return nil, err
	}
	sig, err := s.crypto.Signer.Sign(int(req.SlotID), digest)
	if err != nil {
		return nil, CryptoFailure("signer", err)
	}
	if err := w.WriteVarBytes(sig); err != nil {
		return nil, err
	}
	sigField := w.Bytes()[len(w.Bytes())-len(sig)-2:]
	if err := s.transcript.Append(sigField); err != nil {
		return nil, err
	}
	s.phase = rPhaseSession
	return w.Bytes(), nil
}

func (s *Responder) handlePSKExchange(in, out []byte) ([]byte, error) {
	var req PSKExchangeRequest
	if err := decodeBody(&req, s.version, in); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	var responderContext [MaxNonceSize]byte
	if _, err := s.crypto.Random.Read(responderContext[:]); err != nil {
		return nil, CryptoFailure("random", err)
	}
	resp := &PSKExchangeResponse{ResponderContext: responderContext}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	if err := s.transcript.Append(written); err != nil {
		return nil, err
	}
	binding, err := s.transcript.Hash(s.crypto.Digest, s.negotiated.Hash)
	if err != nil {
		return nil, err
	}
	keys, err := DeriveSessionKeys(s.negotiated.Hash, s.negotiated.AEAD, s.config.PSK, binding)
	if err != nil {
		return nil, err
	}
	s.sessionKeys = keys
	s.phase = rPhasePSKFinish
	return written, nil
}

func (s *Responder) handlePSKFinish(in, out []byte) ([]byte, error) {
	var req PSKFinishRequest
	r := NewReader(in)
	if _, _, _, _, err := r.ReadHeader(); err != nil {
		return nil, err
	}
	if err := req.DecodePSKFinish(s.config.MaxDigestSize, r); err != nil {
		return nil, err
	}
	if err := s.transcript.Append(in); err != nil {
		return nil, err
	}
	resp := &PSKFinishResponse{}
	written, err := EncodeMessage(resp, s.version, out)
	if err != nil {
		return nil, err
	}
	if err := s.transcript.Append(written); err != nil {
		return nil, err
	}
	s.phase = rPhaseSession
	return written, nil
}

// SecureSession returns the established session once the responder has
// completed the PSK path. Before that, or after the certificate path, it
// fails with ErrWrongPhase.
func (s *Responder) SecureSession() (*SecureSession, error) {
	if s.phase != rPhaseSession || !s.capabilities.UsesPSKPath() {
		return nil, ErrWrongPhase
	}
	return NewSecureSession(s.negotiated.AEAD, s.sessionKeys), nil
}
