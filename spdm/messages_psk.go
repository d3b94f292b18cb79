package spdm

// PSKExchangeRequest opens the pre-shared-key session-establishment
// path. RequesterContext binds the requester's own contribution into
// the key schedule alongside the PSK itself.
type PSKExchangeRequest struct {
	MeasurementSummary uint8
	RequesterContext   [MaxNonceSize]byte
	OpaqueData         []byte
}

func (m *PSKExchangeRequest) Code() MessageCode { return CodePSKExchange }

func (m *PSKExchangeRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodePSKExchange, m.MeasurementSummary, 0); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.RequesterContext[:]); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.OpaqueData); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *PSKExchangeRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	m.MeasurementSummary = param1
	ctx, err := r.ReadBytes(MaxNonceSize)
	if err != nil {
		return err
	}
	opaque, err := r.ReadVarBytes(0xFFFF)
	if err != nil {
		return err
	}
	copy(m.RequesterContext[:], ctx)
	m.OpaqueData = opaque
	return nil
}

// PSKExchangeResponse carries the responder's contribution and its own
// opaque data. Once this response is in the transcript, both endpoints
// call DeriveSessionKeys with the configured PSK and the transcript hash
// (which covers both contexts) as the binding.
type PSKExchangeResponse struct {
	ResponderContext [MaxNonceSize]byte
	MeasurementSummary []byte
	OpaqueData       []byte
	Verification     []byte
}

func (m *PSKExchangeResponse) Code() MessageCode { return CodePSKExchangeRsp }

func (m *PSKExchangeResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodePSKExchangeRsp, 0, 0); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.ResponderContext[:]); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.MeasurementSummary); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.OpaqueData); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.Verification); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// DecodePSKExchangeResponse takes maxDigest for the same reason
// DigestsResponse and ChallengeAuthResponse do.
func (m *PSKExchangeResponse) DecodePSKExchangeResponse(maxDigest int, r *Reader) error {
	ctx, err := r.ReadBytes(MaxNonceSize)
	if err != nil {
		return err
	}
	summary, err := r.ReadVarBytes(maxDigest)
	if err != nil {
		return err
	}
	opaque, err := r.ReadVarBytes(0xFFFF)
	if err != nil {
		return err
	}
	verification, err := r.ReadVarBytes(maxDigest)
	if err != nil {
		return err
	}
	copy(m.ResponderContext[:], ctx)
	m.MeasurementSummary = summary
	m.OpaqueData = opaque
	m.Verification = verification
	return nil
}

func (m *PSKExchangeResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return &ProtocolError{Reason: "PSK_EXCHANGE_RSP requires DecodePSKExchangeResponse: digest size is not self-describing"}
}

// PSKFinishRequest carries the requester's Verification value: the
// negotiated-hash digest of the transcript so far. It is computed
// without any key, so it does not prove possession of the PSK or of the
// derived session keys, and the responder does not check it.
type PSKFinishRequest struct {
	Verification []byte
}

func (m *PSKFinishRequest) Code() MessageCode { return CodePSKFinish }

func (m *PSKFinishRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodePSKFinish, 0, 0); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.Verification); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// DecodePSKFinish takes maxDigest for the same reason as its
// counterparts above.
func (m *PSKFinishRequest) DecodePSKFinish(maxDigest int, r *Reader) error {
	v, err := r.ReadBytes(maxDigest)
	if err != nil {
		return err
	}
	m.Verification = v
	return nil
}

func (m *PSKFinishRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return &ProtocolError{Reason: "PSK_FINISH requires DecodePSKFinish: digest size is not self-describing"}
}

// PSKFinishResponse carries no body: it is a bare acknowledgment that
// key establishment succeeded, after which the endpoint transitions to
// the Session phase.
type PSKFinishResponse struct{}

func (m *PSKFinishResponse) Code() MessageCode { return CodePSKFinishRsp }

func (m *PSKFinishResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodePSKFinishRsp, 0, 0); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *PSKFinishResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return nil
}
