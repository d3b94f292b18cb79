package spdm

// GetCapabilitiesRequest advertises the requester's own capability set
// and worst-case response-time exponent.
type GetCapabilitiesRequest struct {
	CTExponent   uint8
	Capabilities CapabilitySet
}

func (m *GetCapabilitiesRequest) Code() MessageCode { return CodeGetCapabilities }

func (m *GetCapabilitiesRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	return encodeCapabilitiesBody(w, v, CodeGetCapabilities, m.CTExponent, m.Capabilities)
}

func (m *GetCapabilitiesRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	ct, caps, err := decodeCapabilitiesBody(r)
	if err != nil {
		return err
	}
	m.CTExponent, m.Capabilities = ct, caps
	return nil
}

// CapabilitiesResponse is the symmetric reply, advertising the
// responder's own set.
type CapabilitiesResponse struct {
	CTExponent   uint8
	Capabilities CapabilitySet
}

func (m *CapabilitiesResponse) Code() MessageCode { return CodeCapabilities }

func (m *CapabilitiesResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	return encodeCapabilitiesBody(w, v, CodeCapabilities, m.CTExponent, m.Capabilities)
}

func (m *CapabilitiesResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	ct, caps, err := decodeCapabilitiesBody(r)
	if err != nil {
		return err
	}
	m.CTExponent, m.Capabilities = ct, caps
	return nil
}

func encodeCapabilitiesBody(w *Writer, v ProtocolVersion, code MessageCode, ctExponent uint8, caps CapabilitySet) (int, error) {
	if err := w.WriteHeader(v, code, 0, 0); err != nil {
		return 0, err
	}
	if err := w.WriteReserved(1); err != nil {
		return 0, err
	}
	if err := w.WriteUint8(ctExponent); err != nil {
		return 0, err
	}
	if err := w.WriteReserved(2); err != nil {
		return 0, err
	}
	if err := w.WriteUint32(uint32(caps)); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func decodeCapabilitiesBody(r *Reader) (ctExponent uint8, caps CapabilitySet, err error) {
	if err = r.SkipReserved(1); err != nil {
		return
	}
	if ctExponent, err = r.ReadUint8(); err != nil {
		return
	}
	if err = r.SkipReserved(2); err != nil {
		return
	}
	var raw uint32
	if raw, err = r.ReadUint32(); err != nil {
		return
	}
	caps = CapabilitySet(raw)
	return
}
