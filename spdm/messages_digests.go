package spdm

// GetDigestsRequest carries no body: the responder reports digests for
// every slot it has filled.
type GetDigestsRequest struct{}

func (m *GetDigestsRequest) Code() MessageCode { return CodeGetDigests }

func (m *GetDigestsRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeGetDigests, 0, 0); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *GetDigestsRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return nil
}

// DigestsResponse reports, via SlotMask, which slots are filled, and
// carries one digest per filled slot in ascending slot order. Each
// digest is read at the hashSize DecodeDigests is given.
type DigestsResponse struct {
	SlotMask uint8
	Digests  [][]byte
}

func (m *DigestsResponse) Code() MessageCode { return CodeDigests }

func (m *DigestsResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeDigests, 0, m.SlotMask); err != nil {
		return 0, err
	}
	for _, d := range m.Digests {
		if err := w.WriteBytes(d); err != nil {
			return 0, err
		}
	}
	return w.Len(), nil
}

// DecodeDigests is used in place of Decode because the wire format
// gives digest count and size implicitly (one fixed-size digest per set
// bit in Param2, sized by the negotiated hash algorithm) rather than an
// explicit count: the decoder needs hashSize from the caller's
// negotiated algorithms, which the uniform Decode signature has no room
// for.
func (m *DigestsResponse) DecodeDigests(param2 uint8, hashSize int, r *Reader) error {
	m.SlotMask = param2
	m.Digests = nil
	for i := 0; i < 8; i++ {
		if param2&(1<<uint(i)) == 0 {
			continue
		}
		d, err := r.ReadBytes(hashSize)
		if err != nil {
			return err
		}
		m.Digests = append(m.Digests, d)
	}
	return nil
}

func (m *DigestsResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return &ProtocolError{Reason: "DIGESTS requires DecodeDigests: hash size is not self-describing"}
}
