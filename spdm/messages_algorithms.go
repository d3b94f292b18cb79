package spdm

// NegotiateAlgorithmsRequest advertises the requester's ordered
// preference lists for each algorithm class.
type NegotiateAlgorithmsRequest struct {
	Asym        []AsymAlgo
	Hash        []HashAlgo
	AEAD        []AEADAlgo
	KeyExchange []KeyExchangeAlgo
}

func (m *NegotiateAlgorithmsRequest) Code() MessageCode { return CodeNegotiateAlgorithms }

func (m *NegotiateAlgorithmsRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeNegotiateAlgorithms, 0, 0); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.Asym); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.Hash); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.AEAD); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.KeyExchange); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *NegotiateAlgorithmsRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	asym, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	hash, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	aead, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	kex, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	m.Asym = asAsym(asym)
	m.Hash = asHash(hash)
	m.AEAD = asAEAD(aead)
	m.KeyExchange = asKeyExchange(kex)
	return nil
}

// AlgorithmsResponse carries the responder's own preference lists, from
// which NegotiateAlgorithms on the requester side selects the
// intersection.
type AlgorithmsResponse struct {
	Asym        []AsymAlgo
	Hash        []HashAlgo
	AEAD        []AEADAlgo
	KeyExchange []KeyExchangeAlgo
}

func (m *AlgorithmsResponse) Code() MessageCode { return CodeAlgorithms }

func (m *AlgorithmsResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeAlgorithms, 0, 0); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.Asym); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.Hash); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.AEAD); err != nil {
		return 0, err
	}
	if err := encodeAlgoList8(w, m.KeyExchange); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *AlgorithmsResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	asym, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	hash, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	aead, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	kex, err := decodeAlgoList8(r)
	if err != nil {
		return err
	}
	m.Asym = asAsym(asym)
	m.Hash = asHash(hash)
	m.AEAD = asAEAD(aead)
	m.KeyExchange = asKeyExchange(kex)
	return nil
}

// encodeAlgoList8 writes a one-byte count followed by that many
// one-byte algorithm identifiers, the shape shared by all four
// preference lists in this engine's wire format.
func encodeAlgoList8[T ~uint8](w *Writer, list []T) error {
	if len(list) > 0xFF {
		return ErrInsufficientSpace
	}
	if err := w.WriteUint8(uint8(len(list))); err != nil {
		return err
	}
	for _, a := range list {
		if err := w.WriteUint8(uint8(a)); err != nil {
			return err
		}
	}
	return nil
}

func decodeAlgoList8(r *Reader) ([]uint8, error) {
	count, err := r.ReadUint8()
	if err != nil {
		return nil, err
	}
	list := make([]uint8, count)
	for i := range list {
		b, err := r.ReadUint8()
		if err != nil {
			return nil, err
		}
		list[i] = b
	}
	return list, nil
}

func asAsym(raw []uint8) []AsymAlgo {
	if len(raw) == 0 {
		return nil
	}
	out := make([]AsymAlgo, len(raw))
	for i, b := range raw {
		out[i] = AsymAlgo(b)
	}
	return out
}

func asHash(raw []uint8) []HashAlgo {
	if len(raw) == 0 {
		return nil
	}
	out := make([]HashAlgo, len(raw))
	for i, b := range raw {
		out[i] = HashAlgo(b)
	}
	return out
}

func asAEAD(raw []uint8) []AEADAlgo {
	if len(raw) == 0 {
		return nil
	}
	out := make([]AEADAlgo, len(raw))
	for i, b := range raw {
		out[i] = AEADAlgo(b)
	}
	return out
}

func asKeyExchange(raw []uint8) []KeyExchangeAlgo {
	if len(raw) == 0 {
		return nil
	}
	out := make([]KeyExchangeAlgo, len(raw))
	for i, b := range raw {
		out[i] = KeyExchangeAlgo(b)
	}
	return out
}
