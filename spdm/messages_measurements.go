package spdm

// MeasurementOperation selects what GET_MEASUREMENTS asks for.
type MeasurementOperation uint8

const (
	// MeasurementOpAll requests every measurement block.
	MeasurementOpAll MeasurementOperation = 0xFF
	// MeasurementOpNumber requests only a count of available blocks.
	MeasurementOpNumber MeasurementOperation = 0x00
)

// GetMeasurementsRequest asks for either every block or the single
// block named by Index, and carries the nonce a signed response binds
// to when SignatureRequested is set.
type GetMeasurementsRequest struct {
	SignatureRequested bool
	Operation          MeasurementOperation
	Index              uint8
	Nonce              [MaxNonceSize]byte
}

func (m *GetMeasurementsRequest) Code() MessageCode { return CodeGetMeasurements }

func (m *GetMeasurementsRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	param1 := uint8(0)
	if m.SignatureRequested {
		param1 = 1
	}
	if err := w.WriteHeader(v, CodeGetMeasurements, param1, uint8(m.Operation)); err != nil {
		return 0, err
	}
	if m.SignatureRequested {
		if err := w.WriteBytes(m.Nonce[:]); err != nil {
			return 0, err
		}
	}
	if m.Operation != MeasurementOpAll && m.Operation != MeasurementOpNumber {
		if err := w.WriteUint8(m.Index); err != nil {
			return 0, err
		}
	}
	return w.Len(), nil
}

func (m *GetMeasurementsRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	m.SignatureRequested = param1 != 0
	m.Operation = MeasurementOperation(param2)
	if m.SignatureRequested {
		n, err := r.ReadBytes(MaxNonceSize)
		if err != nil {
			return err
		}
		copy(m.Nonce[:], n)
	}
	if m.Operation != MeasurementOpAll && m.Operation != MeasurementOpNumber {
		idx, err := r.ReadUint8()
		if err != nil {
			return err
		}
		m.Index = idx
	}
	return nil
}

// MeasurementBlock is one indexed measurement value, opaque to the
// engine beyond its length.
type MeasurementBlock struct {
	Index uint8
	Value []byte
}

// MeasurementsResponse carries either a bare count (NumberOfBlocks,
// when the request's Operation was MeasurementOpNumber) or the
// requested blocks, plus an OpaqueData passthrough region and, when the
// request asked for a signature, a Signature over the transcript hash
// including this response up to the signature field.
type MeasurementsResponse struct {
	NumberOfBlocks uint8
	Blocks         []MeasurementBlock
	OpaqueData     []byte
	Signature      []byte
}

func (m *MeasurementsResponse) Code() MessageCode { return CodeMeasurements }

func (m *MeasurementsResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeMeasurements, 0, 0); err != nil {
		return 0, err
	}
	if err := w.WriteUint8(m.NumberOfBlocks); err != nil {
		return 0, err
	}
	if err := w.WriteUint8(uint8(len(m.Blocks))); err != nil {
		return 0, err
	}
	for _, b := range m.Blocks {
		if err := w.WriteUint8(b.Index); err != nil {
			return 0, err
		}
		if err := w.WriteVarBytes(b.Value); err != nil {
			return 0, err
		}
	}
	if err := w.WriteVarBytes(m.OpaqueData); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.Signature); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// DecodeMeasurements takes maxOpaque and maxDigest explicitly to bound
// the two variable-length regions per the endpoint's Config, the same
// pattern messages_challenge.go and messages_digests.go use for fields
// whose size is not self-describing on the wire.
func (m *MeasurementsResponse) DecodeMeasurements(maxOpaque, maxDigest int, r *Reader) error {
	numBlocks, err := r.ReadUint8()
	if err != nil {
		return err
	}
	blockCount, err := r.ReadUint8()
	if err != nil {
		return err
	}
	blocks := make([]MeasurementBlock, blockCount)
	for i := range blocks {
		idx, err := r.ReadUint8()
		if err != nil {
			return err
		}
		val, err := r.ReadVarBytes(maxDigest)
		if err != nil {
			return err
		}
		blocks[i] = MeasurementBlock{Index: idx, Value: val}
	}
	opaque, err := r.ReadVarBytes(maxOpaque)
	if err != nil {
		return err
	}
	sig, err := r.ReadVarBytes(256)
	if err != nil {
		return err
	}
	m.NumberOfBlocks = numBlocks
	m.Blocks = blocks
	m.OpaqueData = opaque
	m.Signature = sig
	return nil
}

func (m *MeasurementsResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return &ProtocolError{Reason: "MEASUREMENTS requires DecodeMeasurements: opaque/digest bounds are not self-describing"}
}

// DecodeMeasurementsResponse peeks and consumes in's shared header and
// decodes the body, the entry point endpoint.RequesterSession uses
// since the façade has no reason to expose the lower-level Reader type.
func DecodeMeasurementsResponse(in []byte, maxOpaque, maxDigest int) (*MeasurementsResponse, error) {
	code, err := PeekCode(in)
	if err != nil {
		return nil, err
	}
	if code != CodeMeasurements {
		return nil, ErrUnexpectedRequest
	}
	r := NewReader(in)
	if _, _, _, _, err := r.ReadHeader(); err != nil {
		return nil, err
	}
	resp := &MeasurementsResponse{}
	if err := resp.DecodeMeasurements(maxOpaque, maxDigest, r); err != nil {
		return nil, err
	}
	return resp, nil
}
