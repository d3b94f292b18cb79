package spdm

// ChallengeRequest carries a freshly sampled nonce the responder's
// signature must be bound to. SlotID selects which configured slot's
// key signs the response.
type ChallengeRequest struct {
	SlotID        uint8
	MeasurementSummary uint8
	Nonce         [MaxNonceSize]byte
}

func (m *ChallengeRequest) Code() MessageCode { return CodeChallenge }

func (m *ChallengeRequest) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeChallenge, m.SlotID, m.MeasurementSummary); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.Nonce[:]); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *ChallengeRequest) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	m.SlotID, m.MeasurementSummary = param1, param2
	n, err := r.ReadBytes(MaxNonceSize)
	if err != nil {
		return err
	}
	copy(m.Nonce[:], n)
	return nil
}

// ChallengeAuthResponse's Signature must verify, per §4.4, over the
// hash of the full transcript up to and including this message's bytes
// excluding the signature field itself. The signature is carried with a
// two-byte length prefix; the requester decodes the message first, then
// appends everything before that length prefix to the transcript and
// hashes it.
type ChallengeAuthResponse struct {
	SlotID        uint8
	CertChainHash []byte
	Nonce         [MaxNonceSize]byte
	MeasurementSummary []byte
	Signature     []byte
}

func (m *ChallengeAuthResponse) Code() MessageCode { return CodeChallengeAuth }

func (m *ChallengeAuthResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeChallengeAuth, m.SlotID, 0); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.CertChainHash); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.Nonce[:]); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.MeasurementSummary); err != nil {
		return 0, err
	}
	if err := w.WriteVarBytes(m.Signature); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

// DecodeChallengeAuth takes hashSize explicitly for the same reason
// DigestsResponse does: CertChainHash's length follows the negotiated
// hash algorithm, not a wire-carried count.
func (m *ChallengeAuthResponse) DecodeChallengeAuth(param1 uint8, hashSize int, r *Reader) error {
	m.SlotID = param1
	h, err := r.ReadBytes(hashSize)
	if err != nil {
		return err
	}
	n, err := r.ReadBytes(MaxNonceSize)
	if err != nil {
		return err
	}
	summary, err := r.ReadVarBytes(hashSize)
	if err != nil {
		return err
	}
	sig, err := r.ReadVarBytes(256)
	if err != nil {
		return err
	}
	m.CertChainHash = h
	copy(m.Nonce[:], n)
	m.MeasurementSummary = summary
	m.Signature = sig
	return nil
}

func (m *ChallengeAuthResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	return &ProtocolError{Reason: "CHALLENGE_AUTH requires DecodeChallengeAuth: digest size is not self-describing"}
}
