package spdm

import "crypto/x509"

// requesterPhase discriminates the requester's position in the
// initialization state graph. Phases only move forward, except into
// phaseTerminal, which absorbs every subsequent call.
type requesterPhase int

const (
	phaseVersion requesterPhase = iota
	phaseCapabilities
	phaseAlgorithms
	phaseDigests
	phaseCertificate
	phaseChallenge
	phasePSKExchange
	phasePSKFinish
	phaseSession
	phaseTerminal
)

// awaiting records whether the requester has just emitted a request
// and is waiting for the matching reply, or is ready to emit the next
// one.
type awaiting int

const (
	awaitingNothing awaiting = iota
	awaitingReply
)

// Requester drives the initialization half of the protocol from the
// client side. It holds no transport and no I/O buffers of its own:
// every call is handed a caller-owned slice to read from or write into.
type Requester struct {
	config Config
	crypto CryptoProviders
	slots  *SlotTable
	root   *x509.Certificate

	phase    requesterPhase
	wait     awaiting
	terminal error

	version      ProtocolVersion
	negotiated   NegotiatedAlgorithms
	capabilities NegotiatedCapabilities

	transcript *Transcript

	// certSlot is the slot index under active reassembly on the
	// certificate path; reassembly advances via repeated
	// GET_CERTIFICATE/CERTIFICATE exchanges until its remainder hits 0.
	certSlot   int
	reassembly *certReassembly
	certOffset uint16

	challengeNonce [MaxNonceSize]byte

	pskLocalContext [MaxNonceSize]byte
	sessionKeys     SessionKeys
}

// NewRequester constructs a requester bound to cfg, slots, crypto, and
// the root certificate the certificate path validates chains against.
// root may be nil on the PSK path. cfg.Role must be RoleRequester.
func NewRequester(cfg Config, slots *SlotTable, crypto CryptoProviders, root *x509.Certificate) (*Requester, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Role != RoleRequester {
		return nil, &ProtocolError{Reason: "NewRequester requires Config.Role == RoleRequester"}
	}
	return &Requester{
		config:     cfg,
		crypto:     crypto,
		slots:      slots,
		root:       root,
		phase:      phaseVersion,
		transcript: NewTranscript(cfg.TranscriptSize),
	}, nil
}

// Phase reports the requester's current position in the state graph,
// for callers and tests that want to assert on it directly rather than
// inferring it from NextRequest's error.
func (q *Requester) Phase() requesterPhase { return q.phase }

// Done reports whether the requester has failed into the terminal
// state. A successful initialization ends in the Session phase instead,
// which Established reports.
func (q *Requester) Done() bool { return q.phase == phaseTerminal }

func (q *Requester) fail(err error) error {
	q.phase = phaseTerminal
	q.terminal = err
	return err
}

// NextRequest encodes the next outbound request for the current phase
// into out, appends the encoded bytes to the transcript when the
// current phase requires it, and returns the written sub-slice.
func (q *Requester) NextRequest(out []byte) ([]byte, error) {
	if q.phase == phaseTerminal {
		return nil, q.terminal
	}
	if q.wait == awaitingReply {
		return nil, ErrNotReady
	}

	var msg Message
	appendToTranscript := true

	switch q.phase {
	case phaseVersion:
		msg = &GetVersionRequest{}
		appendToTranscript = false
	case phaseCapabilities:
		msg = &GetCapabilitiesRequest{
			CTExponent:   q.config.CTExponent,
			Capabilities: q.config.LocalCapabilities,
		}
	case phaseAlgorithms:
		msg = &NegotiateAlgorithmsRequest{
			Asym:        q.config.AsymAlgos,
			Hash:        q.config.HashAlgos,
			AEAD:        q.config.AEADAlgos,
			KeyExchange: q.config.KeyExchangeAlgos,
		}
	case phaseDigests:
		msg = &GetDigestsRequest{}
	case phaseCertificate:
		if q.reassembly == nil {
			q.reassembly = newCertReassembly(q.config.MaxCertChainSize)
			q.certOffset = 0
		}
		msg = &GetCertificateRequest{
			SlotID: uint8(q.certSlot),
			Offset: q.certOffset,
			Length: uint16(q.config.MaxCertChainSize),
		}
	case phaseChallenge:
		if _, err := q.crypto.Random.Read(q.challengeNonce[:]); err != nil {
			return nil, q.fail(CryptoFailure("random", err))
		}
		msg = &ChallengeRequest{SlotID: uint8(q.certSlot), Nonce: q.challengeNonce}
	case phasePSKExchange:
		if _, err := q.crypto.Random.Read(q.pskLocalContext[:]); err != nil {
			return nil, q.fail(CryptoFailure("random", err))
		}
		msg = &PSKExchangeRequest{RequesterContext: q.pskLocalContext}
	case phasePSKFinish:
		digest, err := q.transcript.Hash(q.crypto.Digest, q.negotiated.Hash)
		if err != nil {
			return nil, q.fail(err)
		}
		msg = &PSKFinishRequest{Verification: digest}
	case phaseSession:
		return nil, ErrDone
	default:
		return nil, ErrWrongPhase
	}

	written, err := EncodeMessage(msg, q.version, out)
	if err != nil {
		return nil, err
	}
	if appendToTranscript {
		if err := q.transcript.Append(written); err != nil {
			return nil, q.fail(err)
		}
	}
	q.wait = awaitingReply
	return written, nil
}

// HandleMsg parses a received reply, validates it against the current
// phase, advances state, and reports whether initialization has just
// completed.
func (q *Requester) HandleMsg(in []byte) (bool, error) {
	if q.phase == phaseTerminal {
		return false, q.terminal
	}
	if q.wait != awaitingReply {
		return false, ErrNotReady
	}

	code, err := PeekCode(in)
	if err != nil {
		return false, q.fail(err)
	}
	if code == CodeError {
		return false, q.fail(decodeErrorReply(in))
	}

	switch q.phase {
	case phaseVersion:
		if code != CodeVersion {
			return false, q.fail(ErrUnexpectedRequest)
		}
		var resp VersionResponse
		if err := decodeBody(&resp, q.version, in); err != nil {
			return false, q.fail(err)
		}
		v, err := NegotiateVersion(q.config.SupportedVersions, resp.Entries)
		if err != nil {
			return false, q.fail(err)
		}
		q.version = v
		q.phase = phaseCapabilities
	case phaseCapabilities:
		if code != CodeCapabilities {
			return false, q.fail(ErrUnexpectedRequest)
		}
		var resp CapabilitiesResponse
		if err := decodeBody(&resp, q.version, in); err != nil {
			return false, q.fail(err)
		}
		q.capabilities = NegotiatedCapabilities{Local: q.config.LocalCapabilities, Peer: resp.Capabilities}
		if err := q.transcript.Append(in); err != nil {
			return false, q.fail(err)
		}
		q.phase = phaseAlgorithms
	case phaseAlgorithms:
		if code != CodeAlgorithms {
			return false, q.fail(ErrUnexpectedRequest)
		}
		var resp AlgorithmsResponse
		if err := decodeBody(&resp, q.version, in); err != nil {
			return false, q.fail(err)
		}
		negotiated, err := NegotiateAlgorithms(q.config, resp.Asym, resp.Hash, resp.AEAD, resp.KeyExchange)
		if err != nil {
			return false, q.fail(err)
		}
		q.negotiated = negotiated
		if err := q.transcript.Append(in); err != nil {
			return false, q.fail(err)
		}
		q.phase = q.afterAlgorithms()
	case phaseDigests:
		if code != CodeDigests {
			return false, q.fail(ErrUnexpectedRequest)
		}
		var resp DigestsResponse
		r := NewReader(in)
		if _, _, _, param2, err := r.ReadHeader(); err != nil {
			return false, q.fail(err)
		} else if err := resp.DecodeDigests(param2, hashSize(q.negotiated.Hash), r); err != nil {
			return false, q.fail(err)
		}
		q.certSlot = firstSetBit(resp.SlotMask)
		if q.certSlot < 0 {
			return false, q.fail(&ProtocolError{Reason: "DIGESTS advertised no filled slots"})
		}
		if err := q.transcript.Append(in); err != nil {
			return false, q.fail(err)
		}
		q.phase = phaseCertificate
	case phaseCertificate:
		if code != CodeCertificate {
			return false, q.fail(ErrUnexpectedRequest)
		}
		var resp CertificateResponse
		if err := decodeBody(&resp, q.version, in); err != nil {
			return false, q.fail(err)
		}
		if err := q.reassembly.addChunk(&resp); err != nil {
			return false, q.fail(err)
		}
		if err := q.transcript.Append(in); err != nil {
			return false, q.fail(err)
		}
		q.certOffset += resp.PortionLength
		if q.reassembly.done(&resp) {
			slot, err := q.slots.Slot(q.certSlot)
			if err != nil {
				return false, q.fail(err)
			}
			if err := q.crypto.Verifier.ValidateChain(q.reassembly.chain(), q.root); err != nil {
				return false, q.fail(ErrChainInvalid)
			}
			if err := slot.Fill(q.reassembly.chain(), q.negotiated.Asym, q.negotiated.Hash); err != nil {
				return false, q.fail(err)
			}
			q.reassembly = nil
			q.phase = phaseChallenge
		}
	case phaseChallenge:
		if code != CodeChallengeAuth {
			return false, q.fail(ErrUnexpectedRequest)
		}
		sigOffset, resp, err := decodeChallengeAuth(q.negotiated.Hash, in)
		if err != nil {
			return false, q.fail(err)
		}
		if err := q.transcript.Append(in[:sigOffset]); err != nil {
			return false, q.fail(err)
		}
		digest, err := q.transcript.Hash(q.crypto.Digest, q.negotiated.Hash)
		if err != nil {
			return false, q.fail(err)
		}
		if err := q.crypto.Verifier.VerifySignature(q.certSlot, digest, resp.Signature); err != nil {
			return false, q.fail(ErrSignatureInvalid)
		}
		if err := q.transcript.Append(in[sigOffset:]); err != nil {
			return false, q.fail(err)
		}
		q.phase = phaseSession
		q.wait = awaitingNothing
		return true, nil
	case phasePSKExchange:
		if code != CodePSKExchangeRsp {
			return false, q.fail(ErrUnexpectedRequest)
		}
		var resp PSKExchangeResponse
		r := NewReader(in)
		if _, _, _, _, err := r.ReadHeader(); err != nil {
			return false, q.fail(err)
		} else if err := resp.DecodePSKExchangeResponse(q.config.MaxDigestSize, r); err != nil {
			return false, q.fail(err)
		}
		if err := q.transcript.Append(in); err != nil {
			return false, q.fail(err)
		}
		binding, err := q.transcript.Hash(q.crypto.Digest, q.negotiated.Hash)
		if err != nil {
			return false, q.fail(err)
		}
		keys, err := DeriveSessionKeys(q.negotiated.Hash, q.negotiated.AEAD, q.config.PSK, binding)
		if err != nil {
			return false, q.fail(err)
		}
		q.sessionKeys = keys
		q.phase = phasePSKFinish
	case phasePSKFinish:
		if code != CodePSKFinishRsp {
			return false, q.fail(ErrUnexpectedRequest)
		}
		if err := q.transcript.Append(in); err != nil {
			return false, q.fail(err)
		}
		q.phase = phaseSession
		q.wait = awaitingNothing
		return true, nil
	default:
		return false, q.fail(ErrWrongPhase)
	}

	q.wait = awaitingNothing
	return false, nil
}

// afterAlgorithms picks the branch §4.4 describes: PSK path when PSK_CAP
// is negotiated, certificate path otherwise (including when neither
// CERT_CAP nor PSK_CAP is negotiated). CERT_CAP and PSK_CAP cannot both
// be negotiated, by Config.Validate's construction-time check.
func (q *Requester) afterAlgorithms() requesterPhase {
	if q.capabilities.UsesPSKPath() {
		return phasePSKExchange
	}
	return phaseDigests
}

// Established reports whether the requester has reached the Session
// phase, the signal endpoint.RequesterInit.Complete uses to decide
// whether it may hand back a RequesterSession.
func (q *Requester) Established() bool { return q.phase == phaseSession }

// NegotiatedVersion returns the version selected during GET_VERSION/
// VERSION. Before that exchange completes it is the zero value.
func (q *Requester) NegotiatedVersion() ProtocolVersion { return q.version }

// SecureSession returns the established session once initialization
// has completed via the PSK path. Calling it before phaseSession, or
// after initialization completed via the certificate path, fails with
// ErrWrongPhase.
func (q *Requester) SecureSession() (*SecureSession, error) {
	if q.phase != phaseSession || !q.capabilities.UsesPSKPath() {
		return nil, ErrWrongPhase
	}
	return NewSecureSession(q.negotiated.AEAD, q.sessionKeys), nil
}

func decodeBody(m Message, v ProtocolVersion, in []byte) error {
	r := NewReader(in)
	_, _, p1, p2, err := r.ReadHeader()
	if err != nil {
		return err
	}
	return m.Decode(v, p1, p2, r)
}

func decodeChallengeAuth(hashAlg HashAlgo, in []byte) (sigOffset int, resp *ChallengeAuthResponse, err error) {
	r := NewReader(in)
	_, _, p1, _, err := r.ReadHeader()
	if err != nil {
		return 0, nil, err
	}
	resp = &ChallengeAuthResponse{}
	if err := resp.DecodeChallengeAuth(p1, hashSize(hashAlg), r); err != nil {
		return 0, nil, err
	}
	sigOffset = len(in) - len(resp.Signature) - 2
	return sigOffset, resp, nil
}

func hashSize(alg HashAlgo) int {
	switch alg {
	case HashSHA256:
		return 32
	case HashSHA384:
		return 48
	case HashSHA512:
		return 64
	default:
		return 0
	}
}

func firstSetBit(mask uint8) int {
	for i := 0; i < 8; i++ {
		if mask&(1<<uint(i)) != 0 {
			return i
		}
	}
	return -1
}
