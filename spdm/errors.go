package spdm

import "fmt"

// ErrorKind groups the error taxonomy from the wire/protocol/crypto/resource
// layers. Every error the engine returns can be classified into exactly one
// of these. Requester.HandleMsg latches every error it returns except
// ErrNotReady, driving the requester to Terminal. The Responder does not
// enter a terminal state: it answers with an ERROR reply (or an empty
// slice) and stays in its current phase.
type ErrorKind int

const (
	KindWire ErrorKind = iota
	KindProtocol
	KindCrypto
	KindResource
)

func (k ErrorKind) String() string {
	switch k {
	case KindWire:
		return "wire"
	case KindProtocol:
		return "protocol"
	case KindCrypto:
		return "crypto"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// WireError reports a codec-level failure: a buffer too small to hold an
// encoding, or an input too short or malformed to decode.
type WireError struct {
	Reason string
}

func (e *WireError) Error() string { return "spdm: wire: " + e.Reason }

var (
	ErrTruncated         = &WireError{Reason: "truncated"}
	ErrInsufficientSpace = &WireError{Reason: "insufficient space"}
	ErrUnexpectedValue   = &WireError{Reason: "unexpected value"}
	ErrInvalidEncoding   = &WireError{Reason: "invalid encoding"}
)

// ProtocolError reports that a phase transition or negotiation rule was
// violated, either by the peer or by the caller's use of the API.
type ProtocolError struct {
	Reason string
}

func (e *ProtocolError) Error() string { return "spdm: protocol: " + e.Reason }

var (
	ErrUnexpectedRequest  = &ProtocolError{Reason: "unexpected request for current phase"}
	ErrVersionMismatch    = &ProtocolError{Reason: "no common protocol version"}
	ErrCapabilityMismatch = &ProtocolError{Reason: "required capability not supported by peer"}
	ErrAlgorithmMismatch  = &ProtocolError{Reason: "no common algorithm selection"}
	ErrWrongPhase         = &ProtocolError{Reason: "operation not valid in current phase"}
	ErrNotReady           = &ProtocolError{Reason: "phase awaits a reply"}
	ErrDone               = &ProtocolError{Reason: "no further requests in this subgraph"}
)

// CryptoError reports a failure from or detected by a crypto provider.
type CryptoError struct {
	Reason string
	// Provider is set only for CryptoFailure, naming which provider or
	// engine crypto step (digest, signer, random, kdf, aead) raised the
	// underlying error.
	Provider string
	Err      error
}

func (e *CryptoError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("spdm: crypto: %s (%s): %v", e.Reason, e.Provider, e.Err)
	}
	return "spdm: crypto: " + e.Reason
}

func (e *CryptoError) Unwrap() error { return e.Err }

var (
	ErrSignatureInvalid = &CryptoError{Reason: "signature invalid"}
	ErrChainInvalid     = &CryptoError{Reason: "certificate chain invalid"}
	ErrDigestMismatch   = &CryptoError{Reason: "digest mismatch"}
)

// CryptoFailure wraps an error surfaced by a caller-supplied crypto
// provider (digest, signer, or verifier). The engine does not retry.
func CryptoFailure(provider string, err error) *CryptoError {
	return &CryptoError{Reason: "provider failure", Provider: provider, Err: err}
}

// ResourceError reports that a fixed-size internal buffer could not hold
// what the peer or caller asked of it.
type ResourceError struct {
	Reason string
}

func (e *ResourceError) Error() string { return "spdm: resource: " + e.Reason }

var (
	ErrCertTooLarge       = &ResourceError{Reason: "certificate chain exceeds slot buffer"}
	ErrTranscriptOverflow = &ResourceError{Reason: "transcript buffer exhausted"}
	ErrSlotIndexOutOfRange = &ResourceError{Reason: "slot index out of range"}
	ErrSlotEmpty          = &ResourceError{Reason: "slot is empty"}
)

// Kind classifies an error returned by this package into one of the four
// taxonomy buckets, for callers that want to react by category rather
// than by exact sentinel.
func Kind(err error) (ErrorKind, bool) {
	switch err.(type) {
	case *WireError:
		return KindWire, true
	case *ProtocolError:
		return KindProtocol, true
	case *CryptoError:
		return KindCrypto, true
	case *ResourceError:
		return KindResource, true
	default:
		return 0, false
	}
}
