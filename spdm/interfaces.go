package spdm

import (
	"crypto/x509"
	"hash"
	"io"
)

// Digester is supplied by the integrator, possibly backed by hardware.
// New returns a fresh running digest for alg; the engine only ever
// calls Write and Sum on the result, so any stdlib hash.Hash
// implementation (or a hardware-backed equivalent) satisfies the
// contract without the engine needing a bespoke update/finalize pair.
type Digester interface {
	New(alg HashAlgo) (hash.Hash, error)
}

// Signer is supplied by the integrator. It signs message with the
// private key behind the given certificate slot and never sees the
// engine allocate on its behalf; the returned signature must be no
// larger than Config.MaxSignatureSize.
type Signer interface {
	Sign(slot int, message []byte) ([]byte, error)
}

// Verifier validates a certificate chain against a caller-provided
// root and verifies signatures made by the public key of a named slot.
// X.509 chain validation and signature verification are both out of
// scope for the engine itself per spec §1; this is the seam the
// integrator fills, analogous to the teacher's Session interface
// wrapping an opaque authorization computation the engine never
// inspects directly.
type Verifier interface {
	ValidateChain(chain []byte, root *x509.Certificate) error
	VerifySignature(slot int, message, signature []byte) error
}

// Random is the caller-provided randomness source. A nonce is drawn
// fresh per challenge and per key exchange; io.Reader is sufficient and
// lets any crypto/rand.Reader-shaped value satisfy it directly.
type Random = io.Reader

// CryptoProviders bundles the three capability contracts and the
// randomness source an endpoint is constructed with. None of them may allocate on the engine's
// behalf; the engine treats digest bytes, signatures, and chain bytes
// as opaque and only ever copies or compares them.
type CryptoProviders struct {
	Digest   Digester
	Signer   Signer
	Verifier Verifier
	Random   Random
}
