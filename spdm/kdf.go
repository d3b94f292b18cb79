package spdm

import (
	"crypto/sha256"
	"crypto/sha512"
	"hash"
	"io"

	"golang.org/x/crypto/hkdf"
)

func newHash(alg HashAlgo) func() hash.Hash {
	switch alg {
	case HashSHA256:
		return sha256.New
	case HashSHA384:
		return sha512.New384
	case HashSHA512:
		return sha512.New
	default:
		return nil
	}
}

// SessionKeys holds the directional material a secure session uses:
// one AEAD key and base IV per direction, plus the per-direction
// sequence counters that SecureSession.Seal and SecureSession.Open
// advance on every message they process.
type SessionKeys struct {
	RequestKey   []byte
	RequestIV    []byte
	ResponseKey  []byte
	ResponseIV   []byte
	RequestSeq   uint64
	ResponseSeq  uint64
}

func keyIVSizes(alg AEADAlgo) (keyLen, ivLen int) {
	switch alg {
	case AEADAES256GCM:
		return 32, 12
	case AEADChaCha20Poly1305:
		return 32, 12
	default:
		return 0, 0
	}
}

// DeriveSessionKeys expands a PSK-exchange shared secret with HKDF over
// hash alg into the directional AEAD keys and IVs, sized for aeadAlg,
// binding the derivation to bindingContext (both endpoints pass the
// transcript hash up to and including PSK_EXCHANGE_RSP). This is the engine's own key schedule: per spec §4.2,
// digest/sign/verify are delegated to the integrator, but AEAD and its
// key derivation are not named among those three contracts, so the
// engine performs them directly using the negotiated hash and AEAD
// algorithms.
func DeriveSessionKeys(hashAlg HashAlgo, aeadAlg AEADAlgo, sharedSecret, bindingContext []byte) (SessionKeys, error) {
	newH := newHash(hashAlg)
	if newH == nil {
		return SessionKeys{}, ErrAlgorithmMismatch
	}
	keyLen, ivLen := keyIVSizes(aeadAlg)
	if keyLen == 0 {
		return SessionKeys{}, ErrAlgorithmMismatch
	}

	reqLabel := append([]byte("spdm req key+iv "), bindingContext...)
	rspLabel := append([]byte("spdm rsp key+iv "), bindingContext...)

	reqKey, reqIV, err := expand(newH, sharedSecret, reqLabel, keyLen, ivLen)
	if err != nil {
		return SessionKeys{}, err
	}
	rspKey, rspIV, err := expand(newH, sharedSecret, rspLabel, keyLen, ivLen)
	if err != nil {
		return SessionKeys{}, err
	}
	return SessionKeys{
		RequestKey:  reqKey,
		RequestIV:   reqIV,
		ResponseKey: rspKey,
		ResponseIV:  rspIV,
	}, nil
}

func expand(newH func() hash.Hash, secret, info []byte, keyLen, ivLen int) (key, iv []byte, err error) {
	r := hkdf.New(newH, secret, nil, info)
	out := make([]byte, keyLen+ivLen)
	if _, err := io.ReadFull(r, out); err != nil {
		return nil, nil, CryptoFailure("kdf", err)
	}
	return out[:keyLen], out[keyLen:], nil
}
