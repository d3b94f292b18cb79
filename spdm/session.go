package spdm

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"

	"golang.org/x/crypto/chacha20poly1305"
)

// SecureSession wraps the directional keys derived during the PSK
// exchange and
// applies the negotiated AEAD algorithm to application messages carried
// over the established channel. Sequence numbers are folded into the
// nonce so a replayed ciphertext fails authentication rather than
// silently decrypting.
type SecureSession struct {
	alg  AEADAlgo
	keys SessionKeys
}

// NewSecureSession constructs a session from previously derived keys.
// It performs no key derivation itself; call DeriveSessionKeys first.
func NewSecureSession(alg AEADAlgo, keys SessionKeys) *SecureSession {
	return &SecureSession{alg: alg, keys: keys}
}

func newAEAD(alg AEADAlgo, key []byte) (cipher.AEAD, error) {
	switch alg {
	case AEADAES256GCM:
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, CryptoFailure("aead", err)
		}
		return cipher.NewGCM(block)
	case AEADChaCha20Poly1305:
		return chacha20poly1305.New(key)
	default:
		return nil, ErrAlgorithmMismatch
	}
}

func nonceFor(baseIV []byte, seq uint64) []byte {
	nonce := make([]byte, len(baseIV))
	copy(nonce, baseIV)
	var seqBytes [8]byte
	binary.LittleEndian.PutUint64(seqBytes[:], seq)
	for i := 0; i < 8 && i < len(nonce); i++ {
		nonce[len(nonce)-8+i] ^= seqBytes[i]
	}
	return nonce
}

// Seal encrypts and authenticates plaintext into out using the request
// direction's key and the current request sequence number, which it
// then advances. out must have at least len(plaintext)+Overhead(s.alg)
// bytes of capacity; Seal returns the written sub-slice.
func (s *SecureSession) Seal(out, plaintext []byte) ([]byte, error) {
	aead, err := newAEAD(s.alg, s.keys.RequestKey)
	if err != nil {
		return nil, err
	}
	if len(out) < len(plaintext)+aead.Overhead() {
		return nil, ErrInsufficientSpace
	}
	nonce := nonceFor(s.keys.RequestIV, s.keys.RequestSeq)
	sealed := aead.Seal(out[:0], nonce, plaintext, nil)
	s.keys.RequestSeq++
	return sealed, nil
}

// Open authenticates and decrypts ciphertext using the response
// direction's key and the current response sequence number, which it
// then advances. A tampered ciphertext (spec scenario S6's analogue on
// the session path) fails with ErrSignatureInvalid.
func (s *SecureSession) Open(out, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(s.alg, s.keys.ResponseKey)
	if err != nil {
		return nil, err
	}
	nonce := nonceFor(s.keys.ResponseIV, s.keys.ResponseSeq)
	plain, err := aead.Open(out[:0], nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrSignatureInvalid
	}
	s.keys.ResponseSeq++
	return plain, nil
}

// Overhead returns the AEAD tag overhead for alg, used by callers to
// size their output buffer before calling Seal.
func Overhead(alg AEADAlgo) int {
	switch alg {
	case AEADAES256GCM, AEADChaCha20Poly1305:
		return 16
	default:
		return 0
	}
}
