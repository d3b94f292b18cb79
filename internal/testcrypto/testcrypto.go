// Package testcrypto implements the three integrator-supplied
// contracts (Digester, Signer, Verifier) spdm.CryptoProviders bundles,
// backed by stdlib crypto/ecdsa, crypto/sha256, and crypto/x509. This
// is deliberately the reference implementation the spdm package
// delegates to per §4.2/§6: it exists for exercising the engine, not
// as a production provider.
package testcrypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/x509"
	"fmt"
	"hash"

	"github.com/openspdm/spdmcore/spdm"
)

// Digest implements spdm.Digester over the stdlib hash package.
type Digest struct{}

func (Digest) New(alg spdm.HashAlgo) (hash.Hash, error) {
	switch alg {
	case spdm.HashSHA256:
		return sha256.New(), nil
	case spdm.HashSHA384:
		return sha512.New384(), nil
	case spdm.HashSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("testcrypto: unsupported hash algorithm %d", alg)
	}
}

// KeySet holds one ECDSA P-256 key per certificate slot, addressed by
// slot index, the shape both Signer and Verifier need.
type KeySet struct {
	Keys   map[int]*ecdsa.PrivateKey
	Certs  map[int]*x509.Certificate
}

// NewKeySet generates n fresh P-256 keys, one per slot 0..n-1. It does
// not populate Certs: a caller that needs a certificate chain builds
// one itself from these keys.
func NewKeySet(n int) (*KeySet, error) {
	ks := &KeySet{Keys: map[int]*ecdsa.PrivateKey{}, Certs: map[int]*x509.Certificate{}}
	for i := 0; i < n; i++ {
		key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
		if err != nil {
			return nil, fmt.Errorf("testcrypto: generate slot %d key: %w", i, err)
		}
		ks.Keys[i] = key
	}
	return ks, nil
}

// Signer implements spdm.Signer over a KeySet's private keys.
type Signer struct {
	Keys *KeySet
}

func (s Signer) Sign(slot int, message []byte) ([]byte, error) {
	key, ok := s.Keys.Keys[slot]
	if !ok {
		return nil, fmt.Errorf("testcrypto: no key for slot %d", slot)
	}
	digest := sha256.Sum256(message)
	return ecdsa.SignASN1(rand.Reader, key, digest[:])
}

// Verifier implements spdm.Verifier over a KeySet's public keys. Chain
// validation checks the chain is non-empty and parses as X.509; when a
// root is given, it also verifies the first certificate against a pool
// holding only that root (the chain's other certificates are not offered
// as intermediates).
type Verifier struct {
	Keys *KeySet
}

func (v Verifier) ValidateChain(chain []byte, root *x509.Certificate) error {
	if len(chain) == 0 {
		return fmt.Errorf("testcrypto: empty chain")
	}
	certs, err := x509.ParseCertificates(chain)
	if err != nil {
		return fmt.Errorf("testcrypto: parse chain: %w", err)
	}
	if root == nil {
		return nil
	}
	pool := x509.NewCertPool()
	pool.AddCert(root)
	_, err = certs[0].Verify(x509.VerifyOptions{Roots: pool})
	return err
}

func (v Verifier) VerifySignature(slot int, message, signature []byte) error {
	key, ok := v.Keys.Keys[slot]
	if !ok {
		return fmt.Errorf("testcrypto: no key for slot %d", slot)
	}
	digest := sha256.Sum256(message)
	if !ecdsa.VerifyASN1(&key.PublicKey, digest[:], signature) {
		return fmt.Errorf("testcrypto: signature verification failed")
	}
	return nil
}
