package spdm

import (
	"bytes"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"testing"
)

// sha2Digest is a minimal Digester backed by stdlib crypto, used only
// to exercise hashBytes without pulling in internal/testcrypto (which
// imports this package and would create an import cycle in tests).
type sha2Digest struct{}

func (sha2Digest) New(alg HashAlgo) (hash.Hash, error) {
	switch alg {
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm %d", alg)
	}
}

func TestHashBytesDeterministic(t *testing.T) {
	d := sha2Digest{}
	a, err := hashBytes(d, HashSHA256, []byte("same input"))
	if err != nil {
		t.Fatalf("hashBytes: %v", err)
	}
	b, err := hashBytes(d, HashSHA256, []byte("same input"))
	if err != nil {
		t.Fatalf("hashBytes: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("hashBytes not deterministic: %x != %x", a, b)
	}
}
