package spdm_test

import (
	"bytes"
	"testing"

	"github.com/openspdm/spdmcore/internal/testcrypto"
	"github.com/openspdm/spdmcore/spdm"
)

func TestTranscriptAppendAndHash(t *testing.T) {
	tr := spdm.NewTranscript(64)
	if err := tr.Append([]byte("hello ")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := tr.Append([]byte("world")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if got := string(tr.Bytes()); got != "hello world" {
		t.Fatalf("Bytes() = %q, want %q", got, "hello world")
	}
	if tr.Len() != len("hello world") {
		t.Fatalf("Len() = %d, want %d", tr.Len(), len("hello world"))
	}

	h1, err := tr.Hash(testcrypto.Digest{}, spdm.HashSHA256)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if err := tr.Append([]byte("!")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	h2, err := tr.Hash(testcrypto.Digest{}, spdm.HashSHA256)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if bytes.Equal(h1, h2) {
		t.Fatalf("hash did not change after appending more bytes")
	}
}

func TestTranscriptOverflow(t *testing.T) {
	tr := spdm.NewTranscript(4)
	if err := tr.Append([]byte("ab")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := tr.Append([]byte("abc")); err != spdm.ErrTranscriptOverflow {
		t.Fatalf("Append over capacity: got %v, want ErrTranscriptOverflow", err)
	}
	// Failed append must leave the transcript unchanged.
	if got := string(tr.Bytes()); got != "ab" {
		t.Fatalf("Bytes() after failed append = %q, want %q", got, "ab")
	}
}
