package spdm

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func roundTrip(t *testing.T, v ProtocolVersion, m Message, fresh func() Message) {
	t.Helper()
	buf := make([]byte, 512)
	written, err := EncodeMessage(m, v, buf)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	r := NewReader(written)
	_, _, p1, p2, err := r.ReadHeader()
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	got := fresh()
	if err := got.Decode(v, p1, p2, r); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if diff := cmp.Diff(m, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestGetVersionRoundTrip(t *testing.T) {
	roundTrip(t, ProtocolVersion{}, &GetVersionRequest{}, func() Message { return &GetVersionRequest{} })
}

func TestVersionResponseRoundTrip(t *testing.T) {
	m := &VersionResponse{Entries: []VersionEntry{
		{Version: Version11},
		{Version: Version12},
	}}
	roundTrip(t, ProtocolVersion{}, m, func() Message { return &VersionResponse{} })
}

func TestCapabilitiesRoundTrip(t *testing.T) {
	m := &CapabilitiesResponse{CTExponent: 5, Capabilities: CapCert | CapChal | CapMeas}
	roundTrip(t, Version12, m, func() Message { return &CapabilitiesResponse{} })
}

func TestNegotiateAlgorithmsRoundTrip(t *testing.T) {
	m := &NegotiateAlgorithmsRequest{
		Asym: []AsymAlgo{AsymECDSAP256, AsymECDSAP384},
		Hash: []HashAlgo{HashSHA384, HashSHA256},
		AEAD: []AEADAlgo{AEADAES256GCM},
	}
	roundTrip(t, Version12, m, func() Message { return &NegotiateAlgorithmsRequest{} })
}

func TestGetCertificateRoundTrip(t *testing.T) {
	m := &GetCertificateRequest{SlotID: 2, Offset: 128, Length: 256}
	roundTrip(t, Version12, m, func() Message { return &GetCertificateRequest{} })
}

func TestCertificateResponseRoundTrip(t *testing.T) {
	m := &CertificateResponse{SlotID: 1, PortionLength: 3, RemainderLength: 0, CertChain: []byte{0xAA, 0xBB, 0xCC}}
	roundTrip(t, Version12, m, func() Message { return &CertificateResponse{} })
}

func TestInsufficientSpaceOnEncode(t *testing.T) {
	m := &GetCertificateRequest{SlotID: 1, Offset: 0, Length: 64}
	buf := make([]byte, 2)
	if _, err := EncodeMessage(m, Version12, buf); err != ErrInsufficientSpace {
		t.Fatalf("Encode into undersized buffer: got %v, want ErrInsufficientSpace", err)
	}
}

func TestTruncatedDecode(t *testing.T) {
	r := NewReader([]byte{0x12})
	if _, _, _, _, err := r.ReadHeader(); err != ErrTruncated {
		t.Fatalf("ReadHeader on short input: got %v, want ErrTruncated", err)
	}
}

func TestPeekCodeTruncated(t *testing.T) {
	if _, err := PeekCode([]byte{0x01, 0x02}); err != ErrTruncated {
		t.Fatalf("PeekCode on short input: got %v, want ErrTruncated", err)
	}
}
