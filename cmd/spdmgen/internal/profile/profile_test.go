package profile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validYAML = `
role: requester
supported_versions: ["1.2", "1.1"]
capabilities: [cert, chal]
algorithms_asymmetric_signing: [ecdsa_p256]
algorithms_hash: [sha256]
algorithms_aead: [aes256gcm]
num_slots: 2
max_cert_chain_size: 1536
max_cert_chain_depth: 4
transcript_size: 2048
max_digest_size: 64
max_signature_size: 96
max_opaque_data_size: 256
`

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTemp(t, validYAML)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if p.NumSlots != 2 {
		t.Errorf("NumSlots = %d, want 2", p.NumSlots)
	}
}

func TestValidateRejectsBadRole(t *testing.T) {
	path := writeTemp(t, strings.Replace(validYAML, "role: requester", "role: bogus", 1))
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Validate(); err == nil {
		t.Fatal("Validate: want error for invalid role, got nil")
	}
}

func TestValidateRejectsTranscriptTooSmall(t *testing.T) {
	path := writeTemp(t, strings.Replace(validYAML, "transcript_size: 2048", "transcript_size: 10", 1))
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Validate(); err == nil {
		t.Fatal("Validate: want error for transcript_size <= max_cert_chain_size, got nil")
	}
}

func TestGenerateGo(t *testing.T) {
	path := writeTemp(t, validYAML)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	src := p.GenerateGo("config", "Generated")
	for _, want := range []string{
		"package config",
		"var Generated = spdm.Config{",
		"spdm.RoleRequester",
		"spdm.AsymECDSAP256",
		"spdm.HashSHA256",
		"spdm.AEADAES256GCM",
		"NumSlots: 2,",
	} {
		if !strings.Contains(src, want) {
			t.Errorf("generated source missing %q:\n%s", want, src)
		}
	}
}
