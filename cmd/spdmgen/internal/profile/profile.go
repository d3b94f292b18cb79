// Package profile parses and validates the YAML configuration profile
// spdmgen reads, and renders it into a spdm.Config Go literal. It
// mirrors the recognized keys table in spec.md §6.
package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Profile is the YAML-facing shape of a build-time configuration. Field
// names match spec.md §6's recognized keys, lower-cased for YAML.
type Profile struct {
	Role                       string   `yaml:"role" validate:"required,oneof=requester responder"`
	SupportedVersions          []string `yaml:"supported_versions" validate:"required,min=1,dive,required"`
	Capabilities               []string `yaml:"capabilities" validate:"dive,oneof=cert chal meas meas_sig mac encrypt mut_auth psk key_upd hbeat"`
	AsymAlgos                  []string `yaml:"algorithms_asymmetric_signing" validate:"dive,oneof=ecdsa_p256 ecdsa_p384"`
	HashAlgos                  []string `yaml:"algorithms_hash" validate:"dive,oneof=sha256 sha384 sha512"`
	AEADAlgos                  []string `yaml:"algorithms_aead" validate:"dive,oneof=aes256gcm chacha20poly1305"`
	CTExponent                 uint8    `yaml:"ct_exponent"`
	NumSlots                   int      `yaml:"num_slots" validate:"required,min=1,max=8"`
	MaxCertChainSize           int      `yaml:"max_cert_chain_size" validate:"required,min=1,max=65536"`
	MaxCertChainDepth          int      `yaml:"max_cert_chain_depth" validate:"required,min=1"`
	TranscriptSize             int      `yaml:"transcript_size" validate:"required"`
	MaxDigestSize              int      `yaml:"max_digest_size" validate:"required"`
	MaxSignatureSize           int      `yaml:"max_signature_size" validate:"required"`
	MaxOpaqueDataSize          int      `yaml:"max_opaque_data_size" validate:"required"`
}

// Load reads and parses the YAML profile at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	p := &Profile{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return p, nil
}

var validate = validator.New()

// Validate checks the profile against its struct tags, then the one
// cross-field rule spec.md §3 states outright: TranscriptSize must
// exceed MaxCertChainSize.
func (p *Profile) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.TranscriptSize <= p.MaxCertChainSize {
		return fmt.Errorf("transcript_size (%d) must exceed max_cert_chain_size (%d)", p.TranscriptSize, p.MaxCertChainSize)
	}
	return nil
}

// GenerateGo renders the profile as a Go source file defining an
// exported spdm.Config literal named varName in package pkgName.
func (p *Profile) GenerateGo(pkgName, varName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by spdmgen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", pkgName)
	fmt.Fprintf(&b, "import \"github.com/openspdm/spdmcore/spdm\"\n\n")
	fmt.Fprintf(&b, "var %s = spdm.Config{\n", varName)
	fmt.Fprintf(&b, "\tRole: %s,\n", roleLiteral(p.Role))
	fmt.Fprintf(&b, "\tSupportedVersions: %s,\n", versionsLiteral(p.SupportedVersions))
	fmt.Fprintf(&b, "\tLocalCapabilities: %s,\n", capabilitiesLiteral(p.Capabilities))
	fmt.Fprintf(&b, "\tAsymAlgos: %s,\n", asymLiteral(p.AsymAlgos))
	fmt.Fprintf(&b, "\tHashAlgos: %s,\n", hashLiteral(p.HashAlgos))
	fmt.Fprintf(&b, "\tAEADAlgos: %s,\n", aeadLiteral(p.AEADAlgos))
	fmt.Fprintf(&b, "\tCTExponent: %d,\n", p.CTExponent)
	fmt.Fprintf(&b, "\tNumSlots: %d,\n", p.NumSlots)
	fmt.Fprintf(&b, "\tMaxCertChainSize: %d,\n", p.MaxCertChainSize)
	fmt.Fprintf(&b, "\tMaxCertChainDepth: %d,\n", p.MaxCertChainDepth)
	fmt.Fprintf(&b, "\tTranscriptSize: %d,\n", p.TranscriptSize)
	fmt.Fprintf(&b, "\tMaxDigestSize: %d,\n", p.MaxDigestSize)
	fmt.Fprintf(&b, "\tMaxSignatureSize: %d,\n", p.MaxSignatureSize)
	fmt.Fprintf(&b, "\tMaxOpaqueDataSize: %d,\n", p.MaxOpaqueDataSize)
	fmt.Fprintf(&b, "}\n")
	return b.String()
}

func roleLiteral(role string) string {
	if role == "responder" {
		return "spdm.RoleResponder"
	}
	return "spdm.RoleRequester"
}

func versionsLiteral(versions []string) string {
	var parts []string
	for _, v := range versions {
		major, minor := "1", "0"
		if idx := strings.IndexByte(v, '.'); idx >= 0 {
			major, minor = v[:idx], v[idx+1:]
		}
		parts = append(parts, fmt.Sprintf("{Major: %s, Minor: %s}", major, minor))
	}
	return "[]spdm.ProtocolVersion{" + strings.Join(parts, ", ") + "}"
}

var capabilityFlags = map[string]string{
	"cert":     "spdm.CapCert",
	"chal":     "spdm.CapChal",
	"meas":     "spdm.CapMeas",
	"meas_sig": "spdm.CapMeasSig",
	"mac":      "spdm.CapMAC",
	"encrypt":  "spdm.CapEncrypt",
	"mut_auth": "spdm.CapMutAuth",
	"psk":      "spdm.CapPSK",
	"key_upd":  "spdm.CapKeyUpd",
	"hbeat":    "spdm.CapHBeat",
}

func capabilitiesLiteral(caps []string) string {
	if len(caps) == 0 {
		return "0"
	}
	var parts []string
	for _, c := range caps {
		if flag, ok := capabilityFlags[c]; ok {
			parts = append(parts, flag)
		}
	}
	return strings.Join(parts, " | ")
}

func asymLiteral(algos []string) string {
	names := map[string]string{"ecdsa_p256": "spdm.AsymECDSAP256", "ecdsa_p384": "spdm.AsymECDSAP384"}
	return algoSliceLiteral("spdm.AsymAlgo", algos, names)
}

func hashLiteral(algos []string) string {
	names := map[string]string{"sha256": "spdm.HashSHA256", "sha384": "spdm.HashSHA384", "sha512": "spdm.HashSHA512"}
	return algoSliceLiteral("spdm.HashAlgo", algos, names)
}

func aeadLiteral(algos []string) string {
	names := map[string]string{"aes256gcm": "spdm.AEADAES256GCM", "chacha20poly1305": "spdm.AEADChaCha20Poly1305"}
	return algoSliceLiteral("spdm.AEADAlgo", algos, names)
}

func algoSliceLiteral(typeName string, algos []string, names map[string]string) string {
	var parts []string
	for _, a := range algos {
		if lit, ok := names[a]; ok {
			parts = append(parts, lit)
		}
	}
	return "[]" + typeName + "{" + strings.Join(parts, ", ") + "}"
}
