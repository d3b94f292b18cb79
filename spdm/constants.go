package spdm

// MessageCode is the RequestResponseCode byte of the four-byte SPDM
// message header.
type MessageCode uint8

// Request codes.
const (
	CodeGetDigests          MessageCode = 0x81
	CodeGetCertificate      MessageCode = 0x82
	CodeChallenge           MessageCode = 0x83
	CodeGetVersion          MessageCode = 0x84
	CodeGetMeasurements     MessageCode = 0xE0
	CodeGetCapabilities     MessageCode = 0xE1
	CodeNegotiateAlgorithms MessageCode = 0xE3
	CodePSKExchange         MessageCode = 0xE6
	CodePSKFinish           MessageCode = 0xE7
)

// Response codes.
const (
	CodeDigests        MessageCode = 0x01
	CodeCertificate    MessageCode = 0x02
	CodeChallengeAuth  MessageCode = 0x03
	CodeVersion        MessageCode = 0x04
	CodeMeasurements   MessageCode = 0x60
	CodeCapabilities   MessageCode = 0x61
	CodeAlgorithms     MessageCode = 0x63
	CodePSKExchangeRsp MessageCode = 0x66
	CodePSKFinishRsp   MessageCode = 0x67
	CodeError          MessageCode = 0x7F
)

func (c MessageCode) String() string {
	switch c {
	case CodeGetDigests:
		return "GET_DIGESTS"
	case CodeGetCertificate:
		return "GET_CERTIFICATE"
	case CodeChallenge:
		return "CHALLENGE"
	case CodeGetVersion:
		return "GET_VERSION"
	case CodeGetMeasurements:
		return "GET_MEASUREMENTS"
	case CodeGetCapabilities:
		return "GET_CAPABILITIES"
	case CodeNegotiateAlgorithms:
		return "NEGOTIATE_ALGORITHMS"
	case CodePSKExchange:
		return "PSK_EXCHANGE"
	case CodePSKFinish:
		return "PSK_FINISH"
	case CodeDigests:
		return "DIGESTS"
	case CodeCertificate:
		return "CERTIFICATE"
	case CodeChallengeAuth:
		return "CHALLENGE_AUTH"
	case CodeVersion:
		return "VERSION"
	case CodeMeasurements:
		return "MEASUREMENTS"
	case CodeCapabilities:
		return "CAPABILITIES"
	case CodeAlgorithms:
		return "ALGORITHMS"
	case CodePSKExchangeRsp:
		return "PSK_EXCHANGE_RSP"
	case CodePSKFinishRsp:
		return "PSK_FINISH_RSP"
	case CodeError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// SPDMErrorCode is the Param1 value of an ERROR response.
type SPDMErrorCode uint8

const (
	ErrorCodeInvalidRequest     SPDMErrorCode = 0x01
	ErrorCodeVersionMismatch    SPDMErrorCode = 0x41
	ErrorCodeCapabilityMismatch SPDMErrorCode = 0x43
	ErrorCodeAlgorithmMismatch  SPDMErrorCode = 0x44
	ErrorCodeUnexpectedRequest  SPDMErrorCode = 0x06
	ErrorCodeInvalidSession     SPDMErrorCode = 0x02
	ErrorCodeDecryptError       SPDMErrorCode = 0x07
	ErrorCodeResponseNotReady   SPDMErrorCode = 0x42
	ErrorCodeRequestResync      SPDMErrorCode = 0x47
	ErrorCodeUnsupportedRequest SPDMErrorCode = 0x08
)

// ProtocolVersion is a (major, minor) pair as carried in the one-byte
// SPDMVersion wire field: high nibble major, low nibble minor.
type ProtocolVersion struct {
	Major uint8
	Minor uint8
}

func (v ProtocolVersion) byte() uint8 { return v.Major<<4 | v.Minor }

func versionFromByte(b uint8) ProtocolVersion {
	return ProtocolVersion{Major: b >> 4, Minor: b & 0x0F}
}

// Less reports whether v is a numerically lower version than o.
func (v ProtocolVersion) Less(o ProtocolVersion) bool {
	if v.Major != o.Major {
		return v.Major < o.Major
	}
	return v.Minor < o.Minor
}

func (v ProtocolVersion) String() string {
	return string([]byte{'0' + v.Major, '.', '0' + v.Minor})
}

var (
	Version10 = ProtocolVersion{Major: 1, Minor: 0}
	Version11 = ProtocolVersion{Major: 1, Minor: 1}
	Version12 = ProtocolVersion{Major: 1, Minor: 2}
)

// HashAlgo identifies a base hash algorithm selectable during algorithm
// negotiation.
type HashAlgo uint8

const (
	HashNone   HashAlgo = 0
	HashSHA256 HashAlgo = 1
	HashSHA384 HashAlgo = 2
	HashSHA512 HashAlgo = 3
)

// AsymAlgo identifies an asymmetric signing algorithm selectable during
// algorithm negotiation. RSA is deliberately absent: software RSA
// requires allocation, which this engine's non-goals exclude.
type AsymAlgo uint8

const (
	AsymNone       AsymAlgo = 0
	AsymECDSAP256  AsymAlgo = 1
	AsymECDSAP384  AsymAlgo = 2
)

// AEADAlgo identifies the authenticated encryption algorithm protecting
// an established secure session.
type AEADAlgo uint8

const (
	AEADNone              AEADAlgo = 0
	AEADAES256GCM         AEADAlgo = 1
	AEADChaCha20Poly1305  AEADAlgo = 2
)

// KeyExchangeAlgo identifies a Diffie-Hellman group. Reserved for the
// future KEY_EXCHANGE phase; the PSK path negotiates it but never uses
// it, since PSK session keys are derived from the shared secret alone.
type KeyExchangeAlgo uint8

const (
	KeyExchangeNone    KeyExchangeAlgo = 0
	KeyExchangeECDHP256 KeyExchangeAlgo = 1
)

// MaxNonceSize is the fixed size of a CHALLENGE or KEY_EXCHANGE nonce.
const MaxNonceSize = 32
