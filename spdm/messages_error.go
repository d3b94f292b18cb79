package spdm

// ErrorResponse is the wire encoding of an SPDM ERROR message. Data is
// a single free-form byte for codes that carry one (unused by most);
// ExtendedErrorData is an optional trailing region carried by a handful
// of specific codes such as ResponseNotReady, and is preserved rather
// than dropped.
type ErrorResponse struct {
	ErrorCode         SPDMErrorCode
	Data              uint8
	ExtendedErrorData []byte
}

func (m *ErrorResponse) Code() MessageCode { return CodeError }

func (m *ErrorResponse) Encode(v ProtocolVersion, w *Writer) (int, error) {
	if err := w.WriteHeader(v, CodeError, uint8(m.ErrorCode), m.Data); err != nil {
		return 0, err
	}
	if err := w.WriteBytes(m.ExtendedErrorData); err != nil {
		return 0, err
	}
	return w.Len(), nil
}

func (m *ErrorResponse) Decode(v ProtocolVersion, param1, param2 uint8, r *Reader) error {
	m.ErrorCode = SPDMErrorCode(param1)
	m.Data = param2
	if r.Remaining() > 0 {
		rest, err := r.ReadBytes(r.Remaining())
		if err != nil {
			return err
		}
		m.ExtendedErrorData = rest
	} else {
		m.ExtendedErrorData = nil
	}
	return nil
}

// errorResponseFor maps an engine error to the SPDM error code the
// responder replies with, per §7: only WireError and ProtocolError
// kinds get a defined wire response. CryptoError and ResourceError have
// no defined ERROR encoding and drive an empty written slice instead.
func errorResponseFor(err error) (*ErrorResponse, bool) {
	switch e := err.(type) {
	case *WireError:
		return &ErrorResponse{ErrorCode: ErrorCodeInvalidRequest}, true
	case *ProtocolError:
		switch e {
		case ErrVersionMismatch:
			return &ErrorResponse{ErrorCode: ErrorCodeVersionMismatch}, true
		case ErrCapabilityMismatch:
			return &ErrorResponse{ErrorCode: ErrorCodeCapabilityMismatch}, true
		case ErrAlgorithmMismatch:
			return &ErrorResponse{ErrorCode: ErrorCodeAlgorithmMismatch}, true
		case ErrUnexpectedRequest:
			return &ErrorResponse{ErrorCode: ErrorCodeUnexpectedRequest}, true
		default:
			return &ErrorResponse{ErrorCode: ErrorCodeInvalidRequest}, true
		}
	default:
		return nil, false
	}
}

// errorFromCode maps a received SPDMErrorCode back to the sentinel the
// requester side terminates with, the reverse of errorResponseFor. An
// unrecognized code still terminates the requester, just without a more
// specific classification than ErrUnexpectedRequest.
func errorFromCode(code SPDMErrorCode) error {
	switch code {
	case ErrorCodeVersionMismatch:
		return ErrVersionMismatch
	case ErrorCodeCapabilityMismatch:
		return ErrCapabilityMismatch
	case ErrorCodeAlgorithmMismatch:
		return ErrAlgorithmMismatch
	case ErrorCodeUnexpectedRequest:
		return ErrUnexpectedRequest
	default:
		return ErrUnexpectedRequest
	}
}

// decodeErrorReply parses in as an ERROR message and returns the
// sentinel error errorFromCode maps its code to. Callers use this when
// a reply arrives with CodeError instead of the phase's expected code.
func decodeErrorReply(in []byte) error {
	var resp ErrorResponse
	if err := decodeBody(&resp, ProtocolVersion{}, in); err != nil {
		return err
	}
	return errorFromCode(resp.ErrorCode)
}
