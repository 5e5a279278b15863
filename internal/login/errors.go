package login

import "fmt"

// Code classifies login failures with a stable identifier.
type Code string

const (
	CodeInvalidRequest  Code = "invalid_request"
	CodeInvalidResponse Code = "invalid_response"
	CodeMissingToken    Code = "missing_access_token"
	CodeInvalidIDToken  Code = "invalid_id_token"
	CodeNonceMismatch   Code = "nonce_mismatch"
	CodeVerification    Code = "verification_failed"
	CodeServiceError    Code = "service_error"
	CodeUserCanceled    Code = "user_canceled"
)

var errorMessages = map[Code]string{
	CodeInvalidRequest:  "Invalid login request",
	CodeInvalidResponse: "Invalid dialog response",
	CodeMissingToken:    "No access token found",
	CodeInvalidIDToken:  "Invalid identity token",
	CodeNonceMismatch:   "Nonce mismatch",
	CodeVerification:    "Identity token verification failed",
	CodeServiceError:    "Authorization service error",
	CodeUserCanceled:    "User canceled log in",
}

// Error wraps login failures with a stable code and message.
type Error struct {
	Code    Code
	Message string
	Err     error

	// ServiceCode carries the numeric error code echoed by the
	// authorization service, when one was present in the redirect.
	ServiceCode string
}

// Error implements the error interface.
func (e *Error) Error() string {
	base := e.Message
	if base == "" {
		base = string(e.Code)
	}
	if e.Err == nil {
		return base
	}
	return fmt.Sprintf("%s: %v", base, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, err error) *Error {
	msg, ok := errorMessages[code]
	if !ok {
		msg = string(code)
	}
	return &Error{Code: code, Message: msg, Err: err}
}

func newServiceError(serviceCode, message string) *Error {
	e := newError(CodeServiceError, nil)
	if message != "" {
		e.Message = message
	}
	e.ServiceCode = serviceCode
	return e
}
