package login

import (
	"github.com/wadahiro/weblogin/internal/token"
)

// Status is the outcome category of a completed login attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusCancel  Status = "cancel"
	StatusError   Status = "error"
)

// Result is the outcome of a completed login attempt.
type Result struct {
	Status  Status
	Request *Request

	// Success fields. AuthenticationToken is set only for OpenID requests.
	AccessToken         *token.AccessToken
	AuthenticationToken *token.AuthenticationToken

	// Error describes the failure for StatusError; for StatusCancel it
	// carries CodeUserCanceled.
	Err *Error

	// E2E is the timing identifier echoed back by the dialog, when present.
	E2E string
}

func successResult(req *Request, at *token.AccessToken, idt *token.AuthenticationToken) *Result {
	return &Result{Status: StatusSuccess, Request: req, AccessToken: at, AuthenticationToken: idt}
}

func cancelResult(req *Request) *Result {
	return &Result{Status: StatusCancel, Request: req, Err: newError(CodeUserCanceled, nil)}
}

func errorResult(req *Request, err *Error) *Result {
	return &Result{Status: StatusError, Request: req, Err: err}
}
