package login

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	err := newError(CodeMissingToken, nil)
	if err.Error() != "No access token found" {
		t.Errorf("Error() = %q", err.Error())
	}

	wrapped := newError(CodeInvalidResponse, fmt.Errorf("boom"))
	if wrapped.Error() != "Invalid dialog response: boom" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := fmt.Errorf("underlying failure")
	err := newError(CodeVerification, cause)
	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the cause")
	}

	var le *Error
	if !errors.As(error(err), &le) {
		t.Fatal("errors.As should match *Error")
	}
	if le.Code != CodeVerification {
		t.Errorf("Code = %q", le.Code)
	}
}

func TestServiceError(t *testing.T) {
	err := newServiceError("190", "token is invalid")
	if err.Code != CodeServiceError {
		t.Errorf("Code = %q", err.Code)
	}
	if err.ServiceCode != "190" {
		t.Errorf("ServiceCode = %q", err.ServiceCode)
	}
	if err.Error() != "token is invalid" {
		t.Errorf("Error() = %q", err.Error())
	}

	// Without a message the generic one stands in.
	if got := newServiceError("190", "").Error(); got != "Authorization service error" {
		t.Errorf("Error() = %q", got)
	}
}

func TestRequestIsOpenID(t *testing.T) {
	if NewRequest("app", "uri", []string{"email"}).IsOpenID() {
		t.Error("email-only request should not be OpenID")
	}
	if !NewRequest("app", "uri", []string{"email", "openid"}).IsOpenID() {
		t.Error("openid request should be OpenID")
	}
}

func TestNewRequestDefaults(t *testing.T) {
	req := NewRequest("app-123", "myapp123://authorize/", []string{"email"})
	if req.AuthID == "" || req.Nonce == "" {
		t.Error("auth id and nonce should be generated")
	}
	if req.AuthID == req.Nonce {
		t.Error("auth id and nonce should differ")
	}
	if req.Audience != AudienceFriends {
		t.Errorf("Audience = %q", req.Audience)
	}
	if req.AuthType != AuthTypeRerequest {
		t.Errorf("AuthType = %q", req.AuthType)
	}
	if req.Behavior != BehaviorWebOnly {
		t.Errorf("Behavior = %q", req.Behavior)
	}

	other := NewRequest("app-123", "myapp123://authorize/", nil)
	if other.AuthID == req.AuthID {
		t.Error("auth ids should be unique per request")
	}
}
