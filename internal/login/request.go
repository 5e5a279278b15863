package login

import (
	"github.com/google/uuid"
)

// The openid permission switches the dialog to an OpenID Connect response.
const PermissionOpenID = "openid"

// Audience controls the default visibility the dialog offers for app posts.
type Audience string

const (
	AudienceOnlyMe   Audience = "only_me"
	AudienceFriends  Audience = "friends"
	AudienceEveryone Audience = "everyone"
)

// Behavior names the login surface driving the dialog. Its value is passed
// through to the login_behavior parameter.
type Behavior string

const (
	BehaviorWebOnly            Behavior = "WEB_ONLY"
	BehaviorWebViewOnly        Behavior = "WEB_VIEW_ONLY"
	BehaviorNativeWithFallback Behavior = "NATIVE_WITH_FALLBACK"
)

// Auth type values for the auth_type parameter.
const (
	AuthTypeRerequest      = "rerequest"
	AuthTypeReauthenticate = "reauthenticate"
)

// Request describes a single login attempt. Create it with NewRequest and
// treat it as immutable afterwards: the auth id ties the redirect back to
// this attempt, and the nonce binds any identity token issued for it.
type Request struct {
	AuthID      string
	AppID       string
	RedirectURI string
	Permissions []string
	Audience    Audience
	AuthType    string
	Behavior    Behavior
	Nonce       string

	// Family-app branding of the dialog. TargetApp is sent as fx_app when
	// FamilyLogin is set; family dialogs identify the app with the app_id
	// parameter instead of the legacy client_id.
	TargetApp   string
	FamilyLogin bool

	SkipDedupe          bool
	MessengerPageID     string
	ResetMessengerState bool

	// CurrentToken is the access token the caller currently holds, if any.
	// It is only forwarded to the dialog when it matches the stored grant.
	CurrentToken string
}

// NewRequest creates a login request with a fresh auth id and nonce.
func NewRequest(appID, redirectURI string, permissions []string) *Request {
	return &Request{
		AuthID:      uuid.NewString(),
		AppID:       appID,
		RedirectURI: redirectURI,
		Permissions: permissions,
		Audience:    AudienceFriends,
		AuthType:    AuthTypeRerequest,
		Behavior:    BehaviorWebOnly,
		Nonce:       uuid.NewString(),
	}
}

// IsOpenID reports whether the request asks for an identity token.
func (r *Request) IsOpenID() bool {
	for _, p := range r.Permissions {
		if p == PermissionOpenID {
			return true
		}
	}
	return false
}
