package token

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/wadahiro/weblogin/internal/protocol"
)

// Source identifies which login surface obtained an access token.
type Source int

const (
	SourceNone Source = iota
	SourceWebView
	SourceCustomTab
	SourceBrowser
	SourceTestUser
)

func (s Source) String() string {
	switch s {
	case SourceWebView:
		return "web_view"
	case SourceCustomTab:
		return "custom_tab"
	case SourceBrowser:
		return "browser"
	case SourceTestUser:
		return "test_user"
	default:
		return "none"
	}
}

// AccessToken is the credential granted through the dialog.
// A zero Expires or DataAccessExpires means the grant does not expire.
type AccessToken struct {
	Token               string
	AppID               string
	UserID              string
	Permissions         []string
	DeclinedPermissions []string
	Expires             time.Time
	DataAccessExpires   time.Time
	LastRefresh         time.Time
	Source              Source
	GraphDomain         string
}

// NewAccessToken creates a token with LastRefresh set to now. Zero expiry
// times mean the grant does not expire.
func NewAccessToken(tokenString, appID, userID string, permissions, declined []string, expires, dataAccessExpires time.Time, source Source, graphDomain string) *AccessToken {
	return &AccessToken{
		Token:               tokenString,
		AppID:               appID,
		UserID:              userID,
		Permissions:         permissions,
		DeclinedPermissions: declined,
		Expires:             expires,
		DataAccessExpires:   dataAccessExpires,
		LastRefresh:         time.Now(),
		Source:              source,
		GraphDomain:         graphDomain,
	}
}

// IsExpired reports whether the token's validity window has passed.
func (t *AccessToken) IsExpired() bool {
	return !t.Expires.IsZero() && time.Now().After(t.Expires)
}

// IsDataAccessExpired reports whether the user must re-authorize data access.
func (t *AccessToken) IsDataAccessExpired() bool {
	return !t.DataAccessExpires.IsZero() && time.Now().After(t.DataAccessExpires)
}

// HasPermission reports whether the granted permission set contains p.
func (t *AccessToken) HasPermission(p string) bool {
	for _, granted := range t.Permissions {
		if granted == p {
			return true
		}
	}
	return false
}

// FromWebResponse maps a parsed dialog redirect into an AccessToken. The
// requested permissions stand in when the response does not echo granted
// scopes. The user id comes from the signed_request payload.
func FromWebResponse(requested []string, values url.Values, source Source, appID string) (*AccessToken, error) {
	tokenString := values.Get(protocol.ParamAccessToken)
	if tokenString == "" {
		return nil, fmt.Errorf("response contains no access token")
	}

	userID, err := UserIDFromSignedRequest(values.Get(protocol.ParamSignedRequest))
	if err != nil {
		return nil, err
	}

	granted := requested
	if gs := values.Get(protocol.ParamGrantedScopes); gs != "" {
		granted = splitScopes(gs)
	}
	declined := splitScopes(values.Get(protocol.ParamDeniedScopes))

	return NewAccessToken(
		tokenString, appID, userID, granted, declined,
		expiryFromSeconds(values.Get(protocol.ParamExpiresIn), time.Now()),
		expiryFromUnix(values.Get(protocol.ParamDataAccessExpiration)),
		source,
		values.Get(protocol.ParamGraphDomain),
	), nil
}

// UserIDFromSignedRequest extracts the user id from a signed_request value:
// "<signature>.<base64url payload>" where the payload is a JSON object
// carrying user_id.
func UserIDFromSignedRequest(signedRequest string) (string, error) {
	if signedRequest == "" {
		return "", fmt.Errorf("response contains no signed request")
	}

	parts := strings.Split(signedRequest, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("malformed signed request")
	}

	payload, err := protocol.DecodeSegment(parts[1])
	if err != nil {
		return "", fmt.Errorf("malformed signed request: %w", err)
	}

	var body struct {
		UserID string `json:"user_id"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", fmt.Errorf("malformed signed request: %w", err)
	}
	if body.UserID == "" {
		return "", fmt.Errorf("signed request contains no user id")
	}
	return body.UserID, nil
}

// expiryFromSeconds converts a relative expires_in value to an absolute
// deadline. Missing or zero means the grant does not expire.
func expiryFromSeconds(s string, now time.Time) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return now.Add(time.Duration(secs) * time.Second)
}

// expiryFromUnix converts an absolute Unix-seconds value. Missing or zero
// means data access does not expire.
func expiryFromUnix(s string) time.Time {
	secs, err := strconv.ParseInt(s, 10, 64)
	if err != nil || secs <= 0 {
		return time.Time{}
	}
	return time.Unix(secs, 0)
}

func splitScopes(s string) []string {
	if s == "" {
		return nil
	}
	var scopes []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			scopes = append(scopes, p)
		}
	}
	return scopes
}
