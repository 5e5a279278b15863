package token

import (
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/wadahiro/weblogin/internal/protocol"
)

// maxIssuedAge bounds how long ago an identity token may have been issued
// before it is considered stale.
const maxIssuedAge = 10 * time.Minute

// Claims carries the identity assertions of an authentication token.
type Claims struct {
	JTI     string `json:"jti"`
	Iss     string `json:"iss"`
	Aud     string `json:"aud"`
	Nonce   string `json:"nonce"`
	Exp     int64  `json:"exp"`
	Iat     int64  `json:"iat"`
	Sub     string `json:"sub"`
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Picture string `json:"picture,omitempty"`
}

// ParseClaims decodes a base64url-encoded claims segment and checks that the
// required fields are present. Time and audience checks belong to Validate.
func ParseClaims(encoded string) (Claims, error) {
	data, err := protocol.DecodeSegment(encoded)
	if err != nil {
		return Claims{}, fmt.Errorf("parse token claims: %w", err)
	}

	var c Claims
	if err := json.Unmarshal(data, &c); err != nil {
		return Claims{}, fmt.Errorf("parse token claims: %w", err)
	}

	for _, f := range []struct{ name, value string }{
		{"jti", c.JTI},
		{"iss", c.Iss},
		{"aud", c.Aud},
		{"nonce", c.Nonce},
		{"sub", c.Sub},
	} {
		if f.value == "" {
			return Claims{}, fmt.Errorf("token claims: %s is empty", f.name)
		}
	}
	if c.Exp <= 0 {
		return Claims{}, fmt.Errorf("token claims: exp is missing")
	}
	if c.Iat <= 0 {
		return Claims{}, fmt.Errorf("token claims: iat is missing")
	}
	return c, nil
}

// Validate checks the claims against the requesting app and the issuer hosts
// the vendor publishes tokens from.
func (c Claims) Validate(appID string, issuerHosts []string, now time.Time) error {
	if c.Aud != appID {
		return fmt.Errorf("token claims: aud %q does not match app id", c.Aud)
	}

	issuer, err := url.Parse(c.Iss)
	if err != nil {
		return fmt.Errorf("token claims: invalid iss %q: %w", c.Iss, err)
	}
	hostOK := len(issuerHosts) == 0
	for _, h := range issuerHosts {
		if issuer.Host == h {
			hostOK = true
			break
		}
	}
	if !hostOK {
		return fmt.Errorf("token claims: unexpected issuer host %q", issuer.Host)
	}

	if !now.Before(time.Unix(c.Exp, 0)) {
		return fmt.Errorf("token claims: token expired at %d", c.Exp)
	}
	if now.Sub(time.Unix(c.Iat, 0)) > maxIssuedAge {
		return fmt.Errorf("token claims: token issued too long ago (iat %d)", c.Iat)
	}
	return nil
}
