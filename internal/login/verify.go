package login

import (
	"context"
	"fmt"
	"net/http"
	"time"

	gooidc "github.com/coreos/go-oidc/v3/oidc"
	"github.com/lestrrat-go/jwx/v2/jwk"

	"github.com/wadahiro/weblogin/internal/token"
)

// jwksMinRefresh bounds how often the key set is re-fetched.
const jwksMinRefresh = 15 * time.Minute

// IDTokenVerifier verifies identity tokens against the vendor's published
// keys: the header's key id must resolve in the JWKS, the signature must
// check out, and the claims must match the issuer, app, and request nonce.
type IDTokenVerifier struct {
	verifier    *gooidc.IDTokenVerifier
	keys        *jwk.Cache
	jwksURL     string
	issuerHosts []string
}

// NewIDTokenVerifier creates a verifier for the given issuer and key set
// URL. client may be nil to use http.DefaultClient.
func NewIDTokenVerifier(ctx context.Context, issuer, jwksURL, clientID string, issuerHosts []string, client *http.Client) (*IDTokenVerifier, error) {
	if client == nil {
		client = http.DefaultClient
	}

	ctx = gooidc.ClientContext(ctx, client)
	keySet := gooidc.NewRemoteKeySet(ctx, jwksURL)
	verifier := gooidc.NewVerifier(issuer, keySet, &gooidc.Config{ClientID: clientID})

	cache := jwk.NewCache(ctx)
	if err := cache.Register(jwksURL,
		jwk.WithMinRefreshInterval(jwksMinRefresh),
		jwk.WithHTTPClient(client),
	); err != nil {
		return nil, fmt.Errorf("register jwks %s: %w", jwksURL, err)
	}

	return &IDTokenVerifier{
		verifier:    verifier,
		keys:        cache,
		jwksURL:     jwksURL,
		issuerHosts: issuerHosts,
	}, nil
}

// Verify checks the token's header key binding, signature, and claims.
func (v *IDTokenVerifier) Verify(ctx context.Context, t *token.AuthenticationToken, appID string) error {
	set, err := v.keys.Get(ctx, v.jwksURL)
	if err != nil {
		return newError(CodeVerification, fmt.Errorf("fetch jwks: %w", err))
	}
	if err := t.Header.EnsureKey(set); err != nil {
		return newError(CodeVerification, err)
	}

	idt, err := v.verifier.Verify(ctx, t.Raw)
	if err != nil {
		return newError(CodeVerification, err)
	}
	if idt.Nonce != t.ExpectedNonce {
		return newError(CodeNonceMismatch, nil)
	}

	if err := t.Claims.Validate(appID, v.issuerHosts, time.Now()); err != nil {
		return newError(CodeVerification, err)
	}
	return nil
}
