package login

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/wadahiro/weblogin/internal/config"
	"github.com/wadahiro/weblogin/internal/protocol"
	"github.com/wadahiro/weblogin/internal/store"
	"github.com/wadahiro/weblogin/internal/token"
)

// stateMethod is recorded in the client state so redirects can be traced
// back to the surface that produced them.
const stateMethod = "web_login"

// The service signals user cancellation either with an OAuth access_denied
// error or with this numeric code.
const canceledServiceCode = "4201"

// CookieJar abstracts the host platform's cookie manager. Clear removes the
// vendor's dialog cookies before a fresh login; Sync flushes cookies set by
// the dialog to persistent storage after completion.
type CookieJar interface {
	Clear()
	Sync()
}

type noopCookieJar struct{}

func (noopCookieJar) Clear() {}
func (noopCookieJar) Sync()  {}

// WebHandler drives the web authorization dialog: it assembles request
// parameters, builds the dialog URL, and turns the redirect response into a
// login Result.
type WebHandler struct {
	cfg      config.AppConfig
	source   token.Source
	store    *store.Store
	cookies  CookieJar
	verifier *IDTokenVerifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewWebHandler creates a handler for the given app. verifier may be nil,
// in which case identity token claims are still validated but signatures are
// not checked. st may be nil, which disables cookie-session reuse.
func NewWebHandler(cfg config.AppConfig, st *store.Store, verifier *IDTokenVerifier) *WebHandler {
	return &WebHandler{
		cfg:      cfg,
		source:   token.SourceWebView,
		store:    st,
		cookies:  noopCookieJar{},
		verifier: verifier,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// SetCookieJar installs the platform cookie manager stand-in.
func (h *WebHandler) SetCookieJar(jar CookieJar) {
	if jar != nil {
		h.cookies = jar
	}
}

// SetSource overrides the token source recorded on granted tokens.
func (h *WebHandler) SetSource(s token.Source) {
	h.source = s
}

// SetLogger overrides the handler's logger.
func (h *WebHandler) SetLogger(l *slog.Logger) {
	if l != nil {
		h.logger = l
	}
}

// Parameters assembles the base dialog parameters for a login request.
// As a side effect it decides cookie-session reuse: the previously granted
// token is attached only when the caller's current token matches the stored
// grant; otherwise the vendor cookies are cleared.
func (h *WebHandler) Parameters(req *Request) url.Values {
	params := url.Values{}

	if len(req.Permissions) > 0 {
		scope := strings.Join(req.Permissions, ",")
		params.Set(protocol.ParamScope, scope)
		h.logExtra(protocol.ParamScope, scope)
	}

	audience := req.Audience
	if audience == "" {
		audience = AudienceFriends
	}
	params.Set(protocol.ParamDefaultAudience, string(audience))
	params.Set(protocol.ParamState, protocol.EncodeClientState(req.AuthID, stateMethod))

	// Reuse the dialog cookie session only when the caller still holds the
	// token we previously granted through it. Never log the token itself,
	// only its presence.
	previous := req.CurrentToken
	if previous != "" && h.store != nil && previous == h.store.Token(req.AppID) {
		params.Set(protocol.ParamAccessToken, previous)
		h.logExtra(protocol.ParamAccessToken, "1")
	} else {
		h.cookies.Clear()
		h.logExtra(protocol.ParamAccessToken, "0")
	}

	params.Set(protocol.ParamCBT, protocol.MillisString(h.now()))
	params.Set(protocol.ParamIES, boolFlag(h.cfg.AutoLogEvents))

	return params
}

// DialogParameters extends the base parameters with the full dialog
// vocabulary: redirect URI, app identification, response type, behavior
// flags, and family/messenger extras.
func (h *WebHandler) DialogParameters(req *Request) url.Values {
	params := h.Parameters(req)

	params.Set(protocol.ParamRedirectURI, req.RedirectURI)
	if req.FamilyLogin {
		// Family dialogs identify the app with app_id rather than the
		// legacy client_id name.
		params.Set(protocol.ParamAppID, req.AppID)
	} else {
		params.Set(protocol.ParamClientID, req.AppID)
	}

	params.Set(protocol.ParamE2E, protocol.EncodeE2E(h.now()))

	switch {
	case req.FamilyLogin:
		// Family dialogs echo the granted scopes in the token response.
		params.Set(protocol.ParamResponseType, protocol.ResponseTypeTokenSignedRequestAndScopes)
	case req.IsOpenID():
		params.Set(protocol.ParamResponseType, protocol.ResponseTypeIDTokenAndSignedRequest)
		params.Set(protocol.ParamNonce, req.Nonce)
	default:
		params.Set(protocol.ParamResponseType, protocol.ResponseTypeTokenAndSignedRequest)
	}
	params.Set(protocol.ParamReturnScopes, protocol.ReturnScopesTrue)
	params.Set(protocol.ParamAuthType, req.AuthType)
	params.Set(protocol.ParamLoginBehavior, string(req.Behavior))
	params.Set(protocol.ParamSDKVersion, fmt.Sprintf("go-%s", h.cfg.SDKVersion))
	if h.cfg.SSODevice != "" {
		params.Set(protocol.ParamSSODevice, h.cfg.SSODevice)
	}
	params.Set(protocol.ParamCCTPrefetching, boolFlag(h.cfg.TabPrefetching))

	if req.FamilyLogin {
		params.Set(protocol.ParamFxApp, req.TargetApp)
	}
	if req.SkipDedupe {
		params.Set(protocol.ParamSkipDedupe, "true")
	}
	if req.MessengerPageID != "" {
		params.Set(protocol.ParamMessengerPageID, req.MessengerPageID)
		params.Set(protocol.ParamResetMessengerState, boolFlag(req.ResetMessengerState))
	}

	return params
}

// DialogURL builds the full authorization dialog URL for the request.
func (h *WebHandler) DialogURL(req *Request) (string, error) {
	if req.AppID == "" {
		return "", newError(CodeInvalidRequest, fmt.Errorf("app id is empty"))
	}
	if req.RedirectURI == "" {
		return "", newError(CodeInvalidRequest, fmt.Errorf("redirect uri is empty"))
	}

	params := h.DialogParameters(req)

	conf := &oauth2.Config{
		ClientID:    req.AppID,
		RedirectURL: req.RedirectURI,
		Endpoint:    oauth2.Endpoint{AuthURL: h.cfg.DialogURL},
	}

	state := params.Get(protocol.ParamState)
	var opts []oauth2.AuthCodeOption
	for _, kv := range protocol.SortedParams(params) {
		switch kv.Key {
		case protocol.ParamState, protocol.ParamClientID, protocol.ParamRedirectURI:
			// AuthCodeURL emits these itself.
			continue
		}
		opts = append(opts, oauth2.SetAuthURLParam(kv.Key, kv.Value))
	}

	return conf.AuthCodeURL(state, opts...), nil
}

// Complete turns a dialog redirect into a login Result. The redirect may be
// the full redirect URL (query and/or fragment form) or a bare parameter
// string. On success the granted token string is saved for cookie-session
// reuse and dialog cookies are flushed.
func (h *WebHandler) Complete(ctx context.Context, req *Request, redirect string) *Result {
	values, err := protocol.ParseRedirect(redirect)
	if err != nil {
		return errorResult(req, newError(CodeInvalidResponse, err))
	}

	// The e2e echoed by the dialog is the one worth logging.
	e2e := values.Get(protocol.ParamE2E)
	if e2e != "" {
		h.logger.Info("web login completed", "e2e", e2e)
	}

	if result := h.completeError(req, values); result != nil {
		result.E2E = e2e
		return result
	}

	if state := values.Get(protocol.ParamState); state != "" {
		cs, err := protocol.DecodeClientState(state)
		if err != nil || cs.AuthID != req.AuthID {
			return errorResult(req, newError(CodeInvalidResponse,
				fmt.Errorf("redirect state does not match request")))
		}
	}

	accessToken, err := token.FromWebResponse(req.Permissions, values, h.source, req.AppID)
	if err != nil {
		return errorResult(req, newError(CodeMissingToken, err))
	}

	var authToken *token.AuthenticationToken
	if req.IsOpenID() {
		authToken, err = token.NewAuthenticationToken(values.Get(protocol.ParamIDToken), req.Nonce)
		if err != nil {
			return errorResult(req, newError(CodeInvalidIDToken, err))
		}
		// Claims are checked locally even without a verifier; signature
		// verification needs the key set, expiry and audience do not.
		if err := authToken.Claims.Validate(req.AppID, h.cfg.IssuerHosts, h.now()); err != nil {
			return errorResult(req, newError(CodeInvalidIDToken, err))
		}
		if h.verifier != nil {
			if err := h.verifier.Verify(ctx, authToken, req.AppID); err != nil {
				var le *Error
				if !errors.As(err, &le) {
					le = newError(CodeVerification, err)
				}
				return errorResult(req, le)
			}
		}
	}

	// Flush cookies set by the dialog, then remember the grant so the next
	// login can reuse the cookie session.
	h.cookies.Sync()
	h.saveGrant(req.AppID, accessToken)

	result := successResult(req, accessToken, authToken)
	result.E2E = e2e
	return result
}

// completeError maps error parameters in the redirect to a cancel or error
// result. It returns nil when the redirect carries no error.
func (h *WebHandler) completeError(req *Request, values url.Values) *Result {
	errCode := values.Get(protocol.ParamError)
	if errCode == "" {
		errCode = values.Get(protocol.ParamErrorType)
	}
	serviceCode := values.Get(protocol.ParamErrorCode)
	if errCode == "" && serviceCode == "" {
		return nil
	}

	reason := values.Get(protocol.ParamErrorReason)
	message := values.Get(protocol.ParamErrorMessage)
	if message == "" {
		message = values.Get(protocol.ParamErrorDescription)
	}

	if isUserCancellation(errCode, reason, serviceCode) {
		return cancelResult(req)
	}

	if message == "" {
		message = errCode
	}
	return errorResult(req, newServiceError(serviceCode, message))
}

func isUserCancellation(errCode, reason, serviceCode string) bool {
	return errCode == "access_denied" ||
		errCode == "OAuthAccessDeniedException" ||
		reason == "user_denied" ||
		serviceCode == canceledServiceCode
}

func (h *WebHandler) saveGrant(appID string, at *token.AccessToken) {
	if h.store == nil {
		return
	}
	ttl := h.cfg.TokenCacheTTL
	if !at.Expires.IsZero() {
		if until := time.Until(at.Expires); ttl <= 0 || until < ttl {
			ttl = until
		}
	}
	if ttl > 0 {
		h.store.SaveTokenFor(appID, at.Token, ttl)
		return
	}
	h.store.SaveToken(appID, at.Token)
}

func (h *WebHandler) logExtra(key, value string) {
	h.logger.Debug("dialog parameter", "key", key, "value", value)
}

func boolFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
