package protocol

import (
	"fmt"
	"net/url"
	"sort"
)

// Dialog parameter names understood by the web authorization endpoint.
const (
	ParamScope               = "scope"
	ParamDefaultAudience     = "default_audience"
	ParamState               = "state"
	ParamAccessToken         = "access_token"
	ParamCBT                 = "cbt"
	ParamIES                 = "ies"
	ParamRedirectURI         = "redirect_uri"
	ParamClientID            = "client_id"
	ParamAppID               = "app_id"
	ParamE2E                 = "e2e"
	ParamResponseType        = "response_type"
	ParamNonce               = "nonce"
	ParamReturnScopes        = "return_scopes"
	ParamAuthType            = "auth_type"
	ParamLoginBehavior       = "login_behavior"
	ParamSDKVersion          = "sdk"
	ParamSSODevice           = "sso"
	ParamCCTPrefetching      = "cct_prefetching"
	ParamFxApp               = "fx_app"
	ParamSkipDedupe          = "skip_dedupe"
	ParamMessengerPageID     = "messenger_page_id"
	ParamResetMessengerState = "reset_messenger_state"
)

// Dialog redirect response parameter names.
const (
	ParamExpiresIn            = "expires_in"
	ParamDataAccessExpiration = "data_access_expiration_time"
	ParamGrantedScopes        = "granted_scopes"
	ParamDeniedScopes         = "denied_scopes"
	ParamSignedRequest        = "signed_request"
	ParamIDToken              = "id_token"
	ParamGraphDomain          = "graph_domain"
	ParamError                = "error"
	ParamErrorType            = "error_type"
	ParamErrorCode            = "error_code"
	ParamErrorMessage         = "error_message"
	ParamErrorReason          = "error_reason"
	ParamErrorDescription     = "error_description"
)

// Response type values for the dialog's response_type parameter.
const (
	ResponseTypeTokenAndSignedRequest        = "token,signed_request,graph_domain"
	ResponseTypeIDTokenAndSignedRequest      = "id_token,token,signed_request,graph_domain"
	ResponseTypeTokenSignedRequestAndScopes  = "token,signed_request,graph_domain,granted_scopes"
)

// ReturnScopesTrue asks the dialog to echo the granted scopes in the response.
const ReturnScopesTrue = "true"

// ParseRedirect parses a dialog redirect into its parameters. It accepts a
// full redirect URL carrying query and/or fragment parameters, or a bare
// query string (key=value&...). Token response types return parameters in
// the fragment, so fragment values win over query values on key collision.
func ParseRedirect(raw string) (url.Values, error) {
	if raw == "" {
		return nil, fmt.Errorf("empty redirect")
	}

	values := url.Values{}
	if u, err := url.Parse(raw); err == nil {
		if u.RawQuery != "" {
			values = u.Query()
		}
		if u.Fragment != "" {
			if frag, err := url.ParseQuery(u.EscapedFragment()); err == nil {
				for k, vs := range frag {
					values[k] = vs
				}
			}
		}
	}

	if len(values) == 0 {
		parsed, err := url.ParseQuery(raw)
		if err != nil || len(parsed) == 0 {
			return nil, fmt.Errorf("unparseable redirect %q", raw)
		}
		values = parsed
	}

	return values, nil
}

// SortedParams flattens url.Values into key-sorted pairs for stable logging.
func SortedParams(values url.Values) []KeyValue {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]KeyValue, 0, len(keys))
	for _, k := range keys {
		for _, v := range values[k] {
			result = append(result, KeyValue{Key: k, Value: v})
		}
	}
	return result
}

// KeyValue represents a single dialog parameter.
type KeyValue struct {
	Key   string
	Value string
}
