package identity

import (
	"sort"
	"strings"
)

// ResponseType represents the OAuth 2.0 response type requested from the
// authorization endpoint. Determines which artifacts the redirect carries.
type ResponseType string

const (
	// ResponseTypeCode requests an authorization code.
	// Used in: Authorization Code Flow (with or without PKCE)
	// The code is exchanged for tokens at the token endpoint.
	ResponseTypeCode ResponseType = "code"

	// ResponseTypeIDToken requests an ID token directly from the
	// authorization endpoint.
	// Used in: OpenID Connect hybrid and implicit flows
	// Security: the platform refuses to deliver an id_token in the query
	// string, so requesting it forces fragment delivery unless form_post is
	// set explicitly.
	ResponseTypeIDToken ResponseType = "id_token"

	// ResponseTypeToken requests an access token directly from the
	// authorization endpoint.
	// Used in: Implicit Flow (legacy SPAs)
	ResponseTypeToken ResponseType = "token"
)

// joinResponseTypes renders a response type set space-joined in canonical
// order (code < id_token < token), deduplicated. An empty set renders as
// "code".
func joinResponseTypes(set []ResponseType) string {
	if len(set) == 0 {
		return string(ResponseTypeCode)
	}
	seen := make(map[ResponseType]struct{}, len(set))
	ordered := make([]string, 0, len(set))
	for _, rt := range set {
		if _, ok := seen[rt]; ok {
			continue
		}
		seen[rt] = struct{}{}
		ordered = append(ordered, string(rt))
	}
	sort.Strings(ordered)
	return strings.Join(ordered, " ")
}

// ResponseMode denotes how the authorization response parameters travel back
// to the redirect URI.
type ResponseMode string

const (
	// ResponseModeQuery returns parameters in the URL query string.
	// Example: https://client.example.com/callback?code=ABC123&state=xyz
	ResponseModeQuery ResponseMode = "query"

	// ResponseModeFragment returns parameters in the URL fragment (after #).
	// Required by the platform whenever an id_token is delivered from the
	// authorization endpoint.
	ResponseModeFragment ResponseMode = "fragment"

	// ResponseModeFormPost returns parameters via an auto-submitting HTML
	// form POST to the redirect URI.
	// Security: keeps tokens out of URLs, browser history and server logs.
	ResponseModeFormPost ResponseMode = "form_post"
)

// Prompt controls the interactivity the authorization endpoint imposes on the
// signed-in user.
type Prompt string

const (
	// PromptNone suppresses all interactive UI; fails if interaction is
	// required.
	PromptNone Prompt = "none"

	// PromptLogin forces the user to enter credentials, negating single
	// sign-on.
	PromptLogin Prompt = "login"

	// PromptConsent forces the consent dialog even when consent was granted
	// before.
	PromptConsent Prompt = "consent"

	// PromptSelectAccount shows the account picker.
	PromptSelectAccount Prompt = "select_account"
)

// CodeChallengeMethod is the PKCE transformation applied to the code verifier.
type CodeChallengeMethod string

const (
	// CodeChallengeMethodS256 sends BASE64URL(SHA256(code_verifier)) as the
	// challenge. The only method this package generates.
	CodeChallengeMethodS256 CodeChallengeMethod = "S256"

	// CodeChallengeMethodPlain sends the verifier unhashed. Kept for parsing
	// completeness; not recommended.
	CodeChallengeMethodPlain CodeChallengeMethod = "plain"
)

// GrantType is the OAuth 2.0 grant presented to the token endpoint.
type GrantType string

const (
	// GrantTypeAuthorizationCode exchanges an authorization code for tokens.
	GrantTypeAuthorizationCode GrantType = "authorization_code"

	// GrantTypeRefreshToken exchanges a refresh token for a new token set.
	GrantTypeRefreshToken GrantType = "refresh_token"

	// GrantTypeClientCredentials is machine-to-machine authentication with a
	// shared secret, certificate, or signed assertion.
	GrantTypeClientCredentials GrantType = "client_credentials"

	// GrantTypeDeviceCode redeems a device code issued by the /devicecode
	// endpoint.
	GrantTypeDeviceCode GrantType = "urn:ietf:params:oauth:grant-type:device_code"

	// GrantTypePassword is the resource owner password credentials grant.
	// Used in: legacy trusted first-party applications only.
	GrantTypePassword GrantType = "password"
)

// ClientAssertionType is the assertion_type value for JWT client assertions,
// the only assertion format the identity platform accepts.
const ClientAssertionType = "urn:ietf:params:oauth:client-assertion-type:jwt-bearer"
