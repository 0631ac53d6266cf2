package credentials

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-msauth/identity"
)

// Encode order for the /authorize query. The required block is emitted first,
// then whichever optional parameters are present, in exactly this order.
var (
	requiredAuthorizationParameters = []identity.AuthParameter{
		identity.ClientIDParameter,
		identity.ResponseTypeParameter,
		identity.RedirectURIParameter,
		identity.ScopeParameter,
	}
	optionalAuthorizationParameters = []identity.AuthParameter{
		identity.ResponseModeParameter,
		identity.StateParameter,
		identity.PromptParameter,
		identity.LoginHintParameter,
		identity.DomainHintParameter,
		identity.NonceParameter,
		identity.CodeChallengeParameter,
		identity.CodeChallengeMethodParameter,
	}
)

// AuthorizationCodeURLBuilder assembles the /authorize redirect URL for the
// authorization code grant. Setters only record values; URL performs all
// validation in one pass and either returns a complete URL or an error naming
// the first offending field. A builder is single-use: do not mutate it after
// building.
type AuthorizationCodeURLBuilder struct {
	clientID            string
	redirectURI         string
	authority           identity.Authority
	cloudInstance       identity.AzureCloudInstance
	responseTypes       []identity.ResponseType
	responseMode        identity.ResponseMode
	nonce               string
	state               string
	scope               []string
	prompt              identity.Prompt
	domainHint          string
	loginHint           string
	codeChallenge       string
	codeChallengeMethod identity.CodeChallengeMethod
	err                 error
}

// NewAuthorizationCodeURLBuilder starts a builder for clientID against the
// common authority on the public cloud.
func NewAuthorizationCodeURLBuilder(clientID string) *AuthorizationCodeURLBuilder {
	return &AuthorizationCodeURLBuilder{
		clientID:      strings.TrimSpace(clientID),
		authority:     identity.AuthorityCommon,
		cloudInstance: identity.AzurePublic,
	}
}

// WithRedirectURI sets where the authorization response is delivered.
func (b *AuthorizationCodeURLBuilder) WithRedirectURI(redirectURI string) *AuthorizationCodeURLBuilder {
	b.redirectURI = strings.TrimSpace(redirectURI)
	return b
}

// WithTenant signs in against a specific directory tenant.
func (b *AuthorizationCodeURLBuilder) WithTenant(tenantID string) *AuthorizationCodeURLBuilder {
	b.authority = identity.TenantAuthority(tenantID)
	return b
}

// WithAuthority sets the directory realm.
func (b *AuthorizationCodeURLBuilder) WithAuthority(authority identity.Authority) *AuthorizationCodeURLBuilder {
	b.authority = authority
	return b
}

// WithCloudInstance targets a national cloud.
func (b *AuthorizationCodeURLBuilder) WithCloudInstance(instance identity.AzureCloudInstance) *AuthorizationCodeURLBuilder {
	b.cloudInstance = instance
	return b
}

// WithResponseType adds response types to the requested set. The rendered
// value is space-joined in canonical order regardless of call order.
func (b *AuthorizationCodeURLBuilder) WithResponseType(types ...identity.ResponseType) *AuthorizationCodeURLBuilder {
	b.responseTypes = append(b.responseTypes, types...)
	return b
}

// WithResponseMode sets how the response travels back. When the response type
// set includes id_token, query delivery is refused by the platform and the
// mode is forced to fragment unless an explicit non-query mode is given.
func (b *AuthorizationCodeURLBuilder) WithResponseMode(mode identity.ResponseMode) *AuthorizationCodeURLBuilder {
	b.responseMode = mode
	return b
}

// WithNonce sets the nonce echoed back inside an id_token.
func (b *AuthorizationCodeURLBuilder) WithNonce(nonce string) *AuthorizationCodeURLBuilder {
	b.nonce = nonce
	return b
}

// WithGeneratedNonce sets a cryptographically random nonce. The stored value
// can be read back with Nonce for later verification against the id_token.
func (b *AuthorizationCodeURLBuilder) WithGeneratedNonce() *AuthorizationCodeURLBuilder {
	nonce, err := identity.GenerateNonce()
	if err != nil {
		b.err = err
		return b
	}
	b.nonce = nonce
	return b
}

// Nonce returns the nonce currently held by the builder.
func (b *AuthorizationCodeURLBuilder) Nonce() string {
	return b.nonce
}

// WithState sets the opaque state echoed back on the redirect.
func (b *AuthorizationCodeURLBuilder) WithState(state string) *AuthorizationCodeURLBuilder {
	b.state = state
	return b
}

// WithScope replaces the scope list.
func (b *AuthorizationCodeURLBuilder) WithScope(scope ...string) *AuthorizationCodeURLBuilder {
	b.scope = append([]string(nil), scope...)
	return b
}

// WithOfflineAccess appends the offline_access scope so the token response
// includes a refresh token.
func (b *AuthorizationCodeURLBuilder) WithOfflineAccess() *AuthorizationCodeURLBuilder {
	b.scope = append(b.scope, "offline_access")
	return b
}

// WithPrompt controls the sign-in interactivity.
func (b *AuthorizationCodeURLBuilder) WithPrompt(prompt identity.Prompt) *AuthorizationCodeURLBuilder {
	b.prompt = prompt
	return b
}

// WithDomainHint pre-selects the home realm discovery domain.
func (b *AuthorizationCodeURLBuilder) WithDomainHint(domainHint string) *AuthorizationCodeURLBuilder {
	b.domainHint = domainHint
	return b
}

// WithLoginHint pre-fills the username field.
func (b *AuthorizationCodeURLBuilder) WithLoginHint(loginHint string) *AuthorizationCodeURLBuilder {
	b.loginHint = loginHint
	return b
}

// WithCodeChallenge sets the PKCE code challenge.
func (b *AuthorizationCodeURLBuilder) WithCodeChallenge(codeChallenge string) *AuthorizationCodeURLBuilder {
	b.codeChallenge = codeChallenge
	return b
}

// WithCodeChallengeMethod sets the PKCE challenge method.
func (b *AuthorizationCodeURLBuilder) WithCodeChallengeMethod(method identity.CodeChallengeMethod) *AuthorizationCodeURLBuilder {
	b.codeChallengeMethod = method
	return b
}

// WithProofKey applies a generated PKCE pair: its challenge and method travel
// on the authorization URL, the caller keeps the verifier for the token
// exchange.
func (b *AuthorizationCodeURLBuilder) WithProofKey(proofKey *identity.ProofKeyCodeExchange) *AuthorizationCodeURLBuilder {
	b.codeChallenge = proofKey.Challenge
	b.codeChallengeMethod = proofKey.Method
	return b
}

// URL validates the builder and composes the authorization URL on the
// builder's cloud instance.
func (b *AuthorizationCodeURLBuilder) URL() (*url.URL, error) {
	return b.URLWithHost(b.cloudInstance)
}

// URLWithHost is URL against an explicit cloud instance, for reusing one
// builder across clouds.
//
// Validation is fail-fast in a fixed order: redirect_uri, client_id (a
// non-nil UUID), a non-empty scope list, and no "openid" scope. Requesting
// openid here would produce a token this flow cannot finish; that is
// OpenIDCredential's job.
func (b *AuthorizationCodeURLBuilder) URLWithHost(instance identity.AzureCloudInstance) (*url.URL, error) {
	if b.err != nil {
		return nil, b.err
	}

	serializer := identity.NewSerializer()

	if b.redirectURI == "" {
		return nil, identity.MissingRequiredValue("redirect_uri")
	}
	serializer.RedirectURI(b.redirectURI)

	if id, err := uuid.Parse(b.clientID); err != nil || id == uuid.Nil {
		return nil, identity.MissingRequiredValue("client_id")
	}
	serializer.ClientID(b.clientID)

	if len(b.scope) == 0 {
		return nil, identity.MissingRequiredValue("scope")
	}
	for _, s := range b.scope {
		if s == "openid" {
			return nil, identity.InvalidValue("openid",
				"scope openid is not valid for the authorization code flow - use OpenIDCredential instead")
		}
	}
	serializer.Scope(b.scope)

	b.resolveResponseParameters(serializer)

	if b.state != "" {
		serializer.State(b.state)
	}
	if b.prompt != "" {
		serializer.Prompt(b.prompt)
	}
	if b.loginHint != "" {
		serializer.LoginHint(b.loginHint)
	}
	if b.domainHint != "" {
		serializer.DomainHint(b.domainHint)
	}
	if b.nonce != "" {
		serializer.Nonce(b.nonce)
	}
	if b.codeChallenge != "" {
		serializer.CodeChallenge(b.codeChallenge)
	}
	if b.codeChallengeMethod != "" {
		serializer.CodeChallengeMethod(b.codeChallengeMethod)
	}

	var query strings.Builder
	if err := serializer.Encode(requiredAuthorizationParameters, optionalAuthorizationParameters, &query); err != nil {
		return nil, err
	}

	endpoint := instance.AuthorizationEndpoint(b.authority)
	u, err := url.Parse(endpoint + "?" + query.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", identity.ErrMalformedURL, endpoint, err)
	}
	return u, nil
}

// resolveResponseParameters applies the platform's response_type and
// response_mode interaction: an empty set defaults to code with the mode
// passed through, and a set containing id_token rejects query delivery.
func (b *AuthorizationCodeURLBuilder) resolveResponseParameters(serializer *identity.Serializer) {
	if len(b.responseTypes) == 0 {
		serializer.ResponseTypes([]identity.ResponseType{identity.ResponseTypeCode})
		if b.responseMode != "" {
			serializer.ResponseMode(b.responseMode)
		}
		return
	}

	serializer.ResponseTypes(b.responseTypes)

	if containsResponseType(b.responseTypes, identity.ResponseTypeIDToken) {
		if b.responseMode == "" || b.responseMode == identity.ResponseModeQuery {
			serializer.ResponseMode(identity.ResponseModeFragment)
		} else {
			serializer.ResponseMode(b.responseMode)
		}
		return
	}

	if b.responseMode != "" {
		serializer.ResponseMode(b.responseMode)
	}
}

func containsResponseType(set []identity.ResponseType, want identity.ResponseType) bool {
	for _, rt := range set {
		if rt == want {
			return true
		}
	}
	return false
}

// Credential carries the builder's client id, redirect URI, scope, authority
// and cloud instance into the matching token-exchange credential once the
// authorization code has been captured. The PKCE verifier, if one was used,
// still needs to be supplied with WithCodeVerifier.
func (b *AuthorizationCodeURLBuilder) Credential(authorizationCode, clientSecret string) *AuthorizationCodeCredential {
	cred := NewAuthorizationCodeCredential(b.clientID, clientSecret, authorizationCode, b.redirectURI)
	cred.scope = append([]string(nil), b.scope...)
	cred.authority = b.authority
	cred.cloudInstance = b.cloudInstance
	return cred
}
