package credentials

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-msauth/identity"
)

// OpenIDAuthorizationURLBuilder assembles the /authorize URL for an OpenID
// Connect sign-in. Unlike the plain authorization code flow it always
// requests the openid scope, defaults to the code id_token hybrid response
// delivered by form POST, and requires a nonce to bind the id_token to this
// request.
type OpenIDAuthorizationURLBuilder struct {
	clientID      string
	redirectURI   string
	authority     identity.Authority
	cloudInstance identity.AzureCloudInstance
	responseTypes []identity.ResponseType
	responseMode  identity.ResponseMode
	nonce         string
	state         string
	scope         []string
	prompt        identity.Prompt
	domainHint    string
	loginHint     string
	err           error
}

// NewOpenIDAuthorizationURLBuilder starts an OpenID Connect builder for
// clientID with the platform defaults: response_type "code id_token",
// response_mode form_post.
func NewOpenIDAuthorizationURLBuilder(clientID string) *OpenIDAuthorizationURLBuilder {
	return &OpenIDAuthorizationURLBuilder{
		clientID:      strings.TrimSpace(clientID),
		authority:     identity.AuthorityCommon,
		cloudInstance: identity.AzurePublic,
		responseTypes: []identity.ResponseType{identity.ResponseTypeCode, identity.ResponseTypeIDToken},
		responseMode:  identity.ResponseModeFormPost,
	}
}

// WithRedirectURI sets where the authorization response is delivered.
func (b *OpenIDAuthorizationURLBuilder) WithRedirectURI(redirectURI string) *OpenIDAuthorizationURLBuilder {
	b.redirectURI = strings.TrimSpace(redirectURI)
	return b
}

// WithTenant signs in against a specific directory tenant.
func (b *OpenIDAuthorizationURLBuilder) WithTenant(tenantID string) *OpenIDAuthorizationURLBuilder {
	b.authority = identity.TenantAuthority(tenantID)
	return b
}

// WithAuthority sets the directory realm.
func (b *OpenIDAuthorizationURLBuilder) WithAuthority(authority identity.Authority) *OpenIDAuthorizationURLBuilder {
	b.authority = authority
	return b
}

// WithCloudInstance targets a national cloud.
func (b *OpenIDAuthorizationURLBuilder) WithCloudInstance(instance identity.AzureCloudInstance) *OpenIDAuthorizationURLBuilder {
	b.cloudInstance = instance
	return b
}

// WithResponseType replaces the default response type set.
func (b *OpenIDAuthorizationURLBuilder) WithResponseType(types ...identity.ResponseType) *OpenIDAuthorizationURLBuilder {
	b.responseTypes = append([]identity.ResponseType(nil), types...)
	return b
}

// WithResponseMode replaces the default form_post delivery.
func (b *OpenIDAuthorizationURLBuilder) WithResponseMode(mode identity.ResponseMode) *OpenIDAuthorizationURLBuilder {
	b.responseMode = mode
	return b
}

// WithNonce sets the nonce echoed back inside the id_token.
func (b *OpenIDAuthorizationURLBuilder) WithNonce(nonce string) *OpenIDAuthorizationURLBuilder {
	b.nonce = nonce
	return b
}

// WithGeneratedNonce sets a cryptographically random nonce, readable back
// with Nonce for verification against the returned id_token.
func (b *OpenIDAuthorizationURLBuilder) WithGeneratedNonce() *OpenIDAuthorizationURLBuilder {
	nonce, err := identity.GenerateNonce()
	if err != nil {
		b.err = err
		return b
	}
	b.nonce = nonce
	return b
}

// Nonce returns the nonce currently held by the builder.
func (b *OpenIDAuthorizationURLBuilder) Nonce() string {
	return b.nonce
}

// WithState sets the opaque state echoed back on the redirect.
func (b *OpenIDAuthorizationURLBuilder) WithState(state string) *OpenIDAuthorizationURLBuilder {
	b.state = state
	return b
}

// WithScope replaces the scope list. The openid scope is always included in
// the built URL whether or not it appears here.
func (b *OpenIDAuthorizationURLBuilder) WithScope(scope ...string) *OpenIDAuthorizationURLBuilder {
	b.scope = append([]string(nil), scope...)
	return b
}

// WithOfflineAccess appends the offline_access scope so the token response
// includes a refresh token.
func (b *OpenIDAuthorizationURLBuilder) WithOfflineAccess() *OpenIDAuthorizationURLBuilder {
	b.scope = append(b.scope, "offline_access")
	return b
}

// WithPrompt controls the sign-in interactivity.
func (b *OpenIDAuthorizationURLBuilder) WithPrompt(prompt identity.Prompt) *OpenIDAuthorizationURLBuilder {
	b.prompt = prompt
	return b
}

// WithDomainHint pre-selects the home realm discovery domain.
func (b *OpenIDAuthorizationURLBuilder) WithDomainHint(domainHint string) *OpenIDAuthorizationURLBuilder {
	b.domainHint = domainHint
	return b
}

// WithLoginHint pre-fills the username field.
func (b *OpenIDAuthorizationURLBuilder) WithLoginHint(loginHint string) *OpenIDAuthorizationURLBuilder {
	b.loginHint = loginHint
	return b
}

// URL validates the builder and composes the authorization URL.
func (b *OpenIDAuthorizationURLBuilder) URL() (*url.URL, error) {
	return b.URLWithHost(b.cloudInstance)
}

// URLWithHost is URL against an explicit cloud instance.
func (b *OpenIDAuthorizationURLBuilder) URLWithHost(instance identity.AzureCloudInstance) (*url.URL, error) {
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

	if b.nonce == "" {
		return nil, identity.MissingRequiredValue("nonce")
	}
	serializer.Nonce(b.nonce)

	serializer.Scope(withOpenIDScope(b.scope))
	serializer.ResponseTypes(b.responseTypes)
	if b.responseMode != "" {
		serializer.ResponseMode(b.responseMode)
	}

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

	var query strings.Builder
	err := serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.ResponseTypeParameter,
			identity.RedirectURIParameter,
			identity.ScopeParameter,
			identity.NonceParameter,
		},
		[]identity.AuthParameter{
			identity.ResponseModeParameter,
			identity.StateParameter,
			identity.PromptParameter,
			identity.LoginHintParameter,
			identity.DomainHintParameter,
		},
		&query,
	)
	if err != nil {
		return nil, err
	}

	endpoint := instance.AuthorizationEndpoint(b.authority)
	u, err := url.Parse(endpoint + "?" + query.String())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", identity.ErrMalformedURL, endpoint, err)
	}
	return u, nil
}

// Credential carries the builder's configuration into the matching
// token-exchange credential once the authorization code has been captured.
func (b *OpenIDAuthorizationURLBuilder) Credential(authorizationCode, clientSecret string) *OpenIDCredential {
	cred := NewOpenIDCredential(b.clientID, clientSecret, authorizationCode, b.redirectURI)
	cred.scope = append([]string(nil), b.scope...)
	cred.authority = b.authority
	cred.cloudInstance = b.cloudInstance
	return cred
}

// OpenIDCredential redeems an authorization code obtained through an OpenID
// Connect sign-in. The exchange matches the authorization code grant; the
// openid scope is always included so the token response carries an id_token.
type OpenIDCredential struct {
	clientID          string
	clientSecret      string
	redirectURI       string
	authorizationCode string
	codeVerifier      string
	scope             []string
	authority         identity.Authority
	cloudInstance     identity.AzureCloudInstance
	options           RequestOptions
}

// NewOpenIDCredential builds a credential for redeeming authorizationCode
// from an OpenID Connect sign-in.
func NewOpenIDCredential(clientID, clientSecret, authorizationCode, redirectURI string) *OpenIDCredential {
	return &OpenIDCredential{
		clientID:          strings.TrimSpace(clientID),
		clientSecret:      clientSecret,
		authorizationCode: authorizationCode,
		redirectURI:       strings.TrimSpace(redirectURI),
		authority:         identity.AuthorityCommon,
		cloudInstance:     identity.AzurePublic,
	}
}

// WithCodeVerifier supplies the PKCE verifier matching the code challenge the
// authorization request carried.
func (c *OpenIDCredential) WithCodeVerifier(codeVerifier string) *OpenIDCredential {
	c.codeVerifier = codeVerifier
	return c
}

// WithScope replaces the scope list. The openid scope is always sent.
func (c *OpenIDCredential) WithScope(scope ...string) *OpenIDCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *OpenIDCredential) WithTenant(tenantID string) *OpenIDCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm.
func (c *OpenIDCredential) WithAuthority(authority identity.Authority) *OpenIDCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *OpenIDCredential) WithCloudInstance(instance identity.AzureCloudInstance) *OpenIDCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *OpenIDCredential) WithRequestOptions(options RequestOptions) *OpenIDCredential {
	c.options = options
	return c
}

// AuthorizationURLBuilder returns an OpenID URL builder seeded with this
// credential's application parameters. The nonce is the caller's to set
// before building.
func (c *OpenIDCredential) AuthorizationURLBuilder() *OpenIDAuthorizationURLBuilder {
	return NewOpenIDAuthorizationURLBuilder(c.clientID).
		WithRedirectURI(c.redirectURI).
		WithAuthority(c.authority).
		WithCloudInstance(c.cloudInstance).
		WithScope(c.scope...)
}

// TargetURI returns the token endpoint for this credential's authority.
func (c *OpenIDCredential) TargetURI() (string, error) {
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody validates the credential and encodes the token request body.
func (c *OpenIDCredential) FormBody() (string, error) {
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}
	if strings.TrimSpace(c.clientSecret) == "" {
		return "", identity.MissingRequiredValue("client_secret")
	}
	if strings.TrimSpace(c.authorizationCode) == "" {
		return "", identity.MissingRequiredValue("authorization_code")
	}
	if c.redirectURI == "" {
		return "", identity.MissingRequiredValue("redirect_uri")
	}

	serializer := identity.NewSerializer().
		ClientID(c.clientID).
		ClientSecret(c.clientSecret).
		RedirectURI(c.redirectURI).
		AuthorizationCode(c.authorizationCode).
		GrantType(identity.GrantTypeAuthorizationCode).
		Scope(withOpenIDScope(c.scope))
	if c.codeVerifier != "" {
		serializer.CodeVerifier(c.codeVerifier)
	}

	var body strings.Builder
	err := serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.ClientSecretParameter,
			identity.RedirectURIParameter,
			identity.AuthorizationCodeParameter,
			identity.GrantTypeParameter,
		},
		[]identity.AuthParameter{
			identity.ScopeParameter,
			identity.CodeVerifierParameter,
		},
		&body,
	)
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

// BasicAuth always offers the id/secret pair for this grant.
func (c *OpenIDCredential) BasicAuth() (string, string, bool) {
	return c.clientID, c.clientSecret, true
}

// Options returns the transport extras configured for this credential.
func (c *OpenIDCredential) Options() RequestOptions {
	return c.options
}

func (c *OpenIDCredential) isCredential() {}

// withOpenIDScope returns scope with "openid" prepended unless already
// present.
func withOpenIDScope(scope []string) []string {
	for _, s := range scope {
		if s == "openid" {
			return scope
		}
	}
	return append([]string{"openid"}, scope...)
}
