package credentials

import (
	"strings"

	"github.com/jrsteele09/go-msauth/identity"
)

// AuthorizationCodeCredential redeems an authorization code, or a refresh
// token obtained from an earlier redemption, at the token endpoint. The two
// are mutually exclusive on one credential: setting a refresh token clears
// any held code.
type AuthorizationCodeCredential struct {
	clientID          string
	clientSecret      string
	redirectURI       string
	authorizationCode string
	refreshToken      string
	codeVerifier      string
	scope             []string
	authority         identity.Authority
	cloudInstance     identity.AzureCloudInstance
	options           RequestOptions
}

// NewAuthorizationCodeCredential builds a credential for redeeming
// authorizationCode against the common authority on the public cloud.
func NewAuthorizationCodeCredential(clientID, clientSecret, authorizationCode, redirectURI string) *AuthorizationCodeCredential {
	return &AuthorizationCodeCredential{
		clientID:          strings.TrimSpace(clientID),
		clientSecret:      clientSecret,
		authorizationCode: authorizationCode,
		redirectURI:       strings.TrimSpace(redirectURI),
		authority:         identity.AuthorityCommon,
		cloudInstance:     identity.AzurePublic,
	}
}

// WithRefreshToken switches this credential to the refresh grant. The held
// authorization code is cleared; the two fields are never sent together.
func (c *AuthorizationCodeCredential) WithRefreshToken(refreshToken string) *AuthorizationCodeCredential {
	c.authorizationCode = ""
	c.refreshToken = refreshToken
	return c
}

// WithCodeVerifier supplies the PKCE verifier matching the code challenge the
// authorization request carried.
func (c *AuthorizationCodeCredential) WithCodeVerifier(codeVerifier string) *AuthorizationCodeCredential {
	c.codeVerifier = codeVerifier
	return c
}

// WithScope replaces the scope list sent with the exchange.
func (c *AuthorizationCodeCredential) WithScope(scope ...string) *AuthorizationCodeCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *AuthorizationCodeCredential) WithTenant(tenantID string) *AuthorizationCodeCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm.
func (c *AuthorizationCodeCredential) WithAuthority(authority identity.Authority) *AuthorizationCodeCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *AuthorizationCodeCredential) WithCloudInstance(instance identity.AzureCloudInstance) *AuthorizationCodeCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *AuthorizationCodeCredential) WithRequestOptions(options RequestOptions) *AuthorizationCodeCredential {
	c.options = options
	return c
}

// AuthorizationURLBuilder returns a URL builder seeded with this credential's
// application parameters, for composing the authorization request whose code
// this credential will redeem.
func (c *AuthorizationCodeCredential) AuthorizationURLBuilder() *AuthorizationCodeURLBuilder {
	return NewAuthorizationCodeURLBuilder(c.clientID).
		WithRedirectURI(c.redirectURI).
		WithAuthority(c.authority).
		WithCloudInstance(c.cloudInstance).
		WithScope(c.scope...)
}

// TargetURI returns the token endpoint for this credential's authority.
func (c *AuthorizationCodeCredential) TargetURI() (string, error) {
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody validates the credential and encodes the token request body.
//
// The consistency check comes first: both fields set means a caller bypassed
// WithRefreshToken's clearing behavior, and no request is produced. Then the
// shared fields, then the branch-specific required/optional table.
func (c *AuthorizationCodeCredential) FormBody() (string, error) {
	if c.authorizationCode != "" && c.refreshToken != "" {
		return "", identity.ConflictingValues("authorization_code", "refresh_token")
	}
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}
	if strings.TrimSpace(c.clientSecret) == "" {
		return "", identity.MissingRequiredValue("client_secret")
	}

	serializer := identity.NewSerializer().
		ClientID(c.clientID).
		ClientSecret(c.clientSecret)
	if len(c.scope) > 0 {
		serializer.Scope(c.scope)
	}

	var body strings.Builder
	switch {
	case c.refreshToken != "":
		if strings.TrimSpace(c.refreshToken) == "" {
			return "", identity.MissingRequiredValue("refresh_token")
		}
		serializer.RefreshToken(c.refreshToken)
		serializer.GrantType(identity.GrantTypeRefreshToken)

		err := serializer.Encode(
			[]identity.AuthParameter{
				identity.ClientIDParameter,
				identity.ClientSecretParameter,
				identity.RefreshTokenParameter,
				identity.GrantTypeParameter,
			},
			[]identity.AuthParameter{identity.ScopeParameter},
			&body,
		)
		if err != nil {
			return "", err
		}

	case c.authorizationCode != "":
		if strings.TrimSpace(c.authorizationCode) == "" {
			return "", identity.MissingRequiredValue("authorization_code")
		}
		if c.redirectURI == "" {
			return "", identity.MissingRequiredValue("redirect_uri")
		}
		serializer.AuthorizationCode(c.authorizationCode)
		serializer.RedirectURI(c.redirectURI)
		serializer.GrantType(identity.GrantTypeAuthorizationCode)
		if c.codeVerifier != "" {
			serializer.CodeVerifier(c.codeVerifier)
		}

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

	default:
		return "", identity.MissingRequiredValue("authorization_code or refresh_token")
	}

	return body.String(), nil
}

// BasicAuth always offers the id/secret pair so the transport can use HTTP
// Basic authentication. The body carries client_secret as well; the platform
// accepts the duplication.
func (c *AuthorizationCodeCredential) BasicAuth() (string, string, bool) {
	return c.clientID, c.clientSecret, true
}

// Options returns the transport extras configured for this credential.
func (c *AuthorizationCodeCredential) Options() RequestOptions {
	return c.options
}

func (c *AuthorizationCodeCredential) isCredential() {}
