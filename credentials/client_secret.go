package credentials

import (
	"strings"

	"github.com/jrsteele09/go-msauth/identity"
)

// DefaultM2MScope is the scope applied to machine-to-machine grants when the
// caller sets none. The /.default suffix asks for every application
// permission granted to the client.
const DefaultM2MScope = "https://graph.microsoft.com/.default"

// ClientSecretCredential is the client_credentials grant with a shared
// secret: service-to-service authentication with no user involved.
type ClientSecretCredential struct {
	clientID      string
	clientSecret  string
	scope         []string
	authority     identity.Authority
	cloudInstance identity.AzureCloudInstance
	options       RequestOptions
}

// NewClientSecretCredential builds a client-credentials credential. Most
// tenants require a specific tenant authority for this grant; WithTenant
// should follow.
func NewClientSecretCredential(clientID, clientSecret string) *ClientSecretCredential {
	return &ClientSecretCredential{
		clientID:      strings.TrimSpace(clientID),
		clientSecret:  clientSecret,
		authority:     identity.AuthorityCommon,
		cloudInstance: identity.AzurePublic,
	}
}

// WithScope replaces the scope list. Unset, DefaultM2MScope is sent.
func (c *ClientSecretCredential) WithScope(scope ...string) *ClientSecretCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *ClientSecretCredential) WithTenant(tenantID string) *ClientSecretCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm.
func (c *ClientSecretCredential) WithAuthority(authority identity.Authority) *ClientSecretCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *ClientSecretCredential) WithCloudInstance(instance identity.AzureCloudInstance) *ClientSecretCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *ClientSecretCredential) WithRequestOptions(options RequestOptions) *ClientSecretCredential {
	c.options = options
	return c
}

// TargetURI returns the token endpoint for this credential's authority.
func (c *ClientSecretCredential) TargetURI() (string, error) {
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody validates the credential and encodes the token request body.
func (c *ClientSecretCredential) FormBody() (string, error) {
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}
	if strings.TrimSpace(c.clientSecret) == "" {
		return "", identity.MissingRequiredValue("client_secret")
	}

	scope := c.scope
	if len(scope) == 0 {
		scope = []string{DefaultM2MScope}
	}

	serializer := identity.NewSerializer().
		ClientID(c.clientID).
		ClientSecret(c.clientSecret).
		Scope(scope).
		GrantType(identity.GrantTypeClientCredentials)

	var body strings.Builder
	err := serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.ClientSecretParameter,
			identity.GrantTypeParameter,
			identity.ScopeParameter,
		},
		nil,
		&body,
	)
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

// BasicAuth always offers the id/secret pair for this grant.
func (c *ClientSecretCredential) BasicAuth() (string, string, bool) {
	return c.clientID, c.clientSecret, true
}

// Options returns the transport extras configured for this credential.
func (c *ClientSecretCredential) Options() RequestOptions {
	return c.options
}

func (c *ClientSecretCredential) isCredential() {}
