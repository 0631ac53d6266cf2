package credentials

import (
	"strings"

	"github.com/jrsteele09/go-msauth/identity"
)

// ResourceOwnerPasswordCredential is the legacy password grant: the client
// handles the user's credentials directly. The platform only allows it for
// trusted first-party scenarios, and it does not work with personal accounts
// or any form of MFA. Prefer the authorization code flow.
type ResourceOwnerPasswordCredential struct {
	clientID      string
	username      string
	password      string
	scope         []string
	authority     identity.Authority
	cloudInstance identity.AzureCloudInstance
	options       RequestOptions
}

// NewResourceOwnerPasswordCredential builds a password grant credential.
func NewResourceOwnerPasswordCredential(clientID, username, password string) *ResourceOwnerPasswordCredential {
	return &ResourceOwnerPasswordCredential{
		clientID:      strings.TrimSpace(clientID),
		username:      strings.TrimSpace(username),
		password:      password,
		authority:     identity.AuthorityOrganizations,
		cloudInstance: identity.AzurePublic,
	}
}

// WithScope replaces the scope list.
func (c *ResourceOwnerPasswordCredential) WithScope(scope ...string) *ResourceOwnerPasswordCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *ResourceOwnerPasswordCredential) WithTenant(tenantID string) *ResourceOwnerPasswordCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm. The password grant does not work
// against the consumers audience.
func (c *ResourceOwnerPasswordCredential) WithAuthority(authority identity.Authority) *ResourceOwnerPasswordCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *ResourceOwnerPasswordCredential) WithCloudInstance(instance identity.AzureCloudInstance) *ResourceOwnerPasswordCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *ResourceOwnerPasswordCredential) WithRequestOptions(options RequestOptions) *ResourceOwnerPasswordCredential {
	c.options = options
	return c
}

// TargetURI returns the token endpoint for this credential's authority.
func (c *ResourceOwnerPasswordCredential) TargetURI() (string, error) {
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody validates the credential and encodes the token request body.
func (c *ResourceOwnerPasswordCredential) FormBody() (string, error) {
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}
	if c.username == "" {
		return "", identity.MissingRequiredValue("username")
	}
	if c.password == "" {
		return "", identity.MissingRequiredValue("password")
	}

	serializer := identity.NewSerializer().
		ClientID(c.clientID).
		Username(c.username).
		Password(c.password).
		GrantType(identity.GrantTypePassword)
	if len(c.scope) > 0 {
		serializer.Scope(c.scope)
	}

	var body strings.Builder
	err := serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.GrantTypeParameter,
			identity.UsernameParameter,
			identity.PasswordParameter,
		},
		[]identity.AuthParameter{identity.ScopeParameter},
		&body,
	)
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

// BasicAuth reports no Basic-Auth pair: password grant clients are public.
func (c *ResourceOwnerPasswordCredential) BasicAuth() (string, string, bool) {
	return "", "", false
}

// Options returns the transport extras configured for this credential.
func (c *ResourceOwnerPasswordCredential) Options() RequestOptions {
	return c.options
}

func (c *ResourceOwnerPasswordCredential) isCredential() {}
