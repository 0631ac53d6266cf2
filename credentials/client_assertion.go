package credentials

import (
	"strings"

	"github.com/jrsteele09/go-msauth/identity"
)

// ClientAssertionCredential is the client_credentials grant authenticated by
// a caller-supplied signed JWT assertion instead of a shared secret. Use
// ClientCertificateCredential when this package should sign the assertion
// from certificate material.
type ClientAssertionCredential struct {
	clientID      string
	assertion     string
	scope         []string
	authority     identity.Authority
	cloudInstance identity.AzureCloudInstance
	options       RequestOptions
}

// NewClientAssertionCredential builds a credential around signedAssertion.
// The assertion's aud claim must name the token endpoint the credential ends
// up targeting.
func NewClientAssertionCredential(clientID, signedAssertion string) *ClientAssertionCredential {
	return &ClientAssertionCredential{
		clientID:      strings.TrimSpace(clientID),
		assertion:     strings.TrimSpace(signedAssertion),
		authority:     identity.AuthorityCommon,
		cloudInstance: identity.AzurePublic,
	}
}

// WithScope replaces the scope list. Unset, DefaultM2MScope is sent.
func (c *ClientAssertionCredential) WithScope(scope ...string) *ClientAssertionCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *ClientAssertionCredential) WithTenant(tenantID string) *ClientAssertionCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm.
func (c *ClientAssertionCredential) WithAuthority(authority identity.Authority) *ClientAssertionCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *ClientAssertionCredential) WithCloudInstance(instance identity.AzureCloudInstance) *ClientAssertionCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *ClientAssertionCredential) WithRequestOptions(options RequestOptions) *ClientAssertionCredential {
	c.options = options
	return c
}

// TargetURI returns the token endpoint for this credential's authority.
func (c *ClientAssertionCredential) TargetURI() (string, error) {
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody validates the credential and encodes the token request body.
func (c *ClientAssertionCredential) FormBody() (string, error) {
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}
	if c.assertion == "" {
		return "", identity.MissingRequiredValue("client_assertion")
	}

	scope := c.scope
	if len(scope) == 0 {
		scope = []string{DefaultM2MScope}
	}

	serializer := identity.NewSerializer().
		ClientID(c.clientID).
		ClientAssertionType(identity.ClientAssertionType).
		ClientAssertion(c.assertion).
		Scope(scope).
		GrantType(identity.GrantTypeClientCredentials)

	var body strings.Builder
	err := serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.ClientAssertionTypeParameter,
			identity.ClientAssertionParameter,
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

// BasicAuth reports no Basic-Auth pair: assertion grants carry no shared
// secret.
func (c *ClientAssertionCredential) BasicAuth() (string, string, bool) {
	return "", "", false
}

// Options returns the transport extras configured for this credential.
func (c *ClientAssertionCredential) Options() RequestOptions {
	return c.options
}

func (c *ClientAssertionCredential) isCredential() {}
