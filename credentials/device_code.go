package credentials

import (
	"strings"

	"github.com/jrsteele09/go-msauth/identity"
)

// DeviceCodeCredential drives the device authorization grant for
// input-constrained clients. It builds two request shapes: without a device
// code it targets the /devicecode endpoint to start the flow, and once
// WithDeviceCode is set it targets the token endpoint to redeem it. Polling
// cadence is the caller's business.
type DeviceCodeCredential struct {
	clientID      string
	deviceCode    string
	scope         []string
	authority     identity.Authority
	cloudInstance identity.AzureCloudInstance
	options       RequestOptions
}

// NewDeviceCodeCredential builds a device code credential requesting scope.
func NewDeviceCodeCredential(clientID string, scope ...string) *DeviceCodeCredential {
	return &DeviceCodeCredential{
		clientID:      strings.TrimSpace(clientID),
		scope:         append([]string(nil), scope...),
		authority:     identity.AuthorityCommon,
		cloudInstance: identity.AzurePublic,
	}
}

// WithDeviceCode switches the credential to token redemption for the device
// code returned by the /devicecode endpoint.
func (c *DeviceCodeCredential) WithDeviceCode(deviceCode string) *DeviceCodeCredential {
	c.deviceCode = strings.TrimSpace(deviceCode)
	return c
}

// WithScope replaces the scope list.
func (c *DeviceCodeCredential) WithScope(scope ...string) *DeviceCodeCredential {
	c.scope = append([]string(nil), scope...)
	return c
}

// WithTenant signs in against a specific directory tenant.
func (c *DeviceCodeCredential) WithTenant(tenantID string) *DeviceCodeCredential {
	c.authority = identity.TenantAuthority(tenantID)
	return c
}

// WithAuthority sets the directory realm.
func (c *DeviceCodeCredential) WithAuthority(authority identity.Authority) *DeviceCodeCredential {
	c.authority = authority
	return c
}

// WithCloudInstance targets a national cloud.
func (c *DeviceCodeCredential) WithCloudInstance(instance identity.AzureCloudInstance) *DeviceCodeCredential {
	c.cloudInstance = instance
	return c
}

// WithRequestOptions sets transport extras applied by the executor.
func (c *DeviceCodeCredential) WithRequestOptions(options RequestOptions) *DeviceCodeCredential {
	c.options = options
	return c
}

// TargetURI returns the /devicecode endpoint until a device code is held,
// the token endpoint afterwards.
func (c *DeviceCodeCredential) TargetURI() (string, error) {
	if c.deviceCode == "" {
		return c.cloudInstance.DeviceCodeEndpoint(c.authority), nil
	}
	return c.cloudInstance.TokenEndpoint(c.authority), nil
}

// FormBody validates the credential and encodes whichever request the
// credential is currently in: the device authorization request or the token
// redemption.
func (c *DeviceCodeCredential) FormBody() (string, error) {
	if c.clientID == "" {
		return "", identity.MissingRequiredValue("client_id")
	}

	serializer := identity.NewSerializer().ClientID(c.clientID)

	var body strings.Builder
	if c.deviceCode == "" {
		if len(c.scope) == 0 {
			return "", identity.MissingRequiredValue("scope")
		}
		serializer.Scope(c.scope)

		err := serializer.Encode(
			[]identity.AuthParameter{
				identity.ClientIDParameter,
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

	serializer.GrantType(identity.GrantTypeDeviceCode)
	serializer.DeviceCode(c.deviceCode)

	err := serializer.Encode(
		[]identity.AuthParameter{
			identity.ClientIDParameter,
			identity.GrantTypeParameter,
			identity.DeviceCodeParameter,
		},
		nil,
		&body,
	)
	if err != nil {
		return "", err
	}
	return body.String(), nil
}

// BasicAuth reports no Basic-Auth pair: device code clients are public.
func (c *DeviceCodeCredential) BasicAuth() (string, string, bool) {
	return "", "", false
}

// Options returns the transport extras configured for this credential.
func (c *DeviceCodeCredential) Options() RequestOptions {
	return c.options
}

func (c *DeviceCodeCredential) isCredential() {}
