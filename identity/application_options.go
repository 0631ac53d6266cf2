package identity

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// AadAuthorityAudience names the sign-in audience in MSAL configuration
// files. It is an alternative spelling of Authority: exactly one of TenantId
// and AadAuthorityAudience may be set.
type AadAuthorityAudience string

const (
	// AudienceMyOrg restricts sign-in to the application's own tenant and
	// requires TenantId, so it never appears together with this field.
	AudienceMyOrg AadAuthorityAudience = "AzureAdMyOrg"

	// AudienceMultipleOrgs allows work or school accounts from any tenant.
	AudienceMultipleOrgs AadAuthorityAudience = "AzureAdMultipleOrgs"

	// AudienceAnyAndPersonal allows work, school and personal accounts.
	AudienceAnyAndPersonal AadAuthorityAudience = "AzureAdAndPersonalMicrosoftAccount"

	// AudiencePersonalOnly allows personal Microsoft accounts only.
	AudiencePersonalOnly AadAuthorityAudience = "PersonalMicrosoftAccount"
)

// ApplicationOptions mirrors the JSON configuration format the identity
// platform SDKs share, so app registrations exported from portal tooling load
// directly. Field names follow that format, not Go convention.
type ApplicationOptions struct {
	ClientID             string               `json:"ClientId"`
	TenantID             string               `json:"TenantId,omitempty"`
	AadAuthorityAudience AadAuthorityAudience `json:"AadAuthorityAudience,omitempty"`
	Instance             string               `json:"Instance,omitempty"`
	RedirectURI          string               `json:"RedirectUri,omitempty"`
	ClientName           string               `json:"ClientName,omitempty"`
	ClientVersion        string               `json:"ClientVersion,omitempty"`
	ClientCapabilities   []string             `json:"ClientCapabilities,omitempty"`
}

// ReadApplicationOptions decodes ApplicationOptions JSON from r.
func ReadApplicationOptions(r io.Reader) (*ApplicationOptions, error) {
	var opts ApplicationOptions
	if err := json.NewDecoder(r).Decode(&opts); err != nil {
		return nil, fmt.Errorf("decode application options: %w", err)
	}
	return &opts, nil
}

// AppConfig validates the options and converts them into an AppConfig.
func (o *ApplicationOptions) AppConfig() (*AppConfig, error) {
	cfg, err := NewAppConfig(o.ClientID)
	if err != nil {
		return nil, err
	}

	if o.TenantID != "" && o.AadAuthorityAudience != "" {
		return nil, ConflictingValues("TenantId", "AadAuthorityAudience")
	}

	switch {
	case o.TenantID != "":
		cfg.Authority = TenantAuthority(o.TenantID)
	case o.AadAuthorityAudience != "":
		authority, err := o.AadAuthorityAudience.authority()
		if err != nil {
			return nil, err
		}
		cfg.Authority = authority
	}

	if o.Instance != "" {
		instance, err := CloudInstanceForHost(o.Instance)
		if err != nil {
			return nil, err
		}
		cfg.CloudInstance = instance
	}

	if o.RedirectURI != "" {
		u, err := url.Parse(strings.TrimSpace(o.RedirectURI))
		if err != nil {
			return nil, fmt.Errorf("%w: RedirectUri %q: %v", ErrMalformedURL, o.RedirectURI, err)
		}
		cfg.RedirectURI = u
	}

	return cfg, nil
}

func (a AadAuthorityAudience) authority() (Authority, error) {
	switch a {
	case AudienceMultipleOrgs:
		return AuthorityOrganizations, nil
	case AudienceAnyAndPersonal:
		return AuthorityCommon, nil
	case AudiencePersonalOnly:
		return AuthorityConsumers, nil
	case AudienceMyOrg:
		return "", InvalidValue("AadAuthorityAudience", "AzureAdMyOrg requires TenantId instead")
	default:
		return "", InvalidValue("AadAuthorityAudience", fmt.Sprintf("unknown audience %q", string(a)))
	}
}
