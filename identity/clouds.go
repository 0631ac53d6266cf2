package identity

// AzureCloudInstance selects the national-cloud login host that authorization
// and token requests are issued against. The value is the base URL of the host.
type AzureCloudInstance string

const (
	// AzurePublic is the worldwide Microsoft identity platform cloud.
	// Used in: almost every deployment; the default when no instance is set.
	AzurePublic AzureCloudInstance = "https://login.microsoftonline.com"

	// AzureChina is the Microsoft Azure operated by 21Vianet cloud.
	AzureChina AzureCloudInstance = "https://login.chinacloudapi.cn"

	// AzureGermany is the legacy Microsoft Cloud Germany instance.
	AzureGermany AzureCloudInstance = "https://login.microsoftonline.de"

	// AzureUsGovernment is the US Government (GCC High / DoD) cloud.
	AzureUsGovernment AzureCloudInstance = "https://login.microsoftonline.us"
)

const (
	authorizeSuffix  = "oauth2/v2.0/authorize"
	tokenSuffix      = "oauth2/v2.0/token"
	deviceCodeSuffix = "oauth2/v2.0/devicecode"
)

func (aci AzureCloudInstance) host() string {
	if aci == "" {
		return string(AzurePublic)
	}
	return string(aci)
}

// AuthorizationEndpoint returns the /authorize endpoint for the given
// authority on this cloud instance. Pure string composition, no network access.
func (aci AzureCloudInstance) AuthorizationEndpoint(authority Authority) string {
	return aci.host() + "/" + authority.TenantSegment() + "/" + authorizeSuffix
}

// TokenEndpoint returns the /token endpoint for the given authority on this
// cloud instance.
func (aci AzureCloudInstance) TokenEndpoint(authority Authority) string {
	return aci.host() + "/" + authority.TenantSegment() + "/" + tokenSuffix
}

// DeviceCodeEndpoint returns the /devicecode endpoint used to start the device
// authorization grant.
func (aci AzureCloudInstance) DeviceCodeEndpoint(authority Authority) string {
	return aci.host() + "/" + authority.TenantSegment() + "/" + deviceCodeSuffix
}

// Issuer returns the v2.0 issuer URL for the given authority, the base of
// OpenID Connect discovery. Tokens issued through a shared audience carry the
// signing tenant's id here instead of the audience segment.
func (aci AzureCloudInstance) Issuer(authority Authority) string {
	return aci.host() + "/" + authority.TenantSegment() + "/v2.0"
}
