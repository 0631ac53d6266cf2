package identity

import (
	"fmt"
	"net/url"
	"strings"
)

// allowedAuthorityHosts are the login hosts the identity platform operates
// across its clouds. Custom authority URLs are restricted to this set so a
// mistyped or hostile host cannot receive client secrets.
var allowedAuthorityHosts = map[string]struct{}{
	"login.microsoftonline.com":      {},
	"login.windows.net":              {},
	"login.microsoft.com":            {},
	"sts.windows.net":                {},
	"login.partner.microsoftonline.cn": {},
	"login.chinacloudapi.cn":         {},
	"login.microsoftonline.de":       {},
	"login.microsoftonline.us":       {},
	"login.usgovcloudapi.net":        {},
}

// ValidateAuthorityHost checks that rawURL names one of the known identity
// platform login hosts over https.
func ValidateAuthorityHost(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	if u.Scheme != "https" {
		return InvalidValue("authority_host", "https is required")
	}
	host := strings.ToLower(u.Hostname())
	if _, ok := allowedAuthorityHosts[host]; !ok {
		return InvalidValue("authority_host", fmt.Sprintf("%q is not a known login host", host))
	}
	return nil
}

// CloudInstanceForHost maps a validated authority host URL to its cloud
// instance. Hosts outside the sovereign clouds resolve to AzurePublic.
func CloudInstanceForHost(rawURL string) (AzureCloudInstance, error) {
	if err := ValidateAuthorityHost(rawURL); err != nil {
		return "", err
	}
	u, _ := url.Parse(strings.TrimSpace(rawURL))
	switch strings.ToLower(u.Hostname()) {
	case "login.chinacloudapi.cn", "login.partner.microsoftonline.cn":
		return AzureChina, nil
	case "login.microsoftonline.de":
		return AzureGermany, nil
	case "login.microsoftonline.us", "login.usgovcloudapi.net":
		return AzureUsGovernment, nil
	default:
		return AzurePublic, nil
	}
}
