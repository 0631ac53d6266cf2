package identity

import "strings"

// Authority is the directory realm segment of an identity endpoint: either one
// of the shared sign-in audiences below or a specific directory tenant id
// created with TenantAuthority.
type Authority string

const (
	// AuthorityCommon allows both work/school and personal Microsoft accounts.
	// This is the default when no authority is configured.
	AuthorityCommon Authority = "common"

	// AuthorityOrganizations allows work or school accounts from any tenant.
	AuthorityOrganizations Authority = "organizations"

	// AuthorityConsumers allows personal Microsoft accounts only.
	AuthorityConsumers Authority = "consumers"

	// AuthorityAzureDirectoryFederatedServices targets an on-premises AD FS
	// deployment rather than a cloud directory.
	AuthorityAzureDirectoryFederatedServices Authority = "adfs"
)

// TenantAuthority returns the authority for a specific directory tenant.
// The id is used verbatim as the realm path segment.
func TenantAuthority(tenantID string) Authority {
	return Authority(strings.TrimSpace(tenantID))
}

// TenantSegment returns the path segment this authority contributes to an
// identity endpoint. An unset authority resolves to "common".
func (a Authority) TenantSegment() string {
	if strings.TrimSpace(string(a)) == "" {
		return string(AuthorityCommon)
	}
	return string(a)
}

// IsSharedAudience reports whether the authority is one of the shared sign-in
// audiences rather than a specific tenant.
func (a Authority) IsSharedAudience() bool {
	switch a {
	case AuthorityCommon, AuthorityOrganizations, AuthorityConsumers, AuthorityAzureDirectoryFederatedServices:
		return true
	}
	return false
}
