// Package identity holds the data model shared by every credential and
// builder in this module: cloud instance and authority resolution, canonical
// request parameters and their serializer, PKCE material, redirect payload
// parsing, and the error kinds request construction can fail with. Everything
// here is pure; no network calls are made.
package identity

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// AppConfig is the request-independent configuration of one registered
// application: who the client is, which directory realm and cloud it signs in
// against, and where redirects land. Builders copy it; a config attached to a
// built request is never mutated afterwards.
type AppConfig struct {
	// ClientID is the application (client) id from the app registration.
	ClientID uuid.UUID

	// Authority selects the directory realm. Zero value means "common".
	Authority Authority

	// CloudInstance selects the national-cloud login host. Zero value means
	// the public cloud.
	CloudInstance AzureCloudInstance

	// RedirectURI is where the authorization response is delivered. Required
	// for the authorization-code and OpenID flows, unused by the
	// machine-to-machine grants.
	RedirectURI *url.URL

	// Scope is the default scope list applied when a builder sets none.
	Scope []string

	// ExtraQueryParameters are appended verbatim to the token request URL.
	ExtraQueryParameters map[string]string

	// ExtraHeaderParameters are added verbatim to the token request headers.
	ExtraHeaderParameters http.Header
}

// NewAppConfig validates clientID and returns a config for the public cloud
// and the common authority.
func NewAppConfig(clientID string) (*AppConfig, error) {
	id, err := uuid.Parse(strings.TrimSpace(clientID))
	if err != nil || id == uuid.Nil {
		return nil, MissingRequiredValue("client_id")
	}
	return &AppConfig{
		ClientID:              id,
		Authority:             AuthorityCommon,
		CloudInstance:         AzurePublic,
		ExtraQueryParameters:  map[string]string{},
		ExtraHeaderParameters: http.Header{},
	}, nil
}

// Clone returns a deep copy so a builder can own its configuration without
// sharing maps with the caller.
func (c *AppConfig) Clone() *AppConfig {
	if c == nil {
		return nil
	}
	clone := *c
	if c.RedirectURI != nil {
		u := *c.RedirectURI
		clone.RedirectURI = &u
	}
	clone.Scope = append([]string(nil), c.Scope...)
	clone.ExtraQueryParameters = make(map[string]string, len(c.ExtraQueryParameters))
	for k, v := range c.ExtraQueryParameters {
		clone.ExtraQueryParameters[k] = v
	}
	clone.ExtraHeaderParameters = c.ExtraHeaderParameters.Clone()
	return &clone
}
