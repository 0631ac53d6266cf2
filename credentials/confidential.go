package credentials

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-msauth/identity"
)

// ConfidentialClientApplication is the single facade over the confidential
// grant credentials: authorization code, OpenID, client secret, client
// certificate and client assertion. It holds exactly one credential and
// forwards the capability set, so call sites handle every grant kind through
// one value.
type ConfidentialClientApplication struct {
	credential Credential
}

// NewConfidentialClientApplication wraps credential. The credential keeps its
// own authority, cloud instance and options; the application adds nothing on
// top.
func NewConfidentialClientApplication(credential Credential) (*ConfidentialClientApplication, error) {
	if credential == nil {
		return nil, identity.MissingRequiredValue("credential")
	}
	return &ConfidentialClientApplication{credential: credential}, nil
}

// TargetURI returns the endpoint the held credential POSTs to.
func (app *ConfidentialClientApplication) TargetURI() (string, error) {
	return app.credential.TargetURI()
}

// FormBody returns the held credential's encoded request body.
func (app *ConfidentialClientApplication) FormBody() (string, error) {
	return app.credential.FormBody()
}

// BasicAuth returns the held credential's Basic-Auth pair, if it has one.
func (app *ConfidentialClientApplication) BasicAuth() (string, string, bool) {
	return app.credential.BasicAuth()
}

// Options returns the held credential's transport extras.
func (app *ConfidentialClientApplication) Options() RequestOptions {
	return app.credential.Options()
}

// Credential exposes the wrapped credential for adapters that work against
// the Credential surface directly.
func (app *ConfidentialClientApplication) Credential() Credential {
	return app.credential
}

// AuthorizationURLBuilder returns a URL builder seeded from the held
// authorization code credential. ok is false for grants that go straight to
// the token endpoint and for the OpenID variant, which has its own builder.
func (app *ConfidentialClientApplication) AuthorizationURLBuilder() (*AuthorizationCodeURLBuilder, bool) {
	cred, ok := app.credential.(*AuthorizationCodeCredential)
	if !ok {
		return nil, false
	}
	return cred.AuthorizationURLBuilder(), true
}

// OpenIDAuthorizationURLBuilder returns an OpenID URL builder seeded from the
// held OpenID credential. ok is false for every other grant.
func (app *ConfidentialClientApplication) OpenIDAuthorizationURLBuilder() (*OpenIDAuthorizationURLBuilder, bool) {
	cred, ok := app.credential.(*OpenIDCredential)
	if !ok {
		return nil, false
	}
	return cred.AuthorizationURLBuilder(), true
}

// Execute issues the token request on the default HTTP client, blocking
// until the platform answers.
func (app *ConfidentialClientApplication) Execute() (*http.Response, error) {
	return Execute(app.credential)
}

// ExecuteContext issues the token request with ctx on client, or the default
// client when client is nil.
func (app *ConfidentialClientApplication) ExecuteContext(ctx context.Context, client *http.Client) (*http.Response, error) {
	return ExecuteContext(ctx, client, app.credential)
}
