package credentials

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-msauth/identity"
)

// PublicClientApplication is the facade over the public (secretless) grant
// credentials: device code and resource owner password. It mirrors
// ConfidentialClientApplication so transports treat both application kinds
// identically.
type PublicClientApplication struct {
	credential Credential
}

// NewPublicClientApplication wraps credential.
func NewPublicClientApplication(credential Credential) (*PublicClientApplication, error) {
	if credential == nil {
		return nil, identity.MissingRequiredValue("credential")
	}
	return &PublicClientApplication{credential: credential}, nil
}

// TargetURI returns the endpoint the held credential POSTs to.
func (app *PublicClientApplication) TargetURI() (string, error) {
	return app.credential.TargetURI()
}

// FormBody returns the held credential's encoded request body.
func (app *PublicClientApplication) FormBody() (string, error) {
	return app.credential.FormBody()
}

// BasicAuth returns the held credential's Basic-Auth pair. Public grants
// report none.
func (app *PublicClientApplication) BasicAuth() (string, string, bool) {
	return app.credential.BasicAuth()
}

// Options returns the held credential's transport extras.
func (app *PublicClientApplication) Options() RequestOptions {
	return app.credential.Options()
}

// Credential exposes the wrapped credential for adapters that work against
// the Credential surface directly.
func (app *PublicClientApplication) Credential() Credential {
	return app.credential
}

// Execute issues the request on the default HTTP client, blocking until the
// platform answers.
func (app *PublicClientApplication) Execute() (*http.Response, error) {
	return Execute(app.credential)
}

// ExecuteContext issues the request with ctx on client, or the default
// client when client is nil.
func (app *PublicClientApplication) ExecuteContext(ctx context.Context, client *http.Client) (*http.Response, error) {
	return ExecuteContext(ctx, client, app.credential)
}
