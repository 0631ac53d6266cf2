// Package credentials builds spec-compliant token requests for every grant
// the identity platform supports. Each credential variant validates its own
// required/optional field table and exposes the same four capabilities: the
// endpoint to POST to, the url-encoded form body, an optional Basic-Auth
// pair, and transport options. The variant set is sealed; transports work
// against the one Credential surface.
package credentials

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-msauth/identity"
	"github.com/jrsteele09/go-msauth/internal/httpdefaults"
)

// RequestOptions carries pass-through extras a tenant or gateway may require
// on token requests. Values are applied verbatim by the executor.
type RequestOptions struct {
	// ExtraQueryParameters are appended to the token endpoint URL.
	ExtraQueryParameters map[string]string

	// ExtraHeaderParameters are added to the request headers.
	ExtraHeaderParameters http.Header
}

// Credential is the capability set every grant variant exposes to a
// transport. The unexported marker keeps the variant set closed to this
// package: a Credential is always one of the known grant kinds, never an
// arbitrary implementation.
type Credential interface {
	// TargetURI returns the endpoint the form body is POSTed to. Grant
	// validation errors surface here or in FormBody, always before any
	// network call.
	TargetURI() (string, error)

	// FormBody returns the application/x-www-form-urlencoded request body.
	FormBody() (string, error)

	// BasicAuth returns the client id/secret pair for HTTP Basic
	// authentication when the grant has a shared secret. The body carries
	// client_secret regardless; RFC 6749 2.3.1 allows either presentation
	// and the platform accepts both at once.
	BasicAuth() (user, secret string, ok bool)

	// Options returns the transport extras configured for this credential.
	Options() RequestOptions

	isCredential()
}

// Execute issues the token request for cred on the default HTTP client,
// blocking until the platform answers. The raw response is returned for the
// caller to deserialize; error statuses are not retried here.
func Execute(cred Credential) (*http.Response, error) {
	return ExecuteContext(context.Background(), nil, cred)
}

// ExecuteContext issues the token request for cred using client, or the
// default client when client is nil. All validation happens before the
// request is sent; a validation failure never reaches the network.
func ExecuteContext(ctx context.Context, client *http.Client, cred Credential) (*http.Response, error) {
	req, err := NewTokenRequest(ctx, cred)
	if err != nil {
		return nil, err
	}

	if client == nil {
		client = httpdefaults.Client(httpdefaults.Transport{})
	}

	log.Debug().Str("uri", req.URL.Redacted()).Msg("requesting token")
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", identity.ErrUpstreamHTTP, err)
	}
	return resp, nil
}

// NewTokenRequest assembles the *http.Request for cred without sending it,
// for callers that bring their own transport entirely.
func NewTokenRequest(ctx context.Context, cred Credential) (*http.Request, error) {
	target, err := cred.TargetURI()
	if err != nil {
		return nil, err
	}
	body, err := cred.FormBody()
	if err != nil {
		return nil, err
	}

	opts := cred.Options()
	target, err = appendQueryParameters(target, opts.ExtraQueryParameters)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", identity.ErrMalformedURL, target, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for key, values := range opts.ExtraHeaderParameters {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	if user, secret, ok := cred.BasicAuth(); ok {
		req.SetBasicAuth(user, secret)
	}
	return req, nil
}

func appendQueryParameters(target string, extra map[string]string) (string, error) {
	if len(extra) == 0 {
		return target, nil
	}
	u, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", identity.ErrMalformedURL, target, err)
	}
	q := u.Query()
	for key, value := range extra {
		q.Set(key, value)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}
