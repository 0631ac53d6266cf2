package identity

import (
	"fmt"
	"net/url"
)

// AuthorizationQueryResponse is the parsed payload of an authorization
// redirect. Which fields are populated depends on the response_type of the
// originating request; error and error_description are set when the platform
// rejected the request.
type AuthorizationQueryResponse struct {
	Code             string
	IDToken          string
	AccessToken      string
	State            string
	SessionState     string
	Nonce            string
	TokenType        string
	ExpiresIn        string
	Error            string
	ErrorDescription string
	ErrorURI         string
}

// ParseAuthorizationResponse decodes the payload of a captured redirect URL.
// The query component is used when present, the fragment otherwise. A redirect
// with neither carries no authorization result and fails, naming the full URL
// for diagnostics.
func ParseAuthorizationResponse(rawURL string) (*AuthorizationQueryResponse, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}

	var encoded string
	switch {
	case u.RawQuery != "":
		encoded = u.RawQuery
	case u.Fragment != "":
		encoded = u.EscapedFragment()
	default:
		return nil, fmt.Errorf("%w: redirect url %q has neither query nor fragment", ErrMissingRedirectPayload, rawURL)
	}

	values, err := url.ParseQuery(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrMalformedURL, rawURL, err)
	}
	return queryResponseFromValues(values), nil
}

// ParseAuthorizationValues decodes an authorization response from already
// parsed values, as delivered in the body of a form_post response.
func ParseAuthorizationValues(values url.Values) *AuthorizationQueryResponse {
	return queryResponseFromValues(values)
}

func queryResponseFromValues(values url.Values) *AuthorizationQueryResponse {
	get := func(p AuthParameter) string { return values.Get(string(p)) }
	return &AuthorizationQueryResponse{
		Code:             get(AuthorizationCodeParameter),
		IDToken:          get(IDTokenParameter),
		AccessToken:      get(AccessTokenParameter),
		State:            get(StateParameter),
		SessionState:     get(SessionStateParameter),
		Nonce:            get(NonceParameter),
		TokenType:        get(TokenTypeParameter),
		ExpiresIn:        get(ExpiresInParameter),
		Error:            get(ErrorParameter),
		ErrorDescription: get(ErrorDescriptionParameter),
		ErrorURI:         get(ErrorURIParameter),
	}
}

// IsError reports whether the platform answered with an error instead of an
// authorization result.
func (a *AuthorizationQueryResponse) IsError() bool {
	return a.Error != ""
}

// Err converts an error response into a Go error, or returns nil for a
// successful response.
func (a *AuthorizationQueryResponse) Err() error {
	if !a.IsError() {
		return nil
	}
	if a.ErrorDescription != "" {
		return fmt.Errorf("%w: %s: %s", ErrUpstreamHTTP, a.Error, a.ErrorDescription)
	}
	return fmt.Errorf("%w: %s", ErrUpstreamHTTP, a.Error)
}
