package interactive

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/browser"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-msauth/credentials"
	"github.com/jrsteele09/go-msauth/identity"
	"github.com/jrsteele09/go-msauth/tokens"
)

// openBrowser launches the system browser with the sign-in URL. Overridable
// in tests.
var openBrowser = browser.OpenURL

const (
	defaultCallbackPath = "/callback"
	defaultFlowTimeout  = 5 * time.Minute
)

// Flow drives one browser-based authorization code sign-in: it starts a
// loopback callback server, opens the authorization URL, waits for the
// redirect and validates the returned state. PKCE is on unless disabled.
type Flow struct {
	clientID     string
	authority    identity.Authority
	instance     identity.AzureCloudInstance
	scope        []string
	offline      bool
	callbackPort int
	callbackPath string
	prompt       identity.Prompt
	loginHint    string
	domainHint   string
	responseMode identity.ResponseMode
	disablePKCE  bool
	skipBrowser  bool
	timeout      time.Duration
	client       *http.Client
}

// NewFlow creates a sign-in flow for the given application. Unset options
// fall back to the common authority, the public cloud, an auto-selected
// loopback port and a five minute wait.
func NewFlow(clientID string) *Flow {
	return &Flow{clientID: clientID}
}

// WithAuthority selects the sign-in audience.
func (f *Flow) WithAuthority(authority identity.Authority) *Flow {
	f.authority = authority
	return f
}

// WithTenant targets a specific directory tenant.
func (f *Flow) WithTenant(tenantID string) *Flow {
	f.authority = identity.TenantAuthority(tenantID)
	return f
}

// WithCloudInstance selects the national cloud login host.
func (f *Flow) WithCloudInstance(instance identity.AzureCloudInstance) *Flow {
	f.instance = instance
	return f
}

// WithScope sets the scopes requested on the authorization URL.
func (f *Flow) WithScope(scope ...string) *Flow {
	f.scope = scope
	return f
}

// WithOfflineAccess additionally requests a refresh token.
func (f *Flow) WithOfflineAccess() *Flow {
	f.offline = true
	return f
}

// WithCallbackPort fixes the loopback port the redirect listener binds.
// Zero, the default, picks any free port. Use a fixed port when the app
// registration lists an exact redirect URI.
func (f *Flow) WithCallbackPort(port int) *Flow {
	f.callbackPort = port
	return f
}

// WithCallbackPath sets the redirect path, "/callback" by default.
func (f *Flow) WithCallbackPath(path string) *Flow {
	f.callbackPath = path
	return f
}

// WithPrompt steers the account-selection UI.
func (f *Flow) WithPrompt(prompt identity.Prompt) *Flow {
	f.prompt = prompt
	return f
}

// WithLoginHint pre-fills the username field.
func (f *Flow) WithLoginHint(loginHint string) *Flow {
	f.loginHint = loginHint
	return f
}

// WithDomainHint skips the home-realm discovery page.
func (f *Flow) WithDomainHint(domainHint string) *Flow {
	f.domainHint = domainHint
	return f
}

// WithResponseMode overrides how the code comes back. The loopback server
// accepts both the query and form_post modes.
func (f *Flow) WithResponseMode(mode identity.ResponseMode) *Flow {
	f.responseMode = mode
	return f
}

// WithoutPKCE turns off the S256 code challenge. Only for authorization
// servers that predate RFC 7636.
func (f *Flow) WithoutPKCE() *Flow {
	f.disablePKCE = true
	return f
}

// WithoutBrowser logs the authorization URL instead of launching a browser,
// for headless hosts where the sign-in happens on another device.
func (f *Flow) WithoutBrowser() *Flow {
	f.skipBrowser = true
	return f
}

// WithTimeout bounds the wait for the redirect.
func (f *Flow) WithTimeout(timeout time.Duration) *Flow {
	f.timeout = timeout
	return f
}

// WithHTTPClient sets the client used for the token exchange.
func (f *Flow) WithHTTPClient(client *http.Client) *Flow {
	f.client = client
	return f
}

// AuthorizationResult is a captured authorization response together with the
// request-side material needed to redeem it.
type AuthorizationResult struct {
	Response    *identity.AuthorizationQueryResponse
	ProofKey    *identity.ProofKeyCodeExchange
	State       string
	RedirectURI string

	clientID  string
	authority identity.Authority
	instance  identity.AzureCloudInstance
}

// Credential builds the token request that redeems the captured code,
// carrying over the code verifier, redirect URI and authority from the
// authorization request. clientSecret stays empty for public clients.
func (r *AuthorizationResult) Credential(clientSecret string) *credentials.AuthorizationCodeCredential {
	cred := credentials.NewAuthorizationCodeCredential(r.clientID, clientSecret, r.Response.Code, r.RedirectURI).
		WithAuthority(r.authority).
		WithCloudInstance(r.instance)
	if r.ProofKey != nil {
		cred.WithCodeVerifier(r.ProofKey.Verifier)
	}
	return cred
}

// Authorize runs the browser leg of the sign-in and returns the captured
// authorization response. It fails on platform error responses, on a state
// mismatch and when the redirect does not arrive before the timeout.
func (f *Flow) Authorize(ctx context.Context) (*AuthorizationResult, error) {
	path := f.callbackPath
	if path == "" {
		path = defaultCallbackPath
	}
	server, err := NewCallbackServer(loopbackURI(f.callbackPort, path))
	if err != nil {
		return nil, err
	}
	if err := server.Start(); err != nil {
		return nil, err
	}
	defer server.Stop()

	state, err := identity.GenerateState()
	if err != nil {
		return nil, err
	}

	builder := credentials.NewAuthorizationCodeURLBuilder(f.clientID).
		WithRedirectURI(server.RedirectURI()).
		WithAuthority(f.authority).
		WithScope(f.scope...).
		WithState(state)
	if f.offline {
		builder.WithOfflineAccess()
	}
	if f.prompt != "" {
		builder.WithPrompt(f.prompt)
	}
	if f.loginHint != "" {
		builder.WithLoginHint(f.loginHint)
	}
	if f.domainHint != "" {
		builder.WithDomainHint(f.domainHint)
	}
	if f.responseMode != "" {
		builder.WithResponseMode(f.responseMode)
	}

	var proofKey *identity.ProofKeyCodeExchange
	if !f.disablePKCE {
		proofKey, err = identity.GenerateProofKey()
		if err != nil {
			return nil, err
		}
		builder.WithProofKey(proofKey)
	}

	authURL, err := builder.URLWithHost(f.instance)
	if err != nil {
		return nil, err
	}

	if f.skipBrowser {
		log.Info().Str("url", authURL.String()).Msg("open this URL in a browser to sign in")
	} else if err := openBrowser(authURL.String()); err != nil {
		log.Warn().Err(err).Str("url", authURL.String()).Msg("could not launch a browser, open the URL manually")
	}

	timeout := f.timeout
	if timeout <= 0 {
		timeout = defaultFlowTimeout
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	response, err := server.WaitForResponse(waitCtx)
	if err != nil {
		return nil, err
	}
	if err := response.Err(); err != nil {
		return nil, err
	}
	if response.State != state {
		return nil, identity.InvalidValue("state", "does not match the value sent on the authorization request")
	}
	if strings.TrimSpace(response.Code) == "" {
		return nil, identity.MissingRequiredValue("code")
	}

	log.Debug().Msg("authorization redirect captured")
	return &AuthorizationResult{
		Response:    response,
		ProofKey:    proofKey,
		State:       state,
		RedirectURI: server.RedirectURI(),
		clientID:    f.clientID,
		authority:   f.authority,
		instance:    f.instance,
	}, nil
}

// Authenticate runs the full sign-in: the browser leg, then the code
// redemption at the token endpoint. clientSecret stays empty for public
// clients.
func (f *Flow) Authenticate(ctx context.Context, clientSecret string) (*oauth2.Token, error) {
	result, err := f.Authorize(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := credentials.ExecuteContext(ctx, f.client, result.Credential(clientSecret))
	if err != nil {
		return nil, err
	}
	token, err := tokens.ParseTokenResponse(resp)
	if err != nil {
		return nil, err
	}
	log.Debug().Time("expiry", token.Expiry).Msg("authorization code redeemed")
	return token, nil
}

func loopbackURI(port int, path string) string {
	return fmt.Sprintf("http://localhost:%d%s", port, path)
}
