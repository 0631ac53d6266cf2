package interactive_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-msauth/identity"
	"github.com/jrsteele09/go-msauth/interactive"
	"github.com/jrsteele09/go-msauth/tokens"
)

const (
	testClientID = "6731de76-14a6-49ae-97bc-6eba6914391e"
	testAuthCode = "0.AXcAmAbj0DcN"
)

// signInBrowser stands in for the system browser: it receives the
// authorization URL and immediately issues the redirect the platform would
// send after a successful sign-in. respond builds the redirect query from
// the authorization request's parameters.
func signInBrowser(t *testing.T, authURL **url.URL, respond func(q url.Values) url.Values) func() {
	t.Helper()
	return interactive.SetBrowserOpener(func(rawURL string) error {
		u, err := url.Parse(rawURL)
		if err != nil {
			return err
		}
		*authURL = u

		q := u.Query()
		if respond == nil {
			return nil
		}
		redirect := q.Get("redirect_uri") + "?" + respond(q).Encode()
		resp, err := http.Get(redirect)
		if err != nil {
			return err
		}
		return resp.Body.Close()
	})
}

func TestFlowAuthorize(t *testing.T) {
	t.Run("captures the redirect", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithOfflineAccess().
			WithTimeout(5 * time.Second)

		result, err := flow.Authorize(context.Background())
		require.NoError(t, err)
		require.Equal(t, testAuthCode, result.Response.Code)
		require.NotNil(t, result.ProofKey)
		require.Len(t, result.ProofKey.Verifier, 43)

		require.NotNil(t, authURL)
		require.Equal(t, "login.microsoftonline.com", authURL.Host)
		require.Equal(t, "/common/oauth2/v2.0/authorize", authURL.Path)
		q := authURL.Query()
		require.Equal(t, testClientID, q.Get("client_id"))
		require.Equal(t, "code", q.Get("response_type"))
		require.Equal(t, result.RedirectURI, q.Get("redirect_uri"))
		require.Equal(t, "user.read offline_access", q.Get("scope"))
		require.Equal(t, result.State, q.Get("state"))
		require.Equal(t, result.ProofKey.Challenge, q.Get("code_challenge"))
		require.Equal(t, "S256", q.Get("code_challenge_method"))
	})

	t.Run("credential carries the captured grant", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithTenant("d0e30698-0d37-4b77-a544-ad7eec06483a").
			WithScope("user.read").
			WithTimeout(5 * time.Second)

		result, err := flow.Authorize(context.Background())
		require.NoError(t, err)

		cred := result.Credential("super-secret-1")
		target, err := cred.TargetURI()
		require.NoError(t, err)
		require.Equal(t, "https://login.microsoftonline.com/d0e30698-0d37-4b77-a544-ad7eec06483a/oauth2/v2.0/token", target)

		body, err := cred.FormBody()
		require.NoError(t, err)
		form, err := url.ParseQuery(body)
		require.NoError(t, err)
		require.Equal(t, testAuthCode, form.Get("code"))
		require.Equal(t, "super-secret-1", form.Get("client_secret"))
		require.Equal(t, result.RedirectURI, form.Get("redirect_uri"))
		require.Equal(t, result.ProofKey.Verifier, form.Get("code_verifier"))
	})

	t.Run("forwards prompt and hints", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithPrompt(identity.PromptSelectAccount).
			WithLoginHint("john.doe@contoso.com").
			WithDomainHint("contoso.com").
			WithTimeout(5 * time.Second)

		_, err := flow.Authorize(context.Background())
		require.NoError(t, err)

		q := authURL.Query()
		require.Equal(t, "select_account", q.Get("prompt"))
		require.Equal(t, "john.doe@contoso.com", q.Get("login_hint"))
		require.Equal(t, "contoso.com", q.Get("domain_hint"))
	})

	t.Run("accepts a form_post redirect", func(t *testing.T) {
		var authURL *url.URL
		restore := interactive.SetBrowserOpener(func(rawURL string) error {
			u, err := url.Parse(rawURL)
			if err != nil {
				return err
			}
			authURL = u
			q := u.Query()
			resp, err := http.PostForm(q.Get("redirect_uri"), url.Values{
				"code":  {testAuthCode},
				"state": {q.Get("state")},
			})
			if err != nil {
				return err
			}
			return resp.Body.Close()
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithResponseMode(identity.ResponseModeFormPost).
			WithTimeout(5 * time.Second)

		result, err := flow.Authorize(context.Background())
		require.NoError(t, err)
		require.Equal(t, testAuthCode, result.Response.Code)
		require.Equal(t, "form_post", authURL.Query().Get("response_mode"))
	})

	t.Run("rejects a state mismatch", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {"tampered"}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithTimeout(5 * time.Second)

		_, err := flow.Authorize(context.Background())
		require.ErrorIs(t, err, identity.ErrInvalidValue)
		require.Contains(t, err.Error(), "state")
	})

	t.Run("surfaces a platform denial", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{
				"error":             {"access_denied"},
				"error_description": {"AADSTS65004: the user declined consent"},
				"state":             {q.Get("state")},
			}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithTimeout(5 * time.Second)

		_, err := flow.Authorize(context.Background())
		require.ErrorIs(t, err, identity.ErrUpstreamHTTP)
		require.Contains(t, err.Error(), "access_denied")
	})

	t.Run("rejects a redirect without a code", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithTimeout(5 * time.Second)

		_, err := flow.Authorize(context.Background())
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "code")
	})

	t.Run("times out when no redirect arrives", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, nil)
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithTimeout(50 * time.Millisecond)

		_, err := flow.Authorize(context.Background())
		require.ErrorIs(t, err, identity.ErrTimeout)
	})

	t.Run("pkce can be disabled", func(t *testing.T) {
		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithoutPKCE().
			WithTimeout(5 * time.Second)

		result, err := flow.Authorize(context.Background())
		require.NoError(t, err)
		require.Nil(t, result.ProofKey)
		require.Empty(t, authURL.Query().Get("code_challenge"))

		body, err := result.Credential("").FormBody()
		require.NoError(t, err)
		require.NotContains(t, body, "code_verifier")
	})

	t.Run("validates the application before opening a browser", func(t *testing.T) {
		opened := 0
		restore := interactive.SetBrowserOpener(func(string) error {
			opened++
			return nil
		})
		defer restore()

		_, err := interactive.NewFlow("not-a-uuid").
			WithScope("user.read").
			Authorize(context.Background())
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "client_id")
		require.Zero(t, opened)
	})
}

func TestFlowAuthenticate(t *testing.T) {
	t.Run("redeems the captured code", func(t *testing.T) {
		var gotBody string
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			payload, _ := io.ReadAll(r.Body)
			gotBody = string(payload)
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "at-123",
				"token_type":    "Bearer",
				"expires_in":    3599,
				"refresh_token": "rt-456",
				"id_token":      "eyJ.header.payload",
			})
		}))
		defer tokenServer.Close()

		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithCloudInstance(identity.AzureCloudInstance(tokenServer.URL)).
			WithTimeout(5 * time.Second)

		token, err := flow.Authenticate(context.Background(), "super-secret-1")
		require.NoError(t, err)
		require.Equal(t, "at-123", token.AccessToken)
		require.Equal(t, "rt-456", token.RefreshToken)
		require.Equal(t, "eyJ.header.payload", tokens.IDToken(token))

		form, err := url.ParseQuery(gotBody)
		require.NoError(t, err)
		require.Equal(t, "authorization_code", form.Get("grant_type"))
		require.Equal(t, testAuthCode, form.Get("code"))
		require.Equal(t, "super-secret-1", form.Get("client_secret"))
		require.Len(t, form.Get("code_verifier"), 43)
	})

	t.Run("surfaces a token endpoint rejection", func(t *testing.T) {
		tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"AADSTS70008: expired code"}`))
		}))
		defer tokenServer.Close()

		var authURL *url.URL
		restore := signInBrowser(t, &authURL, func(q url.Values) url.Values {
			return url.Values{"code": {testAuthCode}, "state": {q.Get("state")}}
		})
		defer restore()

		flow := interactive.NewFlow(testClientID).
			WithScope("user.read").
			WithCloudInstance(identity.AzureCloudInstance(tokenServer.URL)).
			WithTimeout(5 * time.Second)

		_, err := flow.Authenticate(context.Background(), "super-secret-1")
		require.ErrorIs(t, err, identity.ErrUpstreamHTTP)
		require.Contains(t, err.Error(), "invalid_grant")
	})
}
