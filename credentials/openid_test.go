package credentials_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-msauth/credentials"
	"github.com/jrsteele09/go-msauth/identity"
)

func TestOpenIDAuthorizationURL(t *testing.T) {
	t.Run("defaults to the hybrid flow over form POST", func(t *testing.T) {
		u, err := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
			WithRedirectURI(testRedirectURI).
			WithScope("user.read").
			WithNonce("n-1").
			URL()
		require.NoError(t, err)

		require.Equal(t,
			"https://login.microsoftonline.com/common/oauth2/v2.0/authorize"+
				"?client_id=6731de76-14a6-49ae-97bc-6eba6914391e"+
				"&response_type=code+id_token"+
				"&redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fcallback"+
				"&scope=openid+user.read"+
				"&nonce=n-1"+
				"&response_mode=form_post",
			u.String())
	})

	t.Run("openid scope is never duplicated", func(t *testing.T) {
		u, err := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
			WithRedirectURI(testRedirectURI).
			WithScope("openid", "profile").
			WithNonce("n-1").
			URL()
		require.NoError(t, err)
		require.Equal(t, "openid profile", u.Query().Get("scope"))
	})

	t.Run("openid scope is requested even with no scope configured", func(t *testing.T) {
		u, err := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
			WithRedirectURI(testRedirectURI).
			WithNonce("n-1").
			URL()
		require.NoError(t, err)
		require.Equal(t, "openid", u.Query().Get("scope"))
	})

	t.Run("nonce is required", func(t *testing.T) {
		_, err := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
			WithRedirectURI(testRedirectURI).
			WithScope("user.read").
			URL()
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "nonce")
	})

	t.Run("generated nonce is readable back", func(t *testing.T) {
		builder := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
			WithRedirectURI(testRedirectURI).
			WithGeneratedNonce()
		require.Len(t, builder.Nonce(), 43)

		u, err := builder.URL()
		require.NoError(t, err)
		require.Equal(t, builder.Nonce(), u.Query().Get("nonce"))
	})

	t.Run("builds against another cloud host", func(t *testing.T) {
		u, err := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
			WithRedirectURI(testRedirectURI).
			WithNonce("n-1").
			URLWithHost(identity.AzureUsGovernment)
		require.NoError(t, err)
		require.Equal(t, "login.microsoftonline.us", u.Host)
	})
}

func TestOpenIDCredentialFormBody(t *testing.T) {
	t.Run("always redeems with the openid scope", func(t *testing.T) {
		cred := credentials.NewOpenIDCredential(testClientID, testClientSecret, testAuthCode, testRedirectURI).
			WithScope("user.read")

		body, err := cred.FormBody()
		require.NoError(t, err)
		require.Equal(t,
			"client_id=6731de76-14a6-49ae-97bc-6eba6914391e"+
				"&client_secret=super-secret-1"+
				"&redirect_uri=http%3A%2F%2Flocalhost%3A8080%2Fcallback"+
				"&code=0.AXcAmAbj0DcN"+
				"&grant_type=authorization_code"+
				"&scope=openid+user.read",
			body)
	})

	t.Run("code verifier rides along when set", func(t *testing.T) {
		cred := credentials.NewOpenIDCredential(testClientID, testClientSecret, testAuthCode, testRedirectURI).
			WithCodeVerifier("ver-123")

		body, err := cred.FormBody()
		require.NoError(t, err)
		require.Contains(t, body, "scope=openid&code_verifier=ver-123")
	})

	t.Run("missing authorization code", func(t *testing.T) {
		_, err := credentials.NewOpenIDCredential(testClientID, testClientSecret, " ", testRedirectURI).FormBody()
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "authorization_code")
	})

	t.Run("basic auth pair is offered", func(t *testing.T) {
		user, secret, ok := credentials.NewOpenIDCredential(testClientID, testClientSecret, testAuthCode, testRedirectURI).BasicAuth()
		require.True(t, ok)
		require.Equal(t, testClientID, user)
		require.Equal(t, testClientSecret, secret)
	})
}

func TestOpenIDBuilderCredential(t *testing.T) {
	builder := credentials.NewOpenIDAuthorizationURLBuilder(testClientID).
		WithRedirectURI(testRedirectURI).
		WithTenant("contoso.onmicrosoft.com").
		WithScope("user.read").
		WithNonce("n-1")

	cred := builder.Credential(testAuthCode, testClientSecret)

	target, err := cred.TargetURI()
	require.NoError(t, err)
	require.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token", target)

	body, err := cred.FormBody()
	require.NoError(t, err)

	values, err := url.ParseQuery(body)
	require.NoError(t, err)
	require.Equal(t, "openid user.read", values.Get("scope"))
	require.Equal(t, testAuthCode, values.Get("code"))
}
