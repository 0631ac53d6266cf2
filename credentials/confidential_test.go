package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-msauth/credentials"
	"github.com/jrsteele09/go-msauth/identity"
)

func TestConfidentialClientApplication(t *testing.T) {
	t.Run("forwards the wrapped credential", func(t *testing.T) {
		cred := credentials.NewClientSecretCredential(testClientID, testClientSecret).
			WithTenant("contoso.onmicrosoft.com")

		app, err := credentials.NewConfidentialClientApplication(cred)
		require.NoError(t, err)

		target, err := app.TargetURI()
		require.NoError(t, err)
		require.Equal(t, "https://login.microsoftonline.com/contoso.onmicrosoft.com/oauth2/v2.0/token", target)

		body, err := app.FormBody()
		require.NoError(t, err)
		require.Contains(t, body, "grant_type=client_credentials")

		user, secret, ok := app.BasicAuth()
		require.True(t, ok)
		require.Equal(t, testClientID, user)
		require.Equal(t, testClientSecret, secret)

		require.Same(t, cred, app.Credential())
	})

	t.Run("requires a credential", func(t *testing.T) {
		_, err := credentials.NewConfidentialClientApplication(nil)
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "credential")
	})

	t.Run("authorization url builder seeded from the held credential", func(t *testing.T) {
		cred := credentials.NewAuthorizationCodeCredential(testClientID, testClientSecret, "", testRedirectURI).
			WithTenant("d0e30698-0d37-4b77-a544-ad7eec06483a").
			WithScope("user.read")

		app, err := credentials.NewConfidentialClientApplication(cred)
		require.NoError(t, err)

		builder, ok := app.AuthorizationURLBuilder()
		require.True(t, ok)

		u, err := builder.WithState("1234").URL()
		require.NoError(t, err)
		require.Equal(t, "/d0e30698-0d37-4b77-a544-ad7eec06483a/oauth2/v2.0/authorize", u.Path)
		q := u.Query()
		require.Equal(t, testClientID, q.Get("client_id"))
		require.Equal(t, testRedirectURI, q.Get("redirect_uri"))
		require.Equal(t, "user.read", q.Get("scope"))
		require.Equal(t, "1234", q.Get("state"))

		_, ok = app.OpenIDAuthorizationURLBuilder()
		require.False(t, ok)
	})

	t.Run("openid url builder seeded from the held credential", func(t *testing.T) {
		cred := credentials.NewOpenIDCredential(testClientID, testClientSecret, "", testRedirectURI).
			WithScope("user.read")

		app, err := credentials.NewConfidentialClientApplication(cred)
		require.NoError(t, err)

		builder, ok := app.OpenIDAuthorizationURLBuilder()
		require.True(t, ok)

		u, err := builder.WithGeneratedNonce().URL()
		require.NoError(t, err)
		q := u.Query()
		require.Equal(t, "openid user.read", q.Get("scope"))
		require.Equal(t, "form_post", q.Get("response_mode"))

		_, ok = app.AuthorizationURLBuilder()
		require.False(t, ok)
	})

	t.Run("no url builder for token-endpoint-only grants", func(t *testing.T) {
		app, err := credentials.NewConfidentialClientApplication(
			credentials.NewClientSecretCredential(testClientID, testClientSecret))
		require.NoError(t, err)

		_, ok := app.AuthorizationURLBuilder()
		require.False(t, ok)
		_, ok = app.OpenIDAuthorizationURLBuilder()
		require.False(t, ok)
	})
}

func TestPublicClientApplication(t *testing.T) {
	t.Run("forwards the wrapped credential", func(t *testing.T) {
		cred := credentials.NewDeviceCodeCredential(testClientID, "user.read")

		app, err := credentials.NewPublicClientApplication(cred)
		require.NoError(t, err)

		target, err := app.TargetURI()
		require.NoError(t, err)
		require.Equal(t, "https://login.microsoftonline.com/common/oauth2/v2.0/devicecode", target)

		_, _, ok := app.BasicAuth()
		require.False(t, ok)
	})

	t.Run("requires a credential", func(t *testing.T) {
		_, err := credentials.NewPublicClientApplication(nil)
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
	})
}
