package credentials_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-msauth/credentials"
	"github.com/jrsteele09/go-msauth/identity"
)

func TestClientSecretCredentialFormBody(t *testing.T) {
	t.Run("defaults to the graph scope", func(t *testing.T) {
		cred := credentials.NewClientSecretCredential(testClientID, testClientSecret).
			WithTenant("contoso.onmicrosoft.com")

		body, err := cred.FormBody()
		require.NoError(t, err)
		require.Equal(t,
			"client_id=6731de76-14a6-49ae-97bc-6eba6914391e"+
				"&client_secret=super-secret-1"+
				"&grant_type=client_credentials"+
				"&scope=https%3A%2F%2Fgraph.microsoft.com%2F.default",
			body)
	})

	t.Run("explicit scope replaces the default", func(t *testing.T) {
		cred := credentials.NewClientSecretCredential(testClientID, testClientSecret).
			WithScope("api://billing/.default")

		body, err := cred.FormBody()
		require.NoError(t, err)
		require.Contains(t, body, "scope=api%3A%2F%2Fbilling%2F.default")
		require.NotContains(t, body, "graph.microsoft.com")
	})

	t.Run("blank client id", func(t *testing.T) {
		_, err := credentials.NewClientSecretCredential(" ", testClientSecret).FormBody()
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "client_id")
	})

	t.Run("blank client secret", func(t *testing.T) {
		_, err := credentials.NewClientSecretCredential(testClientID, " ").FormBody()
		require.ErrorIs(t, err, identity.ErrMissingRequiredValue)
		require.Contains(t, err.Error(), "client_secret")
	})
}

func TestClientSecretCredentialTargetURI(t *testing.T) {
	cred := credentials.NewClientSecretCredential(testClientID, testClientSecret).
		WithTenant("d0e30698-0d37-4b77-a544-ad7eec06483a")

	target, err := cred.TargetURI()
	require.NoError(t, err)
	require.Equal(t, "https://login.microsoftonline.com/d0e30698-0d37-4b77-a544-ad7eec06483a/oauth2/v2.0/token", target)
}

func TestClientSecretCredentialBasicAuth(t *testing.T) {
	user, secret, ok := credentials.NewClientSecretCredential(testClientID, testClientSecret).BasicAuth()
	require.True(t, ok)
	require.Equal(t, testClientID, user)
	require.Equal(t, testClientSecret, secret)
}
