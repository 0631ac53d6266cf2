package identity_test

import (
	"testing"

	"github.com/jrsteele09/go-msauth/identity"
	"github.com/stretchr/testify/require"
)

func TestParseAuthorizationResponse(t *testing.T) {
	t.Run("query component", func(t *testing.T) {
		resp, err := identity.ParseAuthorizationResponse(
			"http://localhost:8080/callback?code=AUTH-CODE&state=xyz&session_state=abc")
		require.NoError(t, err)
		require.Equal(t, "AUTH-CODE", resp.Code)
		require.Equal(t, "xyz", resp.State)
		require.Equal(t, "abc", resp.SessionState)
		require.False(t, resp.IsError())
		require.NoError(t, resp.Err())
	})

	t.Run("fragment component when no query is present", func(t *testing.T) {
		resp, err := identity.ParseAuthorizationResponse(
			"http://localhost:8080/callback#id_token=HEADER.PAYLOAD.SIG&access_token=AT&token_type=Bearer&expires_in=3599")
		require.NoError(t, err)
		require.Equal(t, "HEADER.PAYLOAD.SIG", resp.IDToken)
		require.Equal(t, "AT", resp.AccessToken)
		require.Equal(t, "Bearer", resp.TokenType)
		require.Equal(t, "3599", resp.ExpiresIn)
	})

	t.Run("query wins over fragment", func(t *testing.T) {
		resp, err := identity.ParseAuthorizationResponse(
			"http://localhost:8080/callback?code=FROM-QUERY#code=FROM-FRAGMENT")
		require.NoError(t, err)
		require.Equal(t, "FROM-QUERY", resp.Code)
	})

	t.Run("neither query nor fragment names the url", func(t *testing.T) {
		_, err := identity.ParseAuthorizationResponse("http://localhost:8080/callback")
		require.ErrorIs(t, err, identity.ErrMissingRedirectPayload)
		require.Contains(t, err.Error(), "http://localhost:8080/callback")
	})

	t.Run("platform error response", func(t *testing.T) {
		resp, err := identity.ParseAuthorizationResponse(
			"http://localhost:8080/callback?error=access_denied&error_description=user+cancelled")
		require.NoError(t, err)
		require.True(t, resp.IsError())

		respErr := resp.Err()
		require.ErrorIs(t, respErr, identity.ErrUpstreamHTTP)
		require.Contains(t, respErr.Error(), "access_denied")
		require.Contains(t, respErr.Error(), "user cancelled")
	})

	t.Run("encoded values are decoded", func(t *testing.T) {
		resp, err := identity.ParseAuthorizationResponse(
			"http://localhost:8080/callback?code=a%2Fb%2Bc&state=two+words")
		require.NoError(t, err)
		require.Equal(t, "a/b+c", resp.Code)
		require.Equal(t, "two words", resp.State)
	})
}
