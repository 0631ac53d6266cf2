package tokens

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jrsteele09/go-msauth/credentials"
	"github.com/jrsteele09/go-msauth/identity"
)

// credentialSource executes its credential every time a token is needed.
// Callers get it wrapped in oauth2.ReuseTokenSource, so execution only
// happens when the cached token has expired.
type credentialSource struct {
	ctx    context.Context
	client *http.Client
	cred   credentials.Credential
}

// NewTokenSource adapts cred to an oauth2.TokenSource. Tokens are cached and
// re-acquired only on expiry, making the source safe to hand to
// oauth2.NewClient or any API client that accepts a TokenSource. client may
// be nil for the default transport.
//
// An authorization code credential is rotated onto the refresh token returned
// by its first redemption, so later refreshes do not replay the spent code.
func NewTokenSource(ctx context.Context, client *http.Client, cred credentials.Credential) oauth2.TokenSource {
	return oauth2.ReuseTokenSource(nil, &credentialSource{ctx: ctx, client: client, cred: cred})
}

func (s *credentialSource) Token() (*oauth2.Token, error) {
	resp, err := credentials.ExecuteContext(s.ctx, s.client, s.cred)
	if err != nil {
		return nil, err
	}
	token, err := ParseTokenResponse(resp)
	if err != nil {
		return nil, err
	}

	if c, ok := s.cred.(*credentials.AuthorizationCodeCredential); ok && token.RefreshToken != "" {
		c.WithRefreshToken(token.RefreshToken)
	}
	return token, nil
}

// Device flow polling outcomes defined by RFC 8628. The token endpoint
// reports these in the error field while the user has not finished signing
// in.
const (
	errAuthorizationPending = "authorization_pending"
	errSlowDown             = "slow_down"
	errExpiredToken         = "expired_token"
)

// WaitForDeviceAuthorization polls the token endpoint with cred until the
// user completes the sign-in that auth describes, the device code expires, or
// ctx is cancelled. The credential is switched to auth's device code before
// the first poll. slow_down answers stretch the polling interval by five
// seconds as the RFC requires.
func WaitForDeviceAuthorization(ctx context.Context, client *http.Client, cred *credentials.DeviceCodeCredential, auth *oauth2.DeviceAuthResponse) (*oauth2.Token, error) {
	cred.WithDeviceCode(auth.DeviceCode)

	interval := time.Duration(auth.Interval) * time.Second
	if interval <= 0 {
		interval = 5 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, fmt.Errorf("%w: waiting for device authorization: %v", identity.ErrTimeout, ctx.Err())
			}
			return nil, ctx.Err()
		case <-ticker.C:
		}

		if !auth.Expiry.IsZero() && time.Now().After(auth.Expiry) {
			return nil, fmt.Errorf("%w: device code expired before the user signed in", identity.ErrTimeout)
		}

		resp, err := credentials.ExecuteContext(ctx, client, cred)
		if err != nil {
			return nil, err
		}
		token, err := ParseTokenResponse(resp)
		if err == nil {
			return token, nil
		}

		var respErr *Error
		if !errors.As(err, &respErr) {
			return nil, err
		}
		switch respErr.Code {
		case errAuthorizationPending:
		case errSlowDown:
			interval += 5 * time.Second
			ticker.Reset(interval)
		case errExpiredToken:
			return nil, fmt.Errorf("%w: device code expired before the user signed in", identity.ErrTimeout)
		default:
			return nil, err
		}
	}
}
