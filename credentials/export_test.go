package credentials

// SetConflictingRefreshToken sets the refresh token while keeping the held
// authorization code, bypassing WithRefreshToken's clearing, so tests can
// reach the mutual-exclusion guard in FormBody.
func (c *AuthorizationCodeCredential) SetConflictingRefreshToken(refreshToken string) {
	c.refreshToken = refreshToken
}
