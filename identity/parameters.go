package identity

// AuthParameter is a canonical OAuth 2.0 / OpenID Connect parameter name.
// Requests are assembled against this enumerated key set rather than free
// strings so that a misspelt or unknown parameter cannot compile.
type AuthParameter string

const (
	ClientIDParameter            AuthParameter = "client_id"
	ClientSecretParameter        AuthParameter = "client_secret"
	RedirectURIParameter         AuthParameter = "redirect_uri"
	AuthorizationCodeParameter   AuthParameter = "code"
	AccessTokenParameter         AuthParameter = "access_token"
	RefreshTokenParameter        AuthParameter = "refresh_token"
	ResponseModeParameter        AuthParameter = "response_mode"
	ResponseTypeParameter        AuthParameter = "response_type"
	StateParameter               AuthParameter = "state"
	SessionStateParameter        AuthParameter = "session_state"
	GrantTypeParameter           AuthParameter = "grant_type"
	NonceParameter               AuthParameter = "nonce"
	PromptParameter              AuthParameter = "prompt"
	IDTokenParameter             AuthParameter = "id_token"
	DomainHintParameter          AuthParameter = "domain_hint"
	ScopeParameter               AuthParameter = "scope"
	LoginHintParameter           AuthParameter = "login_hint"
	LogoutHintParameter          AuthParameter = "logout_hint"
	ClientAssertionParameter     AuthParameter = "client_assertion"
	ClientAssertionTypeParameter AuthParameter = "client_assertion_type"
	CodeVerifierParameter        AuthParameter = "code_verifier"
	CodeChallengeParameter       AuthParameter = "code_challenge"
	CodeChallengeMethodParameter AuthParameter = "code_challenge_method"
	AdminConsentParameter        AuthParameter = "admin_consent"
	UsernameParameter            AuthParameter = "username"
	PasswordParameter            AuthParameter = "password"
	DeviceCodeParameter          AuthParameter = "device_code"
	TokenTypeParameter           AuthParameter = "token_type"
	ExpiresInParameter           AuthParameter = "expires_in"
	ErrorParameter               AuthParameter = "error"
	ErrorDescriptionParameter    AuthParameter = "error_description"
	ErrorURIParameter            AuthParameter = "error_uri"
)

func (p AuthParameter) String() string {
	return string(p)
}
