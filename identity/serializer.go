package identity

import (
	"net/url"
	"strings"
)

// Serializer accumulates canonical OAuth parameters and encodes them into an
// application/x-www-form-urlencoded string. Setters insert or overwrite and
// never fail; Encode is the single operation that can.
//
// Emission order is the caller's business: Encode writes exactly the key lists
// it is given, in the order given, never the map's iteration order. That makes
// every produced query string and form body reproducible and directly
// assertable in tests.
type Serializer struct {
	values map[AuthParameter]string
}

// NewSerializer returns an empty Serializer.
func NewSerializer() *Serializer {
	return &Serializer{values: make(map[AuthParameter]string)}
}

// Set inserts or overwrites the value for an arbitrary parameter.
func (s *Serializer) Set(key AuthParameter, value string) *Serializer {
	s.values[key] = value
	return s
}

// Get returns the stored value for key and whether it is present.
func (s *Serializer) Get(key AuthParameter) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

func (s *Serializer) ClientID(v string) *Serializer     { return s.Set(ClientIDParameter, v) }
func (s *Serializer) ClientSecret(v string) *Serializer { return s.Set(ClientSecretParameter, v) }
func (s *Serializer) RedirectURI(v string) *Serializer  { return s.Set(RedirectURIParameter, v) }
func (s *Serializer) AuthorizationCode(v string) *Serializer {
	return s.Set(AuthorizationCodeParameter, v)
}
func (s *Serializer) RefreshToken(v string) *Serializer { return s.Set(RefreshTokenParameter, v) }
func (s *Serializer) ResponseMode(v ResponseMode) *Serializer {
	return s.Set(ResponseModeParameter, string(v))
}
func (s *Serializer) ResponseTypes(set []ResponseType) *Serializer {
	return s.Set(ResponseTypeParameter, joinResponseTypes(set))
}
func (s *Serializer) State(v string) *Serializer { return s.Set(StateParameter, v) }
func (s *Serializer) GrantType(v GrantType) *Serializer {
	return s.Set(GrantTypeParameter, string(v))
}
func (s *Serializer) Nonce(v string) *Serializer { return s.Set(NonceParameter, v) }
func (s *Serializer) Prompt(v Prompt) *Serializer {
	return s.Set(PromptParameter, string(v))
}
func (s *Serializer) DomainHint(v string) *Serializer { return s.Set(DomainHintParameter, v) }
func (s *Serializer) LoginHint(v string) *Serializer  { return s.Set(LoginHintParameter, v) }

// Scope joins the scope list with single spaces, the separator the platform
// expects.
func (s *Serializer) Scope(scope []string) *Serializer {
	return s.Set(ScopeParameter, strings.Join(scope, " "))
}

func (s *Serializer) ClientAssertion(v string) *Serializer {
	return s.Set(ClientAssertionParameter, v)
}
func (s *Serializer) ClientAssertionType(v string) *Serializer {
	return s.Set(ClientAssertionTypeParameter, v)
}
func (s *Serializer) CodeVerifier(v string) *Serializer  { return s.Set(CodeVerifierParameter, v) }
func (s *Serializer) CodeChallenge(v string) *Serializer { return s.Set(CodeChallengeParameter, v) }
func (s *Serializer) CodeChallengeMethod(v CodeChallengeMethod) *Serializer {
	return s.Set(CodeChallengeMethodParameter, string(v))
}
func (s *Serializer) Username(v string) *Serializer   { return s.Set(UsernameParameter, v) }
func (s *Serializer) Password(v string) *Serializer   { return s.Set(PasswordParameter, v) }
func (s *Serializer) DeviceCode(v string) *Serializer { return s.Set(DeviceCodeParameter, v) }

// Encode writes the required keys in the given order, then the present
// optional keys in the given order, as URL-form-encoded pairs. A required key
// with no stored value fails immediately with a missing-required-value error
// and nothing further is written; absent optional keys are skipped silently.
func (s *Serializer) Encode(required, optional []AuthParameter, sink *strings.Builder) error {
	for _, key := range required {
		value, ok := s.values[key]
		if !ok {
			return MissingRequiredValue(string(key))
		}
		writePair(sink, key, value)
	}
	for _, key := range optional {
		value, ok := s.values[key]
		if !ok {
			continue
		}
		writePair(sink, key, value)
	}
	return nil
}

func writePair(sink *strings.Builder, key AuthParameter, value string) {
	if sink.Len() > 0 {
		sink.WriteByte('&')
	}
	sink.WriteString(url.QueryEscape(string(key)))
	sink.WriteByte('=')
	sink.WriteString(url.QueryEscape(value))
}
