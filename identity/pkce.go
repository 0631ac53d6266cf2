package identity

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// ProofKeyCodeExchange holds a PKCE verifier/challenge pair. The verifier is
// kept by the client and presented at the token endpoint; the challenge and
// method travel with the authorization request.
type ProofKeyCodeExchange struct {
	Verifier  string
	Challenge string
	Method    CodeChallengeMethod
}

// GenerateProofKey creates PKCE parameters per RFC 7636: a 43-character
// base64url verifier from 32 random bytes and its S256 challenge.
func GenerateProofKey() (*ProofKeyCodeExchange, error) {
	verifier, err := secureRandomString()
	if err != nil {
		return nil, fmt.Errorf("generate code verifier: %w", err)
	}

	sum := sha256.Sum256([]byte(verifier))
	return &ProofKeyCodeExchange{
		Verifier:  verifier,
		Challenge: base64.RawURLEncoding.EncodeToString(sum[:]),
		Method:    CodeChallengeMethodS256,
	}, nil
}

// GenerateState creates a random state parameter for CSRF protection.
func GenerateState() (string, error) {
	state, err := secureRandomString()
	if err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return state, nil
}

// GenerateNonce creates a random nonce binding an id_token to its
// authorization request. Verifying the returned nonce against the stored one
// mitigates token replay.
func GenerateNonce() (string, error) {
	nonce, err := secureRandomString()
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	return nonce, nil
}

// secureRandomString returns 32 bytes of cryptographic randomness encoded as
// unpadded base64url.
func secureRandomString() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
