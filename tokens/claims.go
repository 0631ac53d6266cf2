package tokens

import (
	"errors"
	"fmt"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"

	"github.com/jrsteele09/go-msauth/internal/utils"
)

// UnverifiedClaims extracts the claim set of a raw JWT without checking its
// signature or validity window. Suitable for display, logging, and routing;
// anything security-relevant goes through Verifier instead.
func UnverifiedClaims(raw string) (jwtlib.MapClaims, error) {
	parser := jwtlib.NewParser(jwtlib.WithoutClaimsValidation())
	token, _, err := parser.ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse token claims: %w", err)
	}

	claims, ok := token.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.New("parse token claims: unexpected claims type")
	}
	return claims, nil
}

// Scopes returns the permissions granted in claims: the space-joined scp
// claim of a delegated token, or the roles array of an application token.
func Scopes(claims jwtlib.MapClaims) []string {
	if scp, ok := claims["scp"].(string); ok && scp != "" {
		return strings.Fields(scp)
	}
	if roles, ok := claims["roles"].([]any); ok {
		return utils.ToStringSlice(roles)
	}
	return nil
}

// TenantID returns the directory tenant (tid claim) that issued the token.
func TenantID(claims jwtlib.MapClaims) string {
	tid, _ := claims["tid"].(string)
	return tid
}

// ObjectID returns the directory object id (oid claim) of the subject.
func ObjectID(claims jwtlib.MapClaims) string {
	oid, _ := claims["oid"].(string)
	return oid
}

// PreferredUsername returns the display username claim, when present.
func PreferredUsername(claims jwtlib.MapClaims) string {
	name, _ := claims["preferred_username"].(string)
	return name
}
