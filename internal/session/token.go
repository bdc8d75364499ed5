package session

import (
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the user info decoded from the token payload. It is a
// display hint only: nothing here is verified client-side, and no
// authorization decision may branch on it. The server's 401 is the only
// authority on token validity.
type Identity struct {
	ID    string
	Email string
}

// decodeIdentity parses the JWT payload without verifying the signature.
// `sub` becomes the user id; the `email` claim falls back to the given
// default when absent.
func decodeIdentity(token, fallbackEmail string) (Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("decode token: %w", err)
	}

	sub, err := claims.GetSubject()
	if err != nil || strings.TrimSpace(sub) == "" {
		return Identity{}, fmt.Errorf("token has no subject")
	}

	email := fallbackEmail
	if v, ok := claims["email"].(string); ok && strings.TrimSpace(v) != "" {
		email = v
	}
	if email == "" {
		email = "user"
	}
	return Identity{ID: sub, Email: email}, nil
}
