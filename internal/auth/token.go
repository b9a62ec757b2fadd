package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// TokenChecker validates the shared admin secret.
type TokenChecker struct {
	secret []byte
}

// NewTokenChecker creates a TokenChecker for secret.
func NewTokenChecker(secret string) *TokenChecker {
	return &TokenChecker{secret: []byte(secret)}
}

// Valid compares token with the secret in constant time. An empty secret
// never matches.
func (c *TokenChecker) Valid(token string) bool {
	if len(c.secret) == 0 || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), c.secret) == 1
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. It returns "" when the header is missing or malformed.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
