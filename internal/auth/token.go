// Package auth checks shared webhook secrets.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrMissingSecret = errors.New("missing secret")
	ErrInvalidSecret = errors.New("invalid secret")
	ErrNoServerKey   = errors.New("server secret not configured")
)

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
}

// SecretsEqual compares two secrets in constant time.
func SecretsEqual(got, want string) bool {
	if got == "" || want == "" {
		return false
	}
	a := sha256.Sum256([]byte(got))
	b := sha256.Sum256([]byte(want))
	return hmac.Equal(a[:], b[:])
}

// VerifyBearer checks the request's bearer token against secret.
func VerifyBearer(r *http.Request, secret string) error {
	if secret == "" {
		return ErrNoServerKey
	}
	token := BearerToken(r)
	if token == "" {
		return ErrMissingSecret
	}
	if !SecretsEqual(token, secret) {
		return ErrInvalidSecret
	}
	return nil
}

func HashToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return fmt.Sprintf("%x", sum)
}
