package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyBearer(t *testing.T) {
	tests := []struct {
		name   string
		header string
		secret string
		want   error
	}{
		{"valid", "Bearer s3cret", "s3cret", nil},
		{"padded", "Bearer   s3cret  ", "s3cret", nil},
		{"wrong", "Bearer nope", "s3cret", ErrInvalidSecret},
		{"missing", "", "s3cret", ErrMissingSecret},
		{"basic scheme", "Basic s3cret", "s3cret", ErrMissingSecret},
		{"no server secret", "Bearer s3cret", "", ErrNoServerKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if err := VerifyBearer(req, tt.secret); !errors.Is(err, tt.want) {
				t.Fatalf("VerifyBearer() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSecretsEqualRejectsEmpty(t *testing.T) {
	if SecretsEqual("", "") {
		t.Fatal("empty secrets must never match")
	}
	if !SecretsEqual("abc", "abc") {
		t.Fatal("identical secrets must match")
	}
	if SecretsEqual("abc", "abcd") {
		t.Fatal("different secrets must not match")
	}
}

func TestHashTokenStable(t *testing.T) {
	if HashToken("203.0.113.7") != HashToken("203.0.113.7") {
		t.Fatal("hash should be stable")
	}
	if len(HashToken("x")) != 64 {
		t.Fatalf("expected hex sha256, got %q", HashToken("x"))
	}
}
