package api

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{name: "valid", header: "Bearer header.payload.signature", want: "header.payload.signature"},
		{name: "case_insensitive_scheme", header: "bearer header.payload.signature", want: "header.payload.signature"},
		{name: "missing", header: "", wantErr: errMissingAuthorization},
		{name: "blank", header: "   ", wantErr: errMissingAuthorization},
		{name: "no_scheme", header: "header.payload.signature", wantErr: errBadAuthorization},
		{name: "wrong_scheme", header: "Basic dXNlcjpwYXNz", wantErr: errBadAuthorization},
		{name: "not_a_jwt", header: "Bearer " + strings.Repeat(".", 1000), wantErr: errBadAuthorization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := bearerToken(tt.header)
			if err != tt.wantErr {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Fatalf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func hs256Auth(secret []byte) *Auth {
	return &Auth{
		Audience:   "api://taskdeck",
		Issuer:     "https://issuer/",
		TestMode:   true,
		TestSecret: secret,
		parser:     jwt.NewParser(jwt.WithValidMethods([]string{"HS256"})),
	}
}

func signHS256(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestUserIDFromAuthHeaderHS256(t *testing.T) {
	secret := []byte("test-secret")
	signed := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://taskdeck",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
		"nbf": time.Now().Add(-time.Minute).Unix(),
		"iat": time.Now().Add(-time.Minute).Unix(),
	})

	userID, err := hs256Auth(secret).UserIDFromAuthHeader("Bearer " + signed)
	if err != nil {
		t.Fatalf("unexpected error verifying token: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("unexpected user id: %s", userID)
	}
}

func TestUserIDFromAuthHeaderRejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	signed := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://taskdeck",
		"iss": "https://issuer/",
		"exp": time.Now().Add(-10 * time.Minute).Unix(),
	})

	if _, err := hs256Auth(secret).UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestUserIDFromAuthHeaderRejectsWrongAudience(t *testing.T) {
	secret := []byte("test-secret")
	signed := signHS256(t, secret, jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://other",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	if _, err := hs256Auth(secret).UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected audience mismatch to be rejected")
	}
}

func TestUserIDFromAuthHeaderRejectsMissingSub(t *testing.T) {
	secret := []byte("test-secret")
	signed := signHS256(t, secret, jwt.MapClaims{
		"aud": "api://taskdeck",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	if _, err := hs256Auth(secret).UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected missing sub to be rejected")
	}
}

func TestUserIDFromAuthHeaderRejectsBadSignature(t *testing.T) {
	signed := signHS256(t, []byte("other-secret"), jwt.MapClaims{
		"sub": "user-123",
		"aud": "api://taskdeck",
		"iss": "https://issuer/",
		"exp": time.Now().Add(5 * time.Minute).Unix(),
	})

	if _, err := hs256Auth([]byte("test-secret")).UserIDFromAuthHeader("Bearer " + signed); err == nil {
		t.Fatal("expected signature mismatch to be rejected")
	}
}
