package auth

import (
	"errors"
	"testing"
	"time"
)

func TestGenerateAndParseAccessToken(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute)
	manager.now = func() time.Time { return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC) }

	token, expiresAt, err := manager.GenerateAccessToken("user-1", RoleModerator)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if got, want := expiresAt, time.Date(2025, 3, 10, 12, 15, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", got, want)
	}

	claims, err := manager.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", claims.UserID)
	}
	if claims.Role != RoleModerator {
		t.Fatalf("Role = %q, want %q", claims.Role, RoleModerator)
	}
}

func TestParseAccessTokenRejectsBadInput(t *testing.T) {
	manager := NewJWTManager("test-secret", 15*time.Minute)

	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "not.a.token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := manager.ParseAccessToken(tc.raw); !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	issuer := NewJWTManager("secret-a", 15*time.Minute)
	verifier := NewJWTManager("secret-b", 15*time.Minute)

	token, _, err := issuer.GenerateAccessToken("user-1", RoleUser)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := verifier.ParseAccessToken(token); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
