package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	authsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/auth"
)

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	mw := AuthMiddleware(jwtManager, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/compliances", nil)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without a token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	token, _, err := jwtManager.GenerateAccessToken("user-1", authsvc.RoleModerator)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	mw := AuthMiddleware(jwtManager, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/compliances", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok {
			t.Fatalf("identity missing in context")
		}
		if identity.UserID != "user-1" || !identity.IsModerator() {
			t.Fatalf("identity mismatch: %+v", identity)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsTokenSignedWithOtherSecret(t *testing.T) {
	other := authsvc.NewJWTManager("other-secret", 15*time.Minute)
	token, _, err := other.GenerateAccessToken("user-1", authsvc.RoleUser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	mw := AuthMiddleware(jwtManager, zap.NewNop())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/compliances", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called with a forged token")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireModeratorRejectsRegularUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/claims", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: "user-2",
		Role:   authsvc.RoleUser,
	}))
	rr := httptest.NewRecorder()

	RequireModerator(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for a regular user")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireModeratorAllowsModerator(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/moderation/claims", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: "mod-1",
		Role:   authsvc.RoleModerator,
	}))
	rr := httptest.NewRecorder()

	RequireModerator(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		got, ok := extractBearerToken(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("extractBearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}
