package integration_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/app/apiapp"
	"github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/config"
	authsvc "github.com/TomyTiseira/CONEXIA-BACK-sub002/internal/services/auth"
)

func newTestRouter() http.Handler {
	r := chi.NewRouter()
	apiapp.ApplyMiddlewares(r, zap.NewNop())
	apiapp.RegisterRoutes(r, apiapp.Dependencies{
		JWTManager: authsvc.NewJWTManager("smoke-secret", 15*time.Minute),
		Logger:     zap.NewNop(),
		Config:     config.Default(),
	})
	return r
}

func TestHealthz(t *testing.T) {
	ts := httptest.NewServer(newTestRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestAPIRequiresAuthentication(t *testing.T) {
	ts := httptest.NewServer(newTestRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/v1/compliances")
	if err != nil {
		t.Fatalf("get compliances: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusUnauthorized)
	}
}

func TestModerationRoutesRejectRegularUsers(t *testing.T) {
	jwtManager := authsvc.NewJWTManager("smoke-secret", 15*time.Minute)
	token, _, err := jwtManager.GenerateAccessToken("user-1", authsvc.RoleUser)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	ts := httptest.NewServer(newTestRouter())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/claims", nil)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("list claims: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusForbidden)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	ts := httptest.NewServer(newTestRouter())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("get metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}
}
