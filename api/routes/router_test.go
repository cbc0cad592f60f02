package routes

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cajaregistradora/pos-backend/pkg/config"
	"github.com/cajaregistradora/pos-backend/pkg/logger"
)

func testDeps() Deps {
	return Deps{
		Config: &config.Config{
			App: config.AppConfig{Env: "dev", Port: "8080"},
			JWT: config.JWTConfig{Secret: "test-secret", Issuer: "cajapos-test", ExpirationMinutes: 15},
		},
		Logger: logger.New(logger.Options{Output: io.Discard}),
	}
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := New(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "live") {
		t.Errorf("unexpected body %s", rec.Body.String())
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	router := New(testDeps())

	paths := []string{
		"/api/v1/products",
		"/api/v1/sales",
		"/api/v1/reports/summary",
		"/api/v1/profile",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rec.Code)
		}
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	router := New(testDeps())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
