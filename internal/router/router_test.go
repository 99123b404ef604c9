package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/plantpal/internal/handler"
	"github.com/plantpal/internal/plant"
	"github.com/plantpal/internal/storage"
)

func newTestRouter(t *testing.T, origins []string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := plant.Open(context.Background(), storage.NewMemoryStore(), "Fern")
	api := handler.NewAPI(handler.Dependencies{Plants: store})
	return SetupRouter(api, Options{SessionSecret: "test-secret", CORSOrigins: origins})
}

func TestSetupRouterPing(t *testing.T) {
	r := newTestRouter(t, nil)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "pong") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestSetupRouterRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/api/plant", "", http.StatusOK},
		{http.MethodPut, "/api/plant/mood", `{"mood":"sad"}`, http.StatusOK},
		{http.MethodPost, "/api/plant/grow", "", http.StatusOK},
		{http.MethodGet, "/api/plant/history?days=7", "", http.StatusOK},
		{http.MethodGet, "/api/plant/insights", "", http.StatusOK},
		{http.MethodPost, "/api/chat", `{"message":"hi"}`, http.StatusOK},
		{http.MethodGet, "/api/motivation", "", http.StatusOK},
		{http.MethodPost, "/api/motivation/refresh", "", http.StatusOK},
		{http.MethodGet, "/api/admin/settings", "", http.StatusUnauthorized},
		{http.MethodPost, "/api/admin/login", `{"username":"a","password":"b"}`, http.StatusServiceUnavailable},
		{http.MethodDelete, "/api/plant", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			if tt.body != "" {
				req.Header.Set("Content-Type", "application/json")
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != tt.status {
				t.Fatalf("expected %d, got %d (%s)", tt.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestSetupRouterCORS(t *testing.T) {
	r := newTestRouter(t, []string{"http://localhost:5173"})

	req := httptest.NewRequest(http.MethodOptions, "/api/plant", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/plant", nil)
	req.Header.Set("Origin", "http://evil.test")
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for disallowed origin, got %d", rr.Code)
	}
}
