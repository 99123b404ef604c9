package logging

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewareLogsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.InfoLevel)

	r := gin.New()
	r.Use(Middleware(zap.New(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })

	for _, path := range []string{"/ok", "/bad"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	entries := logs.All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].Level != zapcore.InfoLevel || entries[0].ContextMap()["path"] != "/ok" {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].Level != zapcore.WarnLevel {
		t.Fatalf("expected warn level for 400, got %v", entries[1].Level)
	}
	if status, ok := entries[1].ContextMap()["status"].(int64); !ok || status != http.StatusBadRequest {
		t.Fatalf("unexpected status field: %#v", entries[1].ContextMap()["status"])
	}
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"", "production", "development", "DEV"} {
		logger, err := New(mode)
		if err != nil {
			t.Fatalf("mode %q: %v", mode, err)
		}
		if logger == nil {
			t.Fatalf("mode %q returned nil logger", mode)
		}
	}
}
