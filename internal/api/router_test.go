package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callshield/backend/internal/config"
	"github.com/callshield/backend/internal/queue"
)

func testRouter(t *testing.T) http.Handler {
	t.Helper()
	cfg := &config.Config{}
	cfg.CORS.AllowedOrigins = []string{"*"}
	cfg.Upload.MaxBytes = 32 << 20

	rt := NewRouter(nil, nil, queue.NewClient(cfg.Redis), cfg)
	return rt.Setup()
}

func TestRouterHealthEndpoints(t *testing.T) {
	handler := testRouter(t)

	for _, path := range []string{"/healthz", "/api/", "/api/health"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	handler := testRouter(t)

	req := httptest.NewRequest("GET", "/api/unknown", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterSetsCORSHeaders(t *testing.T) {
	handler := testRouter(t)

	req := httptest.NewRequest("GET", "/api/health", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
