package server_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"repairdesk/config"
	"repairdesk/internal/app"
	"repairdesk/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

func newTestServer(logs *bytes.Buffer) *server.Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 0},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://portal.test"}},
		JWT:    config.JWTConfig{Secret: "secret"},
	}
	return server.NewServer(&app.Application{
		Config:    cfg,
		Logger:    slog.New(slog.NewTextHandler(logs, nil)),
		Validator: validator.New(),
	})
}

func TestServer_Health(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(&logs)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
	assert.Contains(t, logs.String(), "path=/health")
	assert.Contains(t, logs.String(), "status=200")
}

func TestServer_ProtectedRoutesNeedToken(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(&logs)

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/admin/sweeps/overdue", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, logs.String(), "level=WARN")
}

func TestServer_CORS(t *testing.T) {
	var logs bytes.Buffer
	srv := newTestServer(&logs)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/jobs/abc/status", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		w := httptest.NewRecorder()
		srv.Handler().ServeHTTP(w, req)
		return w
	}

	w := preflight("https://portal.test")
	assert.Equal(t, "https://portal.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight("https://evil.test")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
