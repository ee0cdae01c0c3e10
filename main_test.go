package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/config"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/repository"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/content/service"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/storage"
	"github.com/harbourstay/harbourstay/backend/cms-api/internal/tokens"
	"github.com/harbourstay/harbourstay/backend/cms-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Server:    config.ServerConfig{CORSOrigin: "https://harbourstay.example"},
		Auth:      config.AuthConfig{OperatorPassword: "pw", JWTSecret: "router-test-secret-0123456789abcdef", TTL: time.Hour, CookieName: "cms_session"},
		Content:   config.ContentConfig{Backend: "memory"},
		Upload:    config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1 << 20},
		RateLimit: config.RateLimitConfig{Enabled: true, RPS: 0.001, Burst: 2},
	}
	reg := prometheus.NewRegistry()
	metrics.RegisterCollectors(reg)
	return &app{
		cfg:      cfg,
		tokens:   tokens.NewService(cfg.Auth, tokens.WithBcryptCost(bcrypt.MinCost)),
		content:  service.New(repository.NewMemoryRepo()),
		uploader: storage.NewLocalUploader(cfg.Upload.Dir, "/uploads"),
		registry: reg,
	}
}

func serve(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	r := newRouter(testApp(t))

	w := serve(r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "healthy", w.Body.String())

	w = serve(r, http.MethodGet, "/ready", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"status":"ready"`)

	serve(r, http.MethodPost, "/api/login", `{"password":"nope"}`)
	w = serve(r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "cms_login_attempts_total")
}

func TestRouter_BothPrefixes(t *testing.T) {
	r := newRouter(testApp(t))
	for _, p := range []string{"/api/content", "/content"} {
		require.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, p, "").Code, p)
		require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, p, `{"siteName":"Hack"}`).Code, p)
	}
	for _, p := range []string{"/api/verify-auth", "/verify-auth"} {
		w := serve(r, http.MethodGet, p, "")
		require.Equal(t, http.StatusOK, w.Code, p)
		require.JSONEq(t, `{"authenticated":false}`, w.Body.String())
	}
}

func TestRouter_LoginLimiterSharedAcrossPrefixes(t *testing.T) {
	r := newRouter(testApp(t))
	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/api/login", `{"password":"x"}`).Code)
	require.Equal(t, http.StatusUnauthorized, serve(r, http.MethodPost, "/login", `{"password":"x"}`).Code)
	require.Equal(t, http.StatusTooManyRequests, serve(r, http.MethodPost, "/api/login", `{"password":"x"}`).Code)
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newRouter(testApp(t))
	req := httptest.NewRequest(http.MethodOptions, "/api/content", nil)
	req.Header.Set("Origin", "https://harbourstay.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "https://harbourstay.example", w.Header().Get("Access-Control-Allow-Origin"))
	require.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRouter_CORSRejectsOtherOrigins(t *testing.T) {
	r := newRouter(testApp(t))
	req := httptest.NewRequest(http.MethodGet, "/api/verify-auth", nil)
	req.Header.Set("Origin", "https://evil.example")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
