package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpHandlers "github.com/fokusplaner/core/internal/adapters/http"
	"github.com/fokusplaner/core/internal/adapters/storage"
	"github.com/fokusplaner/core/internal/application/services"
	"github.com/fokusplaner/core/internal/infrastructure/config"
	"github.com/fokusplaner/core/internal/infrastructure/logger"
	"github.com/fokusplaner/core/internal/infrastructure/metrics"
	"github.com/fokusplaner/core/internal/ports"
)

type fakeStorage struct {
	info ports.StorageInfo
	err  error
}

func (f fakeStorage) Info() ports.StorageInfo { return f.info }

func (f fakeStorage) HealthCheck(context.Context) error { return f.err }

func newTestServer(t *testing.T, security config.SecurityConfig, probe StorageProbe) *Server {
	t.Helper()

	log := logger.NewNop()
	m := metrics.New("test")
	st := storage.NewKVStorage(storage.NewMemoryKV(), "", "memory", "memory")
	p := services.NewPlanner(st, log, services.Options{Metrics: m})
	require.NoError(t, p.Load(context.Background()))
	t.Cleanup(func() { _ = p.Close() })

	cfg := &config.Config{
		App:      config.AppConfig{Version: "test"},
		Security: security,
		Metrics:  config.MetricsConfig{Enabled: true},
	}
	return New(cfg, httpHandlers.NewHandlers(p, nil, log), probe, m, log)
}

func serve(s *Server, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestServer_HealthAndReady(t *testing.T) {
	s := newTestServer(t, config.SecurityConfig{CORSAllowedOrigins: "*"}, fakeStorage{info: ports.StorageInfo{Backend: "memory", Available: true}})

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/health").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/ready").Code)

	rec := serve(s, http.MethodGet, "/health/detailed")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"backend":"memory"`)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestServer_NotReadyWithoutStorage(t *testing.T) {
	s := newTestServer(t, config.SecurityConfig{CORSAllowedOrigins: "*"}, fakeStorage{info: ports.StorageInfo{Backend: "redis"}})

	assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/ready").Code)
	assert.Equal(t, http.StatusServiceUnavailable, serve(s, http.MethodGet, "/health/detailed").Code)
}

func TestServer_NotReadyWhenBackendFailsHealthCheck(t *testing.T) {
	probe := fakeStorage{
		info: ports.StorageInfo{Backend: "sql", Location: "postgres", Available: true},
		err:  errors.New("connection refused"),
	}
	s := newTestServer(t, config.SecurityConfig{CORSAllowedOrigins: "*"}, probe)

	rec := serve(s, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "storage_unhealthy")

	rec = serve(s, http.MethodGet, "/health/detailed")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"reason":"storage_unhealthy"`)
}

func TestServer_ErrorsAndMetrics(t *testing.T) {
	s := newTestServer(t, config.SecurityConfig{CORSAllowedOrigins: "*"}, fakeStorage{info: ports.StorageInfo{Available: true}})

	rec := serve(s, http.MethodGet, "/api/v1/tasks/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"task not found: missing"}`, rec.Body.String())

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/tasks").Code)

	rec = serve(s, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/v1/tasks/:id",status="404"} 1`)
}

func TestServer_RateLimit(t *testing.T) {
	security := config.SecurityConfig{CORSAllowedOrigins: "*", RateLimitRequests: 2, RateLimitWindow: time.Hour}
	s := newTestServer(t, security, fakeStorage{info: ports.StorageInfo{Available: true}})

	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/groups").Code)
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/api/v1/groups").Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(s, http.MethodGet, "/api/v1/groups").Code)

	// health checks are not limited
	assert.Equal(t, http.StatusOK, serve(s, http.MethodGet, "/health").Code)
}
