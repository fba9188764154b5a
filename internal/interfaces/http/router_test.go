package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cdforge/internal/application/generation"
	"github.com/turtacn/cdforge/internal/application/lifecycle"
	"github.com/turtacn/cdforge/internal/application/minimization"
	"github.com/turtacn/cdforge/internal/config"
	domain "github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/interfaces/http/handlers"
	"github.com/turtacn/cdforge/internal/interfaces/http/middleware"
	"github.com/turtacn/cdforge/internal/testutil"
	"github.com/turtacn/cdforge/pkg/errors"
)

type stubGenerator struct{}

func (stubGenerator) Generate(context.Context, *generation.GenerateInput) (*generation.GenerateResult, error) {
	return &generation.GenerateResult{SessionID: "abc", UserDir: "static/abc", SMILES: "C"}, nil
}

type stubMinimizer struct{ called bool }

func (s *stubMinimizer) Minimize(context.Context, *minimization.MinimizeInput) (*minimization.MinimizeResult, error) {
	s.called = true
	return &minimization.MinimizeResult{PDB: "END"}, nil
}

type stubSessions struct{}

func (stubSessions) Get(_ context.Context, id string) (*domain.Session, error) {
	return nil, errors.New(errors.CodeSessionNotFound, "session not found")
}
func (stubSessions) Delete(context.Context, string) error { return nil }
func (stubSessions) Sweep(context.Context) (*lifecycle.SweepReport, error) {
	return &lifecycle.SweepReport{}, nil
}

func init() {
	gin.SetMode(gin.TestMode)
}

func fullConfig(t *testing.T) (RouterConfig, *stubMinimizer, prometheus.MetricsCollector) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "router"}, nil)
	require.NoError(t, err)
	metrics := prometheus.NewAppMetrics(collector)
	logger := testutil.NewMockLogger()
	mz := &stubMinimizer{}
	cors := middleware.DefaultCORSConfig()
	return RouterConfig{
		StructureHandler: handlers.NewStructureHandler(stubGenerator{}, mz, config.StatusPolicyConsistent, logger),
		SessionHandler:   handlers.NewSessionHandler(stubSessions{}, logger),
		HealthHandler:    handlers.NewHealthHandler("test", metrics),
		CORS:             &cors,
		Logging:          middleware.DefaultLoggingConfig(),
		MaxBodySize:      64,
		Logger:           logger,
		Metrics:          metrics,
		MetricsCollector: collector,
	}, mz, collector
}

func TestNewRouter_RoutesRegistered(t *testing.T) {
	cfg, _, _ := fullConfig(t)
	router := NewRouter(cfg)

	got := map[string]bool{}
	for _, ri := range router.Routes() {
		got[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"POST /generar_estructura",
		"POST /minimizar_estructura",
		"GET /sesiones/:id",
		"DELETE /sesiones/:id",
		"GET /healthz",
		"GET /readyz",
		"GET /metrics",
	} {
		assert.True(t, got[want], want)
	}
}

func TestNewRouter_NilHandlers_NoPanic(t *testing.T) {
	router := NewRouter(RouterConfig{})
	assert.Empty(t, router.Routes())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"not found"}`, rec.Body.String())
}

func TestNewRouter_GlobalMiddleware_Applied(t *testing.T) {
	cfg, _, _ := fullConfig(t)
	router := NewRouter(cfg)

	req := httptest.NewRequest(http.MethodPost, "/generar_estructura", strings.NewReader(`{"string_canonico":"a6"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://ui.example.org")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.HeaderRequestID))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewRouter_Preflight(t *testing.T) {
	cfg, _, _ := fullConfig(t)
	router := NewRouter(cfg)

	req := httptest.NewRequest(http.MethodOptions, "/minimizar_estructura", nil)
	req.Header.Set("Origin", "https://ui.example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestNewRouter_BodyLimit(t *testing.T) {
	cfg, mz, _ := fullConfig(t)
	router := NewRouter(cfg)

	body := `{"pdb_data":"` + strings.Repeat("A", 200) + `","user_dir":"static/abc"}`
	req := httptest.NewRequest(http.MethodPost, "/minimizar_estructura", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required data")
	assert.False(t, mz.called)
}

func TestNewRouter_RateLimit(t *testing.T) {
	cfg, _, _ := fullConfig(t)
	rl := middleware.DefaultRateLimitConfig()
	rl.RequestsPerSecond, rl.BurstSize = 0.01, 1
	cfg.RateLimit = &rl
	router := NewRouter(cfg)

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sesiones/abc", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNotFound, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	cfg, _, _ := fullConfig(t)
	router := NewRouter(cfg)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sesiones/abc", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `router_http_requests_total{method="GET",path="/sesiones/:id",status_code="404"} 1`)
}

//Personal.AI order the ending
