package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/testutil"
)

func TestRequestID_Generated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(RequestID())
	var seen string
	e.GET("/x", func(c *gin.Context) {
		seen = logging.RequestIDFromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	id := w.Header().Get(HeaderRequestID)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, id, seen)
}

func TestRequestID_Propagated(t *testing.T) {
	e := newTestEngine(RequestID())
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-42")
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("a", 200))
	w = httptest.NewRecorder()
	e.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get(HeaderRequestID), 36)
}

func TestBodyLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(BodyLimit(8))
	e.POST("/x", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("short")))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", strings.NewReader("much too long")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestRequestLogging_LevelByStatus(t *testing.T) {
	logger := testutil.NewMockLogger()
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(RequestLogging(logger, DefaultLoggingConfig()))
	e.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	e.GET("/bad", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	e.GET("/boom", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	e.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, p := range []string{"/ok", "/bad", "/boom", "/healthz"} {
		e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	msg, ok := logger.Find("info", "HTTP request completed")
	require.True(t, ok)
	path, _ := msg.Field("path")
	assert.Equal(t, "/ok", path)
	assert.True(t, logger.HasMessage("warn", "HTTP request completed with client error"))
	assert.True(t, logger.HasMessage("error", "HTTP request completed with server error"))
	assert.Len(t, logger.GetMessages(), 3)
}

func TestMetrics_LabelsByRoute(t *testing.T) {
	c, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "mw"}, nil)
	require.NoError(t, err)
	m := prometheus.NewAppMetrics(c)

	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(Metrics(m))
	e.GET("/sesiones/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sesiones/a", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sesiones/b", nil))
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	out := w.Body.String()
	assert.Contains(t, out, `mw_http_requests_total{method="GET",path="/sesiones/:id",status_code="200"} 2`)
	assert.Contains(t, out, `mw_http_requests_total{method="GET",path="unmatched",status_code="404"} 1`)
	assert.Contains(t, out, "mw_http_active_requests 0")
}

func TestRecovery(t *testing.T) {
	logger := testutil.NewMockLogger()
	gin.SetMode(gin.TestMode)
	e := gin.New()
	e.Use(Recovery(logger))
	e.GET("/panic", func(*gin.Context) { panic("kaboom") })

	w := httptest.NewRecorder()
	e.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, w.Body.String())
	assert.True(t, logger.HasMessage("error", "panic recovered"))
}

//Personal.AI order the ending
