package http

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/interfaces/http/handlers"
	"github.com/turtacn/cdforge/internal/interfaces/http/middleware"
)

// RouterConfig aggregates all handler and middleware dependencies required
// to construct the route tree.
type RouterConfig struct {
	// Handlers
	StructureHandler *handlers.StructureHandler
	SessionHandler   *handlers.SessionHandler
	HealthHandler    *handlers.HealthHandler

	// Middleware
	CORS        *middleware.CORSConfig
	RateLimit   *middleware.RateLimitConfig
	Logging     middleware.LoggingConfig
	MaxBodySize int64

	// Infrastructure
	Logger           logging.Logger
	Metrics          *prometheus.AppMetrics
	MetricsCollector prometheus.MetricsCollector
	MetricsPath      string
}

// NewRouter constructs the gin engine.  Nil handlers and middleware configs
// leave their routes or layers out.
func NewRouter(cfg RouterConfig) *gin.Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.NewNopLogger()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = prometheus.NewNoopAppMetrics()
	}

	r := gin.New()

	// Global middleware, outermost first.
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger, cfg.Logging))
	r.Use(middleware.Metrics(cfg.Metrics))
	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit, cfg.Metrics))
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(r)
	}
	if cfg.MetricsCollector != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(cfg.MetricsCollector.Handler()))
	}
	if cfg.StructureHandler != nil {
		cfg.StructureHandler.RegisterRoutes(r)
	}
	if cfg.SessionHandler != nil {
		cfg.SessionHandler.RegisterRoutes(r)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"success": false, "error": "not found"})
	})
	return r
}

//Personal.AI order the ending
