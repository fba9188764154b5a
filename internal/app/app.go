// Package app assembles cdforge's components from configuration and runs
// the HTTP server together with the workspace janitor.
package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"github.com/turtacn/cdforge/internal/application/generation"
	"github.com/turtacn/cdforge/internal/application/lifecycle"
	"github.com/turtacn/cdforge/internal/application/minimization"
	"github.com/turtacn/cdforge/internal/config"
	"github.com/turtacn/cdforge/internal/domain/structure"
	"github.com/turtacn/cdforge/internal/infrastructure/chemistry/bridge"
	"github.com/turtacn/cdforge/internal/infrastructure/chemistry/openbabel"
	"github.com/turtacn/cdforge/internal/infrastructure/database/memory"
	redisstore "github.com/turtacn/cdforge/internal/infrastructure/database/redis"
	"github.com/turtacn/cdforge/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/cdforge/internal/infrastructure/process"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/minio"
	"github.com/turtacn/cdforge/internal/infrastructure/storage/workspace"
	httpserver "github.com/turtacn/cdforge/internal/interfaces/http"
	"github.com/turtacn/cdforge/internal/interfaces/http/handlers"
	"github.com/turtacn/cdforge/internal/interfaces/http/middleware"
)

// App holds every long-lived component.
type App struct {
	Config  *config.Config
	Logger  logging.Logger
	Version string

	Collector  prometheus.MetricsCollector
	Metrics    *prometheus.AppMetrics
	Workspaces *workspace.Manager
	Sessions   structure.SessionRepository

	Generation   generation.Service
	Minimization minimization.Service
	Lifecycle    lifecycle.Service
	Janitor      *lifecycle.Janitor

	redis     *redisstore.Client
	archiver  *minio.Archiver
	publisher *kafka.Publisher
}

// New builds the application.  Redis, MinIO and Kafka are connected only
// when the configuration enables them.  On error every component already
// opened is closed.
func New(ctx context.Context, cfg *config.Config, logger logging.Logger, version string) (*App, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &App{Config: cfg, Logger: logger, Version: version}
	if err := a.init(ctx); err != nil {
		_ = a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, logger := a.Config, a.Logger

	if cfg.Metrics.Enabled {
		collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
			Namespace:            cfg.Metrics.Namespace,
			EnableProcessMetrics: true,
			EnableGoMetrics:      true,
		}, logger)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		a.Collector = collector
		a.Metrics = prometheus.NewAppMetrics(collector)
	} else {
		a.Metrics = prometheus.NewNoopAppMetrics()
	}

	ws, err := workspace.NewManager(cfg.Workspace.Root, logger)
	if err != nil {
		return fmt.Errorf("workspace: %w", err)
	}
	a.Workspaces = ws

	switch cfg.Session.Backend {
	case "redis":
		client, err := redisstore.NewClient(&redisstore.RedisConfig{
			Addr:         cfg.Redis.Addr,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		a.redis = client
		a.Sessions = redisstore.NewSessionStore(client, logger,
			redisstore.WithPrefix(cfg.Redis.KeyPrefix),
			redisstore.WithTTL(cfg.Session.TTL))
	default:
		a.Sessions = memory.NewSessionStore(cfg.Session.TTL)
	}

	var (
		archiver  generation.Archiver
		remover   lifecycle.ArtifactRemover
		publisher generation.EventPublisher
	)
	if cfg.MinIO.Enabled {
		client, err := minio.NewMinIOClient(ctx, &minio.MinIOConfig{
			Endpoint:      cfg.MinIO.Endpoint,
			AccessKey:     cfg.MinIO.AccessKey,
			SecretKey:     cfg.MinIO.SecretKey,
			UseSSL:        cfg.MinIO.UseSSL,
			Region:        cfg.MinIO.Region,
			Bucket:        cfg.MinIO.Bucket,
			PresignExpiry: cfg.MinIO.PresignExpiry,
			RetentionDays: cfg.MinIO.RetentionDays,
		}, logger)
		if err != nil {
			return fmt.Errorf("minio: %w", err)
		}
		a.archiver = minio.NewArchiver(client, logger)
		archiver, remover = a.archiver, a.archiver
	}
	if cfg.Kafka.Enabled {
		producer, err := kafka.NewProducer(kafka.ProducerConfig{
			Brokers:      cfg.Kafka.Brokers,
			ClientID:     cfg.Kafka.ClientID,
			Acks:         cfg.Kafka.Acks,
			BatchTimeout: cfg.Kafka.BatchTimeout,
		}, logger)
		if err != nil {
			return fmt.Errorf("kafka: %w", err)
		}
		a.publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic, logger)
		publisher = a.publisher
	}

	runner := process.NewExecRunner(logger, 0)
	collab, err := bridge.NewClient(runner, bridge.Config{
		Command: cfg.Bridge.Command,
		Timeout: cfg.Bridge.Timeout,
		Dir:     cfg.Bridge.Dir,
		Env:     cfg.Bridge.Env,
	}, logger)
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	toolkit := openbabel.NewToolkit(runner, openbabel.ToolkitConfig{
		Binary:  cfg.Toolkit.Binary,
		Timeout: cfg.Toolkit.Timeout,
	}, logger)
	if v, err := toolkit.Version(ctx); err != nil {
		logger.Warn("obabel version unavailable", logging.Err(err))
	} else {
		logger.Info("obabel detected", logging.String("version", v))
	}
	minimizer := openbabel.NewMinimizer(runner, openbabel.MinimizerConfig{
		Binary:  cfg.Minimizer.Binary,
		Timeout: cfg.Minimizer.Timeout,
	}, logger)

	render := structure.DefaultRenderOptions()
	render.Width, render.Height = cfg.Toolkit.ImageSize, cfg.Toolkit.ImageSize
	render.BondLineWidth = cfg.Toolkit.BondLineWidth
	render.AtomLabelFontSize = cfg.Toolkit.AtomLabelFontSize

	a.Generation, err = generation.NewService(generation.Dependencies{
		Workspaces:  ws,
		Interpreter: collab,
		Builder:     collab,
		Engine:      collab,
		Toolkit:     toolkit,
		Sessions:    a.Sessions,
		Archiver:    archiver,
		Publisher:   publisher,
		Metrics:     a.Metrics,
		Logger:      logger,
	}, generation.Config{
		WaitTimeout:     cfg.Assembly.WaitTimeout,
		PollInterval:    cfg.Assembly.PollInterval,
		MaxConcurrent:   cfg.Assembly.MaxConcurrent,
		RemoveOnFailure: cfg.Workspace.RemoveOnFailure,
		Render:          render,
	})
	if err != nil {
		return fmt.Errorf("generation: %w", err)
	}

	a.Minimization, err = minimization.NewService(minimization.Dependencies{
		Workspaces: ws,
		Minimizer:  minimizer,
		Sessions:   a.Sessions,
		Publisher:  publisher,
		Metrics:    a.Metrics,
		Logger:     logger,
	}, cfg.Minimizer.MaxConcurrent)
	if err != nil {
		return fmt.Errorf("minimization: %w", err)
	}

	a.Lifecycle, err = lifecycle.NewService(lifecycle.Dependencies{
		Workspaces: ws,
		Sessions:   a.Sessions,
		Archive:    remover,
		Publisher:  publisher,
		Metrics:    a.Metrics,
		Logger:     logger,
	}, cfg.Workspace.TTL)
	if err != nil {
		return fmt.Errorf("lifecycle: %w", err)
	}

	a.Janitor, err = lifecycle.NewJanitor(a.Lifecycle, cfg.Workspace.CleanupSchedule, logger)
	if err != nil {
		return err
	}

	logger.Info("cdforge components initialized",
		logging.String("workspace_root", ws.Root()),
		logging.String("session_backend", cfg.Session.Backend),
		logging.Bool("archive", a.archiver != nil),
		logging.Bool("events", a.publisher != nil))
	return nil
}

// HealthCheckers returns the readiness checks of the configured components.
func (a *App) HealthCheckers() []handlers.HealthChecker {
	checkers := []handlers.HealthChecker{
		handlers.DirChecker{Component: "workspace", Dir: a.Workspaces.Root()},
		handlers.BinaryChecker{Component: "obabel", Binary: a.Config.Minimizer.Binary},
		handlers.CheckFunc{Component: "sessions", Fn: a.Sessions.Ping},
	}
	if len(a.Config.Bridge.Command) > 0 {
		checkers = append(checkers, handlers.BinaryChecker{Component: "bridge", Binary: a.Config.Bridge.Command[0]})
	}
	if a.archiver != nil {
		checkers = append(checkers, handlers.CheckFunc{Component: "minio", Fn: a.archiver.Ping})
	}
	return checkers
}

// Router builds the HTTP handler tree.
func (a *App) Router() *gin.Engine {
	cfg := a.Config
	gin.SetMode(cfg.Server.Mode)

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.CORSOrigins
	}
	rc := httpserver.RouterConfig{
		StructureHandler: handlers.NewStructureHandler(a.Generation, a.Minimization, cfg.Server.StatusPolicy, a.Logger),
		SessionHandler:   handlers.NewSessionHandler(a.Lifecycle, a.Logger),
		HealthHandler:    handlers.NewHealthHandler(a.Version, a.Metrics, a.HealthCheckers()...),
		CORS:             &cors,
		Logging:          middleware.DefaultLoggingConfig(),
		MaxBodySize:      cfg.Server.MaxBodySize,
		Logger:           a.Logger,
		Metrics:          a.Metrics,
	}
	if cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.BurstSize = cfg.RateLimit.Burst
		rc.RateLimit = &rl
	}
	if a.Collector != nil {
		rc.MetricsCollector = a.Collector
		rc.MetricsPath = cfg.Metrics.Path
	}
	return httpserver.NewRouter(rc)
}

// Run serves HTTP and runs the janitor until ctx is cancelled, then shuts
// both down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := httpserver.NewServer(a.Config.Server, a.Router(), a.Logger)
	if err := a.Janitor.Start(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		stopCtx := context.WithoutCancel(ctx)
		err := srv.Stop(stopCtx)
		if jerr := a.Janitor.Stop(stopCtx); jerr != nil && err == nil {
			err = jerr
		}
		return err
	})
	return g.Wait()
}

// Close releases external connections.
func (a *App) Close() error {
	var first error
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil && first == nil {
			first = err
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

//Personal.AI order the ending
