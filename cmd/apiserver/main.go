// API server entry point for cdforge.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/cdforge/internal/app"
	"github.com/turtacn/cdforge/internal/config"
	"github.com/turtacn/cdforge/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cdforge/internal/interfaces/cli"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment and built-in defaults)")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	flag.Parse()

	if err := run(*configPath, *port); err != nil {
		fmt.Fprintf(os.Stderr, "cdforge apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int) error {
	cfg, err := config.LoadOrEnv(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}

	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger, cli.Version)
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		return err
	}
	defer a.Close()

	if configPath != "" {
		config.Watch(configPath, func(next *config.Config) {
			level, err := logging.ParseLevel(next.Log.Level)
			if err != nil {
				return
			}
			if logging.SetLevel(logger, level) {
				logger.Info("log level updated", logging.String("level", level.String()))
			}
		}, func(err error) {
			logger.Warn("config reload rejected", logging.Err(err))
		})
	}

	logger.Info("starting cdforge API server",
		logging.String("version", cli.Version),
		logging.String("addr", cfg.Server.Addr()),
		logging.String("status_policy", cfg.Server.StatusPolicy))

	if err := a.Run(ctx); err != nil {
		logger.Error("server stopped with error", logging.Err(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}

//Personal.AI order the ending
