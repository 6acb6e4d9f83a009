package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/harmonia-academy/harmonia-web/config"
)

// RunConfig contains everything the server lifecycle needs.
type RunConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RunWithShutdown starts the HTTP server and blocks until a shutdown signal
// arrives or the server fails.
func RunWithShutdown(ctx context.Context, cfg *RunConfig) error {
	if cfg == nil || cfg.Config == nil {
		return errors.New("run config is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	server := StartHTTPServer(&HTTPServerConfig{
		Config:      cfg.Config,
		Services:    cfg.Services,
		RedisClient: cfg.RedisClient,
		Logger:      logger,
	}, errCh)

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down services...")
	case serveErr = <-errCh:
		logger.Error("service error", "error", serveErr)
	}

	// The parent context may already be canceled; shutdown gets its own deadline.
	if err := ShutdownHTTPServer(context.WithoutCancel(ctx), server, logger); err != nil {
		return errors.Join(serveErr, err)
	}
	if cfg.Services.Metrics != nil {
		if err := cfg.Services.Metrics.Close(); err != nil {
			logger.Warn("close metrics sink", "error", err)
		}
	}
	return serveErr
}
