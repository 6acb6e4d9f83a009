package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/harmonia-academy/harmonia-web/config"
	httpx "github.com/harmonia-academy/harmonia-web/internal/http"
)

const shutdownWaitTimeout = 10 * time.Second

// HTTPServerConfig contains configuration for HTTP server.
type HTTPServerConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// RouterServices maps the container onto the router dependencies.
func RouterServices(cfg *HTTPServerConfig) httpx.RouterServices {
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	ready := map[string]httpx.Pinger{}
	if cfg.RedisClient != nil {
		client := cfg.RedisClient
		ready["redis"] = httpx.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	services := httpx.RouterServices{
		Classes:        cfg.Services.Classes,
		Students:       cfg.Services.Students,
		Transactions:   cfg.Services.Transactions,
		Auth:           cfg.Services.Auth,
		CookieDomain:   appCfg.HTTP.CookieDomain,
		MaxUploadBytes: appCfg.Storage.MaxUploadBytes,
		Ready:          ready,
		Dialogs:        cfg.Services.Dialogs,
		IsDev:          appCfg.IsDev,
		Logger:         cfg.Logger,
	}
	if cfg.Services.Metrics != nil {
		services.Metrics = cfg.Services.Metrics
	}
	return services
}

// StartHTTPServer creates and starts the HTTP server.
// Returns the server instance for graceful shutdown; serve errors go to errCh.
func StartHTTPServer(cfg *HTTPServerConfig, errCh chan<- error) *http.Server {
	if cfg == nil {
		return nil
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	appCfg := cfg.Config
	if appCfg == nil {
		appCfg = &config.AppConfig{}
	}

	handler := buildHTTPHandler(httpHandlerConfig{
		Logger:   cfg.Logger,
		Services: RouterServices(cfg),
		HTTP:     appCfg.HTTP,
	})

	return startServer(cfg.Logger, handler, appCfg.HTTP.Addr, errCh)
}

type httpHandlerConfig struct {
	Logger   *slog.Logger
	Services httpx.RouterServices
	HTTP     config.HTTPConfig
}

func buildHTTPHandler(cfg httpHandlerConfig) http.Handler {
	router := httpx.NewRouter(cfg.Services)

	// Order: RequestID -> Recover -> Logging -> Compression -> Router.
	// Compression is innermost so logging captures compressed sizes.
	h := router
	if cfg.HTTP.CompressionEnabled {
		cfg.Logger.Info("HTTP compression enabled", "level", cfg.HTTP.CompressionLevel)
		h = httpx.Compression(httpx.CompressionConfig{Level: cfg.HTTP.CompressionLevel})(h)
	}

	h = httpx.Logging(cfg.Logger)(h)
	h = httpx.Recover(cfg.Logger)(h)
	h = httpx.RequestID()(h)

	return h
}

func startServer(logger *slog.Logger, handler http.Handler, addr string, errCh chan<- error) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}

	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting HTTP server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server failed", "error", err)
			if errCh != nil {
				errCh <- err
			}
		}
	}()

	return server
}

// ShutdownHTTPServer gracefully shuts down the HTTP server.
func ShutdownHTTPServer(ctx context.Context, server *http.Server, logger *slog.Logger) error {
	if server == nil {
		return nil
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownWaitTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("HTTP server stopped")
	return nil
}
