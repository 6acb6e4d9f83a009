package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/harmonia-academy/harmonia-web/config"
	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/mutation"
	"github.com/harmonia-academy/harmonia-web/internal/observability/statsd"
	"github.com/harmonia-academy/harmonia-web/internal/service"
	"github.com/harmonia-academy/harmonia-web/internal/storage"
)

const userAgent = "harmonia-web"

// ServiceContainer holds all application services.
type ServiceContainer struct {
	API          *apiclient.Client
	Classes      *service.ClassService
	Students     *service.StudentService
	Transactions *service.TransactionService
	Auth         *service.AuthService
	Dialogs      *mutation.Registry
	Metrics      *statsd.Client
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// NewServices wires the API client, upload storage and the page services.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps require config")
	}
	cfg := deps.Config
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	metrics := buildMetrics(logger, cfg.Observability.Metrics)
	var sink statsd.Sink
	if metrics != nil {
		sink = metrics
	}

	client, err := NewAPIClient(cfg.API, logger, sink)
	if err != nil {
		return ServiceContainer{}, err
	}

	uploader, err := buildUploader(ctx, cfg.Storage, client, logger)
	if err != nil {
		return ServiceContainer{}, err
	}

	auth, err := BuildAuthService(AuthConfig{
		Auth:          cfg.Auth,
		RedisClient:   deps.RedisClient,
		SessionPrefix: cfg.Redis.SessionPrefix,
		Logger:        logger,
	})
	if err != nil {
		return ServiceContainer{}, err
	}

	school := SchoolOptions(cfg.API, client, logger)

	classes, err := service.NewClassService(school)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("class service: %w", err)
	}
	students, err := service.NewStudentService(service.StudentServiceOptions{
		SchoolServiceOptions: school,
		Uploader:             uploader,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("student service: %w", err)
	}
	transactions, err := service.NewTransactionService(service.TransactionServiceOptions{
		SchoolServiceOptions: school,
		ExportLimit:          cfg.API.ExportLimit,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("transaction service: %w", err)
	}

	return ServiceContainer{
		API:          client,
		Classes:      classes,
		Students:     students,
		Transactions: transactions,
		Auth:         auth,
		Dialogs:      mutation.NewRegistry(0),
		Metrics:      metrics,
	}, nil
}

// NewAPIClient builds the school API client from cfg.
func NewAPIClient(cfg config.APIConfig, logger *slog.Logger, metrics statsd.Sink) (*apiclient.Client, error) {
	client, err := apiclient.New(apiclient.Options{
		BaseURL:         cfg.BaseURL,
		Timeout:         cfg.Timeout,
		Logger:          logger,
		Metrics:         metrics,
		ErrorExpression: cfg.ErrorExpression,
		UserAgent:       userAgent,
	})
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return client, nil
}

// SchoolOptions returns the options shared by the list services.
func SchoolOptions(cfg config.APIConfig, client *apiclient.Client, logger *slog.Logger) service.SchoolServiceOptions {
	opts := service.SchoolServiceOptions{
		Client: client,
		Defaults: listing.Defaults{
			PageSize:      cfg.DefaultPageSize,
			MaxPageSize:   cfg.MaxPageSize,
			SortDirection: listing.Asc,
		},
		Logger: logger,
	}
	if cfg.Dedupe {
		opts.Dedupe = &apiclient.Deduper{}
	}
	return opts
}

// buildMetrics returns nil when metrics are disabled or the sink cannot be dialed.
func buildMetrics(logger *slog.Logger, cfg config.ObservabilityMetricsConfig) *statsd.Client {
	if !cfg.IsEnabled() {
		return nil
	}
	client, err := statsd.NewClient(statsd.Config{
		Enabled: true,
		Address: cfg.StatsdAddress,
		Prefix:  cfg.Prefix,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to initialise statsd client", "error", err)
		return nil
	}
	return client
}

//nolint:ireturn // the backend is chosen by config.
func buildUploader(ctx context.Context, cfg config.StorageConfig, client *apiclient.Client, logger *slog.Logger) (storage.Uploader, error) {
	switch cfg.Backend {
	case config.StorageBackendAzure:
		az, err := storage.NewAzureUploader(storage.AzureConfig{
			ConnectionString: cfg.AzureConnectionString,
			Container:        cfg.AzureContainer,
			PublicURL:        cfg.PublicURL,
			Logger:           logger,
		})
		if err != nil {
			return nil, fmt.Errorf("azure uploader: %w", err)
		}
		if err := az.EnsureContainer(ctx); err != nil {
			return nil, fmt.Errorf("azure uploader: %w", err)
		}
		logger.Info("upload storage configured", "backend", cfg.Backend, "container", cfg.AzureContainer)
		return az, nil
	default:
		logger.Info("upload storage configured", "backend", config.StorageBackendAPI, "endpoint", cfg.UploadEndpoint)
		return storage.NewAPIUploader(client, cfg.UploadEndpoint, cfg.PublicURL), nil
	}
}
