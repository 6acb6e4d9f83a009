package bootstrap

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-academy/harmonia-web/config"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/storage"
)

func testAppConfig() *config.AppConfig {
	cfg := &config.AppConfig{
		Auth: devAuthConfig(),
		API: config.APIConfig{
			BaseURL:         "http://api.test/api",
			DefaultPageSize: 20,
			MaxPageSize:     50,
			Dedupe:          true,
		},
		Storage: config.StorageConfig{Backend: config.StorageBackendAPI, UploadEndpoint: "storage/upload"},
	}
	cfg.Sanitize()
	return cfg
}

func TestNewServicesWiresContainer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	svc, err := NewServices(context.Background(), &ServiceDeps{
		Config:      testAppConfig(),
		RedisClient: client,
		Logger:      discardLogger(),
	})
	require.NoError(t, err)

	assert.NotNil(t, svc.API)
	assert.NotNil(t, svc.Classes)
	assert.NotNil(t, svc.Students)
	assert.NotNil(t, svc.Transactions)
	assert.NotNil(t, svc.Auth)
	assert.NotNil(t, svc.Dialogs)
	assert.Nil(t, svc.Metrics)
}

func TestNewServicesRejectsMissingPieces(t *testing.T) {
	_, err := NewServices(context.Background(), &ServiceDeps{})
	require.Error(t, err)

	cfg := testAppConfig()
	cfg.API.BaseURL = "ftp://api.test"
	_, err = NewServices(context.Background(), &ServiceDeps{Config: cfg, Logger: discardLogger()})
	require.Error(t, err)
}

func TestSchoolOptionsCarriesPagingDefaults(t *testing.T) {
	cfg := testAppConfig().API
	client, err := NewAPIClient(cfg, discardLogger(), nil)
	require.NoError(t, err)

	opts := SchoolOptions(cfg, client, discardLogger())
	assert.Equal(t, listing.Defaults{PageSize: 20, MaxPageSize: 50, SortDirection: listing.Asc}, opts.Defaults)
	assert.NotNil(t, opts.Dedupe)

	cfg.Dedupe = false
	assert.Nil(t, SchoolOptions(cfg, client, discardLogger()).Dedupe)
}

func TestBuildUploaderDefaultsToAPI(t *testing.T) {
	cfg := testAppConfig()
	client, err := NewAPIClient(cfg.API, discardLogger(), nil)
	require.NoError(t, err)

	up, err := buildUploader(context.Background(), cfg.Storage, client, discardLogger())
	require.NoError(t, err)
	assert.IsType(t, &storage.APIUploader{}, up)
}

func TestValidateConfig(t *testing.T) {
	require.NoError(t, ValidateConfig(testAppConfig()))
	require.Error(t, ValidateConfig(nil))

	oauth := testAppConfig()
	oauth.Auth.Mode = config.AuthModeOAuth
	require.Error(t, ValidateConfig(oauth))

	azure := testAppConfig()
	azure.Storage.Backend = config.StorageBackendAzure
	require.Error(t, ValidateConfig(azure))
}

func TestValidateCookieDomain(t *testing.T) {
	tests := map[string]bool{
		"":                       true,
		"admin.harmonia.example": true,
		".harmonia.edu.vn":       true,
		"localhost":              true,
		"co.uk":                  false,
		"edu.vn":                 false,
		"com":                    false,
		"github.io":              false,
	}
	for domain, ok := range tests {
		err := validateCookieDomain(domain)
		if ok {
			assert.NoError(t, err, domain)
		} else {
			assert.Error(t, err, domain)
		}
	}
}

func TestShutdownHTTPServer(t *testing.T) {
	require.NoError(t, ShutdownHTTPServer(context.Background(), nil, nil))
	require.NoError(t, ShutdownHTTPServer(context.Background(), &http.Server{}, discardLogger()))
}

func TestBuildHTTPHandlerAssignsRequestID(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testAppConfig()
	svc, err := NewServices(context.Background(), &ServiceDeps{Config: cfg, RedisClient: client, Logger: discardLogger()})
	require.NoError(t, err)

	h := buildHTTPHandler(httpHandlerConfig{
		Logger:   discardLogger(),
		Services: RouterServices(&HTTPServerConfig{Config: cfg, Services: svc, Logger: discardLogger()}),
		HTTP:     config.HTTPConfig{CompressionEnabled: true, CompressionLevel: 5},
	})

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}

func TestRunWithShutdownStopsOnCancel(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })

	cfg := testAppConfig()
	cfg.HTTP.Addr = "127.0.0.1:0"
	svc, err := NewServices(context.Background(), &ServiceDeps{Config: cfg, RedisClient: client, Logger: discardLogger()})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- RunWithShutdown(ctx, &RunConfig{Config: cfg, Services: svc, Logger: discardLogger()})
	}()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
