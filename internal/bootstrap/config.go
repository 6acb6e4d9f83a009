package bootstrap

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/net/publicsuffix"

	"github.com/harmonia-academy/harmonia-web/config"
)

// InitLogger initializes the structured logger at info level.
// Call SetLogLevel once the configuration is known.
func InitLogger() *slog.Logger {
	return newLogger(os.Stdout, slog.LevelInfo)
}

// SetLogLevel replaces the default logger with one at level.
func SetLogLevel(level slog.Level) *slog.Logger {
	return newLogger(os.Stdout, level)
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() (config.AppConfig, error) {
	// Load .env file if it exists (development)
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return config.AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg config.AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	return cfg, nil
}

// ValidateConfig rejects configurations the server cannot start with.
func ValidateConfig(cfg *config.AppConfig) error {
	if cfg == nil {
		return errors.New("config is required")
	}
	if cfg.API.BaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if cfg.Auth.Mode == config.AuthModeOAuth {
		o := cfg.Auth.OAuth
		if o.DiscoveryURL == "" || o.ClientID == "" || o.ClientSecret == "" {
			return errors.New("oauth mode requires OAUTH_DISCOVERY_URL, OAUTH_CLIENT_ID and OAUTH_CLIENT_SECRET")
		}
	}
	if cfg.Storage.Backend == config.StorageBackendAzure && cfg.Storage.AzureConnectionString == "" {
		return errors.New("azure storage requires STORAGE_AZURE_CONNECTION_STRING")
	}
	return validateCookieDomain(cfg.HTTP.CookieDomain)
}

// validateCookieDomain rejects public suffixes such as "co.uk" or "github.io";
// browsers drop cookies scoped to them, which would silently break sign-in.
func validateCookieDomain(domain string) error {
	d := strings.ToLower(strings.Trim(strings.TrimSpace(domain), "."))
	if d == "" {
		return nil
	}
	suffix, icann := publicsuffix.PublicSuffix(d)
	if suffix == d && (icann || strings.Contains(d, ".")) {
		return fmt.Errorf("APP_COOKIE_DOMAIN %q is a public suffix", domain)
	}
	return nil
}
