package config

import (
	"log/slog"
	"reflect"
	"testing"
	"time"

	env "github.com/caarlos0/env/v11"
)

func TestAppConfig_Defaults(t *testing.T) {
	t.Setenv("NODE_ENV", "")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	if cfg.IsDev {
		t.Fatalf("expected production mode by default")
	}
	if cfg.Auth.Mode != AuthModeOAuth {
		t.Fatalf("expected oauth mode, got %q", cfg.Auth.Mode)
	}
	if cfg.API.BaseURL != "http://localhost:5000/api" {
		t.Fatalf("unexpected API base URL %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 15*time.Second || !cfg.API.Dedupe {
		t.Fatalf("unexpected API defaults: %#v", cfg.API)
	}
	if cfg.API.DefaultPageSize != 10 || cfg.API.MaxPageSize != 100 || cfg.API.ExportLimit != 2000 {
		t.Fatalf("unexpected paging defaults: %#v", cfg.API)
	}
	if cfg.Storage.Backend != StorageBackendAPI || cfg.Storage.MaxUploadBytes != 10<<20 {
		t.Fatalf("unexpected storage defaults: %#v", cfg.Storage)
	}
	if cfg.Redis.SessionPrefix != "harmonia:session:" {
		t.Fatalf("unexpected session prefix %q", cfg.Redis.SessionPrefix)
	}
	if cfg.Observability.Metrics.IsEnabled() {
		t.Fatalf("metrics should be off by default")
	}
}

func TestAppConfig_ParseAuthEnv(t *testing.T) {
	t.Setenv("AUTH_MODE", "OAuth")
	t.Setenv("AUTH_ROLE_GROUPS", "admin=HARMONIA-Admins,staff=HARMONIA-Office")
	t.Setenv("OAUTH_CLIENT_ID", "app-client")
	t.Setenv("OAUTH_CLIENT_SECRET", "super-secret")
	t.Setenv("OAUTH_REDIRECT_URL", "https://admin.harmonia.example/auth/callback")
	t.Setenv("OAUTH_DISCOVERY_URL", " https://login.example.com/.well-known/openid-configuration ")
	t.Setenv("OAUTH_SCOPE", "openid profile email")
	t.Setenv("DEV_AUTH_USER_ID", "dev-user")
	t.Setenv("DEV_AUTH_EMAIL", "dev@example.com")
	t.Setenv("DEV_AUTH_GROUPS", "harmonia-staff;harmonia-teachers")
	t.Setenv("DEV_AUTH_SESSION_DURATION", "2h")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	expected := AuthConfig{
		Mode: AuthModeOAuth,
		OAuth: OAuthConfig{
			ClientID:     "app-client",
			ClientSecret: "super-secret",
			RedirectURL:  "https://admin.harmonia.example/auth/callback",
			Scope:        "openid profile email",
			DiscoveryURL: "https://login.example.com/.well-known/openid-configuration",
		},
		DevAuth: DevAuthConfig{
			UserID:          "dev-user",
			Email:           "dev@example.com",
			FirstName:       "Dev",
			LastName:        "User",
			Groups:          []string{"harmonia-staff", "harmonia-teachers"},
			BearerToken:     "dev-token",
			SessionDuration: 2 * time.Hour,
		},
		RoleGroups: "admin=HARMONIA-Admins,staff=HARMONIA-Office",
	}

	if !reflect.DeepEqual(cfg.Auth, expected) {
		t.Fatalf("unexpected auth configuration:\nexpected: %#v\ngot:      %#v", expected, cfg.Auth)
	}
}

func TestAuthMode_UnmarshalTextRejectsUnknown(t *testing.T) {
	t.Setenv("AUTH_MODE", "saml")

	var cfg AppConfig
	if err := env.Parse(&cfg); err == nil {
		t.Fatalf("expected an error for an unknown auth mode")
	}
}

func TestStorageConfig_ParseAzure(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "Azure")
	t.Setenv("STORAGE_AZURE_CONNECTION_STRING", "UseDevelopmentStorage=true")
	t.Setenv("STORAGE_AZURE_CONTAINER", " imports ")
	t.Setenv("STORAGE_UPLOAD_ENDPOINT", "/files/upload/")
	t.Setenv("STORAGE_MAX_UPLOAD_BYTES", "0")

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	cfg.Sanitize()

	got := cfg.Storage
	if got.Backend != StorageBackendAzure {
		t.Fatalf("expected azure backend, got %q", got.Backend)
	}
	if got.AzureContainer != "imports" || got.UploadEndpoint != "files/upload" {
		t.Fatalf("expected trimmed values, got %#v", got)
	}
	if got.MaxUploadBytes != 10<<20 {
		t.Fatalf("expected upload limit to fall back to 10 MiB, got %d", got.MaxUploadBytes)
	}
}

func TestAPIConfig_Sanitize(t *testing.T) {
	tests := []struct {
		name string
		in   APIConfig
		want APIConfig
	}{
		{
			name: "zero values fall back",
			in:   APIConfig{BaseURL: " https://api.example.com "},
			want: APIConfig{BaseURL: "https://api.example.com", Timeout: 15 * time.Second, DefaultPageSize: 10, MaxPageSize: 100, ExportLimit: 2000},
		},
		{
			name: "default page size bounded by max",
			in:   APIConfig{Timeout: time.Second, DefaultPageSize: 500, MaxPageSize: 50, ExportLimit: 10},
			want: APIConfig{Timeout: time.Second, DefaultPageSize: 50, MaxPageSize: 50, ExportLimit: 10},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in
			got.Sanitize()
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("expected %#v, got %#v", tt.want, got)
			}
		})
	}
}

func TestHTTPConfig_Sanitize(t *testing.T) {
	cfg := HTTPConfig{CompressionLevel: 42, BaseURL: "https://admin.harmonia.example/ "}
	cfg.Sanitize()
	if cfg.CompressionLevel != 9 {
		t.Fatalf("expected level clamped to 9, got %d", cfg.CompressionLevel)
	}
	if cfg.BaseURL != "https://admin.harmonia.example" {
		t.Fatalf("expected trailing slash removed, got %q", cfg.BaseURL)
	}

	cfg = HTTPConfig{CompressionLevel: -1}
	cfg.Sanitize()
	if cfg.CompressionLevel != 1 {
		t.Fatalf("expected level clamped to 1, got %d", cfg.CompressionLevel)
	}
}

func TestAppConfig_DevModeFromNodeEnv(t *testing.T) {
	t.Setenv("NODE_ENV", "development")
	cfg := AppConfig{}
	cfg.Sanitize()
	if !cfg.IsDev {
		t.Fatalf("expected NODE_ENV=development to enable dev mode")
	}
}

func TestAppConfig_SlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		cfg := AppConfig{LogLevel: in}
		if got := cfg.SlogLevel(); got != want {
			t.Fatalf("LogLevel %q: expected %v, got %v", in, want, got)
		}
	}
}

func TestObservabilityMetricsConfig_Sanitize(t *testing.T) {
	cfg := ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " ",
	}

	cfg.Sanitize()

	if cfg.Enabled {
		t.Fatalf("expected enabled to be false when address is empty")
	}

	cfg = ObservabilityMetricsConfig{
		Enabled:       true,
		StatsdAddress: " statsd:1234 ",
	}

	cfg.Sanitize()

	if !cfg.IsEnabled() {
		t.Fatalf("expected metrics to remain enabled")
	}
	if cfg.StatsdAddress != "statsd:1234" {
		t.Fatalf("expected address to be trimmed, got %q", cfg.StatsdAddress)
	}
	if cfg.Prefix != "harmonia" {
		t.Fatalf("expected default prefix, got %q", cfg.Prefix)
	}
}
