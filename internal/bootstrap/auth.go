package bootstrap

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/harmonia-academy/harmonia-web/config"
	"github.com/harmonia-academy/harmonia-web/internal/adapters/authroles"
	"github.com/harmonia-academy/harmonia-web/internal/adapters/devauth"
	"github.com/harmonia-academy/harmonia-web/internal/adapters/oidc"
	redisadapter "github.com/harmonia-academy/harmonia-web/internal/adapters/redis"
	"github.com/harmonia-academy/harmonia-web/internal/ports"
	"github.com/harmonia-academy/harmonia-web/internal/service"
)

// AuthConfig contains configuration for auth service.
type AuthConfig struct {
	Auth          config.AuthConfig
	RedisClient   redis.UniversalClient
	SessionPrefix string
	Logger        *slog.Logger
}

// BuildAuthService creates an auth service for the configured auth mode.
// Every page needs a session, so a missing piece is an error rather than a
// disabled service.
func BuildAuthService(cfg AuthConfig) (*service.AuthService, error) {
	if cfg.RedisClient == nil {
		return nil, errors.New("auth: redis client not configured")
	}

	roles, err := authroles.ParseGroupMapping(cfg.Auth.RoleGroups)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	provider, err := buildAuthProvider(cfg.Auth)
	if err != nil {
		return nil, err
	}

	if cfg.Logger != nil {
		cfg.Logger.Info("auth configured", "mode", cfg.Auth.Mode)
	}

	return service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Sessions: redisadapter.NewSessionStoreWithOptions(redisadapter.SessionStoreOptions{
			Client: cfg.RedisClient,
			Prefix: cfg.SessionPrefix,
		}),
		Roles:  roles,
		Logger: cfg.Logger,
	}), nil
}

//nolint:ireturn // the provider is chosen by mode.
func buildAuthProvider(cfg config.AuthConfig) (ports.AuthProvider, error) {
	switch cfg.Mode {
	case config.AuthModeMock:
		dev := cfg.DevAuth
		prov, err := devauth.NewProvider(devauth.Config{
			UserID:          dev.UserID,
			Email:           dev.Email,
			FirstName:       dev.FirstName,
			LastName:        dev.LastName,
			Groups:          dev.Groups,
			BearerToken:     dev.BearerToken,
			SessionDuration: dev.SessionDuration,
		})
		if err != nil {
			return nil, fmt.Errorf("create dev auth provider: %w", err)
		}
		return prov, nil

	case config.AuthModeOAuth:
		o := cfg.OAuth
		if o.DiscoveryURL == "" || o.ClientID == "" || o.ClientSecret == "" {
			return nil, errors.New("auth: oauth mode requires a discovery URL, client id and client secret")
		}
		prov, err := oidc.NewProvider(oidc.ProviderConfig{
			ClientID:     o.ClientID,
			ClientSecret: o.ClientSecret,
			RedirectURL:  o.RedirectURL,
			Scope:        o.Scope,
			DiscoveryURL: o.DiscoveryURL,
			Audience:     o.Audience,
		})
		if err != nil {
			return nil, fmt.Errorf("create OIDC provider: %w", err)
		}
		return prov, nil

	default:
		return nil, fmt.Errorf("auth: unsupported mode %q", cfg.Mode)
	}
}
