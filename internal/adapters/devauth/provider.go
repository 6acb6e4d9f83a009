// Package devauth is a config-driven AuthProvider for local development.
// It skips the identity provider and signs everyone in as one configured user.
package devauth

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"

	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	"github.com/harmonia-academy/harmonia-web/internal/ports"
)

var _ ports.AuthProvider = (*Provider)(nil)

const defaultSessionDuration = 8 * time.Hour

// Config describes the developer identity.
// UserID and Email are required.
type Config struct {
	UserID    string
	Email     string
	FirstName string
	LastName  string
	Groups    []string
	// BearerToken is forwarded to the school API in place of an id token,
	// so a local API can accept it.
	BearerToken     string
	SessionDuration time.Duration
}

// Provider redirects straight back to our callback and returns the configured identity.
type Provider struct {
	cfg Config
	now func() time.Time
}

// NewProvider validates cfg and builds the provider.
func NewProvider(cfg Config) (*Provider, error) {
	if cfg.UserID == "" {
		return nil, errors.New("dev auth: UserID is required")
	}
	if cfg.Email == "" {
		return nil, errors.New("dev auth: Email is required")
	}
	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = defaultSessionDuration
	}
	cfg.Groups = append([]string(nil), cfg.Groups...)
	return &Provider{cfg: cfg, now: time.Now}, nil
}

// Begin returns the local callback URL with a fresh state and nonce.
func (p *Provider) Begin(_ context.Context, _ ports.BeginInput) (string, string, string, error) {
	state := uuid.NewString()
	nonce := uuid.NewString()
	q := url.Values{"code": {"dev"}, "state": {state}}
	return "/auth/callback?" + q.Encode(), state, nonce, nil
}

// Exchange ignores the code; the handler has already checked state.
func (p *Provider) Exchange(_ context.Context, _ ports.ExchangeInput) (domainauth.Identity, error) {
	return domainauth.Identity{
		UserID:    p.cfg.UserID,
		FirstName: p.cfg.FirstName,
		LastName:  p.cfg.LastName,
		Email:     p.cfg.Email,
		Groups:    append([]string(nil), p.cfg.Groups...),
		IDToken:   p.cfg.BearerToken,
		ExpiresAt: p.now().Add(p.cfg.SessionDuration),
	}, nil
}
