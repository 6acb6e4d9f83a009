// Package ports declares the interfaces the auth service depends on.
// Implementations live in internal/adapters.
package ports

import (
	"context"

	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
)

// BeginInput carries inputs for initiating a sign-in.
type BeginInput struct {
	RedirectURL string
}

// ExchangeInput groups parameters for the code/token exchange.
type ExchangeInput struct {
	Code  string
	State string
	Nonce string
}

// AuthProvider starts and completes sign-in against an identity provider.
type AuthProvider interface {
	// Begin returns the provider sign-in URL with an opaque state and a nonce.
	Begin(ctx context.Context, in BeginInput) (authURL, state, nonce string, err error)

	// Exchange verifies state and nonce and returns the signed-in identity.
	Exchange(ctx context.Context, in ExchangeInput) (domainauth.Identity, error)
}

// SessionStore keeps server-side sessions keyed by the session cookie value.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// RoleMapper turns provider groups into an application role.
type RoleMapper interface {
	Map(groups []string) domainauth.Role
}
