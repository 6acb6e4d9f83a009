package ports_test

import (
	"testing"

	"github.com/harmonia-academy/harmonia-web/internal/adapters/authroles"
	"github.com/harmonia-academy/harmonia-web/internal/adapters/devauth"
	"github.com/harmonia-academy/harmonia-web/internal/adapters/oidc"
	redisstore "github.com/harmonia-academy/harmonia-web/internal/adapters/redis"
	mocks "github.com/harmonia-academy/harmonia-web/internal/mocks/auth"
	"github.com/harmonia-academy/harmonia-web/internal/ports"
)

// Compile-time checks that adapters and mocks satisfy the ports.
func TestImplementationsSatisfyPorts(t *testing.T) {
	t.Helper()

	var _ ports.AuthProvider = (*mocks.MockAuthProvider)(nil)
	var _ ports.AuthProvider = (*devauth.Provider)(nil)
	var _ ports.AuthProvider = (*oidc.Provider)(nil)
	var _ ports.SessionStore = (*mocks.MemorySessionStore)(nil)
	var _ ports.SessionStore = (*redisstore.SessionStore)(nil)
	var _ ports.RoleMapper = mocks.StaticRoleMapper{}
	var _ ports.RoleMapper = authroles.GroupMapper{}
}
