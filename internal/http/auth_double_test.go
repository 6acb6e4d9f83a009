package httpx

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
	"github.com/harmonia-academy/harmonia-web/internal/service"
)

// mockAuthService is a test double for AuthServiceInterface. Unset funcs
// fall back to a signed-in teacher.
type mockAuthService struct {
	beginLoginFunc    func(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error)
	completeLoginFunc func(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error)
	getSessionFunc    func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc        func(ctx context.Context, sessionID string) error
}

var _ AuthServiceInterface = (*mockAuthService)(nil)

func testSession(id string, role domainauth.Role) *domainauth.Session {
	return &domainauth.Session{
		ID:        id,
		UserID:    "user-" + id,
		FirstName: "Ana",
		LastName:  "Lestari",
		Email:     "ana@harmonia.example",
		Role:      role,
		IDToken:   "id-token-" + id,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

// sessionsByRole answers GetSession with the role encoded as the session id,
// so "staff" signs in as staff. Unknown ids have no session.
func sessionsByRole() *mockAuthService {
	return &mockAuthService{
		getSessionFunc: func(_ context.Context, id string) (*domainauth.Session, error) {
			role := domainauth.Role(id)
			if !role.Valid() {
				return nil, errors.New("session not found")
			}
			return testSession(id, role), nil
		},
	}
}

func (m *mockAuthService) BeginLogin(ctx context.Context, redirectURL string) (*service.BeginLoginResult, error) {
	if m.beginLoginFunc != nil {
		return m.beginLoginFunc(ctx, redirectURL)
	}
	return &service.BeginLoginResult{
		AuthURL: "https://idp.example/auth?state=test-state&nonce=test-nonce",
		State:   "test-state",
		Nonce:   "test-nonce",
	}, nil
}

func (m *mockAuthService) CompleteLogin(ctx context.Context, input service.CompleteLoginInput) (*service.CompleteLoginResult, error) {
	if m.completeLoginFunc != nil {
		return m.completeLoginFunc(ctx, input)
	}
	return &service.CompleteLoginResult{Session: *testSession("test-session-id", domainauth.RoleTeacher)}, nil
}

func (m *mockAuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	return testSession(sessionID, domainauth.RoleTeacher), nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}
