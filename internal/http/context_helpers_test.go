package httpx

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	domainauth "github.com/harmonia-academy/harmonia-web/internal/domain/auth"
)

func TestGetUserSessionFromContext(t *testing.T) {
	if s, ok := GetUserSessionFromContext(context.Background()); assert.False(t, ok) {
		assert.Nil(t, s)
	}

	sess := &domainauth.Session{ID: "abc", Role: domainauth.RoleTeacher}
	ctx := SetSessionInContext(context.Background(), sess)
	s, ok := GetUserSessionFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, sess, s)
}

func TestIsGuestUser(t *testing.T) {
	assert.True(t, IsGuestUser(context.Background()))

	guest := &domainauth.Session{ID: "g", Role: domainauth.RoleGuest}
	assert.True(t, IsGuestUser(SetSessionInContext(context.Background(), guest)))

	teacher := &domainauth.Session{ID: "t", Role: domainauth.RoleTeacher}
	staff := &domainauth.Session{ID: "s", Role: domainauth.RoleStaff}
	assert.False(t, IsGuestUser(SetSessionInContext(context.Background(), teacher)))
	assert.False(t, IsGuestUser(SetSessionInContext(context.Background(), staff)))
}

func TestAPIScopeCarriesTokenAndRequestID(t *testing.T) {
	req := httptest.NewRequest("GET", "/classes", nil)
	ctx := SetRequestIDInContext(req.Context(), "req-1")
	ctx = SetSessionInContext(ctx, &domainauth.Session{ID: "s", IDToken: "id-token"})

	scope := apiScope(req.WithContext(ctx))
	assert.Equal(t, "id-token", scope.Token)
	assert.Equal(t, "req-1", scope.RequestID)

	anon := apiScope(httptest.NewRequest("GET", "/", nil))
	assert.Empty(t, anon.Token)
}
