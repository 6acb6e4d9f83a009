package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{
			name: "error without cause",
			err:  &AppError{Code: ErrCodeNotFound, Message: "class not found"},
			want: "class not found",
		},
		{
			name: "error with cause",
			err: &AppError{
				Code:    ErrCodeUnavailable,
				Message: "failed to load classes",
				Cause:   errors.New("connection refused"),
			},
			want: "failed to load classes: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(cause, ErrCodeInternal, "wrapped error")
	assert.ErrorIs(t, err, cause)
	assert.Nil(t, Wrap(nil, ErrCodeInternal, "nothing"))
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name  string
		err   *AppError
		code  ErrorCode
		check func(error) bool
	}{
		{"unauthorized", Unauthorized("sign in"), ErrCodeUnauthorized, IsUnauthorized},
		{"forbidden", Forbidden("no"), ErrCodeForbidden, IsForbidden},
		{"not found", NotFoundf("class %s", "c1"), ErrCodeNotFound, IsNotFound},
		{"conflict", Conflict("exists"), ErrCodeConflict, IsConflict},
		{"validation", Validationf("bad %s", "name"), ErrCodeValidation, IsValidation},
		{"unavailable", Unavailable("down"), ErrCodeUnavailable, IsUnavailable},
		{"internal", Internal("boom"), ErrCodeInternal, IsInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, tt.err.Code)
			assert.True(t, tt.check(tt.err))
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(wrapped))
			assert.Equal(t, tt.code, GetCode(wrapped))
		})
	}
}

func TestValidationField(t *testing.T) {
	err := ValidationField("name", "Name is required")
	assert.Equal(t, "name", GetField(err))
	assert.Empty(t, GetField(errors.New("plain")))
	assert.Empty(t, GetCode(errors.New("plain")))
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		code   ErrorCode
	}{
		{http.StatusUnauthorized, ErrCodeUnauthorized},
		{http.StatusForbidden, ErrCodeForbidden},
		{http.StatusNotFound, ErrCodeNotFound},
		{http.StatusConflict, ErrCodeConflict},
		{http.StatusBadRequest, ErrCodeValidation},
		{http.StatusUnprocessableEntity, ErrCodeValidation},
		{http.StatusInternalServerError, ErrCodeUnavailable},
		{http.StatusBadGateway, ErrCodeUnavailable},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := FromStatus(tt.status, "msg")
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestFromTransport(t *testing.T) {
	assert.NoError(t, FromTransport(nil))
	assert.True(t, IsTimeout(FromTransport(context.DeadlineExceeded)))
	assert.True(t, IsCanceled(FromTransport(context.Canceled)))
	assert.True(t, IsUnavailable(FromTransport(errors.New("dial tcp: refused"))))

	original := Forbidden("nope")
	assert.Same(t, original, FromTransport(original))
}

func TestNormalize(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.Equal(t, Failure{}, Normalize(nil))
	})

	t.Run("server message kept verbatim", func(t *testing.T) {
		f := Normalize(FromStatus(http.StatusBadRequest, "Invalid data."))
		assert.Equal(t, "Invalid data.", f.Message)
		assert.Equal(t, http.StatusBadRequest, f.Status)
	})

	t.Run("empty message falls back", func(t *testing.T) {
		f := Normalize(FromStatus(http.StatusInternalServerError, ""))
		assert.Equal(t, FallbackMessage, f.Message)
		assert.Equal(t, http.StatusInternalServerError, f.Status)
	})

	t.Run("raw error never leaks", func(t *testing.T) {
		f := Normalize(errors.New("pq: secret connection string"))
		assert.Equal(t, FallbackMessage, f.Message)
		assert.Equal(t, http.StatusInternalServerError, f.Status)
	})

	t.Run("default status from code", func(t *testing.T) {
		f := Normalize(ValidationField("email", "Email is invalid"))
		require.Equal(t, http.StatusBadRequest, f.Status)
		assert.Equal(t, "email", f.Field)
	})
}
