// Package mutation drives a single write operation through the
// idle → pending → succeeded|failed lifecycle shown by the result dialog.
package mutation

import (
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// Result is the terminal outcome of one submission. It is either a success
// carrying data or a failure carrying a user-facing message and a status.
type Result[T any] struct {
	ok      bool
	data    T
	message string
	status  int
}

// Succeeded builds a successful Result.
func Succeeded[T any](data T) Result[T] {
	return Result[T]{ok: true, data: data}
}

// Failed builds a failed Result. An empty message resolves to the generic fallback.
func Failed[T any](message string, status int) Result[T] {
	if message == "" {
		message = apperrors.FallbackMessage
	}
	return Result[T]{message: message, status: status}
}

// FromError builds a failed Result from err through the shared normalization.
func FromError[T any](err error) Result[T] {
	f := apperrors.Normalize(err)
	return Failed[T](f.Message, f.Status)
}

// OK reports whether r is a success.
func (r Result[T]) OK() bool { return r.ok }

// Data returns the success payload (zero value on failure).
func (r Result[T]) Data() T { return r.data }

// Message returns the failure message ("" on success).
func (r Result[T]) Message() string { return r.message }

// Status returns the failure status (0 on success).
func (r Result[T]) Status() int { return r.status }

// Match calls exactly one of onSuccess or onFailure.
func Match[T, R any](r Result[T], onSuccess func(T) R, onFailure func(message string, status int) R) R {
	if r.ok {
		return onSuccess(r.data)
	}
	return onFailure(r.message, r.status)
}
