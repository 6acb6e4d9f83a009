// Package errors derives low-cardinality tag values from errors.
package errors

import (
	"context"
	goerrors "errors"
	"net"
	"reflect"
	"strings"

	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// Classify returns a short class for err suitable as a metric tag.
//
// Cancellation and deadlines win over everything else, then network timeouts,
// then the code of an application error. Anything else is named after the
// innermost concrete type, e.g. "syscall_errno".
func Classify(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case goerrors.Is(err, context.Canceled):
		return "canceled"
	case goerrors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	}

	var netErr net.Error
	if goerrors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}

	var appErr *apperrors.AppError
	if goerrors.As(err, &appErr) && appErr.Cause == nil {
		return "app_" + string(appErr.Code)
	}

	return typeName(innermost(err))
}

func innermost(err error) error {
	for {
		next := goerrors.Unwrap(err)
		if next == nil {
			return err
		}
		err = next
	}
}

func typeName(err error) string {
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.String() == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(t.String(), ".", "_"))
}
