package errors

import (
	"context"
	"errors"
	"net/http"
)

// FallbackMessage is shown when neither the API nor the caller supplied a usable message.
const FallbackMessage = "An unknown error occurred"

// FromStatus maps a non-2xx HTTP status returned by the remote API onto the error taxonomy.
// message is the server-provided text (possibly empty).
//
//   - 401 → Unauthorized
//   - 403 → Forbidden
//   - 404 → NotFound
//   - 409 → Conflict
//   - 400, 422 and other 4xx → Validation
//   - 5xx and anything else → Unavailable
func FromStatus(status int, message string) *AppError {
	var code ErrorCode
	switch {
	case status == http.StatusUnauthorized:
		code = ErrCodeUnauthorized
	case status == http.StatusForbidden:
		code = ErrCodeForbidden
	case status == http.StatusNotFound:
		code = ErrCodeNotFound
	case status == http.StatusConflict:
		code = ErrCodeConflict
	case status >= 400 && status < 500:
		code = ErrCodeValidation
	default:
		code = ErrCodeUnavailable
	}
	return &AppError{Code: code, Message: message, Status: status}
}

// FromTransport maps a failure that happened before any HTTP status was available.
// Context errors keep their own codes so callers can tell a timeout from an outage.
func FromTransport(err error) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &AppError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out. Please try again.",
			Cause:   err,
		}
	}
	if errors.Is(err, context.Canceled) {
		return &AppError{
			Code:    ErrCodeCanceled,
			Message: "Request was canceled.",
			Cause:   err,
		}
	}
	return &AppError{
		Code:    ErrCodeUnavailable,
		Message: "The school service is unavailable. Please try again later.",
		Cause:   err,
	}
}

// Failure is the fixed shape every error is reduced to before it reaches a view.
type Failure struct {
	Message string    `json:"message"`
	Status  int       `json:"status"`
	Field   string    `json:"field,omitempty"`
	Code    ErrorCode `json:"code,omitempty"`
}

// Normalize reduces any error to a Failure. Only AppError messages are surfaced; raw
// errors never leak their text and fall back to FallbackMessage with status 500.
func Normalize(err error) Failure {
	if err == nil {
		return Failure{}
	}
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return Failure{Message: FallbackMessage, Status: http.StatusInternalServerError, Code: ErrCodeInternal}
	}
	msg := appErr.Message
	if msg == "" {
		msg = FallbackMessage
	}
	status := appErr.Status
	if status == 0 {
		status = defaultStatus(appErr.Code)
	}
	return Failure{Message: msg, Status: status, Field: appErr.Field, Code: appErr.Code}
}

func defaultStatus(code ErrorCode) int {
	switch code {
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeNotFound:
		return http.StatusNotFound
	case ErrCodeConflict:
		return http.StatusConflict
	case ErrCodeValidation:
		return http.StatusBadRequest
	case ErrCodeUnavailable:
		return http.StatusBadGateway
	case ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case ErrCodeCanceled:
		return 499
	default:
		return http.StatusInternalServerError
	}
}
