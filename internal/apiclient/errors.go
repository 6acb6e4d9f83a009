package apiclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"

	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// DefaultErrorExpression picks the human-readable message out of the error
// bodies the school API produces: {"error": "..."}, {"message": "..."},
// RFC 7807 problem documents and {"errors": [{"message": "..."}]}.
const DefaultErrorExpression = "error || message || detail || title || errors[0].message || errors[0]"

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// MessageEvaluator abstracts JMESPath evaluation for testability.
type MessageEvaluator interface {
	Validate(expr string) error
	Evaluate(expr string, data any) (any, error)
}

type jmespathEvaluator struct{}

func (jmespathEvaluator) Validate(expr string) error {
	_, err := jmespath.Compile(expr)
	return err
}

func (jmespathEvaluator) Evaluate(expr string, data any) (any, error) {
	return jmespath.Search(expr, data)
}

type messageExtractor struct {
	eval MessageEvaluator
	expr string
}

func newMessageExtractor(eval MessageEvaluator, expr string) (*messageExtractor, error) {
	if eval == nil {
		eval = jmespathEvaluator{}
	}
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultErrorExpression
	}
	if err := eval.Validate(expr); err != nil {
		return nil, fmt.Errorf("invalid error expression %q: %w", expr, err)
	}
	return &messageExtractor{eval: eval, expr: expr}, nil
}

// extract returns the message and optional field name found in body.
func (m *messageExtractor) extract(body []byte) (message, field string) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "", ""
	}
	var doc any
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		// Plain-text bodies are used as-is when short enough to be a message.
		if len(trimmed) <= 200 && !strings.HasPrefix(trimmed, "<") {
			return trimmed, ""
		}
		return "", ""
	}
	if s, ok := doc.(string); ok {
		return strings.TrimSpace(s), ""
	}
	res, err := m.eval.Evaluate(m.expr, doc)
	if err == nil {
		message = stringify(res)
	}
	if f, err := m.eval.Evaluate("field || errors[0].field", doc); err == nil {
		field = stringify(f)
	}
	return message, field
}

func stringify(v any) string {
	switch tv := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(tv)
	case []any:
		parts := make([]string, 0, len(tv))
		for _, item := range tv {
			if s := stringify(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

// decodeError reads a non-2xx response once and maps it onto the taxonomy.
// 5xx messages are replaced with a generic text; the server detail is logged
// by the caller, never shown.
func (c *Client) decodeError(resp *http.Response) *apperrors.AppError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	message, field := c.messages.extract(body)

	if resp.StatusCode >= http.StatusInternalServerError {
		appErr := apperrors.FromStatus(resp.StatusCode, "The school service is unavailable. Please try again later.")
		if message != "" {
			appErr.Cause = fmt.Errorf("upstream: %s", message)
		}
		return appErr
	}

	appErr := apperrors.FromStatus(resp.StatusCode, message)
	appErr.Field = field
	if appErr.Message == "" {
		switch appErr.Code {
		case apperrors.ErrCodeUnauthorized:
			appErr.Message = "Your session has expired. Please sign in again."
		case apperrors.ErrCodeForbidden:
			appErr.Message = "You do not have permission to do that."
		case apperrors.ErrCodeNotFound:
			appErr.Message = "The requested record was not found."
		}
	}
	return appErr
}
