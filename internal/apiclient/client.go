// Package apiclient talks to the school REST API on behalf of a signed-in user.
//
// Every call takes an explicit Scope carrying the caller's bearer token; the
// client itself holds no per-user state and is safe for concurrent use.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
	obserrors "github.com/harmonia-academy/harmonia-web/internal/observability/errors"
	"github.com/harmonia-academy/harmonia-web/internal/observability/metrics"
	"github.com/harmonia-academy/harmonia-web/internal/observability/statsd"
)

// Scope is the request-scoped context of one API call.
type Scope struct {
	// Token is the bearer id token of the signed-in user.
	Token string
	// RequestID is forwarded as X-Request-Id for log correlation.
	RequestID string
}

// Check fails with Unauthorized when the scope carries no credential.
func (s Scope) Check() error {
	if strings.TrimSpace(s.Token) == "" {
		return apperrors.Unauthorized("Your session has expired. Please sign in again.").
			WithStatus(http.StatusUnauthorized)
	}
	return nil
}

// Options groups dependencies for Client.
type Options struct {
	BaseURL string // Required: API root, e.g. https://api.example.com/v1
	// Timeout bounds every call. Defaults to 15s.
	Timeout time.Duration
	// Transport is the base round tripper; http.DefaultTransport when nil.
	Transport http.RoundTripper
	// Logger is the structured logger (optional).
	Logger *slog.Logger
	// Metrics receives request timings and error counts (optional).
	Metrics statsd.Sink
	// Evaluator extracts messages from error bodies. Defaults to JMESPath.
	Evaluator MessageEvaluator
	// ErrorExpression overrides DefaultErrorExpression.
	ErrorExpression string
	// UserAgent is sent on every request.
	UserAgent string
}

// Client performs authenticated calls against the API.
type Client struct {
	base      *url.URL
	timeout   time.Duration
	transport http.RoundTripper
	logger    *slog.Logger
	metrics   statsd.Sink
	messages  *messageExtractor
	userAgent string
}

// New constructs a Client.
func New(opts Options) (*Client, error) {
	raw := strings.TrimSpace(opts.BaseURL)
	if raw == "" {
		return nil, errors.New("api base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(raw, "/") + "/")
	if err != nil {
		return nil, fmt.Errorf("parse api base URL: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api base URL must be http or https, got %q", base.Scheme)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	messages, err := newMessageExtractor(opts.Evaluator, opts.ErrorExpression)
	if err != nil {
		return nil, err
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = "harmonia-web"
	}

	return &Client{
		base:      base,
		timeout:   timeout,
		transport: transport,
		logger:    logger.With("component", "apiclient"),
		metrics:   opts.Metrics,
		messages:  messages,
		userAgent: ua,
	}, nil
}

// MustNew constructs a Client and panics on error.
func MustNew(opts Options) *Client {
	c, err := New(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring fails fast
	}
	return c
}

// Request describes one API call.
type Request struct {
	Method string
	// Path is relative to the base URL, e.g. "classes" or "classes/42/publish".
	Path  string
	Query url.Values
	// Body is JSON-encoded unless it is an io.Reader, in which case
	// ContentType must be set.
	Body        any
	ContentType string
}

// httpClient returns an http.Client that attaches scope's bearer token.
func (c *Client) httpClient(scope Scope) *http.Client {
	return &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: scope.Token, TokenType: "Bearer"}),
			Base:   c.transport,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	rel, err := url.Parse(strings.TrimLeft(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api path %q: %w", path, err)
	}
	u := c.base.ResolveReference(rel)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) newRequest(ctx context.Context, scope Scope, req Request) (*http.Request, error) {
	target, err := c.resolve(req.Path, req.Query)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "")
	}

	var body io.Reader
	contentType := req.ContentType
	switch b := req.Body.(type) {
	case nil:
	case io.Reader:
		body = b
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "")
		}
		body = bytes.NewReader(buf)
		contentType = "application/json"
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeInternal, "")
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if scope.RequestID != "" {
		httpReq.Header.Set("X-Request-Id", scope.RequestID)
	}
	return httpReq, nil
}

// Do performs exactly one HTTP call and decodes a 2xx JSON body into out
// (which may be nil). Non-2xx responses become *apperrors.AppError values.
func (c *Client) Do(ctx context.Context, scope Scope, req Request, out any) error {
	if err := scope.Check(); err != nil {
		return err
	}
	httpReq, err := c.newRequest(ctx, scope, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.httpClient(scope).Do(httpReq)
	elapsed := time.Since(start)
	if err != nil {
		c.observe(httpReq, 0, elapsed, err)
		c.logger.WarnContext(ctx, "api request failed",
			"method", httpReq.Method, "path", httpReq.URL.Path, "error", err)
		return apperrors.FromTransport(err)
	}
	defer resp.Body.Close()
	c.observe(httpReq, resp.StatusCode, elapsed, nil)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := c.decodeError(resp)
		c.logger.WarnContext(ctx, "api request rejected",
			"method", httpReq.Method, "path", httpReq.URL.Path,
			"status", resp.StatusCode, "code", appErr.Code, "message", appErr.Message)
		return appErr
	}

	c.logger.DebugContext(ctx, "api request",
		"method", httpReq.Method, "path", httpReq.URL.Path,
		"status", resp.StatusCode, "duration_ms", elapsed.Milliseconds())

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return apperrors.Wrap(err, apperrors.ErrCodeUnavailable,
			"The school service returned an unreadable response.").WithStatus(resp.StatusCode)
	}
	return nil
}

func (c *Client) observe(req *http.Request, status int, elapsed time.Duration, transportErr error) {
	if c.metrics == nil {
		return
	}
	tags := map[string]string{
		"method": req.Method,
		"status": statusClass(status),
	}
	c.metrics.Timing("api.request", elapsed, tags)
	if status != 0 && status < 400 {
		return
	}
	errTags := metrics.CloneTags(tags)
	if class := obserrors.Classify(transportErr); class != "" {
		errTags["error_class"] = class
	}
	c.metrics.Count("api.error", 1, errTags)
}

func statusClass(status int) string {
	if status == 0 {
		return "transport"
	}
	return fmt.Sprintf("%dxx", status/100)
}
