package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		t.Run(method, func(t *testing.T) {
			w := httptest.NewRecorder()
			healthHandler(w, httptest.NewRequest(method, "/healthz", nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			if method == http.MethodHead {
				assert.Zero(t, w.Body.Len())
				return
			}
			assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
		})
	}
}

func TestReadyHandlerPingsEveryDependency(t *testing.T) {
	var pings atomic.Int32
	ok := PingFunc(func(context.Context) error { pings.Add(1); return nil })
	down := PingFunc(func(context.Context) error { pings.Add(1); return errors.New("dial tcp: connection refused") })

	w := httptest.NewRecorder()
	readyHandler(map[string]Pinger{"redis": ok, "sessions": down, "skipped": nil}, discardLogger())(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, int32(2), pings.Load())
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"unavailable","failed":{"sessions":"unavailable"}}`, w.Body.String())
}

func TestReadyHandlerWithoutDependencies(t *testing.T) {
	w := httptest.NewRecorder()
	readyHandler(nil, discardLogger())(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
