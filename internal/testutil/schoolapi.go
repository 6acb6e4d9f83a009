package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
)

// RecordedRequest is what SchoolAPI saw for one call.
type RecordedRequest struct {
	Method string
	Path   string
	Query  map[string][]string
	Auth   string
}

// SchoolAPI is an in-process stand-in for the school REST API.
// Routes use net/http patterns such as "GET /classes".
type SchoolAPI struct {
	Server *httptest.Server

	mux      *http.ServeMux
	mu       sync.Mutex
	requests []RecordedRequest
}

// NewSchoolAPI starts the fake API; it is closed when t finishes.
func NewSchoolAPI(t testing.TB) *SchoolAPI {
	t.Helper()
	api := &SchoolAPI{mux: http.NewServeMux()}
	api.Server = httptest.NewServer(http.HandlerFunc(api.serve))
	t.Cleanup(api.Server.Close)
	return api
}

func (a *SchoolAPI) serve(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	a.requests = append(a.requests, RecordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.Query(),
		Auth:   r.Header.Get("Authorization"),
	})
	a.mu.Unlock()
	a.mux.ServeHTTP(w, r)
}

// Handle registers h for pattern.
func (a *SchoolAPI) Handle(pattern string, h http.HandlerFunc) {
	a.mux.HandleFunc(pattern, h)
}

// JSON registers a handler that always answers status with body encoded as JSON.
func (a *SchoolAPI) JSON(pattern string, status int, body any) {
	a.Handle(pattern, func(w http.ResponseWriter, _ *http.Request) {
		WriteJSON(w, status, body)
	})
}

// Requests returns a copy of everything received so far.
func (a *SchoolAPI) Requests() []RecordedRequest {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]RecordedRequest(nil), a.requests...)
}

// Client returns an API client pointed at the fake.
func (a *SchoolAPI) Client() *apiclient.Client {
	return apiclient.MustNew(apiclient.Options{BaseURL: a.Server.URL})
}

// WriteJSON writes body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}
