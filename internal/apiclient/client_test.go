package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

type classRow struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	Room *string `json:"room"`
}

var testScope = Scope{Token: "id-token-123", RequestID: "req-1"}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c, srv
}

func writeEnvelope(w http.ResponseWriter, rows []classRow, meta listing.Metadata) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(listing.Page[classRow]{Data: rows, Metadata: meta})
}

func TestFetchPage_SerializesQueryAndAuth(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/transactions", r.URL.Path)
		assert.Equal(t, "Bearer id-token-123", r.Header.Get("Authorization"))
		assert.Equal(t, "req-1", r.Header.Get("X-Request-Id"))

		q := r.URL.Query()
		assert.Equal(t, []string{"0"}, q["payment-statuses"])
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "10", q.Get("page-size"))
		assert.Equal(t, "Id", q.Get("sort-column"))
		assert.Equal(t, "desc", q.Get("sort-direction"))
		assert.NotContains(t, q, "start-date")
		assert.NotContains(t, q, "end-date")

		writeEnvelope(w, []classRow{{ID: "t1"}}, listing.Metadata{TotalCount: 1, PageCount: 1, CurrentPage: 1, PageSize: 10})
	})

	q := listing.Query{
		Page: 1, PageSize: 10, SortColumn: "Id", SortDirection: listing.Desc,
		Filters: listing.Filters{"paymentStatuses": {"0"}},
	}
	before := q.Clone()

	page, err := FetchPage[classRow](context.Background(), c, testScope, "transactions", q)
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, 1, page.Metadata.CurrentPage)
	assert.Equal(t, int32(1), calls.Load(), "exactly one request")
	assert.Equal(t, before, q, "query is not modified")
}

func TestFetchPage_MissingTokenFailsFast(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(http.ResponseWriter, *http.Request) { calls.Add(1) })

	_, err := FetchPage[classRow](context.Background(), c, Scope{}, "classes", listing.New(listing.StandardDefaults))
	require.Error(t, err)
	assert.True(t, apperrors.IsUnauthorized(err))
	assert.Zero(t, calls.Load())
}

func TestFetchPage_EnvelopeChecks(t *testing.T) {
	t.Run("stale page", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, nil, listing.Metadata{CurrentPage: 1, PageSize: 10})
		})
		_, err := FetchPage[classRow](context.Background(), c, testScope, "classes",
			listing.Query{Page: 2, PageSize: 10})
		require.Error(t, err)
		assert.True(t, apperrors.IsUnavailable(err))
	})

	t.Run("truncates to page size", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeEnvelope(w, []classRow{{ID: "a"}, {ID: "b"}, {ID: "c"}}, listing.Metadata{CurrentPage: 1, PageSize: 2})
		})
		page, err := FetchPage[classRow](context.Background(), c, testScope, "classes",
			listing.Query{Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, page.Data, 2)
		assert.LessOrEqual(t, len(page.Data), 2)
	})

	t.Run("null data becomes empty", func(t *testing.T) {
		c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `{"data":null,"metadata":{"totalCount":0,"pageCount":0,"currentPage":1,"pageSize":10}}`)
		})
		page, err := FetchPage[classRow](context.Background(), c, testScope, "classes", listing.Query{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})
}

func TestDo_ErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    apperrors.ErrorCode
		message string
		field   string
	}{
		{"error key", http.StatusBadRequest, `{"error":"Invalid data."}`, apperrors.ErrCodeValidation, "Invalid data.", ""},
		{"message key", http.StatusUnprocessableEntity, `{"message":"Name is taken","field":"name"}`, apperrors.ErrCodeValidation, "Name is taken", "name"},
		{"problem json", http.StatusConflict, `{"title":"Conflict","detail":"Class already published"}`, apperrors.ErrCodeConflict, "Class already published", ""},
		{"errors array", http.StatusBadRequest, `{"errors":[{"field":"startDate","message":"Start date is required"}]}`, apperrors.ErrCodeValidation, "Start date is required", "startDate"},
		{"plain text", http.StatusBadRequest, `Bad page size`, apperrors.ErrCodeValidation, "Bad page size", ""},
		{"unauthorized empty", http.StatusUnauthorized, ``, apperrors.ErrCodeUnauthorized, "Your session has expired. Please sign in again.", ""},
		{"forbidden", http.StatusForbidden, `{}`, apperrors.ErrCodeForbidden, "You do not have permission to do that.", ""},
		{"not found", http.StatusNotFound, `{"message":"Class not found"}`, apperrors.ErrCodeNotFound, "Class not found", ""},
		{"server error hides detail", http.StatusInternalServerError, `{"error":"NullReferenceException at line 4"}`, apperrors.ErrCodeUnavailable, "The school service is unavailable. Please try again later.", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			err := c.Do(context.Background(), testScope, Request{Method: http.MethodPost, Path: "classes"}, nil)
			require.Error(t, err)

			var appErr *apperrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tt.code, appErr.Code)
			assert.Equal(t, tt.message, appErr.Message)
			assert.Equal(t, tt.status, appErr.Status)
			assert.Equal(t, tt.field, appErr.Field)
		})
	}
}

func TestDo_TransportFailure(t *testing.T) {
	c, srv := newTestClient(t, func(http.ResponseWriter, *http.Request) {})
	srv.Close()

	err := c.Do(context.Background(), testScope, Request{Path: "classes"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err))
}

func TestDo_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})
	c, err := New(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	err = c.Do(context.Background(), testScope, Request{Path: "slow"}, nil)
	require.Error(t, err)
	assert.True(t, apperrors.IsUnavailable(err) || apperrors.IsTimeout(err))
}

func TestSend_JSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/classes/c1/publish", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, true, body["notify"])
		_, _ = io.WriteString(w, `{"id":"c1","name":"Piano 101"}`)
	})

	got, err := Send[classRow](context.Background(), c, testScope, http.MethodPost, "classes/c1/publish", map[string]bool{"notify": true})
	require.NoError(t, err)
	assert.Equal(t, "Piano 101", got.Name)
}

func TestDelete_NoContent(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Delete(context.Background(), testScope, "classes/c1"))
}

func TestUpload_Multipart(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer id-token-123", r.Header.Get("Authorization"))
		mediaType, params, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
		require.NoError(t, err)
		assert.Equal(t, "multipart/form-data", mediaType)

		mr := multipart.NewReader(r.Body, params["boundary"])
		part, err := mr.NextPart()
		require.NoError(t, err)
		assert.Equal(t, "file", part.FormName())
		assert.Equal(t, "students.csv", part.FileName())
		content, _ := io.ReadAll(part)
		assert.Equal(t, "name\nAn\n", string(content))

		_, _ = io.WriteString(w, `{"contentId":"abc-123"}`)
	})

	res, err := c.Upload(context.Background(), testScope, "storage/upload", File{
		Name: "students.csv", ContentType: "text/csv", Content: strings.NewReader("name\nAn\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "abc-123", res.ContentID)
}

func TestFetchPageShared_CollapsesConcurrentCalls(t *testing.T) {
	var calls atomic.Int32
	gate := make(chan struct{})
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		<-gate
		writeEnvelope(w, []classRow{{ID: "a"}}, listing.Metadata{CurrentPage: 1, PageSize: 10, PageCount: 1, TotalCount: 1})
	})

	var d Deduper
	q := listing.New(listing.StandardDefaults)
	var wg sync.WaitGroup
	results := make([]listing.Page[classRow], 5)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := FetchPageShared[classRow](context.Background(), &d, c, testScope, "classes", q)
			assert.NoError(t, err)
			results[i] = p
		}()
	}
	// Let the goroutines join the in-flight call before releasing it.
	time.Sleep(50 * time.Millisecond)
	close(gate)
	wg.Wait()

	assert.LessOrEqual(t, calls.Load(), int32(5))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
	for _, p := range results {
		assert.Len(t, p.Data, 1)
	}

	other := Scope{Token: "other"}
	assert.NotEqual(t, Key(testScope, "classes", q), Key(other, "classes", q), "users never share results")
}

func TestFetchPageShared_CallerCancelDoesNotFailOthers(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		time.Sleep(200 * time.Millisecond)
		writeEnvelope(w, []classRow{{ID: "a"}}, listing.Metadata{CurrentPage: 1, PageSize: 10, PageCount: 1, TotalCount: 1})
	})

	var d Deduper
	q := listing.New(listing.StandardDefaults)
	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	defer cancelLeader()

	leaderErr := make(chan error, 1)
	go func() {
		_, err := FetchPageShared[classRow](leaderCtx, &d, c, testScope, "classes", q)
		leaderErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	type outcome struct {
		page listing.Page[classRow]
		err  error
	}
	follower := make(chan outcome, 1)
	go func() {
		p, err := FetchPageShared[classRow](context.Background(), &d, c, testScope, "classes", q)
		follower <- outcome{p, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancelLeader()

	select {
	case err := <-leaderErr:
		require.Error(t, err)
		assert.True(t, apperrors.IsCanceled(err))
	case <-time.After(100 * time.Millisecond):
		t.Fatal("cancelled caller kept waiting on the shared call")
	}

	got := <-follower
	require.NoError(t, got.err)
	assert.Len(t, got.page.Data, 1)
	assert.Equal(t, int32(1), calls.Load())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "ftp://files"})
	assert.Error(t, err)
	_, err = New(Options{BaseURL: "https://api.example.com", ErrorExpression: "error ||"})
	assert.Error(t, err)
}

type countingSink struct {
	mu      sync.Mutex
	counts  map[string][]map[string]string
	timings map[string]int
}

func (s *countingSink) Count(name string, _ int64, tags map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.counts == nil {
		s.counts = map[string][]map[string]string{}
	}
	s.counts[name] = append(s.counts[name], tags)
}

func (s *countingSink) Gauge(string, float64, map[string]string) {}

func (s *countingSink) Timing(name string, _ time.Duration, _ map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timings == nil {
		s.timings = map[string]int{}
	}
	s.timings[name]++
}

func TestDo_EmitsRequestMetrics(t *testing.T) {
	sink := &countingSink{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/missing" {
			http.Error(w, `{"message":"nope"}`, http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	c, err := New(Options{BaseURL: srv.URL + "/api", Timeout: time.Second, Metrics: sink})
	require.NoError(t, err)

	require.NoError(t, c.Do(context.Background(), testScope, Request{Path: "classes"}, nil))
	require.Error(t, c.Do(context.Background(), testScope, Request{Path: "missing"}, nil))
	srv.Close()
	require.Error(t, c.Do(context.Background(), testScope, Request{Path: "classes"}, nil))

	assert.Equal(t, 3, sink.timings["api.request"])
	require.Len(t, sink.counts["api.error"], 2)
	assert.Equal(t, "4xx", sink.counts["api.error"][0]["status"])
	assert.NotContains(t, sink.counts["api.error"][0], "error_class")
	assert.Equal(t, "transport", sink.counts["api.error"][1]["status"])
	assert.NotEmpty(t, sink.counts["api.error"][1]["error_class"])
}
