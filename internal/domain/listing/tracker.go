package listing

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// ErrStale is returned when a response arrives after a newer query was issued.
var ErrStale = errors.New("listing: stale response discarded")

// Ticket tags one outgoing list request.
type Ticket uint64

// Sequencer issues monotonically increasing tickets. Only the most recently
// issued ticket is current.
type Sequencer struct {
	last atomic.Uint64
}

// Next issues a new ticket, superseding every earlier one.
func (s *Sequencer) Next() Ticket {
	return Ticket(s.last.Add(1))
}

// Current reports whether t is the latest issued ticket.
func (s *Sequencer) Current(t Ticket) bool {
	return t != 0 && uint64(t) == s.last.Load()
}

// FetchFunc loads the page described by q.
type FetchFunc[T any] func(ctx context.Context, q Query) (Page[T], error)

// Tracker owns the current Query and the latest accepted Page of one list view.
// Intents go through Derive; each fetch is tagged and responses for a
// superseded query are dropped.
type Tracker[T any] struct {
	mu      sync.Mutex
	seq     Sequencer
	query   Query
	page    Page[T]
	loaded  bool
	onStale func(Query)
}

// NewTracker returns a tracker starting at initial.
func NewTracker[T any](initial Query) *Tracker[T] {
	return &Tracker[T]{query: initial.Clone()}
}

// OnStale registers a hook called with the query of every discarded response.
func (t *Tracker[T]) OnStale(fn func(Query)) {
	t.mu.Lock()
	t.onStale = fn
	t.mu.Unlock()
}

// Query returns a snapshot of the current query.
func (t *Tracker[T]) Query() Query {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.query.Clone()
}

// Page returns the latest accepted page and whether one has been accepted.
func (t *Tracker[T]) Page() (Page[T], bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.page, t.loaded
}

// Apply derives the next query from patch and issues the ticket its response
// must carry to be accepted.
func (t *Tracker[T]) Apply(patch Patch) (Query, Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.query = Derive(t.query, patch)
	return t.query.Clone(), t.seq.Next()
}

// Issue tags a fetch of the current query without changing it.
func (t *Tracker[T]) Issue() (Query, Ticket) {
	return t.Apply(Patch{})
}

// Accept stores page if ticket is still current. It reports whether the page
// was accepted.
func (t *Tracker[T]) Accept(ticket Ticket, q Query, page Page[T]) bool {
	t.mu.Lock()
	if !t.seq.Current(ticket) {
		hook := t.onStale
		t.mu.Unlock()
		if hook != nil {
			hook(q)
		}
		return false
	}
	t.page = page
	t.loaded = true
	t.mu.Unlock()
	return true
}

// Load applies patch, fetches the resulting query and accepts the response if
// nothing newer was issued meanwhile. A superseded response yields ErrStale.
func (t *Tracker[T]) Load(ctx context.Context, patch Patch, fetch FetchFunc[T]) (Page[T], error) {
	q, ticket := t.Apply(patch)
	page, err := fetch(ctx, q)
	if err != nil {
		if !t.seq.Current(ticket) {
			return Page[T]{}, ErrStale
		}
		return Page[T]{}, err
	}
	if !t.Accept(ticket, q, page) {
		return Page[T]{}, ErrStale
	}
	return page, nil
}
