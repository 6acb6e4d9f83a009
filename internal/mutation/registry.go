package mutation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dialog is the part of a Controller the dismiss endpoint needs.
type Dialog interface {
	State() DialogState
	Dismiss() bool
}

type entry struct {
	owner    string
	dialog   Dialog
	followUp string
	created  time.Time
}

// Registry keeps the open result dialogs of signed-in users between the submit
// request and the dismiss request. Entries belong to one owner and expire.
type Registry struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

// NewRegistry returns a Registry whose entries live for ttl.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Registry{ttl: ttl, now: time.Now, entries: make(map[string]entry)}
}

// Track stores d for owner and returns the dialog id. followUp is the location
// the browser is sent to when a successful dialog is dismissed.
func (r *Registry) Track(owner string, d Dialog, followUp string) string {
	id := uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	r.entries[id] = entry{owner: owner, dialog: d, followUp: followUp, created: r.now()}
	return id
}

// Dismiss dismisses dialog id on behalf of owner. It returns the follow-up
// location when the follow-up fired, and found=false for unknown, expired or
// foreign dialogs.
func (r *Registry) Dismiss(owner, id string) (followUp string, found bool) {
	r.mu.Lock()
	e, ok := r.entries[id]
	if !ok || e.owner != owner || r.expired(e) {
		r.mu.Unlock()
		return "", false
	}
	r.mu.Unlock()

	fired := e.dialog.Dismiss()
	if !e.dialog.State().Open {
		r.mu.Lock()
		delete(r.entries, id)
		r.mu.Unlock()
	}
	if fired {
		return e.followUp, true
	}
	return "", true
}

// Len returns the number of live entries.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pruneLocked()
	return len(r.entries)
}

func (r *Registry) expired(e entry) bool {
	return r.now().Sub(e.created) > r.ttl
}

func (r *Registry) pruneLocked() {
	for id, e := range r.entries {
		if r.expired(e) {
			delete(r.entries, id)
		}
	}
}
