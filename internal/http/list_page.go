package httpx

import (
	"context"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/http/ui/viewmodel"
	"github.com/harmonia-academy/harmonia-web/internal/table"
	"golang.org/x/sync/errgroup"
)

// pageSizeChoices feeds the rows-per-page selector.
//
//nolint:gochecknoglobals // static read-only choices
var pageSizeChoices = []int{10, 20, 50, 100}

// listDef declares one list page: where it lives, which filters it accepts,
// how its table looks and how a page of rows is loaded.
type listDef[T any] struct {
	Meta     PageMeta
	Path     string
	Defaults listing.Defaults
	// Filters whitelists the camelCase filter keys the page understands.
	Filters   []string
	Columns   []table.Column[T]
	Key       func(T) string
	EmptyText string
	Fetch     func(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[T], error)
	// Validate reports invalid filter values keyed by their wire name.
	Validate func(q listing.Query) map[string]string
	// Enrich adds page specific data such as filter options.
	Enrich func(r *http.Request, b *TemplateDataBuilder, q listing.Query)
	// Decorate adds data derived from the loaded rows.
	Decorate func(b *TemplateDataBuilder, page listing.Page[T])
}

// query parses the request into a Query, keeping only whitelisted filters.
func (s listDef[T]) query(r *http.Request) listing.Query {
	q := listing.FromValues(r.URL.Query(), s.Defaults)
	for key := range q.Filters {
		if !slices.Contains(s.Filters, key) {
			delete(q.Filters, key)
		}
	}
	return q
}

// href is the browser URL of q on this page.
func (s listDef[T]) href(q listing.Query) string {
	if enc := q.Encode(); enc != "" {
		return s.Path + "?" + enc
	}
	return s.Path
}

func (s listDef[T]) pagination(q listing.Query, page listing.Page[T]) viewmodel.Pagination {
	md := page.Metadata
	p := viewmodel.Pagination{
		Page:       md.CurrentPage,
		PageCount:  md.PageCount,
		PageSize:   md.PageSize,
		HasPrev:    page.HasPrev(),
		HasNext:    page.HasNext(),
		StartIndex: page.StartIndex(),
		EndIndex:   page.EndIndex(),
		TotalCount: md.TotalCount,
	}
	if p.HasPrev {
		p.PrevURL = s.href(listing.Derive(q, listing.GoToPage(md.CurrentPage-1)))
	}
	if p.HasNext {
		p.NextURL = s.href(listing.Derive(q, listing.GoToPage(md.CurrentPage+1)))
	}
	maxSize := s.Defaults.MaxPageSize
	if maxSize <= 0 {
		maxSize = listing.MaxPageSize
	}
	for _, size := range pageSizeChoices {
		if size > maxSize {
			break
		}
		p.PageSizes = append(p.PageSizes, viewmodel.PageSizeOption{
			Size:   size,
			Href:   s.href(listing.Derive(q, listing.Patch{}.WithPageSize(size))),
			Active: size == q.PageSize,
		})
	}
	return p
}

func (s listDef[T]) view(q listing.Query, page listing.Page[T]) table.View {
	return table.Render(s.Columns, page.Data, table.Options[T]{
		Sort: table.SortFromQuery(q),
		Key:  s.Key,
		SortHref: func(accessor string) string {
			return s.href(listing.Derive(q, listing.SortBy(accessor)))
		},
		EmptyText: s.EmptyText,
	})
}

// clearFilters keeps sort and page size but drops every filter.
func (s listDef[T]) clearFilters(q listing.Query) string {
	cleared := q.Clone()
	cleared.Filters = nil
	cleared.Page = 1
	return s.href(cleared)
}

// serveList handles GET requests of a list page.
func serveList[T any](h *UIHandlers, w http.ResponseWriter, r *http.Request, def listDef[T]) {
	q := def.query(r)

	var filterErrs map[string]string
	if def.Validate != nil {
		filterErrs = def.Validate(q)
		for wire := range filterErrs {
			delete(q.Filters, listing.Camel(wire))
		}
	}

	partial := WantsPartial(r)
	var ticket listing.Ticket
	owner := listOwner(r, def.Path)
	if partial {
		ticket = h.sequencers().next(owner)
	}

	b := NewTemplateData(r, def.Meta).
		With("Query", q).
		With("Filters", q.Filters).
		With("ListPath", def.Path).
		With("SelfURL", def.href(q)).
		With("ClearFiltersURL", def.clearFilters(q)).
		WithFieldErrors(filterErrs)

	// Rows and filter options load side by side; b is only touched by Enrich until Wait returns.
	var (
		page listing.Page[T]
		err  error
		g    errgroup.Group
	)
	g.Go(func() error {
		page, err = def.Fetch(r.Context(), apiScope(r), q)
		return nil
	})
	if def.Enrich != nil {
		g.Go(func() error {
			def.Enrich(r, b, q)
			return nil
		})
	}
	_ = g.Wait()

	// A newer request for the same list superseded this one; keep the swap target as is.
	if partial && !h.sequencers().current(owner, ticket) {
		h.logger().Debug("discarding stale list response", "path", def.Path, "query", q.Encode())
		w.WriteHeader(http.StatusNoContent)
		return
	}

	status := http.StatusOK
	if err != nil {
		f, handled := h.translateFailure(w, r, err)
		if handled {
			return
		}
		status = f.Status
		page = listing.Empty[T](q)
		b.WithError(f.Message)
	}

	if def.Decorate != nil {
		def.Decorate(b, page)
	}
	if partial {
		SetHXPushURL(w, def.href(q))
	}
	b.With("Table", def.view(q, page)).
		WithPagination(def.pagination(q, page))
	h.renderPage(w, r, b.Build(), status)
}

// listOwner scopes stale-response tracking to one user's view of one list.
func listOwner(r *http.Request, path string) string {
	if s := GetSessionFromContext(r.Context()); s != nil {
		return s.ID + "|" + path
	}
	return "anonymous|" + path
}

// listSequencers holds a listing.Sequencer per owner so only the latest
// partial list request of a user is rendered.
type listSequencers struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]*sequencerEntry
}

type sequencerEntry struct {
	seq  listing.Sequencer
	used time.Time
}

func newListSequencers(ttl time.Duration) *listSequencers {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &listSequencers{ttl: ttl, now: time.Now, entries: make(map[string]*sequencerEntry)}
}

func (l *listSequencers) next(owner string) listing.Ticket {
	l.mu.Lock()
	now := l.now()
	for k, e := range l.entries {
		if now.Sub(e.used) > l.ttl {
			delete(l.entries, k)
		}
	}
	e, ok := l.entries[owner]
	if !ok {
		e = &sequencerEntry{}
		l.entries[owner] = e
	}
	e.used = now
	l.mu.Unlock()
	return e.seq.Next()
}

func (l *listSequencers) current(owner string, t listing.Ticket) bool {
	l.mu.Lock()
	e, ok := l.entries[owner]
	l.mu.Unlock()
	return ok && e.seq.Current(t)
}
