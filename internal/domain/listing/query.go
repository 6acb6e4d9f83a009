// Package listing models one page of a filtered, sorted list request and the
// envelope the school API answers it with.
package listing

import (
	"maps"
	"slices"
	"strings"
)

// Direction is the sort order of a list query.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Asc || d == Desc
}

// Flip returns the opposite direction. Unknown values flip to Asc.
func (d Direction) Flip() Direction {
	if d == Asc {
		return Desc
	}
	return Asc
}

// Filters maps a camelCase filter key to its values. A key is either absent or
// carries at least one non-empty value.
type Filters map[string][]string

// Get returns the first value for key, or "".
func (f Filters) Get(key string) string {
	if v := f[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// Has reports whether value is one of the values stored for key.
func (f Filters) Has(key, value string) bool {
	return slices.Contains(f[key], value)
}

// Keys returns the filter keys in sorted order.
func (f Filters) Keys() []string {
	return slices.Sorted(maps.Keys(f))
}

func (f Filters) clone() Filters {
	if len(f) == 0 {
		return Filters{}
	}
	out := make(Filters, len(f))
	for k, v := range f {
		out[k] = slices.Clone(v)
	}
	return out
}

// Query describes a request for one page of a list. It is a value: every change
// produces a new Query through Derive.
type Query struct {
	Page          int
	PageSize      int
	SortColumn    string
	SortDirection Direction
	Filters       Filters
}

// Defaults bounds the page size of queries built from untrusted input.
type Defaults struct {
	PageSize      int
	MaxPageSize   int
	SortColumn    string
	SortDirection Direction
}

// DefaultPageSize and MaxPageSize mirror the browser list pages.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// StandardDefaults is used when a page does not declare its own defaults.
var StandardDefaults = Defaults{PageSize: DefaultPageSize, MaxPageSize: MaxPageSize, SortDirection: Asc}

// New returns the first page of a list using d.
func New(d Defaults) Query {
	return Query{Page: 1, PageSize: d.PageSize, SortColumn: d.SortColumn, SortDirection: d.SortDirection}.Normalize(d)
}

// Normalize clamps Page and PageSize into valid bounds and fills an empty sort
// direction. Filters with no usable value are dropped.
func (q Query) Normalize(d Defaults) Query {
	if d.PageSize <= 0 {
		d.PageSize = DefaultPageSize
	}
	if d.MaxPageSize <= 0 {
		d.MaxPageSize = MaxPageSize
	}
	out := q.Clone()
	if out.Page < 1 {
		out.Page = 1
	}
	switch {
	case out.PageSize < 1:
		out.PageSize = d.PageSize
	case out.PageSize > d.MaxPageSize:
		out.PageSize = d.MaxPageSize
	}
	if out.SortColumn == "" {
		out.SortColumn = d.SortColumn
	}
	if !out.SortDirection.Valid() {
		out.SortDirection = d.SortDirection
		if !out.SortDirection.Valid() {
			out.SortDirection = Asc
		}
	}
	for k, v := range out.Filters {
		if cleaned := cleanValues(v); len(cleaned) > 0 {
			out.Filters[k] = cleaned
		} else {
			delete(out.Filters, k)
		}
	}
	return out
}

// Offset is the zero-based index of the first row on the page.
func (q Query) Offset() int {
	if q.Page < 1 || q.PageSize < 1 {
		return 0
	}
	return (q.Page - 1) * q.PageSize
}

// Clone returns a deep copy of q.
func (q Query) Clone() Query {
	q.Filters = q.Filters.clone()
	return q
}

// Equal reports whether two queries describe the same request.
func (q Query) Equal(o Query) bool {
	if q.Page != o.Page || q.PageSize != o.PageSize ||
		q.SortColumn != o.SortColumn || q.SortDirection != o.SortDirection {
		return false
	}
	return maps.EqualFunc(q.Filters, o.Filters, slices.Equal[[]string, string])
}

func cleanValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
