package listing

import "slices"

// Patch is a partial update to a Query. Nil fields are left untouched.
// A Filters entry with no non-empty value removes that key.
type Patch struct {
	Page          *int
	PageSize      *int
	SortColumn    *string
	SortDirection *Direction
	Filters       map[string][]string
}

// GoToPage returns a patch selecting page n.
func GoToPage(n int) Patch {
	return Patch{Page: &n}
}

// SortBy returns a patch selecting column as the sort column.
func SortBy(column string) Patch {
	return Patch{SortColumn: &column}
}

// FilterBy returns a patch setting key to values. No values clears the key.
func FilterBy(key string, values ...string) Patch {
	return Patch{Filters: map[string][]string{key: values}}
}

// WithPage sets an explicit page on p.
func (p Patch) WithPage(n int) Patch {
	p.Page = &n
	return p
}

// WithPageSize sets an explicit page size on p.
func (p Patch) WithPageSize(n int) Patch {
	p.PageSize = &n
	return p
}

// WithDirection sets an explicit sort direction on p.
func (p Patch) WithDirection(d Direction) Patch {
	p.SortDirection = &d
	return p
}

// WithFilter adds a filter entry to p.
func (p Patch) WithFilter(key string, values ...string) Patch {
	next := make(map[string][]string, len(p.Filters)+1)
	for k, v := range p.Filters {
		next[k] = v
	}
	next[key] = values
	p.Filters = next
	return p
}

// IsZero reports whether p changes nothing.
func (p Patch) IsZero() bool {
	return p.Page == nil && p.PageSize == nil && p.SortColumn == nil &&
		p.SortDirection == nil && len(p.Filters) == 0
}

// Derive applies patch to current and returns the resulting Query. current is
// never modified and the result shares no filter storage with it.
//
// Any patch naming a sort column, page size or filter returns to page 1 unless
// the patch also names a page. Naming the active sort column flips the
// direction; naming another column sorts ascending. An explicit direction in
// the patch always wins.
func Derive(current Query, patch Patch) Query {
	next := current.Clone()
	resetPage := false

	if patch.SortColumn != nil {
		if *patch.SortColumn == current.SortColumn {
			next.SortDirection = current.SortDirection.Flip()
		} else {
			next.SortColumn = *patch.SortColumn
			next.SortDirection = Asc
		}
		resetPage = true
	}
	if patch.SortDirection != nil && patch.SortDirection.Valid() {
		next.SortDirection = *patch.SortDirection
	}

	if patch.PageSize != nil && *patch.PageSize != current.PageSize {
		next.PageSize = max(*patch.PageSize, 1)
		resetPage = true
	}

	if len(patch.Filters) > 0 {
		if next.Filters == nil {
			next.Filters = Filters{}
		}
		for key, values := range patch.Filters {
			cleaned := cleanValues(values)
			if len(cleaned) == 0 {
				delete(next.Filters, key)
				continue
			}
			next.Filters[key] = slices.Clone(cleaned)
		}
		resetPage = resetPage || !next.Filters.sameAs(current.Filters)
	}

	switch {
	case patch.Page != nil:
		next.Page = max(*patch.Page, 1)
	case resetPage:
		next.Page = 1
	}
	return next
}

func (f Filters) sameAs(o Filters) bool {
	return Query{Filters: f}.Equal(Query{Filters: o})
}
