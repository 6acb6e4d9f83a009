package listing

// Metadata is the pagination block of the API's list envelope.
type Metadata struct {
	TotalCount  int `json:"totalCount"`
	PageCount   int `json:"pageCount"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// Page is one page of rows plus its pagination metadata, exactly as the API
// sends it: {"data": [...], "metadata": {...}}.
type Page[T any] struct {
	Data     []T      `json:"data"`
	Metadata Metadata `json:"metadata"`
}

// Empty returns an empty page for q.
func Empty[T any](q Query) Page[T] {
	return Page[T]{
		Data:     []T{},
		Metadata: Metadata{CurrentPage: q.Page, PageSize: q.PageSize},
	}
}

// HasPrev reports whether a previous page exists.
func (p Page[T]) HasPrev() bool {
	return p.Metadata.CurrentPage > 1
}

// HasNext reports whether a following page exists.
func (p Page[T]) HasNext() bool {
	return p.Metadata.CurrentPage < p.Metadata.PageCount
}

// StartIndex is the one-based position of the first row, or 0 for an empty page.
func (p Page[T]) StartIndex() int {
	if len(p.Data) == 0 {
		return 0
	}
	return (max(p.Metadata.CurrentPage, 1)-1)*p.Metadata.PageSize + 1
}

// EndIndex is the one-based position of the last row, or 0 for an empty page.
func (p Page[T]) EndIndex() int {
	if len(p.Data) == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Data) - 1
}

// Map converts the rows of p with fn, keeping the metadata.
func Map[T, U any](p Page[T], fn func(T) U) Page[U] {
	out := Page[U]{Data: make([]U, 0, len(p.Data)), Metadata: p.Metadata}
	for _, row := range p.Data {
		out.Data = append(out.Data, fn(row))
	}
	return out
}
