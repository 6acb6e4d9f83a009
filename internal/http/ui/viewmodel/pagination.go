package viewmodel

// PageSizeOption is one entry of the rows-per-page selector.
type PageSizeOption struct {
	Size   int
	Href   string
	Active bool
}

// Pagination contains pagination metadata for list views.
type Pagination struct {
	Page       int
	PageCount  int
	PageSize   int
	HasPrev    bool
	HasNext    bool
	StartIndex int
	EndIndex   int
	TotalCount int
	PrevURL    string
	NextURL    string
	PageSizes  []PageSizeOption
}
