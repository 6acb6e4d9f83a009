package apiclient

import (
	"context"
	"net/http"
	"net/url"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// EncodeQuery serializes q for a list endpoint: page, page-size, sort-column
// and sort-direction, then every filter under its kebab-case key, repeated per
// value, with dates as YYYY-MM-DD. Empty filters are omitted and unknown keys
// are passed through unchanged.
func EncodeQuery(q listing.Query) url.Values {
	return q.Values()
}

// FetchPage loads one page of endpoint for q. It performs exactly one request
// and never retries or modifies q.
//
// The envelope is checked against the request: a response for another page
// fails with an Unavailable error, and rows beyond the page size are dropped.
func FetchPage[T any](ctx context.Context, c *Client, scope Scope, endpoint string, q listing.Query) (listing.Page[T], error) {
	if err := scope.Check(); err != nil {
		return listing.Page[T]{}, err
	}

	var page listing.Page[T]
	err := c.Do(ctx, scope, Request{
		Method: http.MethodGet,
		Path:   endpoint,
		Query:  EncodeQuery(q),
	}, &page)
	if err != nil {
		return listing.Page[T]{}, err
	}

	if page.Metadata.CurrentPage != q.Page {
		c.logger.WarnContext(ctx, "api returned a different page than requested",
			"endpoint", endpoint, "requested", q.Page, "received", page.Metadata.CurrentPage)
		return listing.Page[T]{}, apperrors.Unavailablef(
			"The list changed while loading (expected page %d). Please reload.", q.Page)
	}
	if q.PageSize > 0 && len(page.Data) > q.PageSize {
		c.logger.WarnContext(ctx, "api returned more rows than the page size",
			"endpoint", endpoint, "page_size", q.PageSize, "rows", len(page.Data))
		page.Data = page.Data[:q.PageSize]
	}
	if page.Data == nil {
		page.Data = []T{}
	}
	return page, nil
}

// Fetcher binds a client, endpoint and row type into a listing.FetchFunc for scope.
func Fetcher[T any](c *Client, scope Scope, endpoint string) listing.FetchFunc[T] {
	return func(ctx context.Context, q listing.Query) (listing.Page[T], error) {
		return FetchPage[T](ctx, c, scope, endpoint, q)
	}
}
