package apiclient

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// Deduper collapses concurrent identical list requests into one API call.
// Calls are keyed by caller token, endpoint and encoded query, so users never
// share results.
type Deduper struct {
	group singleflight.Group
}

// Key builds the de-duplication key of a list request.
func Key(scope Scope, endpoint string, q listing.Query) string {
	return strings.Join([]string{scope.Token, endpoint, EncodeQuery(q).Encode()}, "\x00")
}

// FetchPageShared is FetchPage shared across concurrent identical calls.
// Cancelling one caller's ctx releases only that caller. A nil Deduper calls
// FetchPage directly.
func FetchPageShared[T any](ctx context.Context, d *Deduper, c *Client, scope Scope, endpoint string, q listing.Query) (listing.Page[T], error) {
	if d == nil {
		return FetchPage[T](ctx, c, scope, endpoint, q)
	}
	ch := d.group.DoChan(Key(scope, endpoint, q), func() (any, error) {
		// The shared call outlives any single caller; the client timeout bounds it.
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		return FetchPage[T](shared, c, scope, endpoint, q)
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return listing.Page[T]{}, apperrors.FromTransport(ctx.Err())
	case res = <-ch:
	}
	if res.Err != nil {
		return listing.Page[T]{}, res.Err
	}
	page := res.Val.(listing.Page[T])
	// Callers receive their own row slice.
	page.Data = slices.Clone(page.Data)
	return page, nil
}
