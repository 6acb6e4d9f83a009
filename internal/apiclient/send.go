package apiclient

import (
	"context"
	"net/http"
)

// Get decodes the JSON resource at path.
func Get[T any](ctx context.Context, c *Client, scope Scope, path string) (T, error) {
	var out T
	err := c.Do(ctx, scope, Request{Method: http.MethodGet, Path: path}, &out)
	return out, err
}

// Send performs a write with a JSON body and decodes the JSON response into T.
// An empty response body leaves T at its zero value.
func Send[T any](ctx context.Context, c *Client, scope Scope, method, path string, body any) (T, error) {
	var out T
	err := c.Do(ctx, scope, Request{Method: method, Path: path, Body: body}, &out)
	return out, err
}

// Delete removes the resource at path.
func (c *Client) Delete(ctx context.Context, scope Scope, path string) error {
	return c.Do(ctx, scope, Request{Method: http.MethodDelete, Path: path}, nil)
}
