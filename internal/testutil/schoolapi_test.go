package testutil

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
)

func TestSchoolAPI_RecordsRequests(t *testing.T) {
	api := NewSchoolAPI(t)
	api.JSON("GET /classes/{id}", http.StatusOK, map[string]string{"id": "c1"})

	var out struct {
		ID string `json:"id"`
	}
	err := api.Client().Do(context.Background(), apiclient.Scope{Token: "tok"}, apiclient.Request{
		Method: http.MethodGet,
		Path:   "classes/c1",
		Query:  url.Values{"expand": {"teacher"}},
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "c1", out.ID)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/classes/c1", reqs[0].Path)
	assert.Equal(t, "Bearer tok", reqs[0].Auth)
	assert.Equal(t, []string{"teacher"}, reqs[0].Query["expand"])
}
