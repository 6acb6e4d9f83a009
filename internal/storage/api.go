package storage

import (
	"context"
	"fmt"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// APIUploader sends files to the school API's storage endpoint as multipart
// form data, authenticated with the caller's bearer token.
type APIUploader struct {
	client    *apiclient.Client
	endpoint  string
	publicURL string
}

// NewAPIUploader returns an uploader posting to endpoint (relative to the API base).
func NewAPIUploader(client *apiclient.Client, endpoint, publicURL string) *APIUploader {
	if endpoint == "" {
		endpoint = "storage/upload"
	}
	return &APIUploader{client: client, endpoint: endpoint, publicURL: publicURL}
}

// Upload implements Uploader.
func (u *APIUploader) Upload(ctx context.Context, scope apiclient.Scope, obj Object) (string, error) {
	name, err := validateName(obj.Name)
	if err != nil {
		return "", apperrors.ValidationField("file", err.Error())
	}
	res, err := u.client.Upload(ctx, scope, u.endpoint, apiclient.File{
		Field:       "file",
		Name:        name,
		ContentType: obj.ContentType,
		Content:     obj.Content,
	})
	if err != nil {
		return "", err
	}
	if res.ContentID == "" {
		return "", apperrors.Unavailable(fmt.Sprintf("Upload of %s returned no content id.", name))
	}
	return res.ContentID, nil
}

// PublicURL implements Uploader.
func (u *APIUploader) PublicURL(contentID string) string {
	return joinURL(u.publicURL, contentID)
}
