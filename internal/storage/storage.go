// Package storage uploads import sheets and attachments to object storage
// and turns the returned content identifiers into public URLs.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
)

var (
	// ErrEmptyName is returned for uploads without a file name.
	ErrEmptyName = errors.New("storage: file name is required")
	// ErrInvalidName is returned for names that try to escape their folder.
	ErrInvalidName = errors.New("storage: invalid file name")
)

// Object is one file to store.
type Object struct {
	Name        string
	ContentType string
	Content     io.Reader
}

// Uploader stores objects on behalf of a signed-in user.
type Uploader interface {
	// Upload stores obj and returns its content identifier.
	Upload(ctx context.Context, scope apiclient.Scope, obj Object) (string, error)
	// PublicURL builds the retrieval URL of a content identifier, or "" when
	// no public prefix is configured.
	PublicURL(contentID string) string
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	if strings.Contains(name, "..") {
		return "", ErrInvalidName
	}
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	if base == "." || base == "/" {
		return "", ErrInvalidName
	}
	return base, nil
}

func joinURL(prefix, contentID string) string {
	if prefix == "" || contentID == "" {
		return ""
	}
	return strings.TrimRight(prefix, "/") + "/" + strings.TrimLeft(contentID, "/")
}
