package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/google/uuid"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// blobAPI is the subset of *azblob.Client used here.
type blobAPI interface {
	CreateContainer(ctx context.Context, containerName string, o *azblob.CreateContainerOptions) (azblob.CreateContainerResponse, error)
	UploadStream(ctx context.Context, containerName, blobName string, body io.Reader, o *azblob.UploadStreamOptions) (azblob.UploadStreamResponse, error)
}

// AzureConfig configures AzureUploader.
type AzureConfig struct {
	ConnectionString string
	Container        string
	PublicURL        string
	Logger           *slog.Logger
}

// AzureUploader writes objects straight to an Azure Blob Storage container.
// Content ids are "<yyyy>/<mm>/<uuid>/<file name>".
type AzureUploader struct {
	client    blobAPI
	container string
	publicURL string
	logger    *slog.Logger
	now       func() time.Time
}

// NewAzureUploader creates the Azure client. No request is made until
// EnsureContainer or Upload is called.
func NewAzureUploader(cfg AzureConfig) (*AzureUploader, error) {
	client, err := azblob.NewClientFromConnectionString(cfg.ConnectionString, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	return newAzureUploader(client, cfg), nil
}

func newAzureUploader(client blobAPI, cfg AzureConfig) *AzureUploader {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &AzureUploader{
		client:    client,
		container: cfg.Container,
		publicURL: cfg.PublicURL,
		logger:    logger.With("component", "storage", "backend", "azure"),
		now:       time.Now,
	}
}

// EnsureContainer creates the container if it does not exist yet.
func (a *AzureUploader) EnsureContainer(ctx context.Context) error {
	_, err := a.client.CreateContainer(ctx, a.container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return fmt.Errorf("create container %s: %w", a.container, err)
	}
	a.logger.Info("storage container ready", "container", a.container)
	return nil
}

// Upload implements Uploader. The scope must still carry a credential so only
// signed-in users can write.
func (a *AzureUploader) Upload(ctx context.Context, scope apiclient.Scope, obj Object) (string, error) {
	if err := scope.Check(); err != nil {
		return "", err
	}
	name, err := validateName(obj.Name)
	if err != nil {
		return "", apperrors.ValidationField("file", err.Error())
	}
	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("%s/%s/%s", a.now().UTC().Format("2006/01"), uuid.NewString(), name)
	_, err = a.client.UploadStream(ctx, a.container, key, obj.Content, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		a.logger.WarnContext(ctx, "blob upload failed", "key", key, "error", err)
		return "", apperrors.Wrap(err, apperrors.ErrCodeUnavailable, "The file could not be stored. Please try again.")
	}
	a.logger.DebugContext(ctx, "blob uploaded", "key", key)
	return key, nil
}

// PublicURL implements Uploader.
func (a *AzureUploader) PublicURL(contentID string) string {
	return joinURL(a.publicURL, contentID)
}
