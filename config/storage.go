package config

import (
	"fmt"
	"strings"
)

// StorageBackend selects where uploaded import sheets go.
type StorageBackend string

const (
	// StorageBackendAPI posts uploads to the school API's storage endpoint.
	StorageBackendAPI StorageBackend = "api"
	// StorageBackendAzure writes uploads to an Azure Blob Storage container.
	StorageBackendAzure StorageBackend = "azure"
)

// UnmarshalText implements encoding.TextUnmarshaler for StorageBackend.
func (b *StorageBackend) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	switch v {
	case "api", "azure":
		*b = StorageBackend(v)
		return nil
	default:
		return fmt.Errorf("invalid StorageBackend: %q (valid options: api, azure)", v)
	}
}

// StorageConfig configures upload storage.
type StorageConfig struct {
	Backend StorageBackend `env:"BACKEND" envDefault:"api"`

	// UploadEndpoint is the API path receiving multipart uploads (api backend).
	UploadEndpoint string `env:"UPLOAD_ENDPOINT" envDefault:"storage/upload"`

	// PublicURL prefixes content ids to build retrieval URLs.
	PublicURL string `env:"PUBLIC_URL"`

	AzureConnectionString string `env:"AZURE_CONNECTION_STRING"`
	AzureContainer        string `env:"AZURE_CONTAINER" envDefault:"harmonia-imports"`

	// MaxUploadBytes caps one uploaded sheet.
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES" envDefault:"10485760"`
}

// Sanitize applies guardrails to storage values.
func (s *StorageConfig) Sanitize() {
	if s.Backend == "" {
		s.Backend = StorageBackendAPI
	}
	s.UploadEndpoint = strings.Trim(strings.TrimSpace(s.UploadEndpoint), "/")
	s.PublicURL = strings.TrimSpace(s.PublicURL)
	s.AzureContainer = strings.TrimSpace(s.AzureContainer)
	if s.MaxUploadBytes <= 0 {
		s.MaxUploadBytes = 10 << 20
	}
}
