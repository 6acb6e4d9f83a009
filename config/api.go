package config

import (
	"strings"
	"time"
)

// APIConfig configures the client of the school REST API.
type APIConfig struct {
	// BaseURL is the API root every endpoint is resolved against.
	BaseURL string        `env:"BASE_URL" envDefault:"http://localhost:5000/api"`
	Timeout time.Duration `env:"TIMEOUT"  envDefault:"15s"`

	DefaultPageSize int `env:"DEFAULT_PAGE_SIZE" envDefault:"10"`
	MaxPageSize     int `env:"MAX_PAGE_SIZE"     envDefault:"100"`

	// Dedupe collapses concurrent identical list requests of one user.
	Dedupe bool `env:"DEDUPE" envDefault:"true"`

	// ErrorExpression is a JMESPath expression extracting the message of an
	// error body. Empty uses the built-in expression.
	ErrorExpression string `env:"ERROR_EXPRESSION"`

	// ExportLimit caps the rows of one PDF export.
	ExportLimit int `env:"EXPORT_LIMIT" envDefault:"2000"`
}

// Sanitize applies guardrails to API client values.
func (a *APIConfig) Sanitize() {
	a.BaseURL = strings.TrimSpace(a.BaseURL)
	if a.Timeout <= 0 {
		a.Timeout = 15 * time.Second
	}
	if a.MaxPageSize <= 0 {
		a.MaxPageSize = 100
	}
	if a.DefaultPageSize <= 0 {
		a.DefaultPageSize = 10
	}
	if a.DefaultPageSize > a.MaxPageSize {
		a.DefaultPageSize = a.MaxPageSize
	}
	if a.ExportLimit <= 0 {
		a.ExportLimit = 2000
	}
}
