package service

import (
	"log/slog"
	"net/url"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
)

// API resource endpoints relative to the API base URL.
const (
	ClassesEndpoint      = "classes"
	StudentsEndpoint     = "students"
	TransactionsEndpoint = "transactions"
	TeachersEndpoint     = "teachers"
	StudentImportPath    = "students/import"
)

// SchoolServiceOptions groups the dependencies shared by the school list services.
type SchoolServiceOptions struct {
	Client *apiclient.Client // Required
	// Dedupe collapses concurrent identical list calls (optional).
	Dedupe *apiclient.Deduper
	// Defaults bounds page sizes of incoming queries. Zero uses listing.StandardDefaults.
	Defaults listing.Defaults
	Logger   *slog.Logger
}

type schoolBase struct {
	client   *apiclient.Client
	dedupe   *apiclient.Deduper
	defaults listing.Defaults
	logger   *slog.Logger
}

func newSchoolBase(opts SchoolServiceOptions, component string) schoolBase {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	d := opts.Defaults
	if d.PageSize <= 0 {
		d = listing.StandardDefaults
	}
	return schoolBase{
		client:   opts.Client,
		dedupe:   opts.Dedupe,
		defaults: d,
		logger:   logger.With("component", component),
	}
}

func resourcePath(endpoint, id string, rest ...string) string {
	p := endpoint + "/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}
