package service

import (
	"context"
	"errors"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
)

// DefaultExportLimit bounds the rows of one export.
const DefaultExportLimit = 2000

// TransactionServiceOptions groups dependencies for TransactionService.
type TransactionServiceOptions struct {
	SchoolServiceOptions
	// ExportLimit caps exported rows. Defaults to DefaultExportLimit.
	ExportLimit int
}

// TransactionService lists and exports tuition transactions.
type TransactionService struct {
	schoolBase
	exportLimit int
}

// NewTransactionService constructs a TransactionService.
func NewTransactionService(opts TransactionServiceOptions) (*TransactionService, error) {
	if opts.Client == nil {
		return nil, errors.New("api client is required")
	}
	limit := opts.ExportLimit
	if limit <= 0 {
		limit = DefaultExportLimit
	}
	return &TransactionService{
		schoolBase:  newSchoolBase(opts.SchoolServiceOptions, "transaction_service"),
		exportLimit: limit,
	}, nil
}

// MustNewTransactionService constructs a TransactionService and panics on error.
func MustNewTransactionService(opts TransactionServiceOptions) *TransactionService {
	s, err := NewTransactionService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring fails fast
	}
	return s
}

// List returns one page of transactions for q.
func (s *TransactionService) List(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Transaction], error) {
	return apiclient.FetchPageShared[model.Transaction](ctx, s.dedupe, s.client, scope, TransactionsEndpoint, q.Normalize(s.defaults))
}

// Export collects every transaction matching q's filters and sort, starting at
// page 1 with the largest page size, until the last page or the export limit.
// The second result reports whether rows were cut off by the limit.
func (s *TransactionService) Export(ctx context.Context, scope apiclient.Scope, q listing.Query) ([]model.Transaction, bool, error) {
	start := q.Clone()
	start.Page = 1
	start.PageSize = s.defaults.MaxPageSize
	if start.PageSize <= 0 {
		start.PageSize = listing.MaxPageSize
	}
	tracker := listing.NewTracker[model.Transaction](start)
	fetch := apiclient.Fetcher[model.Transaction](s.client, scope, TransactionsEndpoint)

	rows := make([]model.Transaction, 0, start.PageSize)
	patch := listing.Patch{}
	for {
		page, err := tracker.Load(ctx, patch, fetch)
		if err != nil {
			return nil, false, err
		}
		rows = append(rows, page.Data...)
		if len(rows) >= s.exportLimit {
			truncated := len(rows) > s.exportLimit || page.HasNext()
			s.logger.WarnContext(ctx, "transaction export hit row limit",
				"limit", s.exportLimit, "total", page.Metadata.TotalCount)
			return rows[:s.exportLimit], truncated, nil
		}
		if !page.HasNext() || len(page.Data) == 0 {
			return rows, false, nil
		}
		patch = listing.GoToPage(page.Metadata.CurrentPage + 1)
	}
}
