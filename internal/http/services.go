package httpx

import (
	"context"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/service"
	"github.com/harmonia-academy/harmonia-web/internal/storage"
)

// ClassesService is the class surface the UI needs.
type ClassesService interface {
	List(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Class], error)
	Get(ctx context.Context, scope apiclient.Scope, id string) (*model.Class, error)
	Delete(ctx context.Context, scope apiclient.Scope, id string) error
	Publish(ctx context.Context, scope apiclient.Scope, id string, req model.PublishClassRequest) (*model.Class, error)
	Teachers(ctx context.Context, scope apiclient.Scope) ([]model.Teacher, error)
}

// StudentsService is the student surface the UI needs.
type StudentsService interface {
	List(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Student], error)
	Import(ctx context.Context, scope apiclient.Scope, sheet storage.Object, classID string) (model.ImportSummary, error)
}

// TransactionsService is the transaction surface the UI needs.
type TransactionsService interface {
	List(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Transaction], error)
	Export(ctx context.Context, scope apiclient.Scope, q listing.Query) ([]model.Transaction, bool, error)
}

// Compile-time interface assertions to ensure concrete services satisfy their UI interfaces.
var (
	_ ClassesService      = (*service.ClassService)(nil)
	_ StudentsService     = (*service.StudentService)(nil)
	_ TransactionsService = (*service.TransactionService)(nil)
)
