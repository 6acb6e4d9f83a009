package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/storage"
)

// StudentServiceOptions groups dependencies for StudentService.
type StudentServiceOptions struct {
	SchoolServiceOptions
	Uploader storage.Uploader // Required for Import
}

// StudentService lists students and runs sheet imports.
type StudentService struct {
	schoolBase
	uploader storage.Uploader
}

// NewStudentService constructs a StudentService.
func NewStudentService(opts StudentServiceOptions) (*StudentService, error) {
	if opts.Client == nil {
		return nil, errors.New("api client is required")
	}
	if opts.Uploader == nil {
		return nil, errors.New("uploader is required")
	}
	return &StudentService{
		schoolBase: newSchoolBase(opts.SchoolServiceOptions, "student_service"),
		uploader:   opts.Uploader,
	}, nil
}

// MustNewStudentService constructs a StudentService and panics on error.
func MustNewStudentService(opts StudentServiceOptions) *StudentService {
	s, err := NewStudentService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring fails fast
	}
	return s
}

// List returns one page of students for q.
func (s *StudentService) List(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Student], error) {
	return apiclient.FetchPageShared[model.Student](ctx, s.dedupe, s.client, scope, StudentsEndpoint, q.Normalize(s.defaults))
}

// Import uploads the sheet and asks the API to import it, optionally into classID.
func (s *StudentService) Import(ctx context.Context, scope apiclient.Scope, sheet storage.Object, classID string) (model.ImportSummary, error) {
	if err := scope.Check(); err != nil {
		return model.ImportSummary{}, err
	}
	contentID, err := s.uploader.Upload(ctx, scope, sheet)
	if err != nil {
		return model.ImportSummary{}, err
	}

	req := model.ImportStudentsRequest{ContentID: contentID}
	if classID != "" {
		req.ClassID = &classID
	}
	summary, err := apiclient.Send[model.ImportSummary](ctx, s.client, scope, http.MethodPost, StudentImportPath, req)
	if err != nil {
		return model.ImportSummary{}, err
	}
	summary.SheetURL = s.uploader.PublicURL(contentID)
	s.logger.InfoContext(ctx, "student sheet imported",
		"content_id", contentID, "imported", summary.Imported, "skipped", summary.Skipped)
	return summary, nil
}
