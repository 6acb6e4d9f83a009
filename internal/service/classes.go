package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	apperrors "github.com/harmonia-academy/harmonia-web/internal/errors"
)

// teacherOptionsPageSize caps the teacher filter list.
const teacherOptionsPageSize = listing.MaxPageSize

// ClassService reads and mutates classes through the school API.
type ClassService struct {
	schoolBase
}

// NewClassService constructs a ClassService.
func NewClassService(opts SchoolServiceOptions) (*ClassService, error) {
	if opts.Client == nil {
		return nil, errors.New("api client is required")
	}
	return &ClassService{schoolBase: newSchoolBase(opts, "class_service")}, nil
}

// MustNewClassService constructs a ClassService and panics on error.
func MustNewClassService(opts SchoolServiceOptions) *ClassService {
	s, err := NewClassService(opts)
	if err != nil {
		panic(err) //nolint:forbidigo // startup wiring fails fast
	}
	return s
}

// List returns one page of classes for q.
func (s *ClassService) List(ctx context.Context, scope apiclient.Scope, q listing.Query) (listing.Page[model.Class], error) {
	return apiclient.FetchPageShared[model.Class](ctx, s.dedupe, s.client, scope, ClassesEndpoint, q.Normalize(s.defaults))
}

// Get returns a single class.
func (s *ClassService) Get(ctx context.Context, scope apiclient.Scope, id string) (*model.Class, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "Class id is required.")
	}
	c, err := apiclient.Get[model.Class](ctx, s.client, scope, resourcePath(ClassesEndpoint, id))
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, scope apiclient.Scope, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperrors.ValidationField("id", "Class id is required.")
	}
	if err := s.client.Delete(ctx, scope, resourcePath(ClassesEndpoint, id)); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "class deleted", "class_id", id)
	return nil
}

// Publish publishes the schedule of a class and returns the updated class.
func (s *ClassService) Publish(ctx context.Context, scope apiclient.Scope, id string, req model.PublishClassRequest) (*model.Class, error) {
	if strings.TrimSpace(id) == "" {
		return nil, apperrors.ValidationField("id", "Class id is required.")
	}
	c, err := apiclient.Send[model.Class](ctx, s.client, scope, http.MethodPost, resourcePath(ClassesEndpoint, id, "publish"), req)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "class schedule published", "class_id", id, "notify", req.NotifyStudents)
	return &c, nil
}

// Teachers lists teachers for the class filter, sorted by name.
func (s *ClassService) Teachers(ctx context.Context, scope apiclient.Scope) ([]model.Teacher, error) {
	q := listing.Query{
		Page:          1,
		PageSize:      teacherOptionsPageSize,
		SortColumn:    "fullName",
		SortDirection: listing.Asc,
	}
	page, err := apiclient.FetchPageShared[model.Teacher](ctx, s.dedupe, s.client, scope, TeachersEndpoint, q)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}
