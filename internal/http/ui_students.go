package httpx

import (
	"context"
	"net/http"

	"github.com/harmonia-academy/harmonia-web/internal/apiclient"
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/http/validation"
	"github.com/harmonia-academy/harmonia-web/internal/table"
)

const filterStudentClassIDs = "studentClassIds"

//nolint:gochecknoglobals // column layout is declared once
var studentColumns = []table.Column[model.Student]{
	{Header: "Name", Accessor: "fullName", Sortable: true, Value: func(s model.Student) any { return s.FullName }},
	{Header: "Email", Accessor: "email", Value: func(s model.Student) any { return s.Email }},
	{Header: "Phone", Accessor: "phone", Value: func(s model.Student) any { return s.Phone }},
	{Header: "Class", Accessor: "studentClassName", Sortable: true, Value: func(s model.Student) any { return s.ClassName }},
	{Header: "Status", Accessor: "status", Sortable: true, Value: func(s model.Student) any { return s.Status }},
	{
		Header: "Enrolled", Accessor: "enrolledAt", Sortable: true,
		Value:  func(s model.Student) any { return s.EnrolledAt },
		Format: formatDateCell,
	},
}

func (h *UIHandlers) studentList() listDef[model.Student] {
	return listDef[model.Student]{
		Meta: PageMeta{Title: "Students", PageTitle: "Students", CurrentPage: PageStudents},
		Path: "/students",
		Defaults: listing.Defaults{
			PageSize:      listing.DefaultPageSize,
			MaxPageSize:   listing.MaxPageSize,
			SortColumn:    "fullName",
			SortDirection: listing.Asc,
		},
		Filters:   []string{filterStudentClassIDs, filterStatuses, filterKeyword},
		Columns:   studentColumns,
		Key:       func(s model.Student) string { return s.ID },
		EmptyText: "No students match these filters.",
		Fetch:     h.Students.List,
		Validate: func(q listing.Query) map[string]string {
			fv := validation.New()
			enumFilter(fv, q, filterStatuses, "Status", model.StudentStatuses())
			keywordFilter(fv, q)
			return errorsOrNil(fv)
		},
		Enrich: h.enrichStudentFilters,
	}
}

func (h *UIHandlers) enrichStudentFilters(r *http.Request, b *TemplateDataBuilder, q listing.Query) {
	b.With("StatusOptions", filterOptions(model.StudentStatuses(), q.Filters, filterStatuses)).
		With("Keyword", q.Filters.Get(filterKeyword))

	classes, err := h.classOptions(r.Context(), apiScope(r))
	if err != nil {
		h.logger().Warn("failed to load class filter options", "error", err)
		return
	}
	b.With("ClassOptions", filterOptions(classes, q.Filters, filterStudentClassIDs))
}

// classOptions lists classes by name for filters and the import form.
func (h *UIHandlers) classOptions(ctx context.Context, scope apiclient.Scope) ([]model.Option, error) {
	page, err := h.Classes.List(ctx, scope, listing.Query{
		Page:          1,
		PageSize:      listing.MaxPageSize,
		SortColumn:    "name",
		SortDirection: listing.Asc,
	})
	if err != nil {
		return nil, err
	}
	out := make([]model.Option, 0, len(page.Data))
	for _, c := range page.Data {
		out = append(out, model.Option{Value: c.ID, Label: c.Name})
	}
	return out, nil
}

// StudentList renders the student list.
func (h *UIHandlers) StudentList(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.studentList())
}
