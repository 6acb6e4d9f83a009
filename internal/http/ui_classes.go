package httpx

import (
	"net/http"
	"time"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/http/uiutil"
	"github.com/harmonia-academy/harmonia-web/internal/http/validation"
	"github.com/harmonia-academy/harmonia-web/internal/table"
)

// Class list filter keys.
const (
	filterTeacherIDs = "teacherIds"
	filterStatuses   = "statuses"
	filterKeyword    = "keyword"
)

//nolint:gochecknoglobals // column layout is declared once
var classColumns = []table.Column[model.Class]{
	{Header: "Class", Accessor: "name", Sortable: true, Value: func(c model.Class) any { return c.Name }},
	{Header: "Level", Accessor: "level", Value: func(c model.Class) any { return c.Level }},
	{Header: "Teacher", Accessor: "teacherName", Sortable: true, Value: func(c model.Class) any { return c.TeacherName }},
	{Header: "Status", Accessor: "status", Sortable: true, Value: func(c model.Class) any { return c.Status }},
	{Header: "Seats", Accessor: "enrolled", Sortable: true, Class: "num", Value: func(c model.Class) any { return c.Seats() }},
	{
		Header: "Starts", Accessor: "startDate", Sortable: true,
		Value:  func(c model.Class) any { return c.StartDate },
		Format: formatDateCell,
	},
	{Header: "Published", Accessor: "published", Value: func(c model.Class) any { return c.Published }},
}

func (h *UIHandlers) classList() listDef[model.Class] {
	return listDef[model.Class]{
		Meta: PageMeta{Title: "Classes", PageTitle: "Classes", CurrentPage: PageClasses},
		Path: "/classes",
		Defaults: listing.Defaults{
			PageSize:      listing.DefaultPageSize,
			MaxPageSize:   listing.MaxPageSize,
			SortColumn:    "startDate",
			SortDirection: listing.Desc,
		},
		Filters:   []string{filterTeacherIDs, filterStatuses, filterKeyword},
		Columns:   classColumns,
		Key:       func(c model.Class) string { return c.ID },
		EmptyText: "No classes match these filters.",
		Fetch:     h.Classes.List,
		Validate: func(q listing.Query) map[string]string {
			fv := validation.New()
			enumFilter(fv, q, filterStatuses, "Status", model.ClassStatuses())
			keywordFilter(fv, q)
			return errorsOrNil(fv)
		},
		Enrich:   h.enrichClassFilters,
		Decorate: decorateClasses,
	}
}

func (h *UIHandlers) enrichClassFilters(r *http.Request, b *TemplateDataBuilder, q listing.Query) {
	b.With("StatusOptions", filterOptions(model.ClassStatuses(), q.Filters, filterStatuses)).
		With("Keyword", q.Filters.Get(filterKeyword))

	teachers, err := h.Classes.Teachers(r.Context(), apiScope(r))
	if err != nil {
		// The list still renders; only the teacher filter is missing.
		h.logger().Warn("failed to load teacher filter options", "error", err)
		return
	}
	opts := make([]model.Option, 0, len(teachers))
	for _, t := range teachers {
		opts = append(opts, model.Option{Value: t.ID, Label: t.FullName})
	}
	b.With("TeacherOptions", filterOptions(opts, q.Filters, filterTeacherIDs))
}

// decorateClasses marks the rows whose schedule can still be published.
func decorateClasses(b *TemplateDataBuilder, page listing.Page[model.Class]) {
	publishable := make(map[string]bool, len(page.Data))
	for _, c := range page.Data {
		publishable[c.ID] = c.CanPublish()
	}
	b.With("Publishable", publishable)
}

// ClassList renders the class list.
func (h *UIHandlers) ClassList(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.classList())
}

// formatDateCell renders a calendar date; table.Render already drops nil and zero times.
func formatDateCell(v any) string {
	t, ok := v.(time.Time)
	if !ok {
		return table.FormatValue(v)
	}
	return uiutil.FormatDate(t)
}
