package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/table"
)

//nolint:gochecknoglobals // column layouts are declared once
var (
	classList = listDef[model.Class]{
		title: "Classes",
		defaults: listing.Defaults{
			PageSize:      listing.DefaultPageSize,
			MaxPageSize:   listing.MaxPageSize,
			SortColumn:    "startDate",
			SortDirection: listing.Desc,
		},
		columns: []table.Column[model.Class]{
			{Header: "ID", Accessor: "id", Value: func(c model.Class) any { return c.ID }},
			{Header: "Class", Accessor: "name", Sortable: true, Value: func(c model.Class) any { return c.Name }},
			{Header: "Teacher", Accessor: "teacherName", Sortable: true, Value: func(c model.Class) any { return c.TeacherName }},
			{Header: "Status", Accessor: "status", Sortable: true, Value: func(c model.Class) any { return c.Status }},
			{Header: "Seats", Accessor: "enrolled", Sortable: true, Value: func(c model.Class) any { return c.Seats() }},
			{Header: "Starts", Accessor: "startDate", Sortable: true, Value: func(c model.Class) any { return c.StartDate }},
			{Header: "Published", Accessor: "published", Value: func(c model.Class) any { return c.Published }},
		},
		key: func(c model.Class) string { return c.ID },
	}

	studentList = listDef[model.Student]{
		title: "Students",
		defaults: listing.Defaults{
			PageSize:      listing.DefaultPageSize,
			MaxPageSize:   listing.MaxPageSize,
			SortColumn:    "fullName",
			SortDirection: listing.Asc,
		},
		columns: []table.Column[model.Student]{
			{Header: "ID", Accessor: "id", Value: func(s model.Student) any { return s.ID }},
			{Header: "Name", Accessor: "fullName", Sortable: true, Value: func(s model.Student) any { return s.FullName }},
			{Header: "Email", Accessor: "email", Value: func(s model.Student) any { return s.Email }},
			{Header: "Class", Accessor: "studentClassName", Sortable: true, Value: func(s model.Student) any { return s.ClassName }},
			{Header: "Status", Accessor: "status", Sortable: true, Value: func(s model.Student) any { return s.Status }},
			{Header: "Enrolled", Accessor: "enrolledAt", Sortable: true, Value: func(s model.Student) any { return s.EnrolledAt }},
		},
		key: func(s model.Student) string { return s.ID },
	}

	transactionList = listDef[model.Transaction]{
		title: "Tuition transactions",
		defaults: listing.Defaults{
			PageSize:      listing.DefaultPageSize,
			MaxPageSize:   listing.MaxPageSize,
			SortColumn:    "createdAt",
			SortDirection: listing.Desc,
		},
		columns: []table.Column[model.Transaction]{
			{Header: "Code", Accessor: "code", Sortable: true, Value: func(t model.Transaction) any { return t.Code }},
			{Header: "Student", Accessor: "studentName", Sortable: true, Value: func(t model.Transaction) any { return t.StudentName }},
			{Header: "Amount", Accessor: "amount", Sortable: true, Value: func(t model.Transaction) any { return t.FormattedAmount() }},
			{Header: "Status", Accessor: "paymentStatus", Sortable: true, Value: func(t model.Transaction) any { return t.PaymentStatus }},
			{Header: "Method", Accessor: "paymentMethod", Value: func(t model.Transaction) any { return t.PaymentMethod }},
			{Header: "Created", Accessor: "createdAt", Sortable: true, Value: func(t model.Transaction) any { return t.CreatedAt }},
			{Header: "Paid", Accessor: "paidAt", Sortable: true, Value: func(t model.Transaction) any { return t.PaidAt }},
		},
		key: func(t model.Transaction) string { return strconv.Itoa(t.ID) },
	}
)

// withOutput runs fn against path, or against stdout when path is empty.
func withOutput(stdout io.Writer, path string, fn func(io.Writer) error) (err error) {
	if path == "" {
		return fn(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, cerr)
		}
	}()
	return fn(f)
}

type jsonList[T any] struct {
	Query    string           `json:"query"`
	Metadata listing.Metadata `json:"metadata"`
	Data     []T              `json:"data"`
}

func writeList[T any](w io.Writer, format outputFormat, def listDef[T], q listing.Query, rows []T, meta listing.Metadata, truncated bool) error {
	switch format {
	case formatJSON:
		if rows == nil {
			rows = []T{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jsonList[T]{Query: q.Encode(), Metadata: meta, Data: rows})

	case formatPDF:
		view := table.Render(def.columns, rows, table.Options[T]{Sort: table.SortFromQuery(q), Key: def.key})
		return table.WritePDF(w, view, table.PDFOptions{
			Title:     def.title,
			Subtitle:  summary(len(rows), meta, truncated),
			Generated: time.Now(),
			Landscape: len(def.columns) > 6,
		})

	default:
		view := table.Render(def.columns, rows, table.Options[T]{Sort: table.SortFromQuery(q), Key: def.key})
		if err := writeTable(w, view); err != nil {
			return err
		}
		return writeln(w, summary(len(rows), meta, truncated))
	}
}

func writeTable(w io.Writer, v table.View) error {
	if v.Empty {
		return writeln(w, v.EmptyText)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	labels := make([]string, 0, len(v.Headers))
	for _, h := range v.Headers {
		label := h.Label
		if ind := h.Indicator(); ind != "" {
			label += " " + ind
		}
		labels = append(labels, label)
	}
	if err := writeln(tw, strings.Join(labels, "\t")); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, row := range v.Rows {
		cells := make([]string, 0, len(row.Cells))
		for _, c := range row.Cells {
			cells = append(cells, strings.ReplaceAll(c.Text, "\t", " "))
		}
		if err := writeln(tw, strings.Join(cells, "\t")); err != nil {
			return fmt.Errorf("write row %s: %w", row.Key, err)
		}
	}
	return tw.Flush()
}

func summary(rows int, meta listing.Metadata, truncated bool) string {
	s := fmt.Sprintf("%d of %d rows", rows, meta.TotalCount)
	if meta.PageCount > 0 {
		s += fmt.Sprintf(" (through page %d of %d)", meta.CurrentPage, meta.PageCount)
	}
	if truncated {
		s += ", truncated"
	}
	return s
}
