package httpx

import (
	"bytes"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/http/uiutil"
	"github.com/harmonia-academy/harmonia-web/internal/http/validation"
	"github.com/harmonia-academy/harmonia-web/internal/table"
)

// Transaction list filter keys.
const (
	filterPaymentStatuses = "paymentStatuses"
	filterPaymentMethods  = "paymentMethods"
	filterStartDate       = "startDate"
	filterEndDate         = "endDate"
)

//nolint:gochecknoglobals // column layout is declared once
var transactionColumns = []table.Column[model.Transaction]{
	{Header: "Code", Accessor: "code", Sortable: true, Value: func(t model.Transaction) any { return t.Code }},
	{Header: "Student", Accessor: "studentName", Sortable: true, Value: func(t model.Transaction) any { return t.StudentName }},
	{Header: "Amount", Accessor: "amount", Sortable: true, Class: "num", Value: func(t model.Transaction) any { return t.FormattedAmount() }},
	{Header: "Status", Accessor: "paymentStatus", Sortable: true, Value: func(t model.Transaction) any { return t.PaymentStatus }},
	{Header: "Method", Accessor: "paymentMethod", Value: func(t model.Transaction) any { return t.PaymentMethod }},
	{
		Header: "Created", Accessor: "createdAt", Sortable: true,
		Value:  func(t model.Transaction) any { return t.CreatedAt },
		Format: formatDateTimeCell,
	},
	{
		Header: "Paid", Accessor: "paidAt", Sortable: true,
		Value:  func(t model.Transaction) any { return t.PaidAt },
		Format: formatDateTimeCell,
	},
	{Header: "Note", Accessor: "note", Value: func(t model.Transaction) any { return t.Note }},
}

func (h *UIHandlers) transactionList() listDef[model.Transaction] {
	return listDef[model.Transaction]{
		Meta: PageMeta{Title: "Tuition", PageTitle: "Tuition transactions", CurrentPage: PageTransactions},
		Path: "/transactions",
		Defaults: listing.Defaults{
			PageSize:      listing.DefaultPageSize,
			MaxPageSize:   listing.MaxPageSize,
			SortColumn:    "createdAt",
			SortDirection: listing.Desc,
		},
		Filters:   []string{filterPaymentStatuses, filterPaymentMethods, filterStartDate, filterEndDate, filterKeyword},
		Columns:   transactionColumns,
		Key:       func(t model.Transaction) string { return strconv.Itoa(t.ID) },
		EmptyText: "No transactions in this period.",
		Fetch:     h.Transactions.List,
		Validate:  validateTransactionFilters,
		Enrich: func(_ *http.Request, b *TemplateDataBuilder, q listing.Query) {
			b.With("StatusOptions", filterOptions(model.PaymentStatuses(), q.Filters, filterPaymentStatuses)).
				With("MethodOptions", filterOptions(model.PaymentMethods(), q.Filters, filterPaymentMethods)).
				With("Keyword", q.Filters.Get(filterKeyword)).
				With("StartDate", q.Filters.Get(filterStartDate)).
				With("EndDate", q.Filters.Get(filterEndDate)).
				With("ExportURL", exportHref(q))
		},
	}
}

func validateTransactionFilters(q listing.Query) map[string]string {
	fv := validation.New()
	enumFilter(fv, q, filterPaymentStatuses, "Payment status", model.PaymentStatuses())
	enumFilter(fv, q, filterPaymentMethods, "Payment method", model.PaymentMethods())
	keywordFilter(fv, q)
	dateRangeFilter(fv, q)
	return errorsOrNil(fv)
}

// exportHref carries the current filters and sort to the PDF export.
func exportHref(q listing.Query) string {
	v := q.Values()
	v.Del(listing.ParamPage)
	v.Del(listing.ParamPageSize)
	if enc := v.Encode(); enc != "" {
		return "/transactions/export.pdf?" + enc
	}
	return "/transactions/export.pdf"
}

// TransactionList renders the tuition transaction list.
func (h *UIHandlers) TransactionList(w http.ResponseWriter, r *http.Request) {
	serveList(h, w, r, h.transactionList())
}

// TransactionExport streams every transaction matching the current filters as a PDF.
func (h *UIHandlers) TransactionExport(w http.ResponseWriter, r *http.Request) {
	def := h.transactionList()
	q := def.query(r)
	if errs := def.Validate(q); len(errs) > 0 {
		http.Error(w, "Invalid export filters: "+firstError(errs), http.StatusBadRequest)
		return
	}

	rows, truncated, err := h.Transactions.Export(r.Context(), apiScope(r), q)
	if err != nil {
		f, handled := h.translateFailure(w, r, err)
		if !handled {
			http.Error(w, f.Message, f.Status)
		}
		return
	}

	now := time.Now()
	view := def.view(q, listing.Page[model.Transaction]{Data: rows})
	var buf bytes.Buffer
	if err := table.WritePDF(&buf, view, table.PDFOptions{
		Title:     "Tuition transactions",
		Subtitle:  exportSubtitle(q, len(rows), truncated),
		Generated: now,
		Landscape: true,
	}); err != nil {
		h.logger().Error("failed to render transaction export", "error", err)
		http.Error(w, "Unable to build the export.", http.StatusInternalServerError)
		return
	}

	filename := "transactions-" + now.Format("20060102-1504") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	h.write(w, buf.Bytes())
}

func exportSubtitle(q listing.Query, rows int, truncated bool) string {
	parts := []string{fmt.Sprintf("%d rows", rows)}
	if start, end := q.Filters.Get(filterStartDate), q.Filters.Get(filterEndDate); start != "" || end != "" {
		parts = append(parts, "period "+orDots(start)+" to "+orDots(end))
	}
	if truncated {
		parts = append(parts, "truncated, narrow the filters to export everything")
	}
	return strings.Join(parts, " | ")
}

func orDots(s string) string {
	if s == "" {
		return "..."
	}
	return s
}

// firstError picks a deterministic message out of errs.
func firstError(errs map[string]string) string {
	keys := slices.Sorted(maps.Keys(errs))
	if len(keys) == 0 {
		return ""
	}
	return errs[keys[0]]
}

func formatDateTimeCell(v any) string {
	t, ok := v.(time.Time)
	if !ok {
		return table.FormatValue(v)
	}
	return uiutil.FormatFriendlyDateTime(t)
}
