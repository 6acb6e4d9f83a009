package httpx

import (
	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
	"github.com/harmonia-academy/harmonia-web/internal/domain/model"
	"github.com/harmonia-academy/harmonia-web/internal/http/validation"
)

// forms validates posted forms and date-range filters.
//
//nolint:gochecknoglobals // validator caches struct metadata; build once
var forms = validation.NewStruct()

// maxKeywordLength bounds the free-text search filter.
const maxKeywordLength = 100

// FilterOption is one checkbox or select entry of a filter form.
type FilterOption struct {
	Value   string
	Label   string
	Checked bool
}

// filterOptions marks the options of key that are active in f.
func filterOptions(opts []model.Option, f listing.Filters, key string) []FilterOption {
	out := make([]FilterOption, 0, len(opts))
	for _, o := range opts {
		out = append(out, FilterOption{Value: o.Value, Label: o.Label, Checked: f.Has(key, o.Value)})
	}
	return out
}

func optionValues(opts []model.Option) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		out = append(out, o.Value)
	}
	return out
}

// enumFilter validates a repeated enum filter by its wire name.
func enumFilter(fv *validation.FieldValidator, q listing.Query, key, label string, opts []model.Option) {
	fv.Each(listing.Kebab(key), q.Filters[key], validation.OneOf(label, optionValues(opts)))
}

// keywordFilter validates the free-text search filter.
func keywordFilter(fv *validation.FieldValidator, q listing.Query) {
	fv.Validate("keyword", q.Filters.Get("keyword"), validation.MaxLength("Keyword", maxKeywordLength))
}

// dateRangeFilter validates the start-date/end-date pair. An inverted range
// drops the end date only.
func dateRangeFilter(fv *validation.FieldValidator, q listing.Query) {
	for field, msg := range forms.Check(validation.DateRange{
		Start: q.Filters.Get("startDate"),
		End:   q.Filters.Get("endDate"),
	}) {
		fv.Add(field, msg)
	}
}

func errorsOrNil(fv *validation.FieldValidator) map[string]string {
	if fv.Valid() {
		return nil
	}
	return fv.Errors()
}
