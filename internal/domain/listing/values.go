package listing

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"
)

// Wire parameter names shared by browser URLs and the school API.
const (
	ParamPage          = "page"
	ParamPageSize      = "page-size"
	ParamSortColumn    = "sort-column"
	ParamSortDirection = "sort-direction"
)

// DateLayout is the ISO calendar date format used for date-range filters.
const DateLayout = "2006-01-02"

var reservedParams = map[string]bool{
	ParamPage:          true,
	ParamPageSize:      true,
	ParamSortColumn:    true,
	ParamSortDirection: true,
}

// Values serializes q into request parameters: the four paging parameters,
// then every filter under its kebab-case key, repeated once per value.
// Timestamps are reduced to DateLayout and empty filters are omitted.
func (q Query) Values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set(ParamPage, strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set(ParamPageSize, strconv.Itoa(q.PageSize))
	}
	if q.SortColumn != "" {
		v.Set(ParamSortColumn, q.SortColumn)
	}
	if q.SortDirection.Valid() {
		v.Set(ParamSortDirection, string(q.SortDirection))
	}
	for _, key := range q.Filters.Keys() {
		wire := Kebab(key)
		for _, value := range cleanValues(q.Filters[key]) {
			v.Add(wire, isoDate(value))
		}
	}
	return v
}

// Encode is Values().Encode().
func (q Query) Encode() string {
	return q.Values().Encode()
}

// FromValues parses a Query from request parameters. Unparseable paging values
// fall back to d; every non-paging parameter becomes a filter under its
// camelCase key.
func FromValues(values url.Values, d Defaults) Query {
	q := Query{
		Page:          atoiOr(values.Get(ParamPage), 1),
		PageSize:      atoiOr(values.Get(ParamPageSize), d.PageSize),
		SortColumn:    strings.TrimSpace(values.Get(ParamSortColumn)),
		SortDirection: Direction(strings.ToLower(values.Get(ParamSortDirection))),
		Filters:       Filters{},
	}
	for key, vals := range values {
		if reservedParams[key] {
			continue
		}
		if cleaned := cleanValues(vals); len(cleaned) > 0 {
			q.Filters[Camel(key)] = cleaned
		}
	}
	return q.Normalize(d)
}

// Date formats t for a date-range filter. The zero time yields no value.
func Date(t time.Time) []string {
	if t.IsZero() {
		return nil
	}
	return []string{t.Format(DateLayout)}
}

// ParseDate parses a date-range filter value.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// Kebab converts a camelCase key to kebab-case: paymentStatuses → payment-statuses.
func Kebab(key string) string {
	var b strings.Builder
	b.Grow(len(key) + 4)
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Camel converts a kebab-case key to camelCase: student-class-ids → studentClassIds.
func Camel(key string) string {
	parts := strings.Split(key, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] == "" {
			continue
		}
		parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
	}
	return strings.Join(parts, "")
}

func isoDate(value string) string {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(DateLayout)
	}
	return value
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
