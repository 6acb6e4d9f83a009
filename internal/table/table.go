// Package table turns column descriptors and rows into a render description
// for the sortable list tables. Rendering is pure: the table only reports
// sort and selection intents, it never loads data.
package table

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/harmonia-academy/harmonia-web/internal/domain/listing"
)

// NoInformation is rendered for nil or empty cell values.
const NoInformation = "No information"

// EmptyText is the default message of a table without rows.
const EmptyText = "No records found."

// Column describes one table column. Columns are declared once per page.
type Column[T any] struct {
	Header   string
	Accessor string
	Value    func(T) any
	Sortable bool
	Class    string
	// Format overrides the default cell formatting for non-empty values.
	Format func(any) string
}

// SortState is the active sort of the list.
type SortState struct {
	Column    string
	Direction listing.Direction
}

// SortFromQuery reads the sort state of q.
func SortFromQuery(q listing.Query) SortState {
	return SortState{Column: q.SortColumn, Direction: q.SortDirection}
}

// Options carries the state Render needs besides columns and rows.
type Options[T any] struct {
	Sort SortState
	// Key extracts a stable identity for a row. Rows fall back to their
	// position when Key is nil.
	Key func(T) string
	// Selected reports whether the row with key is selected.
	Selected func(key string) bool
	// SortHref builds the link a sortable header points at.
	SortHref func(accessor string) string
	// EmptyText replaces the default empty-state message.
	EmptyText string
}

// Header is one rendered column header.
type Header struct {
	Label     string
	Accessor  string
	Class     string
	Sortable  bool
	Active    bool
	Direction listing.Direction
	Href      string
}

// Indicator is the arrow shown next to an actively sorted header.
func (h Header) Indicator() string {
	if !h.Active {
		return ""
	}
	if h.Direction == listing.Desc {
		return "▼"
	}
	return "▲"
}

// AriaSort is the aria-sort attribute value of the header.
func (h Header) AriaSort() string {
	switch {
	case !h.Active:
		return "none"
	case h.Direction == listing.Desc:
		return "descending"
	default:
		return "ascending"
	}
}

// Cell is one rendered cell.
type Cell struct {
	Text    string
	Missing bool
	Class   string
}

// Row is one rendered row.
type Row struct {
	Key      string
	Cells    []Cell
	Selected bool
}

// View is the render description of a table.
type View struct {
	Headers   []Header
	Rows      []Row
	Empty     bool
	EmptyText string
}

// Render builds the View for rows under columns. An empty rows slice yields
// the empty state.
func Render[T any](columns []Column[T], rows []T, opts Options[T]) View {
	v := View{
		Headers:   make([]Header, 0, len(columns)),
		Rows:      make([]Row, 0, len(rows)),
		Empty:     len(rows) == 0,
		EmptyText: opts.EmptyText,
	}
	if v.EmptyText == "" {
		v.EmptyText = EmptyText
	}

	for _, col := range columns {
		h := Header{
			Label:    col.Header,
			Accessor: col.Accessor,
			Class:    col.Class,
			Sortable: col.Sortable,
		}
		if col.Sortable && col.Accessor == opts.Sort.Column {
			h.Active = true
			h.Direction = opts.Sort.Direction
		}
		if col.Sortable && opts.SortHref != nil {
			h.Href = opts.SortHref(col.Accessor)
		}
		v.Headers = append(v.Headers, h)
	}

	for i, row := range rows {
		key := strconv.Itoa(i)
		if opts.Key != nil {
			key = opts.Key(row)
		}
		r := Row{Key: key, Cells: make([]Cell, 0, len(columns))}
		if opts.Selected != nil {
			r.Selected = opts.Selected(key)
		}
		for _, col := range columns {
			r.Cells = append(r.Cells, renderCell(col, row))
		}
		v.Rows = append(v.Rows, r)
	}
	return v
}

// Events receives the intents a table emits.
type Events struct {
	OnSort   func(accessor string)
	OnSelect func(key string)
}

// ClickHeader emits OnSort for a sortable column. Clicks on other headers are
// ignored. It reports whether an event was emitted.
func (v View) ClickHeader(accessor string, ev Events) bool {
	for _, h := range v.Headers {
		if h.Accessor != accessor {
			continue
		}
		if !h.Sortable || ev.OnSort == nil {
			return false
		}
		ev.OnSort(accessor)
		return true
	}
	return false
}

// ToggleRow emits OnSelect for a rendered row key.
func (v View) ToggleRow(key string, ev Events) bool {
	for _, r := range v.Rows {
		if r.Key != key {
			continue
		}
		if ev.OnSelect == nil {
			return false
		}
		ev.OnSelect(key)
		return true
	}
	return false
}

func renderCell[T any](col Column[T], row T) Cell {
	var value any
	if col.Value != nil {
		value = col.Value(row)
	}
	value, ok := deref(value)
	if !ok {
		return Cell{Text: NoInformation, Missing: true, Class: col.Class}
	}
	format := FormatValue
	if col.Format != nil {
		format = col.Format
	}
	text := format(value)
	if strings.TrimSpace(text) == "" {
		return Cell{Text: NoInformation, Missing: true, Class: col.Class}
	}
	return Cell{Text: text, Class: col.Class}
}

// deref unwraps pointers and reports false for nil, zero times and empty collections.
func deref(value any) (any, bool) {
	if value == nil {
		return nil, false
	}
	rv := reflect.ValueOf(value)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Map:
		if rv.Len() == 0 {
			return nil, false
		}
	}
	out := rv.Interface()
	if t, ok := out.(time.Time); ok && t.IsZero() {
		return nil, false
	}
	return out, true
}

// FormatValue renders a non-nil cell value.
func FormatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 {
			return v.Format(listing.DateLayout)
		}
		return v.Format("2006-01-02 15:04")
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		return strings.Join(v, ", ")
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
