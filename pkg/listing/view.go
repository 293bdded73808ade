package listing

import (
	"fmt"
	"maps"
)

// Cell is one labelled value of a detail view.
type Cell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// Frame is everything a rendering surface needs to draw one list page.
type Frame struct {
	Collection string            `json:"collection"`
	Query      string            `json:"query"`
	Filters    map[string]string `json:"filters"`
	Headers    []string          `json:"headers"`
	IDs        []string          `json:"ids"`
	Rows       [][]string        `json:"rows"`
	Records    any               `json:"records"`
	Count      int               `json:"count"`
	Total      int               `json:"total"`
	Selected   any               `json:"selected,omitempty"`
	Detail     []Cell            `json:"detail,omitempty"`
	DetailOpen bool              `json:"detail_open"`
	FormOpen   bool              `json:"form_open"`
	Suggestion string            `json:"suggestion,omitempty"`
}

// Controller is the type-erased face of a View, so one owner can hold list
// pages of different entity types.
type Controller interface {
	Name() string
	FilterNames() []string
	Options(filter string) ([]string, error)
	Query() string
	SetQuery(q string)
	Filter(name string) string
	SetFilter(name, value string) error
	ResetFilters()
	SelectID(id string) error
	Clear()
	OpenForm()
	CloseForm()
	Frame() Frame
}

// View is the state owned by one list page: query, filter values, selection
// and create-form visibility. A View is not safe for concurrent use.
type View[T any] struct {
	name      string
	records   []T
	schema    Schema[T]
	query     string
	filters   map[string]string
	selection Selection[T]
	form      Form
}

var _ Controller = (*View[struct{}])(nil)

// NewView creates a view over records with every filter set to All.
func NewView[T any](name string, records []T, s Schema[T]) *View[T] {
	v := &View[T]{name: name, records: records, schema: s}
	v.ResetFilters()
	return v
}

func (v *View[T]) Name() string { return v.name }

func (v *View[T]) FilterNames() []string { return v.schema.CategoryNames() }

// Options lists the selectable values of a filter, without All.
func (v *View[T]) Options(filter string) ([]string, error) {
	return options(v.records, v.schema, filter)
}

func (v *View[T]) Query() string { return v.query }

func (v *View[T]) SetQuery(q string) { v.query = q }

// Filter returns the current value of a filter; undeclared names read as All.
func (v *View[T]) Filter(name string) string {
	if val, ok := v.filters[name]; ok {
		return val
	}
	return All
}

// SetFilter sets a declared filter. The empty value resets it to All.
func (v *View[T]) SetFilter(name, value string) error {
	if _, ok := v.schema.Category(name); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownFilter, name)
	}
	if value == "" {
		value = All
	}
	v.filters[name] = value
	return nil
}

// ResetFilters puts every declared filter back to All.
func (v *View[T]) ResetFilters() {
	v.filters = make(map[string]string, len(v.schema.Categories))
	for _, c := range v.schema.Categories {
		v.filters[c.Name] = All
	}
}

// Visible returns the records passing the current query and filters.
func (v *View[T]) Visible() []T {
	return Filter(v.records, v.query, v.filters, v.schema)
}

// Select makes r the selected record.
func (v *View[T]) Select(r T) { v.selection.Select(r) }

// SelectID selects the record with the given id from the whole collection,
// so a selection survives later filter changes.
func (v *View[T]) SelectID(id string) error {
	for _, r := range v.records {
		if v.schema.ID(r) == id {
			v.selection.Select(r)
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrRecordNotFound, v.name, id)
}

func (v *View[T]) Clear() { v.selection.Clear() }

func (v *View[T]) Selected() (T, bool) { return v.selection.Selected() }

func (v *View[T]) OpenForm()  { v.form.Open() }
func (v *View[T]) CloseForm() { v.form.Close() }

// Frame snapshots the view for a rendering surface.
func (v *View[T]) Frame() Frame {
	visible := v.Visible()
	f := Frame{
		Collection: v.name,
		Query:      v.query,
		Filters:    maps.Clone(v.filters),
		Headers:    v.schema.Headers(),
		IDs:        make([]string, 0, len(visible)),
		Rows:       make([][]string, 0, len(visible)),
		Records:    visible,
		Count:      len(visible),
		Total:      len(v.records),
		FormOpen:   v.form.Visible(),
	}
	for _, r := range visible {
		f.IDs = append(f.IDs, v.schema.ID(r))
		f.Rows = append(f.Rows, v.schema.Row(r))
	}
	if sel, ok := v.selection.Selected(); ok {
		f.Selected = sel
		f.DetailOpen = true
		for _, c := range v.schema.Columns {
			f.Detail = append(f.Detail, Cell{Header: c.Header, Value: c.Value(sel)})
		}
	}
	if len(visible) == 0 {
		f.Suggestion = Suggest(v.records, v.query, v.schema)
	}
	return f
}

func options[T any](records []T, s Schema[T], filter string) ([]string, error) {
	c, ok := s.Category(filter)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, filter)
	}
	if len(c.Values) > 0 {
		return append([]string(nil), c.Values...), nil
	}
	return Options(records, c.Value), nil
}
