// Package listing implements the search, filter and selection engine shared by
// every list page of the admin panel. It is instantiated once per entity shape
// through a Schema.
package listing

import (
	"errors"
	"strings"
)

// All is the filter value that disables a categorical filter.
const All = "all"

var (
	// ErrUnknownFilter is returned when a filter name is not declared by the schema.
	ErrUnknownFilter = errors.New("unknown filter")
	// ErrRecordNotFound is returned when no record carries the requested id.
	ErrRecordNotFound = errors.New("record not found")
)

// Field reads one string attribute of a record.
type Field[T any] func(T) string

// Category is a named categorical attribute used for exact-match filtering.
// Values fixes the enumeration and its display order; when empty the options
// are derived from the records.
type Category[T any] struct {
	Name   string
	Value  Field[T]
	Values []string
}

// Column is a display attribute shown in tables, detail views and exports.
type Column[T any] struct {
	Header string
	Value  Field[T]
}

// Schema describes how one entity shape is searched, filtered and displayed.
type Schema[T any] struct {
	ID         Field[T]
	Search     []Field[T]
	Categories []Category[T]
	Columns    []Column[T]
}

// Query is the user-supplied predicate set for one list.
type Query struct {
	Text    string            `json:"q,omitempty"`
	Filters map[string]string `json:"filters,omitempty"`
}

// IsActive reports whether a filter value constrains the result.
func IsActive(value string) bool {
	return value != "" && value != All
}

// Category returns the categorical attribute with the given name.
func (s Schema[T]) Category(name string) (Category[T], bool) {
	for _, c := range s.Categories {
		if c.Name == name {
			return c, true
		}
	}
	return Category[T]{}, false
}

// CategoryNames lists the declared filters in declaration order.
func (s Schema[T]) CategoryNames() []string {
	names := make([]string, 0, len(s.Categories))
	for _, c := range s.Categories {
		names = append(names, c.Name)
	}
	return names
}

// Headers lists the column headers in declaration order.
func (s Schema[T]) Headers() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c.Header)
	}
	return out
}

// Row renders a record as one table row.
func (s Schema[T]) Row(r T) []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		out = append(out, c.Value(r))
	}
	return out
}

// Match reports whether r satisfies the query text and every active filter.
// Filter names the schema does not declare are ignored.
func (s Schema[T]) Match(r T, query string, active map[string]string) bool {
	if !s.matchesSearch(r, query) {
		return false
	}
	for _, c := range s.Categories {
		want := active[c.Name]
		if !IsActive(want) {
			continue
		}
		if c.Value(r) != want {
			return false
		}
	}
	return true
}

func (s Schema[T]) matchesSearch(r T, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	for _, f := range s.Search {
		if strings.Contains(strings.ToLower(f(r)), q) {
			return true
		}
	}
	return false
}

// Filter returns the records matching query and active, in input order.
// The result is never nil.
func Filter[T any](records []T, query string, active map[string]string, s Schema[T]) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if s.Match(r, query, active) {
			out = append(out, r)
		}
	}
	return out
}

// Options returns the distinct non-empty values of field in first-seen order.
func Options[T any](records []T, field Field[T]) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		v := field(r)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// Group is one column of a board view.
type Group[T any] struct {
	Key     string `json:"key"`
	Records []T    `json:"records"`
}

// GroupBy splits records into one group per key of order, keeping input order
// inside each group. Records whose key is not listed are dropped.
func GroupBy[T any](records []T, field Field[T], order []string) []Group[T] {
	groups := make([]Group[T], len(order))
	index := make(map[string]int, len(order))
	for i, k := range order {
		groups[i] = Group[T]{Key: k, Records: []T{}}
		index[k] = i
	}
	for _, r := range records {
		if i, ok := index[field(r)]; ok {
			groups[i].Records = append(groups[i].Records, r)
		}
	}
	return groups
}
