package listing

import "fmt"

// Source is the type-erased face of a Collection.
type Source interface {
	Name() string
	Len() int
	FilterNames() []string
	List(q Query) any
	Get(id string) (any, error)
	Options(filter string) ([]string, error)
	Board(filter string, q Query) (any, error)
	Table(q Query) (headers []string, rows [][]string)
	Suggest(query string) string
	NewView() Controller
}

// Collection is an immutable, ordered set of records of one entity shape.
type Collection[T any] struct {
	name    string
	records []T
	schema  Schema[T]
}

var _ Source = (*Collection[struct{}])(nil)

// NewCollection copies records so later changes to the caller's slice do not
// leak into the collection.
func NewCollection[T any](name string, records []T, s Schema[T]) *Collection[T] {
	return &Collection[T]{
		name:    name,
		records: append([]T(nil), records...),
		schema:  s,
	}
}

func (c *Collection[T]) Name() string          { return c.name }
func (c *Collection[T]) Len() int              { return len(c.records) }
func (c *Collection[T]) Schema() Schema[T]     { return c.schema }
func (c *Collection[T]) FilterNames() []string { return c.schema.CategoryNames() }

// Records returns a copy of every record in order.
func (c *Collection[T]) Records() []T {
	return append([]T(nil), c.records...)
}

// Filter applies q to the collection.
func (c *Collection[T]) Filter(q Query) []T {
	return Filter(c.records, q.Text, q.Filters, c.schema)
}

func (c *Collection[T]) List(q Query) any { return c.Filter(q) }

// Find returns the record with the given id.
func (c *Collection[T]) Find(id string) (T, error) {
	for _, r := range c.records {
		if c.schema.ID(r) == id {
			return r, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("%w: %s/%s", ErrRecordNotFound, c.name, id)
}

func (c *Collection[T]) Get(id string) (any, error) {
	r, err := c.Find(id)
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (c *Collection[T]) Options(filter string) ([]string, error) {
	return options(c.records, c.schema, filter)
}

// Board groups the records passing q by filter, one group per option.
func (c *Collection[T]) Board(filter string, q Query) (any, error) {
	cat, ok := c.schema.Category(filter)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFilter, filter)
	}
	order, err := c.Options(filter)
	if err != nil {
		return nil, err
	}
	return GroupBy(c.Filter(q), cat.Value, order), nil
}

func (c *Collection[T]) Table(q Query) ([]string, [][]string) {
	visible := c.Filter(q)
	rows := make([][]string, 0, len(visible))
	for _, r := range visible {
		rows = append(rows, c.schema.Row(r))
	}
	return c.schema.Headers(), rows
}

func (c *Collection[T]) Suggest(query string) string {
	return Suggest(c.records, query, c.schema)
}

// NewView opens a fresh list page over the collection.
func (c *Collection[T]) NewView() Controller {
	return c.TypedView()
}

// TypedView is NewView without type erasure.
func (c *Collection[T]) TypedView() *View[T] {
	return NewView(c.name, c.records, c.schema)
}
