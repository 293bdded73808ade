package listing

// Selection holds at most one selected record.
type Selection[T any] struct {
	item T
	ok   bool
}

// Select replaces any prior selection with v.
func (s *Selection[T]) Select(v T) {
	s.item = v
	s.ok = true
}

// Clear drops the selection.
func (s *Selection[T]) Clear() {
	var zero T
	s.item = zero
	s.ok = false
}

// Selected returns the selected record, if any.
func (s *Selection[T]) Selected() (T, bool) {
	return s.item, s.ok
}

// Form is the create-form scaffold of a list page. It only tracks visibility;
// drafts are never persisted.
type Form struct {
	open bool
}

func (f *Form) Open()         { f.open = true }
func (f *Form) Close()        { f.open = false }
func (f *Form) Visible() bool { return f.open }
