package catalog

// ViewMode is the screen layout implied by the selection.
type ViewMode string

const (
	ViewGrid   ViewMode = "grid"
	ViewDetail ViewMode = "detail"
)

// Selection holds at most one selected record id. It is independent of the
// filter and sort state; callers synchronise access.
type Selection struct {
	id  string
	set bool
}

// Select replaces any current selection.
func (s *Selection) Select(id string) {
	s.id = id
	s.set = true
}

// Clear returns to the grid.
func (s *Selection) Clear() {
	s.id = ""
	s.set = false
}

// ID reports the selected id, if any.
func (s *Selection) ID() (string, bool) {
	return s.id, s.set
}

func (s *Selection) Mode() ViewMode {
	if s.set {
		return ViewDetail
	}
	return ViewGrid
}
