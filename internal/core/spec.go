package core

import "fmt"

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection validates a direction string. The empty string means
// ascending.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Ascending, "":
		return Ascending, nil
	case Descending:
		return Descending, nil
	default:
		return "", fmt.Errorf("invalid sort direction %q: must be %q or %q", s, Ascending, Descending)
	}
}

// Valid reports whether d is asc or desc.
func (d Direction) Valid() bool {
	return d == Ascending || d == Descending
}

// Toggle returns the opposite direction.
func (d Direction) Toggle() Direction {
	if d == Ascending {
		return Descending
	}
	return Ascending
}

// FilterSpec is the user's current search, filter and sort selection.
// It is also the persisted state shape.
type FilterSpec struct {
	SearchTerm      string    `json:"searchTerm" schema:"searchTerm"`
	MakeFilter      string    `json:"makeFilter" schema:"makeFilter"`
	CylindersFilter string    `json:"cylindersFilter" schema:"cylindersFilter"`
	SortBy          string    `json:"sortBy" schema:"sortBy"`
	SortDirection   Direction `json:"sortDirection" schema:"sortDirection"`
}

// DefaultSpec returns an empty spec sorted ascending.
func DefaultSpec() FilterSpec {
	return FilterSpec{SortDirection: Ascending}
}

// Normalize replaces an invalid sort direction with ascending.
func (s *FilterSpec) Normalize() {
	if !s.SortDirection.Valid() {
		s.SortDirection = Ascending
	}
}

// ActiveFilterCount counts the non-empty search, make and cylinder criteria.
// The sort selection is not a filter.
func (s FilterSpec) ActiveFilterCount() int {
	n := 0
	for _, v := range []string{s.SearchTerm, s.MakeFilter, s.CylindersFilter} {
		if v != "" {
			n++
		}
	}
	return n
}

// Sort returns the spec's sort selection.
func (s FilterSpec) Sort() SortState {
	return SortState{Column: s.SortBy, Direction: s.SortDirection}
}

// SortState is the active sort column and direction.
type SortState struct {
	Column    string    `json:"column"`
	Direction Direction `json:"direction"`
}

// Sort indicator icon names.
const (
	IconUnsorted   = "unfold_more"
	IconAscending  = "arrow_upward"
	IconDescending = "arrow_downward"
)

// Icon returns the header indicator for column under this sort state.
func (s SortState) Icon(column string) string {
	if column == "" || s.Column != column {
		return IconUnsorted
	}
	if s.Direction == Descending {
		return IconDescending
	}
	return IconAscending
}
