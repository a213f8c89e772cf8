package core

import "strings"

// ApplyFilters returns the records matching every active criterion in spec,
// in their original order. The input slice is not modified.
func ApplyFilters(records []Record, spec FilterSpec) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if MatchSearch(r, spec.SearchTerm) &&
			MatchMake(r, spec.MakeFilter) &&
			MatchCylinders(r, spec.CylindersFilter) {
			out = append(out, r)
		}
	}
	return out
}

// MatchSearch reports whether any field value contains term,
// case-insensitively. The record ID is not searched. An empty term matches
// everything.
func MatchSearch(r Record, term string) bool {
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range r.Fields() {
		if strings.Contains(strings.ToLower(f.Value.String()), needle) {
			return true
		}
	}
	return false
}

// MatchMake reports whether the record's effective make equals want.
// An empty want matches everything.
func MatchMake(r Record, want string) bool {
	if want == "" {
		return true
	}
	m, ok := MakeOf(r)
	return ok && m == want
}

// MatchCylinders reports whether the record's cylinder count equals want.
//
// "numOfCylinders" is consulted first; when it is set, "cylinders" is not
// checked even if it would match. An empty want matches everything.
func MatchCylinders(r Record, want string) bool {
	if want == "" {
		return true
	}
	if v := r.Get("numOfCylinders"); v.Truthy() {
		return v.String() == want
	}
	if v := r.Get("cylinders"); v.Truthy() {
		return v.String() == want
	}
	return false
}
