package core

import (
	"slices"
	"strings"
)

// Options holds the distinct values offered by the make and cylinder
// dropdowns.
type Options struct {
	Makes     []string `json:"makes"`
	Cylinders []string `json:"cylinders"`
}

// ExtractOptions collects the distinct makes and cylinder counts in a
// snapshot.
//
// Makes come from the "make" field, or from the first token of "name" when
// "make" is not set, and are sorted ordinally. Cylinder values come from both
// "numOfCylinders" and "cylinders". Integer-looking values sort numerically
// ahead of text values, which sort ordinally.
func ExtractOptions(records []Record) Options {
	makes := make(map[string]struct{})
	cylinders := make(map[string]struct{})

	for _, r := range records {
		if m, ok := MakeOf(r); ok {
			makes[m] = struct{}{}
		}
		if v := r.Get("numOfCylinders"); v.Truthy() {
			cylinders[v.String()] = struct{}{}
		}
		if v := r.Get("cylinders"); v.Truthy() {
			cylinders[v.String()] = struct{}{}
		}
	}

	opts := Options{
		Makes:     setToSlice(makes),
		Cylinders: setToSlice(cylinders),
	}
	slices.Sort(opts.Makes)
	slices.SortFunc(opts.Cylinders, CompareCylinders)
	return opts
}

// CompareCylinders orders cylinder tokens: integers first in numeric order,
// then everything else ordinally. Tokens with the same integer value fall
// back to ordinal order so the result is total.
func CompareCylinders(a, b string) int {
	ai, aok := ParseIntPrefix(a)
	bi, bok := ParseIntPrefix(b)

	switch {
	case aok && bok:
		if ai < bi {
			return -1
		}
		if ai > bi {
			return 1
		}
		return strings.Compare(a, b)
	case aok:
		return -1
	case bok:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func setToSlice(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
