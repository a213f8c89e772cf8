package core

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// comparator orders field values for one sort pass.
// A collate.Collator is not safe for concurrent use, so each pass owns one.
type comparator struct {
	dir      Direction
	collator *collate.Collator
}

func newComparator(dir Direction) *comparator {
	return &comparator{dir: dir, collator: collate.New(language.Und)}
}

// compare orders a against b.
//
// Missing values (absent or "") go last in ascending order and first in
// descending order; two missing values tie. Present values compare
// numerically when both yield a loose number, otherwise by trimmed,
// lower-cased collation. Only present-versus-present results flip for
// descending order.
func (c *comparator) compare(a, b Value) int {
	am, bm := a.Missing(), b.Missing()
	switch {
	case am && bm:
		return 0
	case am:
		if c.dir == Descending {
			return -1
		}
		return 1
	case bm:
		if c.dir == Descending {
			return 1
		}
		return -1
	}

	var result int
	af, aok := ParseLooseNumber(a)
	bf, bok := ParseLooseNumber(b)
	if aok && bok {
		switch {
		case af < bf:
			result = -1
		case af > bf:
			result = 1
		}
	} else {
		as := strings.ToLower(strings.TrimSpace(a.String()))
		bs := strings.ToLower(strings.TrimSpace(b.String()))
		result = c.collator.CompareString(as, bs)
	}

	if c.dir == Descending {
		return -result
	}
	return result
}

// CompareValues orders two field values for the given direction.
func CompareValues(a, b Value, dir Direction) int {
	return newComparator(dir).compare(a, b)
}

// SortRecords sorts records in place by column. The sort is stable, so
// records with equal keys keep their relative order. An empty column leaves
// the slice untouched.
func SortRecords(records []Record, column string, dir Direction) {
	if column == "" || len(records) < 2 {
		return
	}
	c := newComparator(dir)
	slices.SortStableFunc(records, func(a, b Record) int {
		return c.compare(a.Get(column), b.Get(column))
	})
}
