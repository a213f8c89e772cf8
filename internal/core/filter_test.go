package core

import (
	"strings"
	"testing"
)

func TestMatchSearch(t *testing.T) {
	r := NewRecord("secret-id",
		Field{Name: "make", Value: String("Alfa-Romero")},
		Field{Name: "price", Value: Number(13495)},
	)

	tests := []struct {
		term string
		want bool
	}{
		{"", true},
		{"alfa", true},
		{"ROMERO", true},
		{"1349", true},
		{"bmw", false},
		{"secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			if got := MatchSearch(r, tt.term); got != tt.want {
				t.Errorf("MatchSearch(%q) = %v, want %v", tt.term, got, tt.want)
			}
		})
	}
}

func TestMatchMake(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
		match  bool
	}{
		{"empty filter", rec("mpg", 18), "", true},
		{"explicit make", rec("make", "audi"), "audi", true},
		{"case sensitive", rec("make", "audi"), "Audi", false},
		{"derived make", rec("name", "ford pinto"), "ford", true},
		{"no make", rec("mpg", 18), "ford", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchMake(tt.record, tt.want); got != tt.match {
				t.Errorf("MatchMake(%q) = %v, want %v", tt.want, got, tt.match)
			}
		})
	}
}

func TestMatchCylinders(t *testing.T) {
	tests := []struct {
		name   string
		record Record
		want   string
		match  bool
	}{
		{"empty filter", rec("mpg", 18), "", true},
		{"numeric cylinders", rec("cylinders", 4), "4", true},
		{"word cylinders", rec("numOfCylinders", "four"), "four", true},
		{"numOfCylinders takes precedence", rec("numOfCylinders", "four", "cylinders", 4), "4", false},
		{"empty numOfCylinders falls through", rec("numOfCylinders", "", "cylinders", 6), "6", true},
		{"neither field", rec("mpg", 18), "4", false},
		{"zero is not a value", rec("cylinders", 0), "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchCylinders(tt.record, tt.want); got != tt.match {
				t.Errorf("MatchCylinders(%q) = %v, want %v", tt.want, got, tt.match)
			}
		})
	}
}

func TestApplyFilters(t *testing.T) {
	records := []Record{
		rec("name", "ford pinto", "cylinders", 4),
		rec("name", "ford torino", "cylinders", 8),
		rec("name", "chevrolet vega", "cylinders", 4),
		rec("name", "ford maverick", "cylinders", 6),
	}

	spec := FilterSpec{MakeFilter: "ford", CylindersFilter: "4"}
	got := ApplyFilters(records, spec)
	if len(got) != 1 || got[0].Get("name").String() != "ford pinto" {
		t.Errorf("ApplyFilters() = %v, want [ford pinto]", names(got))
	}

	spec = FilterSpec{SearchTerm: "O"}
	got = ApplyFilters(records, spec)
	want := []string{"ford pinto", "ford torino", "chevrolet vega", "ford maverick"}
	if n := names(got); len(n) != len(want) {
		t.Errorf("ApplyFilters(search) = %v, want %v", n, want)
	}

	if len(records) != 4 {
		t.Error("ApplyFilters modified its input")
	}
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Get("name").String()
	}
	return out
}

func TestApplyFilters_OrderIndependent(t *testing.T) {
	records := []Record{
		rec("make", "Toyota", "numOfCylinders", "four", "price", 15000),
		rec("make", "Toyota", "numOfCylinders", "six", "price", 21000),
		rec("make", "Honda", "numOfCylinders", "four", "price", 18000),
		rec("name", "toyota corolla", "cylinders", 4, "mpg", 32),
		rec("name", "honda civic", "cylinders", 4, "mpg", 35),
		rec("mpg", 18),
	}

	specs := []FilterSpec{
		{SearchTerm: "o", MakeFilter: "Toyota", CylindersFilter: "four"},
		{SearchTerm: "3", MakeFilter: "toyota", CylindersFilter: "4"},
		{SearchTerm: "honda", CylindersFilter: "4"},
		{SearchTerm: "zzz", MakeFilter: "Honda"},
	}

	for _, spec := range specs {
		single := []FilterSpec{
			{SearchTerm: spec.SearchTerm},
			{MakeFilter: spec.MakeFilter},
			{CylindersFilter: spec.CylindersFilter},
		}
		want := idSet(ApplyFilters(records, spec))

		for _, order := range [][3]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}} {
			got := records
			for _, i := range order {
				got = ApplyFilters(got, single[i])
			}
			if g := idSet(got); !sameSet(g, want) {
				t.Errorf("spec %+v order %v = %v, want %v", spec, order, g, want)
			}
		}
	}
}

func TestApplyFilters_Scenarios(t *testing.T) {
	toyota := NewRecord("1", Field{Name: "make", Value: String("Toyota")}, Field{Name: "price", Value: Number(15000)})
	honda := NewRecord("2", Field{Name: "make", Value: String("Honda")}, Field{Name: "price", Value: Number(18000)})
	corolla := rec("name", "toyota corolla", "mpg", 32)

	tests := []struct {
		name    string
		records []Record
		spec    FilterSpec
		want    []string
	}{
		{"make filter", []Record{toyota, honda}, FilterSpec{MakeFilter: "Toyota"}, []string{"Toyota"}},
		{"lower-case search", []Record{toyota, honda}, FilterSpec{SearchTerm: "honda"}, []string{"Honda"}},
		{"derived make", []Record{corolla, honda}, FilterSpec{MakeFilter: "toyota"}, []string{"toyota"}},
		{"empty list", nil, FilterSpec{MakeFilter: "Toyota"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(tt.records, tt.spec)
			if len(got) != len(tt.want) {
				t.Fatalf("ApplyFilters() returned %d records, want %d", len(got), len(tt.want))
			}
			for i, r := range got {
				if m, _ := MakeOf(r); m != tt.want[i] {
					t.Errorf("record %d make = %q, want %q", i, m, tt.want[i])
				}
			}
		})
	}

	spec := FilterSpec{SearchTerm: "test", MakeFilter: "Toyota"}
	if got := spec.ActiveFilterCount(); got != 2 {
		t.Errorf("ActiveFilterCount() = %d, want 2", got)
	}
}

// idSet keys records by their field text; every fixture row is distinct.
func idSet(records []Record) map[string]bool {
	set := make(map[string]bool, len(records))
	for _, r := range records {
		var b strings.Builder
		for _, f := range r.Fields() {
			b.WriteString(f.Name + "=" + f.Value.String() + ";")
		}
		set[b.String()] = true
	}
	return set
}

func sameSet(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
