package core

import (
	"reflect"
	"testing"
)

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		dir  Direction
		want int
	}{
		// Numeric comparison
		{"numbers asc", Number(2), Number(10), Ascending, -1},
		{"numbers desc", Number(2), Number(10), Descending, 1},
		{"numeric strings", String("9"), String("10"), Ascending, -1},
		{"currency strings", String("$13,495"), String("$9,000"), Ascending, 1},
		{"number vs numeric string", Number(111), String("95 hp"), Ascending, 1},
		{"equal numbers", Number(4), String("4"), Ascending, 0},

		// String comparison
		{"case insensitive", String("Audi"), String("audi"), Ascending, 0},
		{"alphabetical", String("audi"), String("bmw"), Ascending, -1},
		{"alphabetical desc", String("audi"), String("bmw"), Descending, 1},
		{"trimmed", String("  bmw"), String("audi"), Ascending, 1},

		// Missing values
		{"missing last asc", Absent, String("audi"), Ascending, 1},
		{"missing first desc", Absent, String("audi"), Descending, -1},
		{"empty string last asc", String(""), Number(1), Ascending, 1},
		{"present before missing asc", Number(1), Absent, Ascending, -1},
		{"present after missing desc", Number(1), Absent, Descending, 1},
		{"both missing", Absent, String(""), Ascending, 0},
		{"both missing desc", String(""), Absent, Descending, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareValues(tt.a, tt.b, tt.dir)
			if sign(got) != tt.want {
				t.Errorf("CompareValues(%q, %q, %s) = %d, want %d", tt.a.String(), tt.b.String(), tt.dir, got, tt.want)
			}
		})
	}
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

func TestSortRecords(t *testing.T) {
	build := func() []Record {
		return []Record{
			rec("name", "b", "price", "$16,500"),
			rec("name", "missing"),
			rec("name", "a", "price", 13495),
			rec("name", "empty", "price", ""),
			rec("name", "c", "price", "$9,000"),
		}
	}

	tests := []struct {
		dir  Direction
		want []string
	}{
		{Ascending, []string{"c", "a", "b", "missing", "empty"}},
		{Descending, []string{"missing", "empty", "b", "a", "c"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			records := build()
			SortRecords(records, "price", tt.dir)
			if got := names(records); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SortRecords(price, %s) = %v, want %v", tt.dir, got, tt.want)
			}
		})
	}
}

func TestSortRecords_Stable(t *testing.T) {
	records := []Record{
		rec("name", "first", "cylinders", 4),
		rec("name", "second", "cylinders", 8),
		rec("name", "third", "cylinders", 4),
		rec("name", "fourth", "cylinders", 4),
	}

	SortRecords(records, "cylinders", Ascending)
	want := []string{"first", "third", "fourth", "second"}
	if got := names(records); !reflect.DeepEqual(got, want) {
		t.Errorf("SortRecords() = %v, want %v", got, want)
	}
}

func TestSortRecords_Idempotent(t *testing.T) {
	records := []Record{
		rec("name", "x"),
		rec("name", "y", "mpg", 18),
		rec("name", "z"),
		rec("name", "w", "mpg", 31.5),
		rec("name", "v", "mpg", ""),
	}

	for _, dir := range []Direction{Ascending, Descending} {
		SortRecords(records, "mpg", dir)
		once := names(records)
		SortRecords(records, "mpg", dir)
		if twice := names(records); !reflect.DeepEqual(once, twice) {
			t.Errorf("re-sorting %s changed order: %v then %v", dir, once, twice)
		}
	}
}

func TestSortRecords_EmptyColumn(t *testing.T) {
	records := []Record{rec("name", "b"), rec("name", "a")}
	SortRecords(records, "", Ascending)
	if got := names(records); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("SortRecords with empty column reordered: %v", got)
	}
}

func TestSortRecords_PriceScenario(t *testing.T) {
	tests := []struct {
		dir  Direction
		want []string
	}{
		{Ascending, []string{"Toyota", "Honda"}},
		{Descending, []string{"Honda", "Toyota"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir), func(t *testing.T) {
			records := []Record{
				rec("make", "Toyota", "price", 15000),
				rec("make", "Honda", "price", 18000),
			}
			SortRecords(records, "price", tt.dir)
			for i, r := range records {
				if got := r.Get("make").String(); got != tt.want[i] {
					t.Errorf("position %d = %q, want %q", i, got, tt.want[i])
				}
			}
		})
	}
}
