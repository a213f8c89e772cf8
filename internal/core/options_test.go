package core

import (
	"reflect"
	"testing"
)

func TestExtractOptions(t *testing.T) {
	records := []Record{
		rec("make", "toyota", "numOfCylinders", "four"),
		rec("make", "audi", "numOfCylinders", "six"),
		rec("name", "ford pinto", "cylinders", 4),
		rec("name", "chevrolet chevelle", "cylinders", 8),
		rec("make", "", "name", "bmw 2002", "cylinders", "4"),
		rec("make", "audi", "cylinders", 3),
		rec("name", "amc gremlin", "cylinders", 0),
		rec("mpg", 18),
	}

	got := ExtractOptions(records)

	wantMakes := []string{"amc", "audi", "bmw", "chevrolet", "ford", "toyota"}
	if !reflect.DeepEqual(got.Makes, wantMakes) {
		t.Errorf("Makes = %v, want %v", got.Makes, wantMakes)
	}

	wantCyl := []string{"3", "4", "8", "four", "six"}
	if !reflect.DeepEqual(got.Cylinders, wantCyl) {
		t.Errorf("Cylinders = %v, want %v", got.Cylinders, wantCyl)
	}
}

func TestExtractOptions_Empty(t *testing.T) {
	got := ExtractOptions(nil)
	if got.Makes == nil || got.Cylinders == nil {
		t.Fatal("options should be non-nil empty slices")
	}
	if len(got.Makes) != 0 || len(got.Cylinders) != 0 {
		t.Errorf("ExtractOptions(nil) = %+v, want empty", got)
	}
}

func TestExtractOptions_OrdinalMakes(t *testing.T) {
	got := ExtractOptions([]Record{rec("make", "bmw"), rec("make", "Audi"), rec("make", "alfa-romero")})
	want := []string{"Audi", "alfa-romero", "bmw"}
	if !reflect.DeepEqual(got.Makes, want) {
		t.Errorf("Makes = %v, want %v", got.Makes, want)
	}
}

func TestCompareCylinders(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"4", "8", -1},
		{"12", "8", 1},
		{"4", "four", -1},
		{"four", "4", 1},
		{"four", "six", -1},
		{"4", "4", 0},
		{"4", "4.0", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			if got := CompareCylinders(tt.a, tt.b); got != tt.want {
				t.Errorf("CompareCylinders(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
