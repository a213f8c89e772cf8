package core

import (
	"slices"
	"strings"
)

// Schema keys for the built-in dataset shapes.
const (
	SchemaAutoMPG    = "autompg"
	SchemaAutomobile = "automobile"
	SchemaGeneric    = "generic"
)

// GenericColumnLimit caps the number of columns shown for records that match
// no registered schema.
const GenericColumnLimit = 9

// Schema describes a known dataset shape: how to recognize it and which
// columns to display, in order.
type Schema struct {
	Key      string
	Label    string
	Priority int
	Columns  []string
	Matches  func(Record) bool
}

// ColumnSet is the resolved display column list for a snapshot.
type ColumnSet struct {
	Schema  string   `json:"schema"`
	Columns []string `json:"columns"`
}

// Contains reports whether column is one of the displayed columns.
func (c ColumnSet) Contains(column string) bool {
	return column != "" && slices.Contains(c.Columns, column)
}

// First returns the first displayed column, or "" when there are none.
func (c ColumnSet) First() string {
	if len(c.Columns) == 0 {
		return ""
	}
	return c.Columns[0]
}

// Empty reports whether no columns are set.
func (c ColumnSet) Empty() bool {
	return len(c.Columns) == 0
}

func init() {
	RegisterSchema(Schema{
		Key:      SchemaAutoMPG,
		Label:    "Auto MPG",
		Priority: 200,
		Columns: []string{
			"name", "mpg", "cylinders", "displacement", "horsepower",
			"weight", "acceleration", "model_year", "origin",
		},
		Matches: func(r Record) bool {
			return r.Has("name") || r.Has("mpg") || r.Has("cylinders")
		},
	})

	RegisterSchema(Schema{
		Key:      SchemaAutomobile,
		Label:    "Automobile",
		Priority: 100,
		Columns: []string{
			"make", "bodyStyle", "fuelType", "driveWheels", "engineSize",
			"horsepower", "cityMpg", "highwayMpg", "price",
		},
		Matches: func(r Record) bool {
			return r.Has("make") || r.Has("bodyStyle")
		},
	})
}

// ResolveSchema picks the display columns for a sample record.
// Registered schemas are tried in priority order; a record matching none of
// them gets its first GenericColumnLimit defined fields.
func ResolveSchema(sample Record) ColumnSet {
	for _, s := range Schemas() {
		if s.Matches(sample) {
			return ColumnSet{Schema: s.Key, Columns: slices.Clone(s.Columns)}
		}
	}

	keys := sample.Keys()
	if len(keys) > GenericColumnLimit {
		keys = keys[:GenericColumnLimit]
	}
	return ColumnSet{Schema: SchemaGeneric, Columns: keys}
}

// DeriveMakeFromName returns the manufacturer implied by a record's model
// name: the first whitespace-delimited token of "name". It only applies when
// the record has no truthy "make" and a truthy "name".
func DeriveMakeFromName(r Record) (string, bool) {
	if r.Get("make").Truthy() {
		return "", false
	}
	name := r.Get("name")
	if !name.Truthy() {
		return "", false
	}
	tokens := strings.Fields(name.String())
	if len(tokens) == 0 {
		return "", false
	}
	return tokens[0], true
}

// MakeOf returns the record's effective make: the "make" field when truthy,
// otherwise the make derived from "name".
func MakeOf(r Record) (string, bool) {
	if m := r.Get("make"); m.Truthy() {
		return m.String(), true
	}
	return DeriveMakeFromName(r)
}
