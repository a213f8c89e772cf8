// Package core provides the record normalization, filtering, sorting and
// browsing logic for the vehicle dataset.
//
// This package has no UI, storage or transport dependencies. It can be driven
// by the web server, the CLI, or tests without modification.
//
// # Architecture
//
// The package is organized around a handful of concepts:
//
//   - Records: an ordered list of fields whose values are a tagged union of
//     absent, number and string ([Value]). Records arrive from a record source
//     with no declared schema.
//   - Schemas: registered via the schema registry. Each [Schema] carries a
//     structural match predicate and a fixed display column order. Records
//     matching no schema fall back to a generic column set.
//   - Filters: a [FilterSpec] describes the free-text search, the make filter,
//     the cylinder filter and the sort column/direction. [ApplyFilters] and
//     [SortRecords] are pure functions over a record slice.
//   - Browser: owns the current snapshot, display columns, dropdown options and
//     the active spec. It persists the spec through an injected [StateStore].
//
// # Schema Registry
//
// Schemas are registered at init time using [RegisterSchema]:
//
//	core.RegisterSchema(Schema{
//	    Key:      "autompg",
//	    Label:    "Auto MPG",
//	    Priority: 200,
//	    Columns:  []string{"name", "mpg", "cylinders"},
//	    Matches:  func(r Record) bool { return r.Has("name") },
//	})
//
// Detection checks schemas from the highest priority down and the first match
// wins, so the Auto MPG schema takes precedence over the Automobile schema.
//
// # Snapshot Flow
//
// Every snapshot from a record source triggers one synchronous pass:
//
//  1. The display column set is resolved from the first record
//  2. Make and cylinder dropdown options are extracted from all records
//  3. On the first snapshot only, the saved spec is restored
//  4. Filters and the sort are applied to produce the visible records
//
// An empty snapshot keeps the previous display columns.
//
// # Error Handling
//
// Nothing in this package fails on odd record shapes. Missing fields have
// defined filter and sort semantics, invalid sort columns are ignored, and
// state store failures are handled by the store itself.
package core
