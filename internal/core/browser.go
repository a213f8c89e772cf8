package core

// browser.go holds the dataset browser: the state behind the table view.
//
// A Browser receives snapshots from a record source and mutations from the
// user (search, dropdowns, header clicks). Every handler runs under one lock,
// so a snapshot never interleaves with a filter change and readers always see
// the visible list that matches the current spec.

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// StateStore persists the filter spec between sessions.
// Implementations handle their own failures; Load returns nil when nothing
// usable is stored.
type StateStore interface {
	Save(ctx context.Context, spec FilterSpec)
	Load(ctx context.Context) *FilterSpec
	Clear(ctx context.Context)
}

// View is a consistent copy of the browser state for rendering.
type View struct {
	Columns     ColumnSet  `json:"columns"`
	Options     Options    `json:"options"`
	Spec        FilterSpec `json:"filters"`
	Sort        SortState  `json:"sort"`
	Records     []Record   `json:"records"`
	Total       int        `json:"total"`
	ActiveCount int        `json:"activeFilterCount"`
}

// Browser owns the current snapshot and the user's filter selection.
type Browser struct {
	mu       sync.Mutex
	store    StateStore
	records  []Record
	visible  []Record
	columns  ColumnSet
	options  Options
	spec     FilterSpec
	restored bool
	closed   bool
}

// NewBrowser creates a browser persisting its spec to store.
// A nil store disables persistence.
func NewBrowser(store StateStore) *Browser {
	if store == nil {
		store = nopStore{}
	}
	return &Browser{
		store:   store,
		spec:    DefaultSpec(),
		visible: []Record{},
		options: Options{Makes: []string{}, Cylinders: []string{}},
	}
}

// OnSnapshot replaces the dataset with records and recomputes the view.
//
// The display columns are only re-resolved for a non-empty snapshot. When no
// sort column is chosen yet, the first display column is used. The saved
// spec is restored on the first snapshot only.
func (b *Browser) OnSnapshot(ctx context.Context, records []Record) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	start := time.Now()
	b.records = slices.Clone(records)

	if len(b.records) > 0 {
		b.columns = ResolveSchema(b.records[0])
		if b.spec.SortBy == "" {
			b.spec.SortBy = b.columns.First()
			b.spec.SortDirection = Ascending
		}
	}

	b.options = ExtractOptions(b.records)

	if !b.restored {
		b.restored = true
		if saved := b.store.Load(ctx); saved != nil {
			b.spec = *saved
			b.spec.Normalize()
			if b.spec.SortBy == "" {
				b.spec.SortBy = b.columns.First()
			}
		}
	}

	b.refilter()

	snapshotsTotal.Inc()
	snapshotRecords.Set(float64(len(b.records)))
	filterPassDuration.Observe(time.Since(start).Seconds())

	logging.FromContext(ctx).Debug("snapshot applied",
		"records", len(b.records),
		"visible", len(b.visible),
		"schema", b.columns.Schema,
	)
}

// SetSearchTerm updates the free-text search.
func (b *Browser) SetSearchTerm(ctx context.Context, term string) {
	b.Update(ctx, func(s *FilterSpec) { s.SearchTerm = term })
}

// SetMakeFilter updates the make dropdown selection.
func (b *Browser) SetMakeFilter(ctx context.Context, value string) {
	b.Update(ctx, func(s *FilterSpec) { s.MakeFilter = value })
}

// SetCylindersFilter updates the cylinder dropdown selection.
func (b *Browser) SetCylindersFilter(ctx context.Context, cylinders string) {
	b.Update(ctx, func(s *FilterSpec) { s.CylindersFilter = cylinders })
}

// SetSort sets the sort column and direction directly.
func (b *Browser) SetSort(ctx context.Context, column string, dir Direction) {
	b.Update(ctx, func(s *FilterSpec) {
		s.SortBy = column
		s.SortDirection = dir
	})
}

// ApplySpec replaces the whole spec at once.
func (b *Browser) ApplySpec(ctx context.Context, spec FilterSpec) {
	b.Update(ctx, func(s *FilterSpec) { *s = spec })
}

// Update applies fn to the spec, persists the result and refilters.
func (b *Browser) Update(ctx context.Context, fn func(*FilterSpec)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	fn(&b.spec)
	b.spec.Normalize()
	b.store.Save(ctx, b.spec)
	b.refilter()
}

// OnColumnHeaderClicked toggles the direction when column is already the
// sort column, otherwise sorts by column ascending. Columns that are not
// displayed are ignored. Reports whether the sort changed.
func (b *Browser) OnColumnHeaderClicked(ctx context.Context, column string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed || !b.columns.Contains(column) {
		return false
	}

	if b.spec.SortBy == column {
		b.spec.SortDirection = b.spec.SortDirection.Toggle()
	} else {
		b.spec.SortBy = column
		b.spec.SortDirection = Ascending
	}

	b.store.Save(ctx, b.spec)
	b.refilter()
	return true
}

// ClearFilters resets the spec to defaults, sorted by the first display
// column, and removes the saved state.
func (b *Browser) ClearFilters(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.spec = DefaultSpec()
	b.spec.SortBy = b.columns.First()
	b.store.Clear(ctx)
	b.refilter()
}

// refilter recomputes the visible records. Callers hold b.mu.
func (b *Browser) refilter() {
	b.visible = ApplyFilters(b.records, b.spec)
	SortRecords(b.visible, b.spec.SortBy, b.spec.SortDirection)
	visibleRecords.Set(float64(len(b.visible)))
}

// Visible returns a copy of the records passing the active filters, in
// display order.
func (b *Browser) Visible() []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.visible)
}

// Columns returns the current display columns.
func (b *Browser) Columns() ColumnSet {
	b.mu.Lock()
	defer b.mu.Unlock()
	return ColumnSet{Schema: b.columns.Schema, Columns: slices.Clone(b.columns.Columns)}
}

// Options returns the current dropdown options.
func (b *Browser) Options() Options {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Options{Makes: slices.Clone(b.options.Makes), Cylinders: slices.Clone(b.options.Cylinders)}
}

// Spec returns the current filter spec.
func (b *Browser) Spec() FilterSpec {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spec
}

// Sort returns the current sort state.
func (b *Browser) Sort() SortState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spec.Sort()
}

// SortIcon returns the header indicator for column.
func (b *Browser) SortIcon(column string) string {
	return b.Sort().Icon(column)
}

// ActiveFilterCount returns the number of active filter criteria.
func (b *Browser) ActiveFilterCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spec.ActiveFilterCount()
}

// Total returns the number of records in the current snapshot.
func (b *Browser) Total() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}

// View returns a consistent copy of everything needed to render the table.
func (b *Browser) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return View{
		Columns:     ColumnSet{Schema: b.columns.Schema, Columns: slices.Clone(b.columns.Columns)},
		Options:     Options{Makes: slices.Clone(b.options.Makes), Cylinders: slices.Clone(b.options.Cylinders)},
		Spec:        b.spec,
		Sort:        b.spec.Sort(),
		Records:     slices.Clone(b.visible),
		Total:       len(b.records),
		ActiveCount: b.spec.ActiveFilterCount(),
	}
}

// Close stops the browser from accepting further snapshots and mutations.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

type nopStore struct{}

func (nopStore) Save(context.Context, FilterSpec) {}
func (nopStore) Load(context.Context) *FilterSpec { return nil }
func (nopStore) Clear(context.Context) {}
