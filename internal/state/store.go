// Package state persists the browser's filter selection in a single
// key/value slot.
//
// A Store serializes the spec to JSON and hands it to a KV backend. Backend
// failures are logged and swallowed: losing the saved filters must never
// break the table.
package state

import (
	"context"
	"log/slog"

	"github.com/bytedance/sonic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kuncheriajose/firehawk-frontend/internal/core"
	"github.com/kuncheriajose/firehawk-frontend/internal/logging"
)

// DefaultKey is the slot the filter spec is stored under.
const DefaultKey = "carDatabase_filters"

// KV is a string key/value backend.
type KV interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

var storeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "cardb",
	Name:      "state_store_failures_total",
	Help:      "State store operations that failed and were ignored.",
}, []string{"op"})

// Store saves and restores a core.FilterSpec.
type Store struct {
	kv  KV
	key string
}

var _ core.StateStore = (*Store)(nil)

// New creates a store writing to key in kv. An empty key uses DefaultKey.
func New(kv KV, key string) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key}
}

// Key returns the slot name.
func (s *Store) Key() string {
	return s.key
}

// Save writes the full spec to the slot.
func (s *Store) Save(ctx context.Context, spec core.FilterSpec) {
	data, err := Encode(spec)
	if err != nil {
		s.fail(ctx, "save", err)
		return
	}
	if err := s.kv.Set(ctx, s.key, data); err != nil {
		s.fail(ctx, "save", err)
	}
}

// Load returns the saved spec, or nil when the slot is empty, holds JSON
// null, or cannot be read or decoded.
func (s *Store) Load(ctx context.Context) *core.FilterSpec {
	data, ok, err := s.kv.Get(ctx, s.key)
	if err != nil {
		s.fail(ctx, "load", err)
		return nil
	}
	if !ok {
		return nil
	}

	spec, err := Decode(data)
	if err != nil {
		s.fail(ctx, "decode", err)
		return nil
	}
	return spec
}

// Clear removes the slot.
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Delete(ctx, s.key); err != nil {
		s.fail(ctx, "clear", err)
	}
}

// fail records a swallowed failure. Unreadable stored text is logged at
// error level; storage I/O failures at warn.
func (s *Store) fail(ctx context.Context, op string, err error) {
	storeFailures.WithLabelValues(op).Inc()
	level := slog.LevelWarn
	if op == "decode" {
		level = slog.LevelError
	}
	logging.FromContext(ctx).Log(ctx, level, "filter state unavailable",
		"op", op,
		"key", s.key,
		"error", err,
	)
}

// Encode serializes a spec to its stored JSON form.
func Encode(spec core.FilterSpec) (string, error) {
	b, err := sonic.Marshal(spec)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode parses a stored spec. An empty string or JSON null yields nil.
// Missing fields are left empty and an invalid sort direction becomes
// ascending.
func Decode(data string) (*core.FilterSpec, error) {
	if data == "" || data == "null" {
		return nil, nil
	}

	var spec *core.FilterSpec
	if err := sonic.UnmarshalString(data, &spec); err != nil {
		return nil, err
	}
	if spec == nil {
		return nil, nil
	}
	spec.Normalize()
	return spec, nil
}
