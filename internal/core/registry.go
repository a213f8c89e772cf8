package core

import (
	"fmt"
	"sort"
	"sync"
)

var (
	registry   = make(map[string]Schema)
	registryMu sync.RWMutex
)

// RegisterSchema adds a schema to the registry.
// Panics if a schema with the same key is already registered or if the
// schema has no match predicate.
func RegisterSchema(s Schema) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[s.Key]; exists {
		panic(fmt.Sprintf("schema already registered: %s", s.Key))
	}
	if s.Matches == nil {
		panic(fmt.Sprintf("schema %s has no match predicate", s.Key))
	}

	s.Columns = append([]string(nil), s.Columns...)
	registry[s.Key] = s
}

// LookupSchema returns a schema by key.
// Returns false if not found.
func LookupSchema(key string) (Schema, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	s, ok := registry[key]
	return s, ok
}

// Schemas returns all registered schemas in detection order:
// highest priority first, then by key for consistent ordering.
func Schemas() []Schema {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]Schema, 0, len(registry))
	for _, s := range registry {
		result = append(result, s)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority > result[j].Priority
		}
		return result[i].Key < result[j].Key
	})

	return result
}

// SchemaCount returns the number of registered schemas.
func SchemaCount() int {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return len(registry)
}

// unregisterSchema removes a schema by key. Used by tests that register
// temporary schemas.
func unregisterSchema(key string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(registry, key)
}
