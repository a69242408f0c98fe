package schema

import (
	"sync"
)

// registry is the process-wide schema registry. It is populated at startup
// or on first use and read-only afterwards. Tests reset it between cases
// with Reset.
var registry = struct {
	sync.RWMutex
	tables map[string]*Schema
}{tables: make(map[string]*Schema)}

// Register builds, validates and caches the schema for the given table.
//
// Registration is idempotent by identity: re-registering a table with an
// identical column set returns the cached schema; re-registering it with
// a differing column set fails with a SchemaConflictError. Identity covers
// name, type, nillability, primary-key flag and declared defaults;
// DefaultFunc compares by presence only.
func Register(table string, fields ...Field) (*Schema, error) {
	s, err := New(table, fields...)
	if err != nil {
		return nil, err
	}
	registry.Lock()
	defer registry.Unlock()
	if cached, ok := registry.tables[table]; ok {
		if !cached.equal(s) {
			return nil, NewSchemaConflictError(table)
		}
		return cached, nil
	}
	registry.tables[table] = s
	return s, nil
}

// Lookup returns the registered schema for the given table, if any.
func Lookup(table string) (*Schema, bool) {
	registry.RLock()
	defer registry.RUnlock()
	s, ok := registry.tables[table]
	return s, ok
}

// Reset clears the process-wide registry. It exists for test suites;
// production code registers schemas once and never tears them down.
func Reset() {
	registry.Lock()
	defer registry.Unlock()
	registry.tables = make(map[string]*Schema)
}
