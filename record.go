package maple

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/syssam/maple/dialect/sql"
	"github.com/syssam/maple/schema"
)

// State is the lifecycle state of a record relative to storage.
type State uint8

// Record lifecycle states. A record moves StateNew -> StatePersisted ->
// StateDeleted; deleted is terminal.
const (
	StateNew State = iota
	StatePersisted
	StateDeleted
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StatePersisted:
		return "persisted"
	case StateDeleted:
		return "deleted"
	}
	return fmt.Sprintf("invalid(%d)", s)
}

// A Record is one in-memory row of a mapped table. It holds the current
// column values, a non-owning reference to its schema, and the set of
// columns changed since load or last save.
//
// Records are single-owner values: they are not safe for concurrent
// mutation. Discarding a record has no storage side effects.
type Record struct {
	schema *schema.Schema
	values map[string]any
	dirty  map[string]struct{}
	state  State
}

// NewRecord returns an empty record bound to the schema, in StateNew with
// an empty dirty set.
func NewRecord(sc *schema.Schema) *Record {
	return &Record{
		schema: sc,
		values: make(map[string]any, len(sc.Columns())),
		dirty:  make(map[string]struct{}),
	}
}

// Schema returns the schema the record is bound to.
func (r *Record) Schema() *schema.Schema { return r.schema }

// State returns the record's lifecycle state.
func (r *Record) State() State { return r.state }

// Dirty reports if any column was changed since load or last save.
func (r *Record) Dirty() bool { return len(r.dirty) > 0 }

// DirtyColumns returns the changed column names in schema order.
func (r *Record) DirtyColumns() []string {
	if len(r.dirty) == 0 {
		return nil
	}
	cols := make([]string, 0, len(r.dirty))
	for _, c := range r.schema.Columns() {
		if _, ok := r.dirty[c.Name]; ok {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// Set assigns the value to the column, coercing it to the declared type
// and marking the column dirty. Writing an undeclared column fails with
// an UnknownColumnError; writing a primary-key column of a persisted
// record fails with a ReadOnlyColumnError.
func (r *Record) Set(column string, v any) error {
	c := r.schema.Column(column)
	if c == nil {
		return sql.NewUnknownColumnError(r.schema.Table(), column)
	}
	if c.Primary && r.state != StateNew {
		return NewReadOnlyColumnError(column)
	}
	cv, err := coerceValue(c, v)
	if err != nil {
		return err
	}
	r.values[column] = cv
	r.dirty[column] = struct{}{}
	return nil
}

// Get returns the current value of the column. Reading an undeclared
// column fails with an UnknownColumnError; an unset column reads as nil.
func (r *Record) Get(column string) (any, error) {
	if !r.schema.Has(column) {
		return nil, sql.NewUnknownColumnError(r.schema.Table(), column)
	}
	return r.values[column], nil
}

// Has reports if the column currently holds a value (including nil for a
// nillable column loaded as NULL).
func (r *Record) has(column string) bool {
	_, ok := r.values[column]
	return ok
}

// Int64 returns the column value as int64.
func (r *Record) Int64(column string) (int64, error) {
	v, err := r.Get(column)
	if err != nil {
		return 0, err
	}
	n, ok := v.(int64)
	if !ok {
		return 0, NewTypeCoercionError(column, v, r.schema.Column(column).Type)
	}
	return n, nil
}

// String returns the column value as string.
func (r *Record) String(column string) (string, error) {
	v, err := r.Get(column)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", NewTypeCoercionError(column, v, r.schema.Column(column).Type)
	}
	return s, nil
}

// Float64 returns the column value as float64.
func (r *Record) Float64(column string) (float64, error) {
	v, err := r.Get(column)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok {
		return 0, NewTypeCoercionError(column, v, r.schema.Column(column).Type)
	}
	return f, nil
}

// Bool returns the column value as bool.
func (r *Record) Bool(column string) (bool, error) {
	v, err := r.Get(column)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, NewTypeCoercionError(column, v, r.schema.Column(column).Type)
	}
	return b, nil
}

// Time returns the column value as time.Time.
func (r *Record) Time(column string) (time.Time, error) {
	v, err := r.Get(column)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, NewTypeCoercionError(column, v, r.schema.Column(column).Type)
	}
	return t, nil
}

// Bytes returns the column value as a byte slice.
func (r *Record) Bytes(column string) ([]byte, error) {
	v, err := r.Get(column)
	if err != nil {
		return nil, err
	}
	b, ok := v.([]byte)
	if !ok {
		return nil, NewTypeCoercionError(column, v, r.schema.Column(column).Type)
	}
	return b, nil
}

// Row returns the record's values in schema column order. Unset columns
// appear as nil.
func (r *Record) Row() []any {
	row := make([]any, len(r.schema.Columns()))
	for i, c := range r.schema.Columns() {
		row[i] = r.values[c.Name]
	}
	return row
}

// setLoaded writes a value without dirtying the record or enforcing the
// primary-key write guard. Used by materialization and id read-back.
func (r *Record) setLoaded(column string, v any) {
	r.values[column] = v
}

// clearDirty empties the dirty set after a successful save.
func (r *Record) clearDirty() {
	clear(r.dirty)
}

// MarshalBinary encodes the record's values in schema column order as a
// msgpack tuple. The schema itself is not encoded; UnmarshalBinary must
// run against a record bound to the same schema.
func (r *Record) MarshalBinary() ([]byte, error) {
	return msgpack.Marshal(r.Row())
}

// UnmarshalBinary rebuilds the record from a MarshalBinary snapshot. The
// restored record is persisted with an empty dirty set.
func (r *Record) UnmarshalBinary(data []byte) error {
	var row []any
	if err := msgpack.Unmarshal(data, &row); err != nil {
		return err
	}
	loaded, err := FromRow(r.schema, row)
	if err != nil {
		return err
	}
	r.values = loaded.values
	r.dirty = make(map[string]struct{})
	r.state = StatePersisted
	return nil
}
