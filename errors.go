package maple

import (
	"errors"
	"fmt"

	"github.com/syssam/maple/schema/field"
)

// ErrRecordNotFound is returned when an operation targets a row that no
// longer exists in storage.
var ErrRecordNotFound = errors.New("maple: record not found")

// RecordNotFoundError reports a row that could not be found, either on a
// lookup with an empty result or on an update/delete whose row was removed
// concurrently. It is an expected race outcome; retrying requires a fresh
// fetch and is the caller's decision.
type RecordNotFoundError struct {
	table string
	pk    any
}

// Error returns the error string.
func (e *RecordNotFoundError) Error() string {
	if e.pk != nil {
		return fmt.Sprintf("maple: %s record not found (pk=%v)", e.table, e.pk)
	}
	return fmt.Sprintf("maple: %s record not found", e.table)
}

// Is reports whether the target error matches RecordNotFoundError.
// This allows errors.Is(err, ErrRecordNotFound) to return true.
func (e *RecordNotFoundError) Is(err error) bool {
	return err == ErrRecordNotFound
}

// Table returns the table that was searched.
func (e *RecordNotFoundError) Table() string { return e.table }

// PK returns the primary-key value that was searched for, if known.
func (e *RecordNotFoundError) PK() any { return e.pk }

// NewRecordNotFoundError returns a new RecordNotFoundError for the table.
func NewRecordNotFoundError(table string) *RecordNotFoundError {
	return &RecordNotFoundError{table: table}
}

// NewRecordNotFoundErrorWithPK returns a new RecordNotFoundError with the
// primary key that was searched for.
func NewRecordNotFoundErrorWithPK(table string, pk any) *RecordNotFoundError {
	return &RecordNotFoundError{table: table, pk: pk}
}

// IsRecordNotFound returns true if the error is a RecordNotFoundError.
func IsRecordNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *RecordNotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrRecordNotFound)
}

// StorageError wraps any failure reported by the connection adapter. The
// underlying driver error is preserved verbatim and never swallowed.
type StorageError struct {
	Op  string // operation that failed, e.g. "insert users"
	Err error  // underlying driver error
}

// Error returns the error string.
func (e *StorageError) Error() string {
	return fmt.Sprintf("maple: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError returns a new StorageError wrapping err.
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

// IsStorage returns true if the error is a StorageError.
func IsStorage(err error) bool {
	if err == nil {
		return false
	}
	var e *StorageError
	return errors.As(err, &e)
}

// InvalidStateError reports an operation applied to a record in a state
// that does not permit it, such as deleting a record that was never saved.
type InvalidStateError struct {
	op    string
	state State
}

// Error returns the error string.
func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("maple: cannot %s a %s record", e.op, e.state)
}

// NewInvalidStateError returns a new InvalidStateError.
func NewInvalidStateError(op string, state State) *InvalidStateError {
	return &InvalidStateError{op: op, state: state}
}

// IsInvalidState returns true if the error is an InvalidStateError.
func IsInvalidState(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidStateError
	return errors.As(err, &e)
}

// StaleRecordError reports an operation on a record that was already
// deleted. Deleted is a terminal state.
type StaleRecordError struct {
	table string
}

// Error returns the error string.
func (e *StaleRecordError) Error() string {
	return fmt.Sprintf("maple: %s record was deleted", e.table)
}

// NewStaleRecordError returns a new StaleRecordError for the table.
func NewStaleRecordError(table string) *StaleRecordError {
	return &StaleRecordError{table: table}
}

// IsStaleRecord returns true if the error is a StaleRecordError.
func IsStaleRecord(err error) bool {
	if err == nil {
		return false
	}
	var e *StaleRecordError
	return errors.As(err, &e)
}

// ReadOnlyColumnError reports a write to a primary-key column of a record
// that is already persisted. Primary keys are mutable only before the
// first save.
type ReadOnlyColumnError struct {
	column string
}

// Error returns the error string.
func (e *ReadOnlyColumnError) Error() string {
	return fmt.Sprintf("maple: primary-key column %q is read-only after save", e.column)
}

// Column returns the rejected column name.
func (e *ReadOnlyColumnError) Column() string { return e.column }

// NewReadOnlyColumnError returns a new ReadOnlyColumnError for the column.
func NewReadOnlyColumnError(column string) *ReadOnlyColumnError {
	return &ReadOnlyColumnError{column: column}
}

// IsReadOnlyColumn returns true if the error is a ReadOnlyColumnError.
func IsReadOnlyColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *ReadOnlyColumnError
	return errors.As(err, &e)
}

// RowShapeError reports a result row whose column count does not match the
// schema. It indicates a schema/storage mismatch.
type RowShapeError struct {
	table string
	want  int
	got   int
}

// Error returns the error string.
func (e *RowShapeError) Error() string {
	return fmt.Sprintf("maple: row for %s has %d values, schema declares %d columns", e.table, e.got, e.want)
}

// NewRowShapeError returns a new RowShapeError.
func NewRowShapeError(table string, want, got int) *RowShapeError {
	return &RowShapeError{table: table, want: want, got: got}
}

// IsRowShape returns true if the error is a RowShapeError.
func IsRowShape(err error) bool {
	if err == nil {
		return false
	}
	var e *RowShapeError
	return errors.As(err, &e)
}

// TypeCoercionError reports a value that could not be coerced to the
// declared column type.
type TypeCoercionError struct {
	column string
	value  any
	want   field.Type
}

// Error returns the error string.
func (e *TypeCoercionError) Error() string {
	return fmt.Sprintf("maple: cannot coerce %T value into %s column %q", e.value, e.want, e.column)
}

// Column returns the column whose coercion failed.
func (e *TypeCoercionError) Column() string { return e.column }

// NewTypeCoercionError returns a new TypeCoercionError.
func NewTypeCoercionError(column string, value any, want field.Type) *TypeCoercionError {
	return &TypeCoercionError{column: column, value: value, want: want}
}

// IsTypeCoercion returns true if the error is a TypeCoercionError.
func IsTypeCoercion(err error) bool {
	if err == nil {
		return false
	}
	var e *TypeCoercionError
	return errors.As(err, &e)
}
