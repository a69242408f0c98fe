package schema

import (
	"errors"
	"fmt"
)

// ErrSchemaConflict is returned when a table is re-registered with a
// column set that differs from the cached one.
var ErrSchemaConflict = errors.New("schema: conflicting registration")

// SchemaError reports an invalid schema declaration.
type SchemaError struct {
	table string
	msg   string
}

// Error returns the error string.
func (e *SchemaError) Error() string {
	if e.table == "" {
		return fmt.Sprintf("schema: %s", e.msg)
	}
	return fmt.Sprintf("schema: table %q: %s", e.table, e.msg)
}

// Table returns the table that failed to register, if known.
func (e *SchemaError) Table() string { return e.table }

// NewSchemaError returns a new SchemaError for the given table.
func NewSchemaError(table, msg string) *SchemaError {
	return &SchemaError{table: table, msg: msg}
}

// NewSchemaErrorf returns a new SchemaError with a formatted message.
func NewSchemaErrorf(table, format string, args ...any) *SchemaError {
	return &SchemaError{table: table, msg: fmt.Sprintf(format, args...)}
}

// IsSchemaError returns true if the error is a SchemaError.
func IsSchemaError(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaError
	return errors.As(err, &e)
}

// SchemaConflictError reports a re-registration of a table with a
// differing column set.
type SchemaConflictError struct {
	table string
}

// Error returns the error string.
func (e *SchemaConflictError) Error() string {
	return fmt.Sprintf("schema: table %q already registered with a different column set", e.table)
}

// Is reports whether the target error matches SchemaConflictError.
// This allows errors.Is(conflictErr, ErrSchemaConflict) to return true.
func (e *SchemaConflictError) Is(err error) bool {
	return err == ErrSchemaConflict
}

// Table returns the conflicting table name.
func (e *SchemaConflictError) Table() string { return e.table }

// NewSchemaConflictError returns a new SchemaConflictError for the table.
func NewSchemaConflictError(table string) *SchemaConflictError {
	return &SchemaConflictError{table: table}
}

// IsSchemaConflict returns true if the error is a SchemaConflictError.
func IsSchemaConflict(err error) bool {
	if err == nil {
		return false
	}
	var e *SchemaConflictError
	return errors.As(err, &e) || errors.Is(err, ErrSchemaConflict)
}
