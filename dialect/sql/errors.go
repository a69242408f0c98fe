package sql

import (
	"errors"
	"fmt"
)

// UnknownColumnError reports a reference to a column that is not declared
// in the schema a statement is bound to. It is a caller logic bug: the
// statement is never executed.
type UnknownColumnError struct {
	table  string
	column string
}

// Error returns the error string.
func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("sql: unknown column %q in table %q", e.column, e.table)
}

// Table returns the table the statement was bound to.
func (e *UnknownColumnError) Table() string { return e.table }

// Column returns the undeclared column name.
func (e *UnknownColumnError) Column() string { return e.column }

// NewUnknownColumnError returns a new UnknownColumnError.
func NewUnknownColumnError(table, column string) *UnknownColumnError {
	return &UnknownColumnError{table: table, column: column}
}

// IsUnknownColumn returns true if the error is an UnknownColumnError.
func IsUnknownColumn(err error) bool {
	if err == nil {
		return false
	}
	var e *UnknownColumnError
	return errors.As(err, &e)
}

// InvalidLimitError reports a negative LIMIT or OFFSET value.
type InvalidLimitError struct {
	clause string
	value  int
}

// Error returns the error string.
func (e *InvalidLimitError) Error() string {
	return fmt.Sprintf("sql: invalid %s %d: must be >= 0", e.clause, e.value)
}

// Clause returns the offending clause name ("LIMIT" or "OFFSET").
func (e *InvalidLimitError) Clause() string { return e.clause }

// Value returns the rejected value.
func (e *InvalidLimitError) Value() int { return e.value }

// NewInvalidLimitError returns a new InvalidLimitError.
func NewInvalidLimitError(clause string, value int) *InvalidLimitError {
	return &InvalidLimitError{clause: clause, value: value}
}

// IsInvalidLimit returns true if the error is an InvalidLimitError.
func IsInvalidLimit(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidLimitError
	return errors.As(err, &e)
}
