// Package dialect defines the database-facing abstraction consumed by the
// maple ORM: dialect name constants and the Driver capability used to
// execute rendered statements.
package dialect

import (
	"context"
)

// Supported dialect names. Each matches the driver name used with
// database/sql.Open.
const (
	MySQL    = "mysql"
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// ExecQuerier wraps the two standard database operations: statements that
// return a result summary and queries that return rows.
//
// The args argument is always a []any holding the bound parameters of the
// rendered statement; v is the operation-specific destination (see the
// dialect/sql package for the concrete types).
type ExecQuerier interface {
	// Exec executes a statement that does not return rows.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a statement and binds its rows to v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the capability supplied by the database layer. One statement
// is in flight per driver connection at a time; concurrency and pooling
// policy belong to the implementation, not to the ORM core.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps transaction commit and rollback around the standard operations.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
