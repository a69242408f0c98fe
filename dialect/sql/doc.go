// Package sql renders maple statements into parameterized SQL and wraps
// database/sql as the dialect.Driver capability.
//
// The package has two halves. Statement building is pure: predicates form
// an immutable filter tree, Selector accumulates clauses through an
// immutable method chain, and Query renders text plus bound parameters in
// a single pass. Execution lives in Driver/Conn, a thin adapter over
// database/sql with context on every call.
//
// Rendering a query:
//
//	users, _ := schema.New("users",
//	    field.Int64("id").Primary(),
//	    field.String("name"),
//	)
//	q, args, err := sql.SelectSchema(dialect.MySQL, users).
//	    Where(sql.EQ("name", "Ada")).
//	    OrderBy("id").
//	    Limit(10).
//	    Query()
//	// q    = SELECT `id`, `name` FROM `users` WHERE `name` = ? ORDER BY `id` ASC LIMIT 10
//	// args = ["Ada"]
//
// Values never appear in the SQL text; they bind as positional
// placeholders (? for MySQL/SQLite, $n for Postgres). Identifiers are
// always quoted with the dialect's quote rune.
package sql
