// Package maple is a lightweight record-mapper ORM: it binds logical
// entity types to relational tables, builds parameterized SQL through a
// composable query builder, and materializes result rows into records
// with per-instance dirty tracking.
//
// A schema is declared once and registered process-wide:
//
//	users, err := schema.Register("users",
//	    field.Int64("id").Primary(),
//	    field.String("name"),
//	    field.Int("age").Nillable(),
//	)
//
// A manager ties the schema to a database driver:
//
//	drv, err := sql.Open(dialect.MySQL, dsn)
//	m := maple.NewManager(drv, users)
//
// Records round-trip through the manager:
//
//	r := maple.NewRecord(users)
//	r.Set("name", "Ada")
//	r.Set("age", 30)
//	err = m.Save(ctx, r) // INSERT, id read back into r
//
//	rs, err := m.Find(ctx, m.Query().
//	    Where(sql.EQ("name", "Ada")).
//	    OrderBy("id").
//	    Limit(10))
//
// Queries are built lazily and execute in a single round trip; values are
// always bound as parameters, never interpolated into SQL text.
package maple
