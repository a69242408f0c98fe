package sql

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/syssam/maple/dialect"
	"github.com/syssam/maple/schema"
	"github.com/syssam/maple/schema/field"
)

func usersSchema(t *testing.T) *schema.Schema {
	t.Helper()
	sc, err := schema.New("users",
		field.Int64("id").Primary(),
		field.String("name"),
		field.Int("age").Nillable(),
	)
	require.NoError(t, err)
	return sc
}

func TestSelector(t *testing.T) {
	sc := usersSchema(t)
	tests := []struct {
		name      string
		input     Selector
		wantQuery string
		wantArgs  []any
	}{
		{
			name:      "all",
			input:     SelectSchema(dialect.MySQL, sc),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users`",
		},
		{
			name:      "where_eq",
			input:     SelectSchema(dialect.MySQL, sc).Where(EQ("name", "John")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE `name` = ?",
			wantArgs:  []any{"John"},
		},
		{
			name:      "where_chain_ands",
			input:     SelectSchema(dialect.MySQL, sc).Where(EQ("name", "John")).Where(GT("age", 18)),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE (`name` = ?) AND (`age` > ?)",
			wantArgs:  []any{"John", 18},
		},
		{
			name:      "where_or",
			input:     SelectSchema(dialect.MySQL, sc).Where(Or(EQ("name", "John"), EQ("name", "Bob"))),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE (`name` = ?) OR (`name` = ?)",
			wantArgs:  []any{"John", "Bob"},
		},
		{
			name:      "where_not",
			input:     SelectSchema(dialect.MySQL, sc).WhereNot(EQ("name", "John")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE NOT (`name` = ?)",
			wantArgs:  []any{"John"},
		},
		{
			name:      "where_like",
			input:     SelectSchema(dialect.MySQL, sc).Where(Like("name", "Jo%")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE `name` LIKE ?",
			wantArgs:  []any{"Jo%"},
		},
		{
			name:      "where_in",
			input:     SelectSchema(dialect.MySQL, sc).Where(In("age", 25, 30)),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE `age` IN (?, ?)",
			wantArgs:  []any{25, 30},
		},
		{
			name:      "where_in_empty",
			input:     SelectSchema(dialect.MySQL, sc).Where(In("age")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE 1 = 0",
		},
		{
			name:      "where_not_in_empty",
			input:     SelectSchema(dialect.MySQL, sc).Where(NotIn("age")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE 1 = 1",
		},
		{
			name:      "where_is_null",
			input:     SelectSchema(dialect.MySQL, sc).Where(IsNull("age")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE `age` IS NULL",
		},
		{
			name:      "where_not_null",
			input:     SelectSchema(dialect.MySQL, sc).Where(NotNull("age")),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` WHERE `age` IS NOT NULL",
		},
		{
			name:      "order",
			input:     SelectSchema(dialect.MySQL, sc).OrderBy("name"),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` ORDER BY `name` ASC",
		},
		{
			name:      "order_multi",
			input:     SelectSchema(dialect.MySQL, sc).OrderBy("name").OrderDesc("age"),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` ORDER BY `name` ASC, `age` DESC",
		},
		{
			name:      "order_direction_overwrite",
			input:     SelectSchema(dialect.MySQL, sc).OrderBy("name").OrderBy("age").OrderDesc("name").OrderBy("id"),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` ORDER BY `name` DESC, `age` ASC, `id` ASC",
		},
		{
			name:      "limit_offset",
			input:     SelectSchema(dialect.MySQL, sc).Limit(10).Offset(5),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` LIMIT 10 OFFSET 5",
		},
		{
			name:      "last_limit_wins",
			input:     SelectSchema(dialect.MySQL, sc).Limit(5).Limit(2),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` LIMIT 2",
		},
		{
			name:      "offset_without_limit_mysql",
			input:     SelectSchema(dialect.MySQL, sc).Offset(5),
			wantQuery: "SELECT `id`, `name`, `age` FROM `users` LIMIT 18446744073709551615 OFFSET 5",
		},
		{
			name:      "offset_without_limit_sqlite",
			input:     SelectSchema(dialect.SQLite, sc).Offset(5),
			wantQuery: `SELECT "id", "name", "age" FROM "users" LIMIT -1 OFFSET 5`,
		},
		{
			name:      "offset_without_limit_postgres",
			input:     SelectSchema(dialect.Postgres, sc).Offset(5),
			wantQuery: `SELECT "id", "name", "age" FROM "users" OFFSET 5`,
		},
		{
			name:      "postgres_placeholders",
			input:     SelectSchema(dialect.Postgres, sc).Where(EQ("name", "John")).Where(In("age", 25, 30)),
			wantQuery: `SELECT "id", "name", "age" FROM "users" WHERE ("name" = $1) AND ("age" IN ($2, $3))`,
			wantArgs:  []any{"John", 25, 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := tt.input.Query()
			require.NoError(t, err)
			assert.Equal(t, tt.wantQuery, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestSelectorQueryIdempotent(t *testing.T) {
	sc := usersSchema(t)
	sel := SelectSchema(dialect.Postgres, sc).
		Where(EQ("name", "John")).
		Where(In("age", 25, 30)).
		OrderBy("id").
		Limit(3)
	q1, a1, err := sel.Query()
	require.NoError(t, err)
	q2, a2, err := sel.Query()
	require.NoError(t, err)
	assert.Equal(t, q1, q2)
	assert.Equal(t, a1, a2)
}

func TestSelectorBranching(t *testing.T) {
	sc := usersSchema(t)
	base := SelectSchema(dialect.MySQL, sc).Where(GT("age", 18))

	left := base.Where(EQ("name", "John")).OrderBy("id")
	right := base.Limit(1)

	q, args, err := base.Query()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `name`, `age` FROM `users` WHERE `age` > ?", q)
	assert.Equal(t, []any{18}, args)

	q, args, err = left.Query()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `name`, `age` FROM `users` WHERE (`age` > ?) AND (`name` = ?) ORDER BY `id` ASC", q)
	assert.Equal(t, []any{18, "John"}, args)

	q, args, err = right.Query()
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `name`, `age` FROM `users` WHERE `age` > ? LIMIT 1", q)
	assert.Equal(t, []any{18}, args)
}

func TestSelectorSharedAcrossGoroutines(t *testing.T) {
	sc := usersSchema(t)
	base := SelectSchema(dialect.MySQL, sc).Where(GT("age", 18)).OrderBy("id")
	want, wantArgs, err := base.Where(EQ("name", "John")).Limit(5).Query()
	require.NoError(t, err)

	var g errgroup.Group
	for i := 0; i < 16; i++ {
		g.Go(func() error {
			q, args, err := base.Where(EQ("name", "John")).Limit(5).Query()
			if err != nil {
				return err
			}
			if q != want || len(args) != len(wantArgs) {
				return fmt.Errorf("unstable render: %q", q)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
}

func TestInjectionSafety(t *testing.T) {
	sc := usersSchema(t)
	for _, hostile := range []string{
		"'; DROP TABLE users; --",
		"Robert'); DELETE FROM users; --",
		`" OR ""="`,
	} {
		q, args, err := SelectSchema(dialect.MySQL, sc).Where(EQ("name", hostile)).Query()
		require.NoError(t, err)
		assert.NotContains(t, q, "DROP")
		assert.NotContains(t, q, "DELETE")
		assert.NotContains(t, q, hostile)
		assert.Equal(t, []any{hostile}, args)
	}
}

func TestSelectorErrors(t *testing.T) {
	sc := usersSchema(t)

	_, _, err := SelectSchema(dialect.MySQL, sc).Where(EQ("missing", 1)).Query()
	require.Error(t, err)
	assert.True(t, IsUnknownColumn(err))
	var uc *UnknownColumnError
	require.ErrorAs(t, err, &uc)
	assert.Equal(t, "users", uc.Table())
	assert.Equal(t, "missing", uc.Column())

	_, _, err = SelectSchema(dialect.MySQL, sc).OrderBy("missing").Query()
	assert.True(t, IsUnknownColumn(err))

	_, _, err = SelectSchema(dialect.MySQL, sc).Limit(-1).Query()
	require.Error(t, err)
	assert.True(t, IsInvalidLimit(err))

	_, _, err = SelectSchema(dialect.MySQL, sc).Limit(1).Offset(-3).Query()
	require.Error(t, err)
	assert.True(t, IsInvalidLimit(err))
	var il *InvalidLimitError
	require.ErrorAs(t, err, &il)
	assert.Equal(t, "OFFSET", il.Clause())
	assert.Equal(t, -3, il.Value())
}

func TestCountQuery(t *testing.T) {
	sc := usersSchema(t)
	sel := SelectSchema(dialect.MySQL, sc).Where(EQ("name", "John")).OrderBy("id").Limit(3)

	q, args, err := sel.CountQuery()
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(*) FROM `users` WHERE `name` = ?", q)
	assert.Equal(t, []any{"John"}, args)

	q, args, err = sel.CountDistinctQuery("name")
	require.NoError(t, err)
	assert.Equal(t, "SELECT COUNT(DISTINCT `name`) FROM `users` WHERE `name` = ?", q)
	assert.Equal(t, []any{"John"}, args)

	_, _, err = sel.CountDistinctQuery("missing")
	assert.True(t, IsUnknownColumn(err))
}

func TestInserter(t *testing.T) {
	sc := usersSchema(t)

	q, args, err := InsertSchema(dialect.MySQL, sc).
		Set("name", "Ada").
		Set("age", 30).
		Query()
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`name`, `age`) VALUES (?, ?)", q)
	assert.Equal(t, []any{"Ada", 30}, args)

	q, args, err = InsertSchema(dialect.Postgres, sc).
		Set("name", "Ada").
		Returning("id").
		Query()
	require.NoError(t, err)
	assert.Equal(t, `INSERT INTO "users" ("name") VALUES ($1) RETURNING "id"`, q)
	assert.Equal(t, []any{"Ada"}, args)

	_, _, err = InsertSchema(dialect.MySQL, sc).Query()
	require.Error(t, err)

	_, _, err = InsertSchema(dialect.MySQL, sc).Set("missing", 1).Query()
	assert.True(t, IsUnknownColumn(err))
}

func TestUpdater(t *testing.T) {
	sc := usersSchema(t)

	q, args, err := UpdateSchema(dialect.MySQL, sc).
		Set("name", "Ada").
		Set("age", 31).
		Where(EQ("id", int64(7))).
		Query()
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `name` = ?, `age` = ? WHERE `id` = ?", q)
	assert.Equal(t, []any{"Ada", 31, int64(7)}, args)

	// SET parameters keep their order before WHERE parameters.
	q, args, err = UpdateSchema(dialect.Postgres, sc).
		Set("age", 31).
		Where(And(EQ("id", int64(7)), EQ("name", "Ada"))).
		Query()
	require.NoError(t, err)
	assert.Equal(t, `UPDATE "users" SET "age" = $1 WHERE ("id" = $2) AND ("name" = $3)`, q)
	assert.Equal(t, []any{31, int64(7), "Ada"}, args)

	_, _, err = UpdateSchema(dialect.MySQL, sc).Where(EQ("id", 1)).Query()
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "no assignments"))
}

func TestDeleter(t *testing.T) {
	sc := usersSchema(t)

	q, args, err := DeleteSchema(dialect.MySQL, sc).Where(EQ("id", int64(7))).Query()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users` WHERE `id` = ?", q)
	assert.Equal(t, []any{int64(7)}, args)

	q, args, err = DeleteSchema(dialect.MySQL, sc).Query()
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users`", q)
	assert.Empty(t, args)
}
