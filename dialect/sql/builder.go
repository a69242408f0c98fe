package sql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/syssam/maple/dialect"
	"github.com/syssam/maple/schema"
)

// maxRows is the documented MySQL idiom for OFFSET without LIMIT.
const maxRows = "18446744073709551615"

// writer accumulates rendered SQL text together with its bound parameters.
// Every scalar value passes through arg, so the parameter list matches the
// positional placeholders by construction.
type writer struct {
	dialect string
	b       strings.Builder
	args    []any
}

func newWriter(dialect string) *writer {
	return &writer{dialect: dialect}
}

func (w *writer) writeString(s string) {
	w.b.WriteString(s)
}

// ident writes the identifier quoted with the dialect's quote rune.
// Identifiers are always quoted, even ones that look safe.
func (w *writer) ident(name string) {
	q := byte('"')
	if w.dialect == dialect.MySQL {
		q = '`'
	}
	w.b.WriteByte(q)
	w.b.WriteString(name)
	w.b.WriteByte(q)
}

// arg binds the value and writes its placeholder.
func (w *writer) arg(v any) {
	w.args = append(w.args, v)
	if w.dialect == dialect.Postgres {
		w.b.WriteByte('$')
		w.b.WriteString(strconv.Itoa(len(w.args)))
		return
	}
	w.b.WriteByte('?')
}

func (w *writer) String() string { return w.b.String() }

// order is one ORDER BY entry.
type order struct {
	column string
	desc   bool
}

// Selector builds a SELECT statement scoped to one entity schema.
//
// Selector is a value type with an immutable chain: every method returns a
// new Selector and leaves the receiver untouched, so a base query can be
// branched safely:
//
//	base := sql.SelectSchema(dialect.MySQL, users).Where(sql.GT("age", 18))
//	adults := base.OrderBy("name")
//	named := base.Where(sql.EQ("name", "Ada"))
//
// Query renders the accumulated clauses and is idempotent.
type Selector struct {
	dialect string
	schema  *schema.Schema
	pred    *Predicate
	orders  []order
	limit   *int
	offset  *int
}

// SelectSchema returns a Selector for the given dialect and schema with an
// empty clause set.
func SelectSchema(dialect string, sc *schema.Schema) Selector {
	return Selector{dialect: dialect, schema: sc}
}

// clone copies the selector's owned state so chained methods never alias
// the receiver.
func (s Selector) clone() Selector {
	ns := s
	ns.orders = make([]order, len(s.orders))
	copy(ns.orders, s.orders)
	return ns
}

// Schema returns the schema the selector is bound to.
func (s Selector) Schema() *schema.Schema { return s.schema }

// Dialect returns the selector's dialect.
func (s Selector) Dialect() string { return s.dialect }

// P returns the accumulated filter tree, or nil when unfiltered.
func (s Selector) P() *Predicate { return s.pred }

// Where returns a selector whose filter is the conjunction of the current
// filter and p.
func (s Selector) Where(p *Predicate) Selector {
	ns := s.clone()
	if ns.pred != nil {
		p = And(ns.pred, p)
	}
	ns.pred = p
	return ns
}

// WhereNot returns a selector whose filter excludes rows matching p. It is
// shorthand for Where(Not(p)).
func (s Selector) WhereNot(p *Predicate) Selector {
	return s.Where(Not(p))
}

// OrderBy appends an ascending ORDER BY entry for the column. Entries
// accumulate left to right; ordering an already-ordered column updates
// that entry's direction in place instead of appending a duplicate.
func (s Selector) OrderBy(column string) Selector {
	return s.orderBy(column, false)
}

// OrderAsc is an alias for OrderBy.
func (s Selector) OrderAsc(column string) Selector {
	return s.orderBy(column, false)
}

// OrderDesc appends a descending ORDER BY entry for the column, with the
// same accumulation rule as OrderBy.
func (s Selector) OrderDesc(column string) Selector {
	return s.orderBy(column, true)
}

func (s Selector) orderBy(column string, desc bool) Selector {
	ns := s.clone()
	for i := range ns.orders {
		if ns.orders[i].column == column {
			ns.orders[i].desc = desc
			return ns
		}
	}
	ns.orders = append(ns.orders, order{column: column, desc: desc})
	return ns
}

// Limit bounds the result set. The last Limit call on a chain wins.
func (s Selector) Limit(n int) Selector {
	ns := s.clone()
	ns.limit = &n
	return ns
}

// Offset skips the first n rows. The last Offset call on a chain wins.
func (s Selector) Offset(n int) Selector {
	ns := s.clone()
	ns.offset = &n
	return ns
}

// Query renders the selector into SQL text and its bound parameters.
func (s Selector) Query() (string, []any, error) {
	w := newWriter(s.dialect)
	w.writeString("SELECT ")
	for i, c := range s.schema.Columns() {
		if i > 0 {
			w.writeString(", ")
		}
		w.ident(c.Name)
	}
	w.writeString(" FROM ")
	w.ident(s.schema.Table())
	if err := s.renderWhere(w); err != nil {
		return "", nil, err
	}
	if err := s.renderOrders(w); err != nil {
		return "", nil, err
	}
	if err := s.renderLimit(w); err != nil {
		return "", nil, err
	}
	return w.String(), w.args, nil
}

// CountQuery renders a SELECT COUNT(*) statement with the selector's
// filter tree. Ordering and limits do not apply to counts.
func (s Selector) CountQuery() (string, []any, error) {
	return s.countQuery("COUNT(*)")
}

// CountDistinctQuery renders a SELECT COUNT(DISTINCT column) statement
// with the selector's filter tree.
func (s Selector) CountDistinctQuery(column string) (string, []any, error) {
	if !s.schema.Has(column) {
		return "", nil, NewUnknownColumnError(s.schema.Table(), column)
	}
	w := newWriter(s.dialect)
	w.writeString("SELECT COUNT(DISTINCT ")
	w.ident(column)
	w.writeString(") FROM ")
	w.ident(s.schema.Table())
	if err := s.renderWhere(w); err != nil {
		return "", nil, err
	}
	return w.String(), w.args, nil
}

func (s Selector) countQuery(expr string) (string, []any, error) {
	w := newWriter(s.dialect)
	w.writeString("SELECT ")
	w.writeString(expr)
	w.writeString(" FROM ")
	w.ident(s.schema.Table())
	if err := s.renderWhere(w); err != nil {
		return "", nil, err
	}
	return w.String(), w.args, nil
}

func (s Selector) renderWhere(w *writer) error {
	if s.pred == nil {
		return nil
	}
	w.writeString(" WHERE ")
	return renderPredicate(w, s.schema, s.pred)
}

func (s Selector) renderOrders(w *writer) error {
	if len(s.orders) == 0 {
		return nil
	}
	w.writeString(" ORDER BY ")
	for i, o := range s.orders {
		if !s.schema.Has(o.column) {
			return NewUnknownColumnError(s.schema.Table(), o.column)
		}
		if i > 0 {
			w.writeString(", ")
		}
		w.ident(o.column)
		if o.desc {
			w.writeString(" DESC")
		} else {
			w.writeString(" ASC")
		}
	}
	return nil
}

func (s Selector) renderLimit(w *writer) error {
	if s.limit != nil && *s.limit < 0 {
		return NewInvalidLimitError("LIMIT", *s.limit)
	}
	if s.offset != nil && *s.offset < 0 {
		return NewInvalidLimitError("OFFSET", *s.offset)
	}
	switch {
	case s.limit != nil:
		w.writeString(" LIMIT ")
		w.writeString(strconv.Itoa(*s.limit))
		if s.offset != nil {
			w.writeString(" OFFSET ")
			w.writeString(strconv.Itoa(*s.offset))
		}
	case s.offset != nil:
		// MySQL and SQLite accept OFFSET only after a LIMIT clause.
		switch s.dialect {
		case dialect.Postgres:
			w.writeString(" OFFSET ")
		case dialect.SQLite:
			w.writeString(" LIMIT -1 OFFSET ")
		default:
			w.writeString(" LIMIT " + maxRows + " OFFSET ")
		}
		w.writeString(strconv.Itoa(*s.offset))
	}
	return nil
}

// renderPredicate renders one node of the filter tree, validating every
// column reference against the schema.
func renderPredicate(w *writer, sc *schema.Schema, p *Predicate) error {
	switch p.kind {
	case kindAnd, kindOr:
		op := " AND "
		if p.kind == kindOr {
			op = " OR "
		}
		w.writeString("(")
		if err := renderPredicate(w, sc, p.left); err != nil {
			return err
		}
		w.writeString(")")
		w.writeString(op)
		w.writeString("(")
		if err := renderPredicate(w, sc, p.right); err != nil {
			return err
		}
		w.writeString(")")
	case kindNot:
		w.writeString("NOT (")
		if err := renderPredicate(w, sc, p.inner); err != nil {
			return err
		}
		w.writeString(")")
	case kindCmp:
		if !sc.Has(p.column) {
			return NewUnknownColumnError(sc.Table(), p.column)
		}
		switch p.op {
		case OpIsNull, OpNotNull:
			w.ident(p.column)
			w.writeString(" ")
			w.writeString(p.op.String())
		case OpIn, OpNotIn:
			// An empty membership set renders to a constant fragment
			// instead of the syntactically invalid "IN ()".
			if len(p.args) == 0 {
				if p.op == OpIn {
					w.writeString("1 = 0")
				} else {
					w.writeString("1 = 1")
				}
				return nil
			}
			w.ident(p.column)
			w.writeString(" ")
			w.writeString(p.op.String())
			w.writeString(" (")
			for i, v := range p.args {
				if i > 0 {
					w.writeString(", ")
				}
				w.arg(v)
			}
			w.writeString(")")
		default:
			w.ident(p.column)
			w.writeString(" ")
			w.writeString(p.op.String())
			w.writeString(" ")
			w.arg(p.args[0])
		}
	}
	return nil
}

// Inserter builds an INSERT statement scoped to one entity schema.
type Inserter struct {
	dialect   string
	schema    *schema.Schema
	columns   []string
	values    []any
	returning string
}

// InsertSchema returns an Inserter for the given dialect and schema.
func InsertSchema(dialect string, sc *schema.Schema) *Inserter {
	return &Inserter{dialect: dialect, schema: sc}
}

// Set assigns the value to the column.
func (i *Inserter) Set(column string, v any) *Inserter {
	i.columns = append(i.columns, column)
	i.values = append(i.values, v)
	return i
}

// Returning appends a RETURNING clause reporting the given column. Used on
// Postgres to read back generated primary keys.
func (i *Inserter) Returning(column string) *Inserter {
	i.returning = column
	return i
}

// Query renders the inserter into SQL text and its bound parameters.
func (i *Inserter) Query() (string, []any, error) {
	if len(i.columns) == 0 {
		return "", nil, fmt.Errorf("sql: insert into %q with no columns", i.schema.Table())
	}
	w := newWriter(i.dialect)
	w.writeString("INSERT INTO ")
	w.ident(i.schema.Table())
	w.writeString(" (")
	for n, c := range i.columns {
		if !i.schema.Has(c) {
			return "", nil, NewUnknownColumnError(i.schema.Table(), c)
		}
		if n > 0 {
			w.writeString(", ")
		}
		w.ident(c)
	}
	w.writeString(") VALUES (")
	for n, v := range i.values {
		if n > 0 {
			w.writeString(", ")
		}
		w.arg(v)
	}
	w.writeString(")")
	if i.returning != "" {
		if !i.schema.Has(i.returning) {
			return "", nil, NewUnknownColumnError(i.schema.Table(), i.returning)
		}
		w.writeString(" RETURNING ")
		w.ident(i.returning)
	}
	return w.String(), w.args, nil
}

// Updater builds an UPDATE statement scoped to one entity schema.
type Updater struct {
	dialect string
	schema  *schema.Schema
	columns []string
	values  []any
	pred    *Predicate
}

// UpdateSchema returns an Updater for the given dialect and schema.
func UpdateSchema(dialect string, sc *schema.Schema) *Updater {
	return &Updater{dialect: dialect, schema: sc}
}

// Set assigns the value to the column.
func (u *Updater) Set(column string, v any) *Updater {
	u.columns = append(u.columns, column)
	u.values = append(u.values, v)
	return u
}

// Where AND-composes the predicate into the updater's filter.
func (u *Updater) Where(p *Predicate) *Updater {
	if u.pred != nil {
		p = And(u.pred, p)
	}
	u.pred = p
	return u
}

// Query renders the updater into SQL text and its bound parameters.
func (u *Updater) Query() (string, []any, error) {
	if len(u.columns) == 0 {
		return "", nil, fmt.Errorf("sql: update %q with no assignments", u.schema.Table())
	}
	w := newWriter(u.dialect)
	w.writeString("UPDATE ")
	w.ident(u.schema.Table())
	w.writeString(" SET ")
	for n, c := range u.columns {
		if !u.schema.Has(c) {
			return "", nil, NewUnknownColumnError(u.schema.Table(), c)
		}
		if n > 0 {
			w.writeString(", ")
		}
		w.ident(c)
		w.writeString(" = ")
		w.arg(u.values[n])
	}
	if u.pred != nil {
		w.writeString(" WHERE ")
		if err := renderPredicate(w, u.schema, u.pred); err != nil {
			return "", nil, err
		}
	}
	return w.String(), w.args, nil
}

// Deleter builds a DELETE statement scoped to one entity schema.
type Deleter struct {
	dialect string
	schema  *schema.Schema
	pred    *Predicate
}

// DeleteSchema returns a Deleter for the given dialect and schema.
func DeleteSchema(dialect string, sc *schema.Schema) *Deleter {
	return &Deleter{dialect: dialect, schema: sc}
}

// Where AND-composes the predicate into the deleter's filter.
func (d *Deleter) Where(p *Predicate) *Deleter {
	if d.pred != nil {
		p = And(d.pred, p)
	}
	d.pred = p
	return d
}

// Query renders the deleter into SQL text and its bound parameters.
func (d *Deleter) Query() (string, []any, error) {
	w := newWriter(d.dialect)
	w.writeString("DELETE FROM ")
	w.ident(d.schema.Table())
	if d.pred != nil {
		w.writeString(" WHERE ")
		if err := renderPredicate(w, d.schema, d.pred); err != nil {
			return "", nil, err
		}
	}
	return w.String(), w.args, nil
}
