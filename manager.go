package maple

import (
	"context"
	"fmt"

	"github.com/syssam/maple/dialect"
	"github.com/syssam/maple/dialect/sql"
	"github.com/syssam/maple/schema"
)

// An Op identifies the mutation a hook is invoked for.
type Op uint8

// Mutation operations.
const (
	OpCreate Op = iota
	OpUpdate
	OpDelete
)

// String returns the string representation of the operation.
func (o Op) String() string {
	switch o {
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	}
	return fmt.Sprintf("invalid(%d)", o)
}

// A Hook observes a mutation on a record. Hooks registered with Use run
// before the statement and abort the operation on error; hooks registered
// with UseAfter run once the write has been applied.
type Hook func(ctx context.Context, op Op, r *Record) error

// Manager is the per-schema façade combining the query builder, the
// connection adapter and row materialization into find, save, update and
// delete operations. A manager never retains references to the records it
// returns.
type Manager struct {
	drv    dialect.Driver
	schema *schema.Schema
	hooks  []Hook
	after  []Hook
}

// NewManager returns a manager for the schema, executing against drv.
func NewManager(drv dialect.Driver, sc *schema.Schema) *Manager {
	return &Manager{drv: drv, schema: sc}
}

// Schema returns the schema the manager operates on.
func (m *Manager) Schema() *schema.Schema { return m.schema }

// Use appends hooks invoked before every create, update and delete.
func (m *Manager) Use(hooks ...Hook) {
	m.hooks = append(m.hooks, hooks...)
}

// UseAfter appends hooks invoked after a create, update or delete has
// been applied and the record transitioned. The write is not undone on
// error; the error surfaces to the caller.
func (m *Manager) UseAfter(hooks ...Hook) {
	m.after = append(m.after, hooks...)
}

// Query returns a selector bound to the manager's schema and dialect.
func (m *Manager) Query() sql.Selector {
	return sql.SelectSchema(m.drv.Dialect(), m.schema)
}

// Find executes the selector and returns a lazy, single-pass iterator
// over the matching records. The iterator holds live rows and must be
// closed; it is not restartable without re-executing the query.
func (m *Manager) Find(ctx context.Context, sel sql.Selector) (*Records, error) {
	query, args, err := sel.Query()
	if err != nil {
		return nil, err
	}
	rows := &sql.Rows{}
	if err := m.drv.Query(ctx, query, args, rows); err != nil {
		return nil, NewStorageError("query "+m.schema.Table(), err)
	}
	return &Records{schema: m.schema, rows: rows}, nil
}

// All executes the selector and returns every matching record.
func (m *Manager) All(ctx context.Context, sel sql.Selector) ([]*Record, error) {
	rs, err := m.Find(ctx, sel)
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	var records []*Record
	for rs.Next() {
		records = append(records, rs.Record())
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// First executes the selector limited to one row and returns the first
// matching record, or a RecordNotFoundError when there is none.
func (m *Manager) First(ctx context.Context, sel sql.Selector) (*Record, error) {
	rs, err := m.Find(ctx, sel.Limit(1))
	if err != nil {
		return nil, err
	}
	defer rs.Close()
	if !rs.Next() {
		if err := rs.Err(); err != nil {
			return nil, err
		}
		return nil, NewRecordNotFoundError(m.schema.Table())
	}
	return rs.Record(), nil
}

// Get returns the record whose primary key equals pk, or a
// RecordNotFoundError when the row does not exist.
func (m *Manager) Get(ctx context.Context, pk any) (*Record, error) {
	r, err := m.First(ctx, m.Query().Where(sql.EQ(m.schema.PrimaryKey().Name, pk)))
	if IsRecordNotFound(err) {
		return nil, NewRecordNotFoundErrorWithPK(m.schema.Table(), pk)
	}
	return r, err
}

// Count executes a COUNT(*) with the selector's filter.
func (m *Manager) Count(ctx context.Context, sel sql.Selector) (int64, error) {
	query, args, err := sel.CountQuery()
	if err != nil {
		return 0, err
	}
	return m.scanCount(ctx, query, args)
}

// CountDistinct executes a COUNT(DISTINCT column) with the selector's
// filter.
func (m *Manager) CountDistinct(ctx context.Context, sel sql.Selector, column string) (int64, error) {
	query, args, err := sel.CountDistinctQuery(column)
	if err != nil {
		return 0, err
	}
	return m.scanCount(ctx, query, args)
}

func (m *Manager) scanCount(ctx context.Context, query string, args []any) (int64, error) {
	rows := &sql.Rows{}
	if err := m.drv.Query(ctx, query, args, rows); err != nil {
		return 0, NewStorageError("count "+m.schema.Table(), err)
	}
	defer rows.Close()
	if !rows.Next() {
		err := rows.Err()
		if err == nil {
			err = fmt.Errorf("no count row returned")
		}
		return 0, NewStorageError("count "+m.schema.Table(), err)
	}
	var n int64
	if err := rows.Scan(&n); err != nil {
		return 0, NewStorageError("count "+m.schema.Table(), err)
	}
	return n, nil
}

// Save persists the record. A new record is inserted with its declared
// defaults applied to unset columns; when the primary key is generated by
// the database it is read back into the record. A persisted record with
// no dirty columns is a no-op with zero round trips; a dirty one issues
// an UPDATE restricted to the dirty columns. If the row was deleted
// concurrently, Save fails with a RecordNotFoundError and leaves the
// record's state and dirty set unchanged.
func (m *Manager) Save(ctx context.Context, r *Record) error {
	switch r.State() {
	case StateDeleted:
		return NewStaleRecordError(m.schema.Table())
	case StateNew:
		return m.insert(ctx, r)
	default:
		if !r.Dirty() {
			return nil
		}
		return m.update(ctx, r)
	}
}

func (m *Manager) insert(ctx context.Context, r *Record) error {
	if err := m.runHooks(ctx, OpCreate, r); err != nil {
		return err
	}
	if err := m.applyDefaults(r); err != nil {
		return err
	}
	ins := sql.InsertSchema(m.drv.Dialect(), m.schema)
	for _, c := range m.schema.Columns() {
		if r.has(c.Name) {
			v, _ := r.Get(c.Name)
			ins.Set(c.Name, v)
		}
	}
	pk := m.schema.PrimaryKey()
	generated := len(m.schema.PrimaryKeys()) == 1 && pk.Type.Numeric() && !r.has(pk.Name)
	if generated && m.drv.Dialect() == dialect.Postgres {
		id, err := m.insertReturning(ctx, ins, pk.Name)
		if err != nil {
			return err
		}
		r.setLoaded(pk.Name, id)
	} else {
		query, args, err := ins.Query()
		if err != nil {
			return err
		}
		var res sql.Result
		if err := m.drv.Exec(ctx, query, args, &res); err != nil {
			return NewStorageError("insert "+m.schema.Table(), err)
		}
		if generated {
			id, err := res.LastInsertId()
			if err != nil {
				return NewStorageError("insert "+m.schema.Table(), err)
			}
			r.setLoaded(pk.Name, id)
		}
	}
	r.state = StatePersisted
	r.clearDirty()
	return m.runAfterHooks(ctx, OpCreate, r)
}

func (m *Manager) insertReturning(ctx context.Context, ins *sql.Inserter, pk string) (int64, error) {
	query, args, err := ins.Returning(pk).Query()
	if err != nil {
		return 0, err
	}
	rows := &sql.Rows{}
	if err := m.drv.Query(ctx, query, args, rows); err != nil {
		return 0, NewStorageError("insert "+m.schema.Table(), err)
	}
	defer rows.Close()
	if !rows.Next() {
		err := rows.Err()
		if err == nil {
			err = fmt.Errorf("no id returned")
		}
		return 0, NewStorageError("insert "+m.schema.Table(), err)
	}
	var id int64
	if err := rows.Scan(&id); err != nil {
		return 0, NewStorageError("insert "+m.schema.Table(), err)
	}
	return id, nil
}

// applyDefaults fills unset columns with their declared default values.
func (m *Manager) applyDefaults(r *Record) error {
	for _, c := range m.schema.Columns() {
		if r.has(c.Name) {
			continue
		}
		var v any
		switch {
		case c.DefaultFunc != nil:
			v = c.DefaultFunc()
		case c.Default != nil:
			v = c.Default
		default:
			continue
		}
		cv, err := coerceValue(c, v)
		if err != nil {
			return err
		}
		r.setLoaded(c.Name, cv)
	}
	return nil
}

func (m *Manager) update(ctx context.Context, r *Record) error {
	if err := m.runHooks(ctx, OpUpdate, r); err != nil {
		return err
	}
	upd := sql.UpdateSchema(m.drv.Dialect(), m.schema)
	for _, col := range r.DirtyColumns() {
		v, _ := r.Get(col)
		upd.Set(col, v)
	}
	pred, pk, err := m.pkPredicate(r)
	if err != nil {
		return err
	}
	query, args, err := upd.Where(pred).Query()
	if err != nil {
		return err
	}
	var res sql.Result
	if err := m.drv.Exec(ctx, query, args, &res); err != nil {
		return NewStorageError("update "+m.schema.Table(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("update "+m.schema.Table(), err)
	}
	// The row was deleted by another actor between load and save. The
	// record's state and dirty set stay untouched.
	if affected == 0 {
		return NewRecordNotFoundErrorWithPK(m.schema.Table(), pk)
	}
	r.clearDirty()
	return m.runAfterHooks(ctx, OpUpdate, r)
}

// Delete removes the record's row, keyed by primary-key equality, and
// transitions the record to its terminal deleted state.
func (m *Manager) Delete(ctx context.Context, r *Record) error {
	switch r.State() {
	case StateNew:
		return NewInvalidStateError("delete", StateNew)
	case StateDeleted:
		return NewStaleRecordError(m.schema.Table())
	}
	if err := m.runHooks(ctx, OpDelete, r); err != nil {
		return err
	}
	pred, pk, err := m.pkPredicate(r)
	if err != nil {
		return err
	}
	query, args, err := sql.DeleteSchema(m.drv.Dialect(), m.schema).Where(pred).Query()
	if err != nil {
		return err
	}
	var res sql.Result
	if err := m.drv.Exec(ctx, query, args, &res); err != nil {
		return NewStorageError("delete "+m.schema.Table(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return NewStorageError("delete "+m.schema.Table(), err)
	}
	if affected == 0 {
		return NewRecordNotFoundErrorWithPK(m.schema.Table(), pk)
	}
	r.state = StateDeleted
	return m.runAfterHooks(ctx, OpDelete, r)
}

// Update issues a bulk UPDATE scoped by the selector's filter, assigning
// the given column values to every matching row. Assignments render in
// schema column order. It returns the number of affected rows.
func (m *Manager) Update(ctx context.Context, sel sql.Selector, set map[string]any) (int64, error) {
	upd := sql.UpdateSchema(m.drv.Dialect(), m.schema)
	for _, c := range m.schema.Columns() {
		v, ok := set[c.Name]
		if !ok {
			continue
		}
		cv, err := coerceValue(c, v)
		if err != nil {
			return 0, err
		}
		upd.Set(c.Name, cv)
	}
	for col := range set {
		if !m.schema.Has(col) {
			return 0, sql.NewUnknownColumnError(m.schema.Table(), col)
		}
	}
	if p := sel.P(); p != nil {
		upd.Where(p)
	}
	query, args, err := upd.Query()
	if err != nil {
		return 0, err
	}
	return m.execAffected(ctx, "update", query, args)
}

// DeleteWhere issues a bulk DELETE scoped by the selector's filter and
// returns the number of affected rows.
func (m *Manager) DeleteWhere(ctx context.Context, sel sql.Selector) (int64, error) {
	del := sql.DeleteSchema(m.drv.Dialect(), m.schema)
	if p := sel.P(); p != nil {
		del.Where(p)
	}
	query, args, err := del.Query()
	if err != nil {
		return 0, err
	}
	return m.execAffected(ctx, "delete", query, args)
}

func (m *Manager) execAffected(ctx context.Context, op, query string, args []any) (int64, error) {
	var res sql.Result
	if err := m.drv.Exec(ctx, query, args, &res); err != nil {
		return 0, NewStorageError(op+" "+m.schema.Table(), err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, NewStorageError(op+" "+m.schema.Table(), err)
	}
	return affected, nil
}

// pkPredicate builds the primary-key equality filter for the record and
// returns the (first) key value for error reporting.
func (m *Manager) pkPredicate(r *Record) (*sql.Predicate, any, error) {
	var (
		pred *sql.Predicate
		pk   any
	)
	for i, c := range m.schema.PrimaryKeys() {
		if !r.has(c.Name) {
			return nil, nil, fmt.Errorf("maple: persisted %s record has no %q value", m.schema.Table(), c.Name)
		}
		v, _ := r.Get(c.Name)
		if i == 0 {
			pk = v
			pred = sql.EQ(c.Name, v)
		} else {
			pred = sql.And(pred, sql.EQ(c.Name, v))
		}
	}
	return pred, pk, nil
}

func (m *Manager) runHooks(ctx context.Context, op Op, r *Record) error {
	for _, h := range m.hooks {
		if err := h(ctx, op, r); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) runAfterHooks(ctx context.Context, op Op, r *Record) error {
	for _, h := range m.after {
		if err := h(ctx, op, r); err != nil {
			return err
		}
	}
	return nil
}

// Records is a lazy, finite, single-pass sequence of materialized records
// backed by live result rows. Typical use:
//
//	rs, err := m.Find(ctx, sel)
//	if err != nil { ... }
//	defer rs.Close()
//	for rs.Next() {
//	    r := rs.Record()
//	    ...
//	}
//	if err := rs.Err(); err != nil { ... }
type Records struct {
	schema *schema.Schema
	rows   *sql.Rows
	cur    *Record
	err    error
}

// Next materializes the next row. It returns false when the sequence is
// exhausted or a row failed to materialize; check Err afterwards.
func (rs *Records) Next() bool {
	if rs.err != nil {
		return false
	}
	if !rs.rows.Next() {
		return false
	}
	n := len(rs.schema.Columns())
	row := make([]any, n)
	dest := make([]any, n)
	for i := range row {
		dest[i] = &row[i]
	}
	if err := rs.rows.Scan(dest...); err != nil {
		rs.err = NewStorageError("scan "+rs.schema.Table(), err)
		return false
	}
	rs.cur, rs.err = FromRow(rs.schema, row)
	return rs.err == nil
}

// Record returns the record materialized by the last successful Next.
func (rs *Records) Record() *Record { return rs.cur }

// Err returns the first error observed while iterating.
func (rs *Records) Err() error {
	if rs.err != nil {
		return rs.err
	}
	if err := rs.rows.Err(); err != nil {
		return NewStorageError("query "+rs.schema.Table(), err)
	}
	return nil
}

// Close releases the underlying rows. It is safe to call more than once.
func (rs *Records) Close() error {
	return rs.rows.Close()
}
