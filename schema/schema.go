// Package schema defines entity schemas: the static mapping from a logical
// record type to a physical table and its columns.
//
// A schema is built once from a table name and an ordered set of column
// descriptors, validated on construction, and shared read-only afterwards:
//
//	users, err := schema.New("users",
//	    field.Int64("id").Primary(),
//	    field.String("name"),
//	    field.Int("age").Nillable(),
//	)
//
// Schemas are usually registered in the process-wide registry so every
// caller observes the same immutable value, see Register.
package schema

import (
	"reflect"
	"regexp"

	"github.com/syssam/maple/schema/field"
)

// validIdentifierRe validates table and column names (alphanumeric and
// underscores, leading letter or underscore).
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// isValidIdentifier checks if the string is a valid SQL identifier.
func isValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}

// Field is the constraint satisfied by the fluent column builders in the
// schema/field package.
type Field = field.Field

// Schema describes one mapped entity type: its table, the ordered column
// set, and the primary key. Schemas are immutable after construction and
// safe to share across goroutines.
type Schema struct {
	table   string
	columns []*field.Descriptor
	index   map[string]*field.Descriptor
	pk      []*field.Descriptor
}

// New builds and validates a schema from a table name and column fields.
func New(table string, fields ...field.Field) (*Schema, error) {
	if table == "" {
		return nil, NewSchemaError("", "empty table name")
	}
	if !isValidIdentifier(table) {
		return nil, NewSchemaErrorf(table, "invalid table name %q", table)
	}
	if len(fields) == 0 {
		return nil, NewSchemaError(table, "no columns declared")
	}
	s := &Schema{
		table:   table,
		columns: make([]*field.Descriptor, 0, len(fields)),
		index:   make(map[string]*field.Descriptor, len(fields)),
	}
	for _, f := range fields {
		c := f.Descriptor()
		switch {
		case c.Err != nil:
			return nil, NewSchemaError(table, c.Err.Error())
		case c.Name == "":
			return nil, NewSchemaError(table, "column with empty name")
		case !c.Type.Valid():
			return nil, NewSchemaErrorf(table, "column %q has invalid type", c.Name)
		case !isValidIdentifier(c.Name):
			return nil, NewSchemaErrorf(table, "invalid column name %q", c.Name)
		}
		if _, ok := s.index[c.Name]; ok {
			return nil, NewSchemaErrorf(table, "duplicate column %q", c.Name)
		}
		if c.Primary && c.Nillable {
			return nil, NewSchemaErrorf(table, "primary-key column %q cannot be nillable", c.Name)
		}
		s.columns = append(s.columns, c)
		s.index[c.Name] = c
		if c.Primary {
			s.pk = append(s.pk, c)
		}
	}
	if len(s.pk) == 0 {
		return nil, NewSchemaError(table, "no primary-key column declared")
	}
	return s, nil
}

// Table returns the table name.
func (s *Schema) Table() string { return s.table }

// Columns returns the columns in declaration order. The returned slice
// must not be modified.
func (s *Schema) Columns() []*field.Descriptor { return s.columns }

// ColumnNames returns the column names in declaration order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the descriptor of the named column, or nil if the column
// is not declared in the schema.
func (s *Schema) Column(name string) *field.Descriptor {
	return s.index[name]
}

// Has reports if the named column is declared in the schema.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// PrimaryKey returns the first primary-key column.
func (s *Schema) PrimaryKey() *field.Descriptor { return s.pk[0] }

// PrimaryKeys returns all primary-key columns in declaration order.
func (s *Schema) PrimaryKeys() []*field.Descriptor { return s.pk }

// equal reports if the other schema declares an identical column set.
func (s *Schema) equal(other *Schema) bool {
	if s.table != other.table || len(s.columns) != len(other.columns) {
		return false
	}
	for i, c := range s.columns {
		o := other.columns[i]
		if c.Name != o.Name || c.Type != o.Type || c.Nillable != o.Nillable || c.Primary != o.Primary {
			return false
		}
		if !reflect.DeepEqual(c.Default, o.Default) {
			return false
		}
		// Functions have no usable equality; any change in presence is a
		// conflict, two distinct functions are assumed identical.
		if (c.DefaultFunc == nil) != (o.DefaultFunc == nil) {
			return false
		}
	}
	return true
}
