package field

import (
	"fmt"
	"time"
)

// A Type identifies the storage type of a column.
type Type uint8

// Column storage types.
const (
	TypeInvalid Type = iota
	TypeInt
	TypeInt64
	TypeFloat64
	TypeString
	TypeBytes
	TypeBool
	TypeTime
	endTypes
)

var typeNames = [...]string{
	TypeInvalid: "invalid",
	TypeInt:     "int",
	TypeInt64:   "int64",
	TypeFloat64: "float64",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeBool:    "bool",
	TypeTime:    "time",
}

// String returns the string representation of the type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return fmt.Sprintf("invalid(%d)", t)
}

// Valid reports if the given type is a valid column type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// Numeric reports if the given type is an integer or float type.
func (t Type) Numeric() bool {
	return t == TypeInt || t == TypeInt64 || t == TypeFloat64
}

// A Descriptor for a single mapped column. Descriptors are built with the
// fluent constructors in this package and are immutable once the owning
// schema is constructed.
type Descriptor struct {
	Name        string     // column name in the table.
	Type        Type       // storage type.
	Nillable    bool       // column accepts NULL.
	Primary     bool       // column is part of the primary key.
	Default     any        // literal default applied on insert.
	DefaultFunc func() any // runtime default applied on insert.
	Comment     string     // optional column comment.
	Err         error      // first error observed while building.
}

// A Field supplies a column descriptor to a schema. All builders in this
// package implement it.
type Field interface {
	Descriptor() *Descriptor
}

// builder is the shared fluent builder behind the typed constructors.
type builder struct {
	desc *Descriptor
}

// Int returns a new integer column with the given name.
func Int(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeInt}}
}

// Int64 returns a new 64-bit integer column with the given name.
func Int64(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeInt64}}
}

// Float64 returns a new float column with the given name.
func Float64(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeFloat64}}
}

// String returns a new text column with the given name.
func String(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeString}}
}

// Bytes returns a new blob column with the given name.
func Bytes(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeBytes}}
}

// Bool returns a new boolean column with the given name.
func Bool(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeBool}}
}

// Time returns a new datetime column with the given name.
func Time(name string) *builder {
	return &builder{desc: &Descriptor{Name: name, Type: TypeTime}}
}

// Primary marks the column as (part of) the primary key.
// Primary-key columns are implicitly non-nillable.
func (b *builder) Primary() *builder {
	b.desc.Primary = true
	return b
}

// Nillable makes the column accept NULL values.
func (b *builder) Nillable() *builder {
	b.desc.Nillable = true
	return b
}

// Default sets the literal default value applied to unset columns on insert.
func (b *builder) Default(v any) *builder {
	if b.desc.Err == nil {
		if err := checkDefault(b.desc.Type, v); err != nil {
			b.desc.Err = err
		}
	}
	b.desc.Default = v
	return b
}

// DefaultFunc sets a function invoked at insert time to produce the
// default value for unset columns.
func (b *builder) DefaultFunc(fn func() any) *builder {
	b.desc.DefaultFunc = fn
	return b
}

// Comment sets the column comment.
func (b *builder) Comment(c string) *builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the Field interface.
func (b *builder) Descriptor() *Descriptor {
	return b.desc
}

// checkDefault verifies the literal default is assignable to the column type.
func checkDefault(t Type, v any) error {
	ok := false
	switch v.(type) {
	case nil:
		ok = true
	case int, int32, int64:
		ok = t == TypeInt || t == TypeInt64 || t == TypeFloat64
	case float32, float64:
		ok = t == TypeFloat64
	case string:
		ok = t == TypeString
	case []byte:
		ok = t == TypeBytes
	case bool:
		ok = t == TypeBool
	case time.Time:
		ok = t == TypeTime
	}
	if !ok {
		return fmt.Errorf("field: default value %T is not assignable to a %s column", v, t)
	}
	return nil
}
