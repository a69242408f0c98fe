package maple

import (
	"math"
	"strconv"
	"time"

	"github.com/syssam/maple/schema"
	"github.com/syssam/maple/schema/field"
)

// timeLayouts are the textual timestamp forms accepted by coercion, in
// the order they are tried.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FromRow materializes a raw result row into a record bound to the given
// schema. The row must carry exactly one value per schema column, in
// declaration order; each value is coerced to the declared column type.
// The returned record is persisted with an empty dirty set.
func FromRow(sc *schema.Schema, row []any) (*Record, error) {
	cols := sc.Columns()
	if len(row) != len(cols) {
		return nil, NewRowShapeError(sc.Table(), len(cols), len(row))
	}
	r := NewRecord(sc)
	for i, c := range cols {
		v, err := coerceValue(c, row[i])
		if err != nil {
			return nil, err
		}
		r.values[c.Name] = v
	}
	r.state = StatePersisted
	return r, nil
}

// coerceValue converts a raw driver or caller value into the canonical Go
// representation of the column type: int64, float64, string, []byte, bool
// or time.Time. Coercion is attempted before failing; a value that cannot
// be represented fails with a TypeCoercionError.
func coerceValue(c *field.Descriptor, v any) (any, error) {
	if v == nil {
		if !c.Nillable {
			return nil, NewTypeCoercionError(c.Name, nil, c.Type)
		}
		return nil, nil
	}
	switch c.Type {
	case field.TypeInt, field.TypeInt64:
		return coerceInt(c, v)
	case field.TypeFloat64:
		return coerceFloat(c, v)
	case field.TypeString:
		return coerceString(c, v)
	case field.TypeBytes:
		return coerceBytes(c, v)
	case field.TypeBool:
		return coerceBool(c, v)
	case field.TypeTime:
		return coerceTime(c, v)
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func coerceInt(c *field.Descriptor, v any) (any, error) {
	switch v := v.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int8:
		return int64(v), nil
	case int16:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, NewTypeCoercionError(c.Name, v, c.Type)
		}
		return int64(v), nil
	case float64:
		if v == float64(int64(v)) {
			return int64(v), nil
		}
	case []byte:
		if n, err := strconv.ParseInt(string(v), 10, 64); err == nil {
			return n, nil
		}
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n, nil
		}
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func coerceFloat(c *field.Descriptor, v any) (any, error) {
	switch v := v.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	case []byte:
		if f, err := strconv.ParseFloat(string(v), 64); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f, nil
		}
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func coerceString(c *field.Descriptor, v any) (any, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func coerceBytes(c *field.Descriptor, v any) (any, error) {
	switch v := v.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func coerceBool(c *field.Descriptor, v any) (any, error) {
	switch v := v.(type) {
	case bool:
		return v, nil
	case int64:
		switch v {
		case 0:
			return false, nil
		case 1:
			return true, nil
		}
	case []byte:
		if b, err := strconv.ParseBool(string(v)); err == nil {
			return b, nil
		}
	case string:
		if b, err := strconv.ParseBool(v); err == nil {
			return b, nil
		}
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func coerceTime(c *field.Descriptor, v any) (any, error) {
	switch v := v.(type) {
	case time.Time:
		return v, nil
	case []byte:
		return parseTime(c, string(v))
	case string:
		return parseTime(c, v)
	}
	return nil, NewTypeCoercionError(c.Name, v, c.Type)
}

func parseTime(c *field.Descriptor, s string) (any, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, NewTypeCoercionError(c.Name, s, c.Type)
}
