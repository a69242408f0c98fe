package field_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/syssam/maple/schema/field"
)

func TestInt(t *testing.T) {
	fd := field.Int("age").Comment("age in years").Descriptor()
	assert.Equal(t, "age", fd.Name)
	assert.Equal(t, field.TypeInt, fd.Type)
	assert.Equal(t, "age in years", fd.Comment)
	assert.False(t, fd.Nillable)
	assert.False(t, fd.Primary)
	assert.NoError(t, fd.Err)

	fd = field.Int64("id").Primary().Descriptor()
	assert.Equal(t, field.TypeInt64, fd.Type)
	assert.True(t, fd.Primary)

	fd = field.Int("count").Default(10).Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, 10, fd.Default)

	fd = field.Int("count").Default("ten").Descriptor()
	assert.Error(t, fd.Err)
}

func TestString(t *testing.T) {
	fd := field.String("name").Nillable().Descriptor()
	assert.Equal(t, field.TypeString, fd.Type)
	assert.True(t, fd.Nillable)

	fd = field.String("status").Default("active").Descriptor()
	assert.NoError(t, fd.Err)
	assert.Equal(t, "active", fd.Default)

	fd = field.String("status").Default(1).Descriptor()
	assert.Error(t, fd.Err)
}

func TestFloat(t *testing.T) {
	fd := field.Float64("price").Default(9.5).Descriptor()
	assert.Equal(t, field.TypeFloat64, fd.Type)
	assert.NoError(t, fd.Err)

	// Integer literals are assignable to float columns.
	fd = field.Float64("price").Default(10).Descriptor()
	assert.NoError(t, fd.Err)
}

func TestBoolBytesTime(t *testing.T) {
	assert.Equal(t, field.TypeBool, field.Bool("active").Descriptor().Type)
	assert.Equal(t, field.TypeBytes, field.Bytes("data").Descriptor().Type)
	assert.Equal(t, field.TypeTime, field.Time("created_at").Descriptor().Type)

	fd := field.Time("created_at").Default(time.Unix(0, 0)).Descriptor()
	assert.NoError(t, fd.Err)

	fd = field.Bool("active").Default("yes").Descriptor()
	assert.Error(t, fd.Err)
}

func TestDefaultFunc(t *testing.T) {
	fd := field.String("token").
		DefaultFunc(func() any { return uuid.NewString() }).
		Descriptor()
	assert.NoError(t, fd.Err)
	v := fd.DefaultFunc()
	s, ok := v.(string)
	assert.True(t, ok)
	_, err := uuid.Parse(s)
	assert.NoError(t, err)
}

func TestTypeString(t *testing.T) {
	assert.Equal(t, "int", field.TypeInt.String())
	assert.Equal(t, "time", field.TypeTime.String())
	assert.Equal(t, "invalid", field.TypeInvalid.String())
	assert.False(t, field.TypeInvalid.Valid())
	assert.True(t, field.TypeBool.Valid())
	assert.True(t, field.TypeInt64.Numeric())
	assert.False(t, field.TypeString.Numeric())
}
