package schema

import (
	"gopkg.in/yaml.v3"

	"github.com/syssam/maple/schema/field"
)

// yamlSchema is the YAML document shape accepted by FromYAML:
//
//	table: users
//	columns:
//	  - name: id
//	    type: int64
//	    primary: true
//	  - name: name
//	    type: string
//	    default: unknown
//	  - name: age
//	    type: int
//	    nillable: true
type yamlSchema struct {
	Table   string       `yaml:"table"`
	Columns []yamlColumn `yaml:"columns"`
}

type yamlColumn struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nillable bool   `yaml:"nillable"`
	Primary  bool   `yaml:"primary"`
	Default  any    `yaml:"default"`
	Comment  string `yaml:"comment"`
}

var yamlTypes = map[string]field.Type{
	"int":     field.TypeInt,
	"int64":   field.TypeInt64,
	"float64": field.TypeFloat64,
	"string":  field.TypeString,
	"bytes":   field.TypeBytes,
	"bool":    field.TypeBool,
	"time":    field.TypeTime,
}

// descField adapts a raw descriptor to the Field interface.
type descField struct {
	desc *field.Descriptor
}

func (f descField) Descriptor() *field.Descriptor { return f.desc }

// FromYAML builds a schema from a declarative YAML document. The document
// is validated with the same rules as New.
func FromYAML(data []byte) (*Schema, error) {
	doc, err := decodeYAML(data)
	if err != nil {
		return nil, err
	}
	fields, err := doc.fields()
	if err != nil {
		return nil, err
	}
	return New(doc.Table, fields...)
}

// RegisterYAML parses a declarative YAML document and registers the result
// in the process-wide registry, with Register's idempotency semantics.
func RegisterYAML(data []byte) (*Schema, error) {
	doc, err := decodeYAML(data)
	if err != nil {
		return nil, err
	}
	fields, err := doc.fields()
	if err != nil {
		return nil, err
	}
	return Register(doc.Table, fields...)
}

func decodeYAML(data []byte) (yamlSchema, error) {
	doc := yamlSchema{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return doc, NewSchemaErrorf(doc.Table, "invalid yaml: %v", err)
	}
	return doc, nil
}

func (doc yamlSchema) fields() ([]Field, error) {
	fields := make([]Field, 0, len(doc.Columns))
	for _, c := range doc.Columns {
		t, ok := yamlTypes[c.Type]
		if !ok {
			return nil, NewSchemaErrorf(doc.Table, "column %q has unknown type %q", c.Name, c.Type)
		}
		fields = append(fields, descField{desc: &field.Descriptor{
			Name:     c.Name,
			Type:     t,
			Nillable: c.Nillable,
			Primary:  c.Primary,
			Default:  c.Default,
			Comment:  c.Comment,
		}})
	}
	return fields, nil
}
