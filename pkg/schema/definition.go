// Package schema provides field descriptor lists for the codec package: from
// struct types via reflection, and from declarative definitions loaded from
// configuration.
package schema

import (
	"errors"
	"fmt"

	"github.com/ssargent/csvmap/pkg/codec"
)

// FieldSpec declares one field of a Definition
type FieldSpec struct {
	Name   string          `yaml:"name" json:"name"`
	Type   codec.FieldType `yaml:"type" json:"type"`
	Ignore bool            `yaml:"ignore,omitempty" json:"ignore,omitempty"`
}

// Definition is a named, ordered list of fields declared outside of Go code
type Definition struct {
	Name   string      `yaml:"name" json:"name"`
	Fields []FieldSpec `yaml:"fields" json:"fields"`
}

// Validate checks that the definition has a name and uniquely named fields
// of supported types
func (d Definition) Validate() error {
	if d.Name == "" {
		return errors.New("schema: definition name is required")
	}
	if len(d.Fields) == 0 {
		return fmt.Errorf("schema %q: at least one field is required", d.Name)
	}
	seen := make(map[string]bool, len(d.Fields))
	for i, f := range d.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %q: field %d has no name", d.Name, i+1)
		}
		if seen[f.Name] {
			return fmt.Errorf("schema %q: duplicate field %q", d.Name, f.Name)
		}
		seen[f.Name] = true
		if !f.Type.Valid() {
			return fmt.Errorf("schema %q: field %q: %w", d.Name, f.Name, &codec.UnsupportedFieldTypeError{Field: f.Name, Type: f.Type})
		}
	}
	return nil
}

// Descriptors returns the codec descriptor list of the definition
func (d Definition) Descriptors() []codec.Field {
	fields := make([]codec.Field, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = codec.Field{Name: f.Name, Type: f.Type, Ignore: f.Ignore}
	}
	return fields
}

// Record is a dynamically typed record keyed by field name
type Record map[string]any

// RecordMapper is a codec.Mapper from a Definition to Records
type RecordMapper struct {
	def    Definition
	fields []codec.Field
}

// NewRecordMapper returns a Mapper producing Records for def
func NewRecordMapper(def Definition) *RecordMapper {
	return &RecordMapper{def: def, fields: def.Descriptors()}
}

// Definition returns the definition the mapper was built from
func (m *RecordMapper) Definition() Definition {
	return m.def
}

// Fields returns the descriptor list
func (m *RecordMapper) Fields() []codec.Field {
	return m.fields
}

// Row extracts the values of rec in descriptor order. Missing keys are nil.
func (m *RecordMapper) Row(rec Record) codec.Row {
	row := make(codec.Row, len(m.fields))
	for i, f := range m.fields {
		if f.Ignore {
			continue
		}
		row[i] = rec[f.Name]
	}
	return row
}

// Build returns a Record holding every non-ignored field of row, nil values
// included
func (m *RecordMapper) Build(row codec.Row) (Record, error) {
	rec := make(Record, len(m.fields))
	for i, f := range m.fields {
		if f.Ignore {
			continue
		}
		var v any
		if i < len(row) {
			v = row[i]
		}
		rec[f.Name] = v
	}
	return rec, nil
}
