package codec

import (
	"fmt"
	"os"
	"slices"
)

// SerializeRowsToFile writes the text table of rows to path
func (c *Codec) SerializeRowsToFile(path string, fields []Field, rows []Row) error {
	if err := os.WriteFile(path, []byte(c.SerializeRows(fields, rows)), 0644); err != nil {
		return fmt.Errorf("failed to write table file: %w", err)
	}
	return nil
}

// DeserializeRowsFromFile reads the whole file at path and decodes it
func (c *Codec) DeserializeRowsFromFile(path string, fields []Field) ([]Row, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table file: %w", err)
	}
	return c.DeserializeRows(fields, string(data))
}

// SerializeToFile writes the text table of records to path
func (t *Table[T]) SerializeToFile(path string, records []T) error {
	return t.codec.SerializeRowsToFile(path, slices.Clone(t.mapper.Fields()), t.rows(records))
}

// DeserializeFromFile reads the whole file at path and decodes its records
func (t *Table[T]) DeserializeFromFile(path string) ([]T, error) {
	rows, err := t.codec.DeserializeRowsFromFile(path, slices.Clone(t.mapper.Fields()))
	if err != nil {
		return nil, err
	}
	return t.build(rows)
}
