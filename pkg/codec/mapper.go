package codec

import (
	"fmt"
	"slices"
)

// Mapper connects a record type to the codec. Fields returns the ordered
// descriptor list; Row and Build convert between a record and its values in
// that order.
type Mapper[T any] interface {
	Fields() []Field
	Row(record T) Row
	Build(row Row) (T, error)
}

type funcMapper[T any] struct {
	fields []Field
	row    func(T) Row
	build  func(Row) (T, error)
}

// NewMapper returns a Mapper over a fixed descriptor list
func NewMapper[T any](fields []Field, row func(T) Row, build func(Row) (T, error)) Mapper[T] {
	return &funcMapper[T]{fields: slices.Clone(fields), row: row, build: build}
}

func (m *funcMapper[T]) Fields() []Field          { return m.fields }
func (m *funcMapper[T]) Row(record T) Row         { return m.row(record) }
func (m *funcMapper[T]) Build(row Row) (T, error) { return m.build(row) }

// Table serializes and deserializes sequences of T through a Mapper
type Table[T any] struct {
	codec  *Codec
	mapper Mapper[T]
}

// NewTable creates a Table for mapper configured by opts
func NewTable[T any](mapper Mapper[T], opts ...Option) *Table[T] {
	return &Table[T]{codec: New(opts...), mapper: mapper}
}

// Codec returns the underlying row codec
func (t *Table[T]) Codec() *Codec {
	return t.codec
}

// Serialize encodes records as a text table
func (t *Table[T]) Serialize(records []T) string {
	return t.codec.SerializeRows(slices.Clone(t.mapper.Fields()), t.rows(records))
}

func (t *Table[T]) rows(records []T) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = t.mapper.Row(rec)
	}
	return rows
}

// Deserialize decodes a text table into records. Every row is fully decoded
// before its record is built; on any error no records are returned.
func (t *Table[T]) Deserialize(text string) ([]T, error) {
	fields := slices.Clone(t.mapper.Fields())
	rows, err := t.codec.DeserializeRows(fields, text)
	if err != nil {
		return nil, err
	}
	return t.build(rows)
}

func (t *Table[T]) build(rows []Row) ([]T, error) {
	records := make([]T, 0, len(rows))
	for i, row := range rows {
		rec, err := t.mapper.Build(row)
		if err != nil {
			return nil, fmt.Errorf("codec: line %d: build record: %w", i+1, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
