// Package codec maps typed records to and from a delimited text table.
//
// The codec package is the core of csvmap. It converts a sequence of records
// into delimiter-joined lines and converts such lines back into records,
// coercing every field to its semantic type.
//
// # Table Format
//
// A table is plain text with one record per line:
//
//	<field>;<field>;...;<field>\n<field>;<field>;...;<field>
//
// Properties:
//   - Separator: configurable, ";" by default (WithSeparator)
//   - Newline: configurable, the platform convention by default (WithNewline)
//   - Lines are joined, not terminated: there is no trailing newline
//   - Absent values are written as NULL
//   - No quoting or escaping: a value containing the separator or the
//     newline breaks the line structure
//
// # Field Types
//
// Each field is described by a Field: a name, a FieldType and an Ignore flag.
// Ignored fields are neither written nor read. The supported types and their
// Go values are:
//
//	Text       string           Decimal    decimal.Decimal
//	Integer    int (32-bit)     Boolean    bool ("True"/"False")
//	Float64    float64          Character  rune
//	Float32    float32          Byte       byte
//	Timestamp  time.Time (RFC 3339)
//
// and a nullable variant of each (TypeNullableInteger, ...). A nil value is
// the absent marker.
//
// # Decoding Rules
//
// Decoding is deliberately lenient per field and strict per line:
//   - A field whose text does not parse resolves to the zero value of its
//     type, or to nil for nullable types. This is not reported as an error.
//   - A Text field decodes "" and any other case of "null" to nil. The
//     upper-case NULL is kept as text, so a nil Text value encodes to NULL
//     but does not round-trip.
//   - A line whose field count differs from the number of non-ignored fields
//     fails the whole call with *FieldCountMismatchError.
//   - A non-ignored field with an unsupported type fails the whole call with
//     *UnsupportedFieldTypeError.
//
// Use WithFallbackHook to observe lenient fallbacks without changing them.
//
// # Usage
//
// Rows can be handled directly:
//
//	fields := []codec.Field{
//	    {Name: "ID", Type: codec.TypeInteger},
//	    {Name: "Name", Type: codec.TypeText},
//	}
//	c := codec.New(codec.WithSeparator(","))
//
//	text := c.SerializeRows(fields, []codec.Row{{7, "Ada"}}) // "7,Ada"
//
//	rows, err := c.DeserializeRows(fields, text)
//	if err != nil {
//	    return err
//	}
//
// or through a Mapper for a concrete record type:
//
//	table := codec.NewTable[Person](mapper)
//	people, err := table.Deserialize(text)
//
// The schema package provides Mappers built from struct definitions and from
// declarative schema definitions.
//
// # Thread Safety
//
// Codec and Table values are immutable after construction and safe for
// concurrent use. Each call works on its own inputs and holds no state
// between calls.
package codec
