package codec

import (
	"errors"
	"fmt"
)

var (
	// ErrFieldCountMismatch is matched by every *FieldCountMismatchError
	ErrFieldCountMismatch = errors.New("codec: field count mismatch")
	// ErrUnsupportedFieldType is matched by every *UnsupportedFieldTypeError
	ErrUnsupportedFieldType = errors.New("codec: unsupported field type")
)

// FieldCountMismatchError is returned when a line does not split into exactly
// one text per non-ignored field. It aborts the whole deserialization.
type FieldCountMismatchError struct {
	Line     int // 1-based line number, 0 when decoding a single record
	Expected int
	Actual   int
}

func (e *FieldCountMismatchError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("codec: line %d: wrong field count: record has %d fields, but line has %d", e.Line, e.Expected, e.Actual)
	}
	return fmt.Sprintf("codec: wrong field count: record has %d fields, but line has %d", e.Expected, e.Actual)
}

// Unwrap returns ErrFieldCountMismatch so the error participates in errors.Is
func (e *FieldCountMismatchError) Unwrap() error {
	return ErrFieldCountMismatch
}

// UnsupportedFieldTypeError is returned when a field descriptor carries a type
// tag outside the supported set.
type UnsupportedFieldTypeError struct {
	Field string
	Type  FieldType
}

func (e *UnsupportedFieldTypeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("codec: field %q: type %s is not supported", e.Field, e.Type)
	}
	return fmt.Sprintf("codec: type %s is not supported", e.Type)
}

// Unwrap returns ErrUnsupportedFieldType so the error participates in errors.Is
func (e *UnsupportedFieldTypeError) Unwrap() error {
	return ErrUnsupportedFieldType
}
