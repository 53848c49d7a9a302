package codec

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FieldType is the semantic type tag of a record field
type FieldType uint8

// Supported field types. Every base type has a nullable variant; the zero
// value TypeInvalid and anything past TypeNullableTimestamp is unsupported.
const (
	TypeInvalid FieldType = iota
	TypeText
	TypeInteger
	TypeFloat64
	TypeFloat32
	TypeDecimal
	TypeBoolean
	TypeCharacter
	TypeByte
	TypeTimestamp

	TypeNullableText
	TypeNullableInteger
	TypeNullableFloat64
	TypeNullableFloat32
	TypeNullableDecimal
	TypeNullableBoolean
	TypeNullableCharacter
	TypeNullableByte
	TypeNullableTimestamp
)

const nullableOffset = TypeNullableText - TypeText

var typeNames = [...]string{
	TypeInvalid:           "Invalid",
	TypeText:              "Text",
	TypeInteger:           "Integer",
	TypeFloat64:           "Float64",
	TypeFloat32:           "Float32",
	TypeDecimal:           "Decimal",
	TypeBoolean:           "Boolean",
	TypeCharacter:         "Character",
	TypeByte:              "Byte",
	TypeTimestamp:         "Timestamp",
	TypeNullableText:      "NullableText",
	TypeNullableInteger:   "NullableInteger",
	TypeNullableFloat64:   "NullableFloat64",
	TypeNullableFloat32:   "NullableFloat32",
	TypeNullableDecimal:   "NullableDecimal",
	TypeNullableBoolean:   "NullableBoolean",
	TypeNullableCharacter: "NullableCharacter",
	TypeNullableByte:      "NullableByte",
	TypeNullableTimestamp: "NullableTimestamp",
}

// short names accepted by ParseFieldType in addition to the canonical ones
var typeAliases = map[string]FieldType{
	"string":   TypeText,
	"int":      TypeInteger,
	"double":   TypeFloat64,
	"float":    TypeFloat32,
	"bool":     TypeBoolean,
	"char":     TypeCharacter,
	"datetime": TypeTimestamp,
}

// Valid reports whether t is one of the supported field types
func (t FieldType) Valid() bool {
	return t >= TypeText && t <= TypeNullableTimestamp
}

// Nullable reports whether t is the nullable variant of a base type
func (t FieldType) Nullable() bool {
	return t >= TypeNullableText && t <= TypeNullableTimestamp
}

// Base returns the non-nullable type underlying t
func (t FieldType) Base() FieldType {
	if t.Nullable() {
		return t - nullableOffset
	}
	return t
}

// AsNullable returns the nullable variant of t
func (t FieldType) AsNullable() FieldType {
	if !t.Valid() || t.Nullable() {
		return t
	}
	return t + nullableOffset
}

func (t FieldType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return fmt.Sprintf("FieldType(%d)", uint8(t))
}

// MarshalText implements encoding.TextMarshaler
func (t FieldType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &UnsupportedFieldTypeError{Type: t}
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *FieldType) UnmarshalText(text []byte) error {
	parsed, err := ParseFieldType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseFieldType resolves a type name such as "Integer", "nullable_integer"
// or "int?" to its FieldType. Matching is case-insensitive.
func ParseFieldType(name string) (FieldType, error) {
	s := strings.ToLower(strings.TrimSpace(name))

	nullable := false
	switch {
	case strings.HasSuffix(s, "?"):
		nullable, s = true, strings.TrimSuffix(s, "?")
	case strings.HasPrefix(s, "nullable_"):
		nullable, s = true, strings.TrimPrefix(s, "nullable_")
	case strings.HasPrefix(s, "nullable") && len(s) > len("nullable"):
		nullable, s = true, strings.TrimPrefix(s, "nullable")
	}

	base, ok := typeAliases[s]
	if !ok {
		for t := TypeText; t <= TypeTimestamp; t++ {
			if strings.EqualFold(typeNames[t], s) {
				base, ok = t, true
				break
			}
		}
	}
	if !ok {
		return TypeInvalid, fmt.Errorf("%w: unknown type name %q", ErrUnsupportedFieldType, name)
	}
	if nullable {
		return base.AsNullable(), nil
	}
	return base, nil
}

// Zero returns the default value a non-nullable field of type t resolves to
// when its text cannot be parsed. Text and invalid types have no default.
func (t FieldType) Zero() any {
	switch t.Base() {
	case TypeInteger:
		return 0
	case TypeFloat64:
		return float64(0)
	case TypeFloat32:
		return float32(0)
	case TypeDecimal:
		return decimal.Zero
	case TypeBoolean:
		return false
	case TypeCharacter:
		return rune(0)
	case TypeByte:
		return byte(0)
	case TypeTimestamp:
		return time.Time{}
	default:
		return nil
	}
}

// Field describes one record field: its name, semantic type and whether it is
// excluded from the text form.
type Field struct {
	Name   string
	Type   FieldType
	Ignore bool
}

// ActiveCount returns the number of fields that are not ignored, which is the
// number of texts every line of a table must carry.
func ActiveCount(fields []Field) int {
	n := 0
	for _, f := range fields {
		if !f.Ignore {
			n++
		}
	}
	return n
}
