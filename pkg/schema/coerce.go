package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
	"github.com/ssargent/csvmap/pkg/codec"
)

// Coerce converts a loosely typed value, typically decoded from JSON, into
// the Go value the codec expects for a field of type t. Unlike
// codec.DecodeField it is strict: a value that cannot be converted is an
// error. nil stays nil for every type.
func Coerce(v any, t codec.FieldType) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch t.Base() {
	case codec.TypeText:
		return cast.ToStringE(v)

	case codec.TypeInteger:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		if i < math.MinInt32 || i > math.MaxInt32 {
			return nil, fmt.Errorf("integer %d out of range", i)
		}
		return int(i), nil

	case codec.TypeFloat64:
		return cast.ToFloat64E(v)

	case codec.TypeFloat32:
		return cast.ToFloat32E(v)

	case codec.TypeDecimal:
		switch x := v.(type) {
		case decimal.Decimal:
			return x, nil
		case float64:
			return decimal.NewFromFloat(x), nil
		case json.Number:
			return decimal.NewFromString(x.String())
		}
		s, err := cast.ToStringE(v)
		if err != nil {
			return nil, err
		}
		return decimal.NewFromString(s)

	case codec.TypeBoolean:
		return cast.ToBoolE(v)

	case codec.TypeCharacter:
		if s, ok := v.(string); ok {
			if utf8.RuneCountInString(s) != 1 {
				return nil, fmt.Errorf("character %q must be exactly one rune", s)
			}
			r, _ := utf8.DecodeRuneInString(s)
			return r, nil
		}
		return cast.ToInt32E(v)

	case codec.TypeByte:
		i, err := cast.ToInt64E(v)
		if err != nil {
			return nil, err
		}
		if i < 0 || i > math.MaxUint8 {
			return nil, fmt.Errorf("byte %d out of range", i)
		}
		return byte(i), nil

	case codec.TypeTimestamp:
		return cast.ToTimeE(v)
	}

	return nil, &codec.UnsupportedFieldTypeError{Type: t}
}

// CoerceRecord returns a copy of rec with every non-ignored field coerced.
// rec itself is not modified.
func (m *RecordMapper) CoerceRecord(rec Record) (Record, error) {
	out := maps.Clone(rec)
	if out == nil {
		out = Record{}
	}
	for _, f := range m.fields {
		if f.Ignore {
			continue
		}
		v, err := Coerce(rec[f.Name], f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		out[f.Name] = v
	}
	return out, nil
}

// JSONValue converts a decoded field value into a form that encodes
// naturally as JSON: characters become one-rune strings and decimals keep
// their exact text.
func JSONValue(v any, t codec.FieldType) any {
	if v == nil {
		return nil
	}
	switch t.Base() {
	case codec.TypeCharacter:
		if r, ok := v.(rune); ok {
			if r == 0 {
				return ""
			}
			return string(r)
		}
	case codec.TypeDecimal:
		if d, ok := v.(decimal.Decimal); ok {
			return json.Number(d.String())
		}
	}
	return v
}

// JSONRecord applies JSONValue to every non-ignored field of rec
func (m *RecordMapper) JSONRecord(rec Record) map[string]any {
	out := make(map[string]any, len(rec))
	for _, f := range m.fields {
		if f.Ignore {
			continue
		}
		out[f.Name] = JSONValue(rec[f.Name], f.Type)
	}
	return out
}
