package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	// NullText is written for absent values
	NullText = "NULL"

	// text fields decode this, in any case except the NullText spelling,
	// or an empty string to nil
	nullLiteral = "null"
)

// timestampLayouts are tried in order when decoding Timestamp fields
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// EncodeField returns the text form of value for a field of type t.
// A nil value encodes to NullText. EncodeField never fails: values whose Go
// type does not match t, and fields of unsupported types, fall back to
// fmt.Sprint.
func EncodeField(value any, t FieldType) string {
	if value == nil {
		return NullText
	}

	switch t.Base() {
	case TypeText:
		if s, ok := value.(string); ok {
			return s
		}
	case TypeInteger:
		if i, ok := toInt64(value); ok {
			return strconv.FormatInt(i, 10)
		}
	case TypeFloat64:
		if f, ok := value.(float64); ok {
			return formatFloat(f, 64)
		}
	case TypeFloat32:
		if f, ok := value.(float32); ok {
			return formatFloat(float64(f), 32)
		}
	case TypeDecimal:
		if d, ok := value.(decimal.Decimal); ok {
			return d.String()
		}
	case TypeBoolean:
		if b, ok := value.(bool); ok {
			if b {
				return "True"
			}
			return "False"
		}
	case TypeCharacter:
		if r, ok := value.(rune); ok {
			return string(r)
		}
	case TypeByte:
		if b, ok := value.(byte); ok {
			return strconv.FormatUint(uint64(b), 10)
		}
	case TypeTimestamp:
		if ts, ok := value.(time.Time); ok {
			return ts.Format(time.RFC3339Nano)
		}
	}

	return fmt.Sprint(value)
}

// DecodeField parses text into a value for a field of type t.
//
// Parse failures are not errors: non-nullable types resolve to t.Zero() and
// nullable types to nil. Text fields decode "" and "null" in any case to
// nil, except the upper-case NullText sentinel which is kept as text.
// The only error is *UnsupportedFieldTypeError.
func DecodeField(text string, t FieldType) (any, error) {
	v, _, err := decodeField(text, t)
	return v, err
}

// decodeField also reports whether the value is a fallback for unparsable text
func decodeField(text string, t FieldType) (any, bool, error) {
	if !t.Valid() {
		return nil, false, &UnsupportedFieldTypeError{Type: t}
	}

	base := t.Base()
	if base == TypeText {
		if isNullText(text) {
			return nil, false, nil
		}
		return text, false, nil
	}

	if v, ok := parseValue(text, base); ok {
		return v, false, nil
	}
	if t.Nullable() {
		return nil, true, nil
	}
	return base.Zero(), true, nil
}

// isNullText reports whether a Text field's text stands for nil. NullText
// itself is kept verbatim, so a nil Text value does not round-trip.
func isNullText(text string) bool {
	if text == "" {
		return true
	}
	return text != NullText && strings.EqualFold(text, nullLiteral)
}

func parseValue(text string, base FieldType) (any, bool) {
	switch base {
	case TypeInteger:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 32)
		if err != nil {
			return nil, false
		}
		return int(i), true

	case TypeFloat64:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return nil, false
		}
		return f, true

	case TypeFloat32:
		f, err := strconv.ParseFloat(strings.TrimSpace(text), 32)
		if err != nil {
			return nil, false
		}
		return float32(f), true

	case TypeDecimal:
		d, err := decimal.NewFromString(strings.TrimSpace(text))
		if err != nil {
			return nil, false
		}
		return d, true

	case TypeBoolean:
		s := strings.TrimSpace(text)
		switch {
		case strings.EqualFold(s, "true"):
			return true, true
		case strings.EqualFold(s, "false"):
			return false, true
		}
		return nil, false

	case TypeCharacter:
		if utf8.RuneCountInString(text) != 1 {
			return nil, false
		}
		r, size := utf8.DecodeRuneInString(text)
		if r == utf8.RuneError && size == 1 {
			return nil, false
		}
		return r, true

	case TypeByte:
		i, err := strconv.ParseInt(strings.TrimSpace(text), 10, 16)
		if err != nil || i < 0 || i > math.MaxUint8 {
			return nil, false
		}
		return byte(i), true

	case TypeTimestamp:
		s := strings.TrimSpace(text)
		for _, layout := range timestampLayouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts, true
			}
		}
		return nil, false
	}

	return nil, false
}

func toInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	}
	return 0, false
}

// formatFloat writes plain decimal notation for ordinary magnitudes and
// exponent notation for very large or very small ones, in the same way
// encoding/json does.
func formatFloat(f float64, bits int) string {
	abs := math.Abs(f)
	format := byte('f')
	if abs != 0 && !math.IsInf(f, 0) {
		if bits == 64 && (abs < 1e-6 || abs >= 1e21) || bits == 32 && (float32(abs) < 1e-6 || float32(abs) >= 1e21) {
			format = 'e'
		}
	}
	return strconv.FormatFloat(f, format, -1, bits)
}
