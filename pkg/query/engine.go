package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/schema"
)

// Filter is a conjunction of field conditions compiled against a schema
type Filter struct {
	conditions []condition
}

type condition struct {
	field    string
	operator string
	value    any // nil for NULL
}

// Compile binds queries to the fields of def. Each value is converted to the
// Go type of its field; a value that does not convert, an unknown or ignored
// field, or an ordering operator against NULL is an ErrInvalidQuery.
func Compile(def schema.Definition, queries ...FieldQuery) (*Filter, error) {
	types := make(map[string]codec.FieldType, len(def.Fields))
	for _, f := range def.Fields {
		if !f.Ignore {
			types[f.Name] = f.Type
		}
	}

	conditions := make([]condition, 0, len(queries))
	for _, q := range queries {
		if err := q.Validate(); err != nil {
			return nil, err
		}
		t, ok := types[q.Field]
		if !ok {
			return nil, fmt.Errorf("%w: unknown field %q in schema %s", ErrInvalidQuery, q.Field, def.Name)
		}

		var value any
		if !isNull(q.Value) {
			v, err := schema.Coerce(q.Value, t)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrInvalidQuery, q, err)
			}
			value = v
		} else if q.Operator != OpEqual && q.Operator != OpNotEqual {
			return nil, fmt.Errorf("%w: %s: NULL only supports = and !=", ErrInvalidQuery, q)
		}

		conditions = append(conditions, condition{field: q.Field, operator: q.Operator, value: value})
	}
	return &Filter{conditions: conditions}, nil
}

// Match reports whether rec satisfies every condition. A nil filter
// matches everything.
func (f *Filter) Match(rec schema.Record) bool {
	if f == nil {
		return true
	}
	for _, c := range f.conditions {
		if !c.match(rec[c.field]) {
			return false
		}
	}
	return true
}

// Empty reports whether the filter has no conditions
func (f *Filter) Empty() bool {
	return f == nil || len(f.conditions) == 0
}

func (c condition) match(v any) bool {
	if c.value == nil || v == nil {
		bothNull := c.value == nil && v == nil
		switch c.operator {
		case OpEqual:
			return bothNull
		case OpNotEqual:
			return !bothNull
		default:
			return false
		}
	}

	cmp, ok := compare(v, c.value)
	if !ok {
		return c.operator == OpNotEqual
	}

	switch c.operator {
	case OpEqual:
		return cmp == 0
	case OpNotEqual:
		return cmp != 0
	case OpGreater:
		return cmp > 0
	case OpGreaterEqual:
		return cmp >= 0
	case OpLess:
		return cmp < 0
	case OpLessEqual:
		return cmp <= 0
	}
	return false
}

// compare orders two values of the same field type
func compare(a, b any) (int, bool) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		return strings.Compare(x, y), ok
	case int:
		y, ok := b.(int)
		return ordered(x, y), ok
	case float64:
		y, ok := b.(float64)
		return ordered(x, y), ok
	case float32:
		y, ok := b.(float32)
		return ordered(x, y), ok
	case rune:
		y, ok := b.(rune)
		return ordered(x, y), ok
	case byte:
		y, ok := b.(byte)
		return ordered(x, y), ok
	case bool:
		y, ok := b.(bool)
		switch {
		case !ok || x == y:
			return 0, ok
		case !x:
			return -1, true
		default:
			return 1, true
		}
	case decimal.Decimal:
		y, ok := b.(decimal.Decimal)
		if !ok {
			return 0, false
		}
		return x.Cmp(y), true
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return 0, false
		}
		return x.Compare(y), true
	}
	return 0, false
}

func ordered[T int | float64 | float32 | rune | byte](x, y T) int {
	switch {
	case x < y:
		return -1
	case x > y:
		return 1
	default:
		return 0
	}
}

func isNull(s string) bool {
	return strings.EqualFold(s, "null")
}
