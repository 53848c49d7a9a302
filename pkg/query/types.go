// Package query filters decoded records by field conditions such as
// "score>=9.5" or "name=Ada".
package query

import (
	"errors"
	"fmt"
	"strings"
)

// Comparison operators
const (
	OpEqual        = "="
	OpNotEqual     = "!="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpLess         = "<"
	OpLessEqual    = "<="
)

// ErrInvalidQuery is returned for malformed conditions and conditions that
// do not fit the schema they are compiled against
var ErrInvalidQuery = errors.New("invalid query")

// operators in match order: two-character operators first
var operators = []string{OpNotEqual, OpGreaterEqual, OpLessEqual, OpEqual, OpGreater, OpLess}

// FieldQuery represents a single field-based query condition
type FieldQuery struct {
	Field    string // Field name to query (e.g., "age", "name")
	Operator string // Comparison operator: "=", "!=", ">", "<", ">=", "<="
	Value    string // Value in table text form; NULL matches absent values
}

// String renders the condition in the form accepted by Parse
func (q FieldQuery) String() string {
	return q.Field + q.Operator + q.Value
}

// Validate checks if the query is properly formed
func (q *FieldQuery) Validate() error {
	if q.Field == "" {
		return fmt.Errorf("%w: field name cannot be empty", ErrInvalidQuery)
	}
	if q.Operator == "" {
		return fmt.Errorf("%w: operator cannot be empty", ErrInvalidQuery)
	}
	for _, op := range operators {
		if q.Operator == op {
			return nil
		}
	}
	return fmt.Errorf("%w: invalid operator: %s", ErrInvalidQuery, q.Operator)
}

// Parse splits an expression like "score>=9.5" at its first operator. The
// field name is trimmed; the value is kept as written.
func Parse(expr string) (FieldQuery, error) {
	pos, op := -1, ""
	for _, candidate := range operators {
		i := strings.Index(expr, candidate)
		if i < 0 {
			continue
		}
		// the earliest operator wins; at equal positions the longer one
		if pos < 0 || i < pos || (i == pos && len(candidate) > len(op)) {
			pos, op = i, candidate
		}
	}
	if pos < 0 {
		return FieldQuery{}, fmt.Errorf("%w: no operator in %q", ErrInvalidQuery, expr)
	}

	q := FieldQuery{
		Field:    strings.TrimSpace(expr[:pos]),
		Operator: op,
		Value:    expr[pos+len(op):],
	}
	if err := q.Validate(); err != nil {
		return FieldQuery{}, err
	}
	return q, nil
}

// ParseAll parses every expression
func ParseAll(exprs []string) ([]FieldQuery, error) {
	queries := make([]FieldQuery, 0, len(exprs))
	for _, expr := range exprs {
		q, err := Parse(expr)
		if err != nil {
			return nil, err
		}
		queries = append(queries, q)
	}
	return queries, nil
}
