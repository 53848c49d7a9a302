package query

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/ssargent/csvmap/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDef = schema.Definition{
	Name: "orders",
	Fields: []schema.FieldSpec{
		{Name: "id", Type: codec.TypeInteger},
		{Name: "customer", Type: codec.TypeText},
		{Name: "total", Type: codec.TypeDecimal},
		{Name: "weight", Type: codec.TypeNullableFloat64},
		{Name: "paid", Type: codec.TypeBoolean},
		{Name: "grade", Type: codec.TypeCharacter},
		{Name: "placed", Type: codec.TypeTimestamp},
		{Name: "secret", Type: codec.TypeText, Ignore: true},
	},
}

func testRecord() schema.Record {
	return schema.Record{
		"id":       7,
		"customer": "Ada",
		"total":    decimal.RequireFromString("19.99"),
		"weight":   nil,
		"paid":     true,
		"grade":    'B',
		"placed":   time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFilter_Match(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		match bool
	}{
		{"integer equal", "id=7", true},
		{"integer greater", "id>7", false},
		{"integer greater or equal", "id>=7", true},
		{"integer less", "id<10", true},
		{"text equal", "customer=Ada", true},
		{"text not equal", "customer!=Ada", false},
		{"text ordering", "customer<Bob", true},
		{"decimal exact", "total=19.990", true},
		{"decimal less", "total<20", true},
		{"boolean", "paid=false", false},
		{"boolean not equal", "paid!=false", true},
		{"character", "grade>A", true},
		{"timestamp", "placed>=2024-01-01T00:00:00Z", true},
		{"timestamp before", "placed<2024-01-01T00:00:00Z", false},
		{"null equal", "weight=NULL", true},
		{"null not equal", "weight!=null", false},
		{"value against null", "weight=1.5", false},
		{"value not equal null", "weight!=1.5", true},
		{"ordering against absent value", "weight>1", false},
		{"present value not null", "customer!=NULL", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.expr)
			require.NoError(t, err)
			filter, err := Compile(testDef, q)
			require.NoError(t, err)
			assert.Equal(t, tt.match, filter.Match(testRecord()))
		})
	}
}

func TestFilter_Conjunction(t *testing.T) {
	queries, err := ParseAll([]string{"id>=5", "paid=true"})
	require.NoError(t, err)
	filter, err := Compile(testDef, queries...)
	require.NoError(t, err)
	assert.True(t, filter.Match(testRecord()))

	rec := testRecord()
	rec["paid"] = false
	assert.False(t, filter.Match(rec))
}

func TestFilter_Empty(t *testing.T) {
	filter, err := Compile(testDef)
	require.NoError(t, err)
	assert.True(t, filter.Empty())
	assert.True(t, filter.Match(testRecord()))

	var none *Filter
	assert.True(t, none.Empty())
	assert.True(t, none.Match(schema.Record{}))
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name  string
		query FieldQuery
	}{
		{"unknown field", FieldQuery{Field: "missing", Operator: "=", Value: "1"}},
		{"ignored field", FieldQuery{Field: "secret", Operator: "=", Value: "x"}},
		{"value does not convert", FieldQuery{Field: "id", Operator: "=", Value: "seven"}},
		{"ordering against null", FieldQuery{Field: "weight", Operator: ">", Value: "NULL"}},
		{"invalid operator", FieldQuery{Field: "id", Operator: "~", Value: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(testDef, tt.query)
			assert.ErrorIs(t, err, ErrInvalidQuery)
		})
	}
}
