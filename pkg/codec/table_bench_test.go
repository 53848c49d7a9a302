//go:build bench
// +build bench

package codec

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

var benchFields = []Field{
	{Name: "ID", Type: TypeInteger},
	{Name: "Name", Type: TypeText},
	{Name: "Score", Type: TypeFloat64},
	{Name: "Active", Type: TypeBoolean},
	{Name: "Created", Type: TypeTimestamp},
	{Name: "Note", Type: TypeNullableText},
}

func benchRows(n int) []Row {
	created := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{i, fmt.Sprintf("user-%d", i), float64(i) * 1.5, i%2 == 0, created, nil}
	}
	return rows
}

func BenchmarkCodec_SerializeRows(b *testing.B) {
	c := New(WithNewline("\n"))

	for _, n := range []int{1, 100, 10000} {
		rows := benchRows(n)
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = c.SerializeRows(benchFields, rows)
			}
		})
	}
}

func BenchmarkCodec_DeserializeRows(b *testing.B) {
	c := New(WithNewline("\n"))

	for _, n := range []int{1, 100, 10000} {
		text := c.SerializeRows(benchFields, benchRows(n))
		b.Run(fmt.Sprintf("rows=%d", n), func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := c.DeserializeRows(benchFields, text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecodeField(b *testing.B) {
	inputs := map[FieldType]string{
		TypeInteger:   "123456",
		TypeFloat64:   "3.14159",
		TypeBoolean:   "True",
		TypeTimestamp: "2024-01-15T10:30:00Z",
		TypeText:      strings.Repeat("x", 32),
	}

	for typ, text := range inputs {
		b.Run(typ.String(), func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_, _ = DecodeField(text, typ)
			}
		})
	}
}
