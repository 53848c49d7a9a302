package schema

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/ssargent/csvmap/pkg/codec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Grade rune

type account struct {
	ID       int
	Name     string `csv:"name"`
	Password string `csv:"-"`
	Balance  decimal.Decimal
	Rating   *float64
	Grade    Grade
	Level    byte
	Active   bool
	Ratio    float32
	Opened   time.Time
	Closed   *time.Time
	internal string
}

func TestFor(t *testing.T) {
	t.Run("derives descriptors in declaration order", func(t *testing.T) {
		m, err := For[account]()
		require.NoError(t, err)

		expected := []codec.Field{
			{Name: "ID", Type: codec.TypeInteger},
			{Name: "name", Type: codec.TypeText},
			{Name: "Password", Type: codec.TypeText, Ignore: true},
			{Name: "Balance", Type: codec.TypeDecimal},
			{Name: "Rating", Type: codec.TypeNullableFloat64},
			{Name: "Grade", Type: codec.TypeCharacter},
			{Name: "Level", Type: codec.TypeByte},
			{Name: "Active", Type: codec.TypeBoolean},
			{Name: "Ratio", Type: codec.TypeFloat32},
			{Name: "Opened", Type: codec.TypeTimestamp},
			{Name: "Closed", Type: codec.TypeNullableTimestamp},
		}
		assert.Equal(t, expected, m.Fields())
	})

	t.Run("rejects non-struct types", func(t *testing.T) {
		_, err := For[int]()
		assert.Error(t, err)
		assert.Panics(t, func() { MustFor[string]() })
	})

	t.Run("unsupported field kinds map to invalid", func(t *testing.T) {
		type withSlice struct {
			Tags []string
		}
		m := MustFor[withSlice]()
		assert.Equal(t, codec.TypeInvalid, m.Fields()[0].Type)
	})

	t.Run("cached per type", func(t *testing.T) {
		a := MustFor[account]()
		b := MustFor[account]()
		assert.Same(t, a.info, b.info)
	})
}

func TestStructMapper_RowAndBuild(t *testing.T) {
	m := MustFor[account]()
	rating := 4.5
	opened := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	in := account{
		ID:       42,
		Name:     "Ada",
		Password: "secret",
		Balance:  decimal.RequireFromString("1234.50"),
		Rating:   &rating,
		Grade:    'A',
		Level:    7,
		Active:   true,
		Ratio:    0.25,
		Opened:   opened,
	}

	row := m.Row(in)
	require.Len(t, row, 11)
	assert.Equal(t, 42, row[0])
	assert.Nil(t, row[2], "ignored field is not extracted")
	assert.Equal(t, 4.5, row[4])
	assert.Equal(t, rune('A'), row[5], "named type converted to rune")
	assert.Nil(t, row[10], "nil pointer becomes nil")

	out, err := m.Build(row)
	require.NoError(t, err)
	assert.Equal(t, 42, out.ID)
	assert.Equal(t, "Ada", out.Name)
	assert.Empty(t, out.Password)
	assert.True(t, in.Balance.Equal(out.Balance))
	require.NotNil(t, out.Rating)
	assert.Equal(t, 4.5, *out.Rating)
	assert.Equal(t, Grade('A'), out.Grade)
	assert.Equal(t, byte(7), out.Level)
	assert.Nil(t, out.Closed)
}

func TestStructMapper_BuildTypeMismatch(t *testing.T) {
	m := MustFor[account]()
	row := make(codec.Row, len(m.Fields()))
	row[0] = "not a number"

	_, err := m.Build(row)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "field ID")
}

func TestStructMapper_WithTable(t *testing.T) {
	type point struct {
		X     int
		Y     int
		Label *string
	}
	table := codec.NewTable[point](MustFor[point](), codec.WithNewline("\n"))

	label := "origin"
	text := table.Serialize([]point{{0, 0, &label}, {3, 4, nil}})
	assert.Equal(t, "0;0;origin\n3;4;NULL", text)

	points, err := table.Deserialize(text)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, "origin", *points[0].Label)
	assert.Equal(t, point{X: 3, Y: 4}, points[1])
}
