package ies

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestColumnSortStability(t *testing.T) {
	c1 := Column{Name: "c1", Type: String, Position: 5}
	c2 := Column{Name: "c2", Type: String2, Position: 3}
	c3 := Column{Name: "c3", Type: Float, Position: 7}

	sorted := sortColumns([]Column{c1, c2, c3})
	require.Len(t, sorted, 3)
	assert.Equal(t, []string{"c3", "c2", "c1"}, []string{sorted[0].Name, sorted[1].Name, sorted[2].Name})
}

func TestDedupDeterministic(t *testing.T) {
	seen := make(map[string]int)
	names := []string{dedupName(seen, "x"), dedupName(seen, "x"), dedupName(seen, "x")}
	assert.Equal(t, []string{"x", "x_1", "x_2"}, names)
}

func TestRoundTrip(t *testing.T) {
	f := &File{
		Name:    "sample",
		Version: 1,
		Columns: []Column{
			NewColumn("N", Float, 0),
			NewColumn("S", String, 0),
		},
		Rows: []Row{
			{
				ClassID:   1,
				ClassName: "a",
				Values: map[string]Value{
					"N": NumberValue(1.5),
					"S": StringValue("foo"),
				},
				UseScr: map[string]bool{},
			},
			{
				ClassID:   2,
				ClassName: "b",
				Values: map[string]Value{
					"N": NumberValue(2.5),
					"S": StringValue("bar"),
				},
				UseScr: map[string]bool{},
			},
		},
	}

	data, err := ToBytes(f)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)

	require.Len(t, got.Columns, 2)
	byName := map[string]Column{}
	for _, c := range got.Columns {
		byName[c.Name] = c
	}
	require.Contains(t, byName, "N")
	require.Contains(t, byName, "S")
	assert.True(t, byName["N"].IsNumber())
	assert.False(t, byName["S"].IsNumber())

	require.Len(t, got.Rows, 2)
	assert.Equal(t, int32(1), got.Rows[0].ClassID)
	assert.Equal(t, "a", got.Rows[0].ClassName)
	n, err := got.Rows[0].Float("N")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, n, 0.0001)
	s, err := got.Rows[0].Str("S")
	require.NoError(t, err)
	assert.Equal(t, "foo", s)

	assert.Equal(t, int32(2), got.Rows[1].ClassID)
	n2, err := got.Rows[1].Float("N")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, n2, 0.0001)
	s2, err := got.Rows[1].Str("S")
	require.NoError(t, err)
	assert.Equal(t, "bar", s2)
}

func TestRowAccessorErrors(t *testing.T) {
	row := Row{
		ClassID: 1,
		Values: map[string]Value{
			"N": NumberValue(1),
			"S": StringValue("x"),
		},
	}

	_, err := row.Float("missing")
	assert.ErrorIs(t, err, ErrFieldNotFound)

	_, err = row.Float("S")
	assert.ErrorIs(t, err, ErrTypeMismatch)

	_, err = row.Str("N")
	assert.ErrorIs(t, err, ErrTypeMismatch)
}

func TestMissingValueDefaultsOnWrite(t *testing.T) {
	f := &File{
		Columns: []Column{
			NewColumn("N", Float, 0),
			NewColumn("S", String, 1),
		},
		Rows: []Row{
			{ClassID: 1, ClassName: "", Values: map[string]Value{}},
		},
	}

	data, err := ToBytes(f)
	require.NoError(t, err)

	got, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, got.Rows, 1)

	n, err := got.Rows[0].Float("N")
	require.NoError(t, err)
	assert.Equal(t, float32(0), n)

	s, err := got.Rows[0].Str("S")
	require.NoError(t, err)
	assert.Equal(t, "", s)
}
