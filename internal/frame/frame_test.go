package frame

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRejectsRaggedColumns(t *testing.T) {
	t.Parallel()

	_, err := New(Floats("a", 1, 2), Floats("b", 1))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrShape))

	_, err = New(Floats("a", 1), Ints("a", 1))
	require.ErrorIs(t, err, ErrShape)
}

func TestFrameIsImmutable(t *testing.T) {
	t.Parallel()

	values := []float64{1, 2, 3}
	f := MustNew(Ints("Identifier", 1, 2, 3), Floats("Temperature", values...))
	values[0] = 99

	v, ok := f.Column(1).Float(0)
	require.True(t, ok)
	require.Equal(t, 1.0, v)

	cols := f.Columns()
	cols[0] = Strings("x", "a", "b", "c")
	require.Equal(t, "Identifier", f.Column(0).Name())
}

func TestKeyAndEqual(t *testing.T) {
	t.Parallel()

	ts := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	a := MustNew(Uints("Identifier", 7), Floats("Turbidity", 0.5), Times("Timestamp", ts))
	b := MustNew(Uints("Identifier", 7), Floats("Turbidity", 0.5), Times("Timestamp", ts))
	c := MustNew(Uints("Identifier", 7), Floats("Turbidity", 0.6), Times("Timestamp", ts))

	require.Equal(t, a.Key(), b.Key())
	require.True(t, a.Equal(b))
	require.NotEqual(t, a.Key(), c.Key())
	require.False(t, a.Equal(c))
}

func TestConcatAndTail(t *testing.T) {
	t.Parallel()

	a := MustNew(Ints("Identifier", 1, 2), Floats("DDOC.C1", 0.1, 0.2))
	b := MustNew(Ints("Identifier", 3), Floats("DDOC.C1", 0.3))

	joined, err := Concat(a, b)
	require.NoError(t, err)
	require.Equal(t, 3, joined.Height())

	tail := joined.Tail(2)
	require.Equal(t, 2, tail.Height())
	id, ok := tail.Column(0).Uint(0)
	require.True(t, ok)
	require.Equal(t, uint64(2), id)

	_, err = Concat(a, MustNew(Ints("Identifier", 1), Floats("Temperature", 1)))
	require.ErrorIs(t, err, ErrShape)
}

func TestNilFrameAccessors(t *testing.T) {
	t.Parallel()

	var f *Frame
	require.Equal(t, 0, f.Width())
	require.Equal(t, 0, f.Height())
	require.Nil(t, f.Names())
	_, ok := f.Lookup("x")
	require.False(t, ok)
}

func TestColumnFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		col       Column
		precision int
		want      string
	}{
		{"float precision", Floats("v", 1.23456), 2, "1.23"},
		{"int", Ints("v", -4), 2, "-4"},
		{"uint", Uints("v", 18), 2, "18"},
		{"string", Strings("v", "ok"), 2, "ok"},
		{"time", Times("v", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)), 2, "2024-01-02T03:04:05Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.col.Format(0, tt.precision))
		})
	}
}
