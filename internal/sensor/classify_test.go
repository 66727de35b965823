package sensor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"blcsview/internal/frame"
)

func twoColumn(name string) *frame.Frame {
	return frame.MustNew(frame.Ints("Identifier", 1), frame.Floats(name, 1.5))
}

func TestClassifyKnownNames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		column string
		want   Kind
	}{
		{"Temperature", TemperatureController},
		{"Turbidity", TurbidityController},
		{"DDOC.C1", DissolvedOxygen(C1)},
		{"DDOC.C2", DissolvedOxygen(C2)},
		{"DDOC.T1", DissolvedOxygen(T1)},
		{"DDOC.T2", DissolvedOxygen(T2)},
		{"DDOC.V1", DissolvedOxygen(V1)},
		{"DDOC.V2", DissolvedOxygen(V2)},
	}
	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, err := Classify(twoColumn(tt.column))
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.column, got.Name())
		})
	}
}

func TestClassifyRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		frame      *frame.Frame
		suggestion string
	}{
		{"single column", frame.MustNew(frame.Floats("Temperature", 1)), ""},
		{"no columns", frame.MustNew(), ""},
		{"nil frame", nil, ""},
		{"case differs", twoColumn("temperature"), "Temperature"},
		{"near miss", twoColumn("DDOC.C3"), "DDOC.C1"},
		{"far off", twoColumn("Pressure of the vessel"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Classify(tt.frame)
			require.Error(t, err)
			require.True(t, errors.Is(err, ErrUnsupportedFormat))

			var fe *FormatError
			require.ErrorAs(t, err, &fe)
			require.Equal(t, tt.suggestion, fe.Suggestion)
		})
	}
}

func TestClassifyIgnoresColumnZeroAndTail(t *testing.T) {
	t.Parallel()

	f := frame.MustNew(
		frame.Strings("Turbidity", "x"),
		frame.Floats("DDOC.V2", 3.3),
		frame.Floats("Temperature", 21),
	)
	got, err := Classify(f)
	require.NoError(t, err)
	require.Equal(t, DissolvedOxygen(V2), got)
}

func TestKindLookupsAreTotal(t *testing.T) {
	t.Parallel()

	seenTopics := map[string]bool{}
	for _, k := range All() {
		require.True(t, k.Valid(), k.Label())
		require.NotEmpty(t, k.Name())
		require.NotEmpty(t, k.Description())
		require.False(t, seenTopics[k.Topic()], "duplicate topic %s", k.Topic())
		seenTopics[k.Topic()] = true

		parsed, err := ParseKind(k.Slug())
		require.NoError(t, err)
		require.Equal(t, k, parsed)
	}
	require.False(t, Kind{}.Valid())
	require.False(t, Kind{Family: DTEC, Channel: C1}.Valid())

	_, err := ParseKind("pressure")
	require.Error(t, err)
}
