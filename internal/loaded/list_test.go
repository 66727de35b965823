package loaded

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"blcsview/internal/frame"
)

func lf(name string) LoadedFrame {
	return LoadedFrame{
		Meta:  Meta{Name: name, Version: "1"},
		Frame: frame.MustNew(frame.Ints("Identifier", 1), frame.Floats("Temperature", 20)),
	}
}

func names(l *List) []string {
	var out []string
	for _, f := range l.Frames() {
		out = append(out, f.Meta.Name)
	}
	return out
}

func abcd() *List {
	l := NewList()
	for _, n := range []string{"A", "B", "C", "D"} {
		l.Add(lf(n))
	}
	return l
}

func TestReorder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"move up", 3, 1, []string{"A", "D", "B", "C"}},
		{"move down", 0, 2, []string{"B", "A", "C", "D"}},
		{"to end", 0, 4, []string{"B", "C", "D", "A"}},
		{"same index", 2, 2, []string{"A", "B", "C", "D"}},
		{"adjacent below is noop", 1, 2, []string{"A", "B", "C", "D"}},
		{"from out of range", 7, 1, []string{"A", "B", "C", "D"}},
		{"to out of range", 0, 9, []string{"A", "B", "C", "D"}},
		{"negative", -1, 0, []string{"A", "B", "C", "D"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := abcd()
			l.Reorder(tt.from, tt.to)
			require.Equal(t, tt.want, names(l))
		})
	}
}

func TestDropTarget(t *testing.T) {
	t.Parallel()

	require.Equal(t, 2, DropTarget(2, 2, false), "self drop")
	require.Equal(t, 2, DropTarget(2, 2, true), "self drop")
	require.Equal(t, 1, DropTarget(1, 3, true))
	require.Equal(t, 3, DropTarget(2, 0, false))

	l := abcd()
	l.Reorder(1, DropTarget(1, 1, false))
	require.Equal(t, []string{"A", "B", "C", "D"}, names(l))

	// D released over the top half of B lands before B.
	l.Reorder(3, DropTarget(1, 3, true))
	require.Equal(t, []string{"A", "D", "B", "C"}, names(l))
}

func TestDeleteKeepsSelectionConsistent(t *testing.T) {
	t.Parallel()

	l := abcd()
	l.ToggleSelect(1)
	l.ToggleSelect(3)
	require.Equal(t, 2, l.SelectedCount())

	l.Delete(1)
	require.Equal(t, []string{"A", "C", "D"}, names(l))
	require.Equal(t, 1, l.SelectedCount())
	require.False(t, l.IsSelected(lf("B")))

	sel := l.Selected()
	require.Len(t, sel, 1)
	require.Equal(t, "D", sel[0].Meta.Name)

	l.Delete(10)
	require.Equal(t, 3, l.Len())
}

func TestDeleteOneOfEqualPairUnselectsOther(t *testing.T) {
	t.Parallel()

	l := NewList()
	l.Add(lf("A"))
	l.Add(lf("A"))
	l.ToggleSelect(0)
	require.Len(t, l.Selected(), 2, "equal values share a selection")
	require.Equal(t, 1, l.SelectedCount())

	l.Delete(0)
	require.Equal(t, 1, l.Len())
	require.Equal(t, 0, l.SelectedCount())
	require.Empty(t, l.Selected())

	l.ToggleSelect(0)
	require.Equal(t, 1, l.SelectedCount())
}

func TestRandomEditsKeepSelectionInList(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 11))
	pool := []string{"A", "B", "C"}
	l := NewList()

	for step := range 2000 {
		n := l.Len()
		switch rng.IntN(5) {
		case 0:
			l.Add(lf(pool[rng.IntN(len(pool))]))
		case 1:
			l.ToggleSelect(rng.IntN(n + 1))
		case 2:
			l.Delete(rng.IntN(n + 1))
		case 3:
			l.Reorder(rng.IntN(n+1), rng.IntN(n+2))
		case 4:
			if rng.IntN(4) == 0 {
				l.ToggleAll()
			}
		}

		frames := l.Frames()
		for _, bucket := range l.selected {
			for _, s := range bucket {
				require.True(t, slices.ContainsFunc(frames, s.Equal), "step %d: selected %s not in list", step, s.Meta.Name)
			}
		}
		require.LessOrEqual(t, l.SelectedCount(), l.Len(), "step %d", step)
		for _, s := range l.Selected() {
			require.True(t, l.IsSelected(s), "step %d", step)
		}
	}
}

func TestSelectionSurvivesReorder(t *testing.T) {
	t.Parallel()

	l := abcd()
	l.ToggleSelect(0)
	l.ToggleSelect(2)
	l.Reorder(0, 4)
	require.Equal(t, []string{"B", "C", "D", "A"}, names(l))

	var got []string
	for _, s := range l.Selected() {
		got = append(got, s.Meta.Name)
	}
	require.Equal(t, []string{"C", "A"}, got)
}

func TestToggleAll(t *testing.T) {
	t.Parallel()

	l := abcd()
	l.ToggleAll()
	require.Equal(t, 4, l.SelectedCount())
	l.ToggleAll()
	require.Equal(t, 0, l.SelectedCount())

	l.ToggleSelect(2)
	l.ToggleAll()
	require.Equal(t, 0, l.SelectedCount(), "partial selection clears")
}

func TestToggleSelectModifiedMatchesPlain(t *testing.T) {
	t.Parallel()

	plain, modified := abcd(), abcd()
	plain.ToggleSelect(1)
	modified.ToggleSelectModified(1)
	require.Equal(t, plain.Selected(), modified.Selected())

	modified.ToggleSelectModified(1)
	require.Empty(t, modified.Selected())
}

func TestDeleteAll(t *testing.T) {
	t.Parallel()

	l := abcd()
	l.ToggleAll()
	l.DeleteAll()
	require.Equal(t, 0, l.Len())
	require.Equal(t, 0, l.SelectedCount())
	require.Empty(t, l.Selected())
}

func TestStructuralEquality(t *testing.T) {
	t.Parallel()

	a, b := lf("A"), lf("A")
	require.True(t, a.Equal(b))
	require.Equal(t, a.Key(), b.Key())

	c := lf("A")
	c.Meta.Version = "2"
	require.False(t, a.Equal(c))
	require.Equal(t, "A 2", c.Meta.Label())

	l := NewList()
	l.Add(a)
	l.ToggleSelect(0)
	require.True(t, l.IsSelected(b), "selection is by value")
}
