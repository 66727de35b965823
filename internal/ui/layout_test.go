package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"blcsview/internal/pane"
)

func TestComputeLayoutVertical(t *testing.T) {
	l := ComputeLayout(100, 31, 30, 0, pane.LayoutVertical, []pane.TileID{1, 2, 3}, 1)

	require.Equal(t, Rect{X: 0, Y: 0, W: 30, H: 30}, l.Sidebar)
	require.Equal(t, Rect{X: 0, Y: 30, W: 100, H: 1}, l.Status)
	require.Len(t, l.Tiles, 3)
	require.Equal(t, Rect{X: 30, Y: 0, W: 70, H: 10}, l.Tiles[0].Rect)
	require.Equal(t, Rect{X: 30, Y: 20, W: 70, H: 10}, l.Tiles[2].Rect)
}

func TestComputeLayoutGrid(t *testing.T) {
	ids := []pane.TileID{1, 2, 3, 4, 5}
	l := ComputeLayout(90, 21, 0, 0, pane.LayoutGrid, ids, 0)

	require.Len(t, l.Tiles, 5)
	// 3 columns, 2 rows; the short last row stretches
	require.Equal(t, Rect{X: 0, Y: 0, W: 30, H: 10}, l.Tiles[0].Rect)
	require.Equal(t, Rect{X: 60, Y: 0, W: 30, H: 10}, l.Tiles[2].Rect)
	require.Equal(t, Rect{X: 0, Y: 10, W: 45, H: 10}, l.Tiles[3].Rect)
	require.Equal(t, Rect{X: 45, Y: 10, W: 45, H: 10}, l.Tiles[4].Rect)
}

func TestComputeLayoutTabsShowsFocused(t *testing.T) {
	l := ComputeLayout(80, 20, 0, 2, pane.LayoutTabs, []pane.TileID{4, 7}, 7)

	require.Len(t, l.Tabs, 2)
	require.Len(t, l.Tiles, 1)
	require.Equal(t, pane.TileID(7), l.Tiles[0].ID)
	require.Equal(t, Rect{X: 0, Y: 1, W: 80, H: 16}, l.Tiles[0].Rect)

	id, ok := l.TabAt(5, 0)
	require.True(t, ok)
	require.Equal(t, pane.TileID(4), id)
}

func TestLayoutHitTests(t *testing.T) {
	l := ComputeLayout(60, 21, 0, 0, pane.LayoutHorizontal, []pane.TileID{1, 2}, 1)

	id, ok := l.TileAt(35, 5)
	require.True(t, ok)
	require.Equal(t, pane.TileID(2), id)

	id, ok = l.CloseAt(28, 1)
	require.True(t, ok)
	require.Equal(t, pane.TileID(1), id)

	_, ok = l.CloseAt(27, 1)
	require.False(t, ok)
	_, ok = l.TileAt(10, 20)
	require.False(t, ok, "status line is not a tile")
}

func TestComputeLayoutEmpty(t *testing.T) {
	require.Empty(t, ComputeLayout(0, 0, 0, 0, pane.LayoutGrid, []pane.TileID{1}, 1).Tiles)
	l := ComputeLayout(80, 24, 32, 0, pane.LayoutGrid, nil, 0)
	require.Empty(t, l.Tiles)
	require.Equal(t, 48, l.Main.W)
}

func TestSplit(t *testing.T) {
	require.Equal(t, []int{4, 3, 3}, split(10, 3))
	require.Nil(t, split(10, 0))
}
