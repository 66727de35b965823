package ui

import (
	"math"

	"blcsview/internal/pane"
)

const (
	// SidebarWidth is the loaded list width including its border.
	SidebarWidth = 32
	statusHeight = 1
	tabBarHeight = 1
	minTileW     = 12
	minTileH     = 5
)

// Rect is a terminal cell rectangle.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(x, y int) bool {
	return !r.Empty() && x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// Placement is where one tile is drawn.
type Placement struct {
	ID   pane.TileID
	Rect Rect
}

// Layout is the screen split for one frame. It is computed the same way for
// drawing and for mouse hit testing.
type Layout struct {
	Sidebar Rect
	Main    Rect
	TabBar  Rect
	Tabs    []Placement // tab bar segments, tabs layout only
	Tiles   []Placement
	Status  Rect
}

// ComputeLayout splits a width x height terminal. sidebar is the sidebar
// width, 0 when hidden. reserved lines are kept free above the status line.
func ComputeLayout(width, height, sidebar, reserved int, kind pane.LayoutKind, ids []pane.TileID, focused pane.TileID) Layout {
	var l Layout
	if width <= 0 || height <= 0 {
		return l
	}
	bodyH := max(height-statusHeight-reserved, 0)
	l.Status = Rect{X: 0, Y: height - statusHeight, W: width, H: statusHeight}
	if sidebar > width {
		sidebar = width
	}
	l.Sidebar = Rect{X: 0, Y: 0, W: sidebar, H: bodyH}
	l.Main = Rect{X: sidebar, Y: 0, W: width - sidebar, H: bodyH}
	if len(ids) == 0 || l.Main.Empty() {
		return l
	}

	switch kind {
	case pane.LayoutHorizontal:
		xs := split(l.Main.W, len(ids))
		x := l.Main.X
		for i, id := range ids {
			l.Tiles = append(l.Tiles, Placement{ID: id, Rect: Rect{X: x, Y: l.Main.Y, W: xs[i], H: l.Main.H}})
			x += xs[i]
		}
	case pane.LayoutGrid:
		cols := int(math.Ceil(math.Sqrt(float64(len(ids)))))
		rows := (len(ids) + cols - 1) / cols
		hs := split(l.Main.H, rows)
		y := l.Main.Y
		for r := 0; r < rows; r++ {
			row := ids[r*cols : min((r+1)*cols, len(ids))]
			ws := split(l.Main.W, len(row))
			x := l.Main.X
			for c, id := range row {
				l.Tiles = append(l.Tiles, Placement{ID: id, Rect: Rect{X: x, Y: y, W: ws[c], H: hs[r]}})
				x += ws[c]
			}
			y += hs[r]
		}
	case pane.LayoutTabs:
		l.TabBar = Rect{X: l.Main.X, Y: l.Main.Y, W: l.Main.W, H: tabBarHeight}
		ws := split(l.Main.W, len(ids))
		x := l.Main.X
		active := ids[0]
		for i, id := range ids {
			l.Tabs = append(l.Tabs, Placement{ID: id, Rect: Rect{X: x, Y: l.TabBar.Y, W: ws[i], H: tabBarHeight}})
			x += ws[i]
			if id == focused {
				active = id
			}
		}
		body := Rect{X: l.Main.X, Y: l.Main.Y + tabBarHeight, W: l.Main.W, H: l.Main.H - tabBarHeight}
		l.Tiles = []Placement{{ID: active, Rect: body}}
	default:
		hs := split(l.Main.H, len(ids))
		y := l.Main.Y
		for i, id := range ids {
			l.Tiles = append(l.Tiles, Placement{ID: id, Rect: Rect{X: l.Main.X, Y: y, W: l.Main.W, H: hs[i]}})
			y += hs[i]
		}
	}
	return l
}

// split divides total into n near-equal parts; earlier parts get the
// remainder.
func split(total, n int) []int {
	if n <= 0 {
		return nil
	}
	out := make([]int, n)
	base, rem := total/n, total%n
	for i := range out {
		out[i] = base
		if i < rem {
			out[i]++
		}
	}
	return out
}

// TileAt returns the tile under the cell.
func (l Layout) TileAt(x, y int) (pane.TileID, bool) {
	for _, p := range l.Tiles {
		if p.Rect.Contains(x, y) {
			return p.ID, true
		}
	}
	return 0, false
}

// TabAt returns the tab under the cell.
func (l Layout) TabAt(x, y int) (pane.TileID, bool) {
	for _, p := range l.Tabs {
		if p.Rect.Contains(x, y) {
			return p.ID, true
		}
	}
	return 0, false
}

// CloseAt reports which tile's close button is at the cell. The button is
// the last inner cell of a tile's title row.
func (l Layout) CloseAt(x, y int) (pane.TileID, bool) {
	for _, p := range l.Tiles {
		if p.Rect.W < 3 || p.Rect.H < 3 {
			continue
		}
		if x == p.Rect.X+p.Rect.W-2 && y == p.Rect.Y+1 {
			return p.ID, true
		}
	}
	return 0, false
}

// tooSmall reports whether a tile cannot hold any content.
func tooSmall(r Rect) bool {
	return r.W < minTileW || r.H < minTileH
}
