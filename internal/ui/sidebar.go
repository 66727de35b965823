package ui

import (
	"fmt"
	"strings"

	"blcsview/internal/loaded"
	"blcsview/internal/ui/textutil"
)

const (
	sidebarHeader  = 1
	sidebarDetails = 3
	markSelected   = "●"
	markIdle       = "○"
)

// dragState tracks a row being dragged with the mouse.
type dragState struct {
	from     int
	hover    int
	moved    bool
	modified bool // a modifier key was held on press
}

// Sidebar is the loaded-frame list. It holds only cursor and scroll state;
// the list itself belongs to the pipeline.
type Sidebar struct {
	Visible bool
	Cursor  int
	Offset  int
	drag    *dragState
}

func NewSidebar() *Sidebar {
	return &Sidebar{Visible: true}
}

// rowsIn is how many list rows fit in rect.
func (s *Sidebar) rowsIn(rect Rect) int {
	return max(rect.H-sidebarHeader-sidebarDetails, 0)
}

// Clamp keeps the cursor on an existing row and the cursor in view.
func (s *Sidebar) Clamp(n int, rect Rect) {
	s.Cursor = max(min(s.Cursor, n-1), 0)
	rows := s.rowsIn(rect)
	if rows == 0 {
		s.Offset = 0
		return
	}
	if s.Cursor < s.Offset {
		s.Offset = s.Cursor
	}
	if s.Cursor >= s.Offset+rows {
		s.Offset = s.Cursor - rows + 1
	}
	s.Offset = clampOffset(s.Offset, n, rows)
}

// RowAt maps a screen cell to a list index.
func (s *Sidebar) RowAt(rect Rect, n, x, y int) (int, bool) {
	if !rect.Contains(x, y) {
		return 0, false
	}
	row := y - rect.Y - sidebarHeader
	if row < 0 || row >= s.rowsIn(rect) {
		return 0, false
	}
	i := s.Offset + row
	return i, i < n
}

// BeginDrag starts dragging row i.
func (s *Sidebar) BeginDrag(i int, modified bool) {
	s.Cursor = i
	s.drag = &dragState{from: i, hover: i, modified: modified}
}

// DragOver records the hovered row.
func (s *Sidebar) DragOver(i int) {
	if s.drag == nil {
		return
	}
	if i != s.drag.from {
		s.drag.moved = true
	}
	s.drag.hover = i
}

// Dragging reports whether a drag is in progress.
func (s *Sidebar) Dragging() bool { return s.drag != nil }

// dropIndex is where the dragged row would land. Rows are one cell high, so
// the pointer counts as above the hovered row's midpoint when it came from
// below, and below it when it came from above.
func (d *dragState) dropIndex() int {
	return loaded.DropTarget(d.hover, d.from, d.hover < d.from)
}

// EndDrag finishes a drag. A press and release that never left the row is a
// click. A drag that comes back to its own row drops nothing; otherwise the
// dragged row moves to the drop target.
func (s *Sidebar) EndDrag(list *loaded.List) {
	d := s.drag
	s.drag = nil
	if d == nil {
		return
	}
	if !d.moved {
		if d.modified {
			list.ToggleSelectModified(d.from)
		} else {
			list.ToggleSelect(d.from)
		}
		return
	}
	if d.hover == d.from {
		return
	}
	to := d.dropIndex()
	list.Reorder(d.from, to)
	s.Cursor = to
	if d.from < to {
		s.Cursor = to - 1
	}
}

// CancelDrag abandons a drag without changes.
func (s *Sidebar) CancelDrag() { s.drag = nil }

// MoveUp moves the cursor row one place up.
func (s *Sidebar) MoveUp(list *loaded.List) {
	if s.Cursor <= 0 || s.Cursor >= list.Len() {
		return
	}
	list.Reorder(s.Cursor, s.Cursor-1)
	s.Cursor--
}

// MoveDown moves the cursor row one place down.
func (s *Sidebar) MoveDown(list *loaded.List) {
	if s.Cursor < 0 || s.Cursor >= list.Len()-1 {
		return
	}
	list.Reorder(s.Cursor, s.Cursor+2)
	s.Cursor++
}

// Render draws the list into rect.
func (s *Sidebar) Render(list *loaded.List, rect Rect, focused bool) string {
	if rect.Empty() {
		return ""
	}
	w := max(rect.W-1, 1) // right border
	var lines []string

	head := fmt.Sprintf("Loaded (%d, %d selected)", list.Len(), list.SelectedCount())
	if focused {
		lines = append(lines, Styles.TitleFocused.Render(textutil.PadRight(head, w)))
	} else {
		lines = append(lines, Styles.Title.Render(textutil.PadRight(head, w)))
	}

	rows := s.rowsIn(rect)
	drop := -1
	if s.drag != nil && s.drag.moved {
		drop = s.drag.dropIndex()
	}
	for r := 0; r < rows; r++ {
		i := s.Offset + r
		lf, ok := list.At(i)
		if !ok {
			if list.Len() == 0 && r == 0 {
				lines = append(lines, Styles.Empty.Render(textutil.PadRight("drop files here", w)))
				continue
			}
			lines = append(lines, strings.Repeat(" ", w))
			continue
		}
		lines = append(lines, s.renderRow(list, lf, i, w, focused, drop))
	}

	lines = append(lines, s.details(list, w)...)
	for len(lines) < rect.H {
		lines = append(lines, strings.Repeat(" ", w))
	}
	return Styles.Sidebar.Height(rect.H).MaxHeight(rect.H).Render(strings.Join(lines[:rect.H], "\n"))
}

func (s *Sidebar) renderRow(list *loaded.List, lf loaded.LoadedFrame, i, w int, focused bool, drop int) string {
	mark := markIdle
	if list.IsSelected(lf) {
		mark = markSelected
	}
	prefix := " "
	switch {
	case i == drop:
		prefix = "▸"
	case drop == list.Len() && i == drop-1:
		prefix = "▾"
	}
	label := textutil.PadRight(prefix+mark+" "+lf.Meta.Label(), w)
	switch {
	case s.drag != nil && i == s.drag.from:
		return Styles.Drop.Render(label)
	case focused && i == s.Cursor:
		return Styles.Cursor.Render(label)
	case list.IsSelected(lf):
		return Styles.Selected.Render(label)
	default:
		return Styles.Normal.Render(label)
	}
}

// details describes the cursor row: shape, description and authors.
func (s *Sidebar) details(list *loaded.List, w int) []string {
	out := make([]string, sidebarDetails)
	lf, ok := list.At(s.Cursor)
	if !ok {
		for i := range out {
			out[i] = strings.Repeat(" ", w)
		}
		return out
	}
	shape := fmt.Sprintf("%d rows × %d cols", lf.Frame.Height(), lf.Frame.Width())
	if !lf.Meta.Date.IsZero() {
		shape += " · " + lf.Meta.Date.Format("2006-01-02")
	}
	out[0] = Styles.Muted.Render(textutil.PadRight(strings.Repeat("─", w), w))
	out[1] = Styles.Muted.Render(textutil.PadRight(shape, w))
	desc := lf.Meta.Description
	if lf.Meta.Authors != "" {
		desc = strings.TrimSpace(desc + " by " + lf.Meta.Authors)
	}
	out[2] = Styles.Muted.Render(textutil.PadRight(desc, w))
	return out
}
