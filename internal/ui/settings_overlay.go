package ui

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"blcsview/internal/pane"
	"blcsview/internal/ui/textutil"
)

const settingsListHeight = 10

// SettingsOverlay edits one pane's view, precision and identifier filter.
// It edits the pane in place through the registry, so it must run on the UI
// goroutine like everything else.
type SettingsOverlay struct {
	registry *pane.Registry
	id       pane.TileID
	ids      []uint64
	cursor   int
	offset   int
}

var _ View = (*SettingsOverlay)(nil)

func NewSettingsOverlay(reg *pane.Registry, id pane.TileID) *SettingsOverlay {
	o := &SettingsOverlay{registry: reg, id: id}
	o.refreshIDs()
	if p, ok := reg.Get(id); ok {
		p.State.SettingsOpen = true
	}
	return o
}

// TileID is the pane being edited.
func (o *SettingsOverlay) TileID() pane.TileID { return o.id }

func (o *SettingsOverlay) refreshIDs() {
	o.ids = nil
	if p, ok := o.registry.Get(o.id); ok && p.Frame != nil {
		o.ids = pane.Identifiers(p.Frame)
	}
	o.cursor = max(min(o.cursor, len(o.ids)-1), 0)
}

func (o *SettingsOverlay) Init() tea.Cmd { return nil }

func (o *SettingsOverlay) Update(msg tea.Msg) (View, tea.Cmd) {
	p, ok := o.registry.Get(o.id)
	if !ok {
		// the pane was closed underneath us
		return o, dismiss
	}
	switch msg := msg.(type) {
	case frameMsg:
		if p.IsRealTime() {
			return o, nil
		}
		o.refreshIDs()
	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "enter":
			p.State.SettingsOpen = false
			return o, dismiss
		case "+", "=":
			p.Settings.Precision = min(p.Settings.Precision+1, pane.MaxPrecision)
		case "-", "_":
			p.Settings.Precision = max(p.Settings.Precision-1, 0)
		case "v":
			p.View = p.View.Toggle()
		case "up", "k":
			o.cursor = max(o.cursor-1, 0)
		case "down", "j":
			o.cursor = max(min(o.cursor+1, len(o.ids)-1), 0)
		case "x", "t":
			if o.cursor < len(o.ids) {
				p.Settings.Filter.Toggle(o.ids[o.cursor])
			}
		case "a":
			p.Settings.Filter.SelectAll(o.ids)
		case "n":
			p.Settings.Filter.Clear()
		}
	}
	o.offset = scrollTo(o.cursor, o.offset, settingsListHeight)
	return o, nil
}

func (o *SettingsOverlay) View() string {
	p, ok := o.registry.Get(o.id)
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(Styles.TitleFocused.Render("Pane settings") + "  " + Styles.Muted.Render(p.Kind.Name()) + "\n\n")
	fmt.Fprintf(&b, "view       %s\n", p.View)
	fmt.Fprintf(&b, "precision  %d\n", p.Settings.Precision)

	b.WriteString("\n" + Styles.Title.Render(pane.IdentifierColumn) + " ")
	switch {
	case len(o.ids) == 0:
		b.WriteString(Styles.Empty.Render("none in frame"))
	case p.Settings.Filter.Empty():
		b.WriteString(Styles.Muted.Render("all shown"))
	}
	b.WriteString("\n")
	end := min(o.offset+settingsListHeight, len(o.ids))
	for i := o.offset; i < end; i++ {
		id := o.ids[i]
		mark := "[ ]"
		if p.Settings.Filter.Contains(id) {
			mark = "[x]"
		}
		line := textutil.PadRight(mark+" "+strconv.FormatUint(id, 10), 24)
		if i == o.cursor {
			line = Styles.Cursor.Render(line)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n" + Styles.Muted.Render("+/- precision  v view  x toggle  a all  n none  esc close"))
	return Styles.Overlay.Render(b.String())
}

// scrollTo returns an offset that keeps cursor inside a window of height.
func scrollTo(cursor, offset, height int) int {
	if cursor < offset {
		return cursor
	}
	if cursor >= offset+height {
		return cursor - height + 1
	}
	return offset
}

func dismiss() tea.Msg { return DismissModalMsg{} }
