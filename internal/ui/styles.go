package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Theme colors (ANSI 256).
const (
	ColorAccent    = "86"
	ColorHighlight = "205"
	ColorDanger    = "196"
	ColorMuted     = "241"
	ColorText      = "252"
	ColorDim       = "238"
	ColorWarning   = "208"
	ColorPlot      = "214"
)

// Styles holds the shared styles.
var Styles = struct {
	Title        lipgloss.Style
	TitleFocused lipgloss.Style

	Tile        lipgloss.Style
	TileFocused lipgloss.Style
	Sidebar     lipgloss.Style
	Overlay     lipgloss.Style

	Selected lipgloss.Style
	Cursor   lipgloss.Style
	Muted    lipgloss.Style
	Normal   lipgloss.Style
	Empty    lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Drop     lipgloss.Style

	PlotLine  lipgloss.Style
	PlotAxis  lipgloss.Style
	PlotLabel lipgloss.Style
}{
	Title: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	TitleFocused: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	Tile: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDim)),
	TileFocused: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)),
	Sidebar: lipgloss.NewStyle().
		Border(lipgloss.NormalBorder(), false, true, false, false).
		BorderForeground(lipgloss.Color(ColorDim)),
	Overlay: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Cursor: lipgloss.NewStyle().
		Reverse(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDanger)),
	Warning: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Drop: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	PlotLine: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorPlot)),
	PlotAxis: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim)),
	PlotLabel: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
}

// tableStyles returns the bubbles/table styles used by table panes.
func tableStyles(focused bool) table.Styles {
	s := table.DefaultStyles()
	s.Header = s.Header.
		Bold(true).
		BorderForeground(lipgloss.Color(ColorDim))
	s.Selected = lipgloss.NewStyle()
	if focused {
		s.Selected = s.Selected.Foreground(lipgloss.Color(ColorHighlight))
	}
	return s
}
