// Package textutil measures and fits text to terminal cells.
package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Ellipsis marks truncated text.
const Ellipsis = "…"

// Width is the number of cells s occupies. ANSI sequences are not stripped.
func Width(s string) int {
	return runewidth.StringWidth(s)
}

// Truncate fits s into limit cells, ending with an ellipsis when cut.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if Width(s) <= limit {
		return s
	}
	room := limit - Width(Ellipsis)
	if room <= 0 {
		return Ellipsis
	}
	var b strings.Builder
	used := 0
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if used+w > room {
			break
		}
		b.WriteRune(r)
		used += w
	}
	return b.String() + Ellipsis
}

// PadRight fits s into exactly width cells.
func PadRight(s string, width int) string {
	s = Truncate(s, width)
	return s + strings.Repeat(" ", max(width-Width(s), 0))
}

// PadLeft is PadRight aligned to the right edge.
func PadLeft(s string, width int) string {
	s = Truncate(s, width)
	return strings.Repeat(" ", max(width-Width(s), 0)) + s
}
