package ui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"blcsview/internal/logging"
)

const (
	defaultLogWidth  = 80
	defaultLogHeight = 16
)

// LogWindow shows the recorded warnings and errors with scrollback.
type LogWindow struct {
	recorder *logging.Recorder
	viewport viewport.Model
	shown    int
}

var _ View = (*LogWindow)(nil)

func NewLogWindow(rec *logging.Recorder) *LogWindow {
	w := &LogWindow{
		recorder: rec,
		viewport: viewport.New(defaultLogWidth, defaultLogHeight),
		shown:    -1,
	}
	w.refresh()
	return w
}

func (w *LogWindow) Init() tea.Cmd { return w.viewport.Init() }

func (w *LogWindow) Update(msg tea.Msg) (View, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		w.refresh()
		return w, nil
	case tea.WindowSizeMsg:
		w.viewport.Width = max(msg.Width-8, 40)
		w.viewport.Height = max(msg.Height/2, 8)
		w.shown = -1
		w.refresh()
		return w, nil
	case tea.KeyMsg:
		if msg.String() == "esc" || msg.String() == "q" {
			return w, dismiss
		}
	}
	var cmd tea.Cmd
	w.viewport, cmd = w.viewport.Update(msg)
	return w, cmd
}

func (w *LogWindow) View() string {
	header := Styles.TitleFocused.Render("Log") + Styles.Muted.Render("  esc: close")
	return Styles.Overlay.Render(header + "\n" + w.viewport.View())
}

// refresh reloads the entries when new ones arrived and follows the tail.
func (w *LogWindow) refresh() {
	if w.recorder == nil {
		w.viewport.SetContent(Styles.Empty.Render("logging is not recorded"))
		return
	}
	entries := w.recorder.Entries()
	if len(entries) == w.shown {
		return
	}
	w.shown = len(entries)
	if len(entries) == 0 {
		w.viewport.SetContent(Styles.Empty.Render("nothing logged yet"))
		return
	}
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, Styles.Muted.Render(e.Time.Format("15:04:05"))+" "+levelStyle(e.Level).Render(levelIcon(e.Level))+" "+e.Message)
	}
	w.viewport.SetContent(strings.Join(lines, "\n"))
	w.viewport.GotoBottom()
}

func levelIcon(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "✗"
	case l >= slog.LevelWarn:
		return "!"
	default:
		return "•"
	}
}

func levelStyle(l slog.Level) lipgloss.Style {
	switch {
	case l >= slog.LevelError:
		return Styles.Error
	case l >= slog.LevelWarn:
		return Styles.Warning
	default:
		return Styles.Muted
	}
}
