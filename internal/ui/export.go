package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"blcsview/internal/codec"
	"blcsview/internal/frame"
	"blcsview/internal/loaded"
	"blcsview/internal/pane"
)

// ExportPaneMsg writes the focused pane's frame to the export directory.
type ExportPaneMsg struct{}

// paneExportedMsg reports the result of an export command.
type paneExportedMsg struct {
	Path string
	Err  error
}

// exportName is "<kind>-<date>.<ext>", dated like the pane title.
func exportName(p *pane.Pane, now time.Time, format codec.Format) string {
	return fmt.Sprintf("%s-%s.%s", p.Kind.Slug(), p.Date(now).Format("20060102-150405"), format)
}

// exportPane snapshots the focused pane on the UI goroutine and writes it
// from a command. Frames are never mutated in place, so the snapshot is
// safe to encode off the UI goroutine.
func (a *AppModel) exportPane() tea.Cmd {
	reg := a.Pipeline.Registry
	id, ok := reg.Focused()
	if !ok {
		a.logger.Warn("nothing to export: no pane is open")
		return nil
	}
	p, _ := reg.Get(id)
	var f *frame.Frame
	if s := a.Pipeline.FrameFor(p); s != nil {
		f = s.Frame
	}
	if f.Height() == 0 {
		a.logger.Warn("nothing to export: pane has no data", "tile", id.String())
		return nil
	}

	now := a.Pipeline.Now()
	name := exportName(p, now, a.exportFormat)
	lf := loaded.LoadedFrame{
		Meta: loaded.Meta{
			Name:        strings.TrimSuffix(name, filepath.Ext(name)),
			Description: p.Kind.Description(),
			Date:        p.Date(now),
		},
		Frame: f,
	}
	path := filepath.Join(a.exportDir, name)
	format := a.exportFormat
	return func() tea.Msg {
		return paneExportedMsg{Path: path, Err: writeExport(path, format, lf)}
	}
}

func writeExport(path string, format codec.Format, lf loaded.LoadedFrame) error {
	data, err := codec.Encode(format, lf)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("export dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
