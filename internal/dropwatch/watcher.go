// Package dropwatch turns files written into a directory into drop batches
// for the viewer. It stands in for desktop drag-and-drop in a terminal.
package dropwatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"blcsview/internal/codec"
	"blcsview/internal/ingest"
)

const defaultDebounce = 250 * time.Millisecond

// Watcher reports batches of new or rewritten files in one directory.
type Watcher struct {
	dir      string
	debounce time.Duration
	deliver  func([]ingest.DroppedFile)
	logger   *slog.Logger
}

// New creates a watcher for dir. deliver is called from the watcher's
// goroutine and must not block for long.
func New(dir string, debounce time.Duration, deliver func([]ingest.DroppedFile), logger *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{dir: dir, debounce: debounce, deliver: deliver, logger: logger.With("component", "dropwatch")}
}

// Run watches until ctx is done. Bursts of events are coalesced: a batch
// is delivered once the directory has been quiet for the debounce period.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("drop dir: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("drop watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}
	w.logger.Info("watching drop directory", "dir", w.dir)

	timer := time.NewTimer(0)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevant(ev) {
				continue
			}
			pending[ev.Name] = struct{}{}
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			if batch := readFiles(paths, true); len(batch) > 0 {
				w.deliver(batch)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("drop watcher error", "error", err)
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return false
	}
	base := filepath.Base(ev.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}
	_, err := codec.FormatFor(base)
	return err == nil
}

// ReadFiles loads paths named by the user, in sorted order. Every path
// yields one entry; missing files and directories come back with Err set so
// the failure is reported per file.
func ReadFiles(paths []string) []ingest.DroppedFile {
	return readFiles(paths, false)
}

// readFiles is ReadFiles with an option to skip paths that vanished or are
// directories, which is normal for files seen by the watcher.
func readFiles(paths []string, skipMissing bool) []ingest.DroppedFile {
	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)
	out := make([]ingest.DroppedFile, 0, len(sorted))
	for _, p := range sorted {
		info, err := os.Stat(p)
		switch {
		case err != nil && skipMissing && errors.Is(err, os.ErrNotExist):
			continue
		case err != nil:
			out = append(out, ingest.DroppedFile{Name: p, Err: err})
			continue
		case info.IsDir():
			if !skipMissing {
				out = append(out, ingest.DroppedFile{Name: p, Err: fmt.Errorf("%s: is a directory", p)})
			}
			continue
		}
		data, err := os.ReadFile(p)
		out = append(out, ingest.DroppedFile{Name: p, Data: data, Err: err})
	}
	return out
}

// ParsePaste extracts file paths from pasted text. Terminals paste dragged
// files as space-separated, possibly quoted or backslash-escaped paths.
func ParsePaste(text string) []string {
	var (
		paths []string
		cur   strings.Builder
		quote rune
		esc   bool
	)
	flush := func() {
		if cur.Len() > 0 {
			paths = append(paths, strings.TrimPrefix(cur.String(), "file://"))
			cur.Reset()
		}
	}
	for _, r := range text {
		switch {
		case esc:
			cur.WriteRune(r)
			esc = false
		case r == '\\' && quote != '\'':
			esc = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ' ' || r == '\n' || r == '\t' || r == '\r':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return paths
}
