package logging

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

// Entry is one recorded log line.
type Entry struct {
	Time  time.Time
	Level slog.Level
	// Message has the record's error attr appended, if any.
	Message string
}

func (e Entry) String() string { return e.Message }

// Recorder keeps the last few warn-and-above records for the status line.
// Safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	limit   int
	level   slog.Level
}

// NewRecorder keeps up to limit entries at level or above.
func NewRecorder(limit int, level slog.Level) *Recorder {
	if limit <= 0 {
		limit = 16
	}
	return &Recorder{limit: limit, level: level}
}

// Last returns the newest entry.
func (r *Recorder) Last() (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return Entry{}, false
	}
	return r.entries[len(r.entries)-1], true
}

// Entries returns recorded entries, oldest first.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

func (r *Recorder) add(e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	if len(r.entries) > r.limit {
		r.entries = r.entries[len(r.entries)-r.limit:]
	}
}

// Tee returns a handler writing to next and, for records at the recorder's
// level, to rec.
func Tee(next slog.Handler, rec *Recorder) slog.Handler {
	return &teeHandler{next: next, rec: rec}
}

type teeHandler struct {
	next slog.Handler
	rec  *Recorder
}

func (h *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.rec.level || h.next.Enabled(ctx, level)
}

func (h *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= h.rec.level {
		msg := r.Message
		r.Attrs(func(a slog.Attr) bool {
			if a.Key == "error" {
				msg += ": " + a.Value.String()
				return false
			}
			return true
		})
		h.rec.add(Entry{Time: r.Time, Level: r.Level, Message: strings.TrimSpace(msg)})
	}
	if h.next.Enabled(ctx, r.Level) {
		return h.next.Handle(ctx, r)
	}
	return nil
}

func (h *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &teeHandler{next: h.next.WithAttrs(attrs), rec: h.rec}
}

func (h *teeHandler) WithGroup(name string) slog.Handler {
	return &teeHandler{next: h.next.WithGroup(name), rec: h.rec}
}
