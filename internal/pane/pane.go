// Package pane models the visual slots of the viewer and the tile registry
// that owns them.
package pane

import (
	"sort"
	"time"

	"blcsview/internal/frame"
	"blcsview/internal/sensor"
)

// View selects how a pane renders its frame.
type View uint8

const (
	ViewPlot View = iota
	ViewTable
)

func (v View) String() string {
	if v == ViewTable {
		return "table"
	}
	return "plot"
}

// Toggle returns the other view.
func (v View) Toggle() View {
	if v == ViewTable {
		return ViewPlot
	}
	return ViewTable
}

const (
	DefaultPrecision = 2
	MaxPrecision     = 9

	IconLive   = "◷"
	IconLoaded = "☁"

	// IdentifierColumn names the column the identifier filter applies to.
	IdentifierColumn = "Identifier"
	// TimestampColumn names the column used for the x axis and pane date.
	TimestampColumn = "Timestamp"
)

// Settings are user-tunable per pane.
type Settings struct {
	Precision int
	// Filter restricts table rows to the listed identifiers. Empty means all.
	Filter Filter
}

// DefaultSettings returns the settings a new pane starts with.
func DefaultSettings() Settings {
	return Settings{Precision: DefaultPrecision}
}

// State is transient per-pane UI state.
type State struct {
	SettingsOpen bool
	// Offset is the first visible table row.
	Offset int
}

// Pane is one visual slot. A nil Frame marks a live pane that renders the
// rolling buffer for its kind.
type Pane struct {
	Kind     sensor.Kind
	Frame    *frame.Frame
	View     View
	Settings Settings
	State    State
}

// Live returns a real-time pane template for kind.
func Live(kind sensor.Kind) Pane {
	return Pane{Kind: kind, Settings: DefaultSettings()}
}

// Static returns a pane showing a fixed frame.
func Static(kind sensor.Kind, f *frame.Frame) Pane {
	return Pane{Kind: kind, Frame: f, Settings: DefaultSettings()}
}

// IsRealTime reports whether the pane follows a live stream.
func (p Pane) IsRealTime() bool { return p.Frame == nil }

// Like reports whether two panes would show the same stream: same kind and
// the same liveness.
func (p Pane) Like(o Pane) bool {
	return p.Kind == o.Kind && p.IsRealTime() == o.IsRealTime()
}

func (p Pane) Icon() string {
	if p.IsRealTime() {
		return IconLive
	}
	return IconLoaded
}

// Topic is the bus topic a live pane listens on.
func (p Pane) Topic() (string, bool) {
	if !p.IsRealTime() {
		return "", false
	}
	return p.Kind.Topic(), true
}

// Date is the first timestamp of a static frame, or today for live panes and
// frames without a time column.
func (p Pane) Date(now time.Time) time.Time {
	if p.Frame != nil {
		if col, ok := p.Frame.Lookup(TimestampColumn); ok {
			if ts, ok := col.Time(0); ok {
				return ts
			}
			if v, ok := col.Float(0); ok && col.Type() != frame.TypeString {
				return time.Unix(0, int64(v*float64(time.Second))).UTC()
			}
		}
	}
	return now
}

// Title renders "icon kind date".
func (p Pane) Title(now time.Time) string {
	layout := "2006-01-02-15-04-05"
	if p.IsRealTime() {
		layout = "2006-01-02"
	}
	return p.Icon() + " " + p.Kind.Name() + " " + p.Date(now).Format(layout)
}

// Identifiers lists the distinct identifier values of the pane's frame.
func Identifiers(f *frame.Frame) []uint64 {
	col, ok := f.Lookup(IdentifierColumn)
	if !ok {
		return nil
	}
	seen := make(map[uint64]struct{})
	var out []uint64
	for i := 0; i < col.Len(); i++ {
		id, ok := col.Uint(i)
		if !ok {
			continue
		}
		if _, dup := seen[id]; !dup {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Filter is a set of identifiers.
type Filter struct {
	ids map[uint64]struct{}
}

// Empty reports whether the filter lets every row through.
func (f Filter) Empty() bool { return len(f.ids) == 0 }

func (f Filter) Contains(id uint64) bool {
	_, ok := f.ids[id]
	return ok
}

// Allows reports whether a row with id passes the filter.
func (f Filter) Allows(id uint64) bool {
	return f.Empty() || f.Contains(id)
}

// Toggle adds id if absent, removes it otherwise.
func (f *Filter) Toggle(id uint64) {
	if f.ids == nil {
		f.ids = make(map[uint64]struct{})
	}
	if _, ok := f.ids[id]; ok {
		delete(f.ids, id)
		return
	}
	f.ids[id] = struct{}{}
}

// SelectAll puts every id in the filter.
func (f *Filter) SelectAll(ids []uint64) {
	f.ids = make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		f.ids[id] = struct{}{}
	}
}

// Clear empties the filter.
func (f *Filter) Clear() { f.ids = nil }

// Rows returns the row indexes of fr that pass the filter.
func (f Filter) Rows(fr *frame.Frame) []int {
	rows := make([]int, 0, fr.Height())
	col, hasIDs := fr.Lookup(IdentifierColumn)
	for i := 0; i < fr.Height(); i++ {
		if hasIDs && !f.Empty() {
			id, ok := col.Uint(i)
			if !ok || !f.Contains(id) {
				continue
			}
		}
		rows = append(rows, i)
	}
	return rows
}
