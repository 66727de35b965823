// Package loaded keeps the user-curated, ordered list of frames loaded from
// files, with a selection set.
package loaded

import (
	"encoding/binary"
	"slices"
	"time"

	"github.com/cespare/xxhash/v2"

	"blcsview/internal/frame"
)

// Meta is descriptive metadata carried alongside a loaded frame.
type Meta struct {
	Name        string
	Version     string
	Description string
	Authors     string
	Date        time.Time
}

// Label is the list row text, "name version".
func (m Meta) Label() string {
	if m.Version == "" {
		return m.Name
	}
	return m.Name + " " + m.Version
}

// LoadedFrame is a parsed file. Two LoadedFrames are the same element when
// their metadata and frame content are equal.
type LoadedFrame struct {
	Meta  Meta
	Frame *frame.Frame
}

// Key hashes metadata and frame content. Equal values have equal keys.
func (lf LoadedFrame) Key() uint64 {
	d := xxhash.New()
	for _, s := range []string{lf.Meta.Name, lf.Meta.Version, lf.Meta.Description, lf.Meta.Authors} {
		_, _ = d.WriteString(s)
		_, _ = d.Write([]byte{0})
	}
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(lf.Meta.Date.UnixNano()))
	_, _ = d.Write(buf[:])
	binary.LittleEndian.PutUint64(buf[:], lf.Frame.Key())
	_, _ = d.Write(buf[:])
	return d.Sum64()
}

// Equal compares metadata and frame content.
func (lf LoadedFrame) Equal(o LoadedFrame) bool {
	return lf.Meta.Name == o.Meta.Name &&
		lf.Meta.Version == o.Meta.Version &&
		lf.Meta.Description == o.Meta.Description &&
		lf.Meta.Authors == o.Meta.Authors &&
		lf.Meta.Date.Equal(o.Meta.Date) &&
		lf.Frame.Equal(o.Frame)
}

// List is an ordered sequence plus a selection set. Every selected value is
// present in the sequence. Not safe for concurrent use.
type List struct {
	frames   []LoadedFrame
	selected map[uint64][]LoadedFrame
}

// NewList returns an empty list.
func NewList() *List {
	return &List{selected: make(map[uint64][]LoadedFrame)}
}

// Add appends lf. Equal values may be added more than once.
func (l *List) Add(lf LoadedFrame) {
	l.frames = append(l.frames, lf)
}

func (l *List) Len() int { return len(l.frames) }

// At returns element i.
func (l *List) At(i int) (LoadedFrame, bool) {
	if i < 0 || i >= len(l.frames) {
		return LoadedFrame{}, false
	}
	return l.frames[i], true
}

// Frames returns a copy of the sequence.
func (l *List) Frames() []LoadedFrame {
	return slices.Clone(l.frames)
}

// IsSelected reports whether lf is in the selection.
func (l *List) IsSelected(lf LoadedFrame) bool {
	for _, s := range l.selected[lf.Key()] {
		if s.Equal(lf) {
			return true
		}
	}
	return false
}

// SelectedCount returns the size of the selection set.
func (l *List) SelectedCount() int {
	n := 0
	for _, bucket := range l.selected {
		n += len(bucket)
	}
	return n
}

// ToggleSelect flips the selection of element i. Out-of-range is ignored.
func (l *List) ToggleSelect(i int) {
	lf, ok := l.At(i)
	if !ok {
		return
	}
	if l.IsSelected(lf) {
		l.unselect(lf)
		return
	}
	l.selectValue(lf)
}

// ToggleSelectModified is the modifier-click variant. Range selection is not
// implemented yet, so it behaves like ToggleSelect.
func (l *List) ToggleSelectModified(i int) {
	l.ToggleSelect(i)
}

// ToggleAll selects every element when nothing is selected, otherwise clears
// the selection.
func (l *List) ToggleAll() {
	if l.SelectedCount() > 0 {
		l.selected = make(map[uint64][]LoadedFrame)
		return
	}
	for _, lf := range l.frames {
		if !l.IsSelected(lf) {
			l.selectValue(lf)
		}
	}
}

// Delete removes element i and, in the same step, its value from the
// selection.
func (l *List) Delete(i int) {
	lf, ok := l.At(i)
	if !ok {
		return
	}
	l.frames = slices.Delete(l.frames, i, i+1)
	l.unselect(lf)
}

// DeleteAll empties both the sequence and the selection.
func (l *List) DeleteAll() {
	l.frames = nil
	l.selected = make(map[uint64][]LoadedFrame)
}

// Reorder moves the element at from so that it lands before the element
// that was at to. to may equal Len() to move to the end. from == to and
// out-of-range indexes leave the list unchanged.
func (l *List) Reorder(from, to int) {
	if from == to || from < 0 || from >= len(l.frames) || to < 0 || to > len(l.frames) {
		return
	}
	lf := l.frames[from]
	l.frames = slices.Delete(l.frames, from, from+1)
	if from < to {
		to--
	}
	l.frames = slices.Insert(l.frames, to, lf)
}

// DropTarget computes the Reorder destination when the element dragged is
// released over hovered. Hovering the dragged element itself is a no-op drop.
func DropTarget(hovered, dragged int, pointerAboveMidpoint bool) int {
	if hovered == dragged || pointerAboveMidpoint {
		return hovered
	}
	return hovered + 1
}

// Selected returns the selected elements in sequence order. Duplicated
// values appear once per occurrence.
func (l *List) Selected() []LoadedFrame {
	var out []LoadedFrame
	for _, lf := range l.frames {
		if l.IsSelected(lf) {
			out = append(out, lf)
		}
	}
	return out
}

func (l *List) selectValue(lf LoadedFrame) {
	k := lf.Key()
	l.selected[k] = append(l.selected[k], lf)
}

func (l *List) unselect(lf LoadedFrame) {
	k := lf.Key()
	bucket := l.selected[k]
	for i, s := range bucket {
		if s.Equal(lf) {
			bucket = slices.Delete(bucket, i, i+1)
			break
		}
	}
	if len(bucket) == 0 {
		delete(l.selected, k)
		return
	}
	l.selected[k] = bucket
}
