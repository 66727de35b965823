// Package frame holds the immutable tabular value that flows from producers
// to panes: ordered named columns of equal length.
package frame

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// ErrShape is returned when columns disagree on length or names collide.
var ErrShape = errors.New("frame: inconsistent shape")

// Frame is an immutable table. A nil *Frame is a valid empty frame for all
// read accessors.
type Frame struct {
	columns []Column
	height  int
	key     uint64
}

// New builds a frame from columns. All columns must have the same length and
// distinct names.
func New(columns ...Column) (*Frame, error) {
	f := &Frame{columns: append([]Column(nil), columns...)}
	seen := make(map[string]struct{}, len(columns))
	for i, c := range f.columns {
		if _, dup := seen[c.Name()]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrShape, c.Name())
		}
		seen[c.Name()] = struct{}{}
		if i == 0 {
			f.height = c.Len()
			continue
		}
		if c.Len() != f.height {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, c.Name(), c.Len(), f.height)
		}
	}
	f.key = f.hash()
	return f, nil
}

// MustNew is New for statically known input.
func MustNew(columns ...Column) *Frame {
	f, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return f
}

// Width returns the number of columns.
func (f *Frame) Width() int {
	if f == nil {
		return 0
	}
	return len(f.columns)
}

// Height returns the number of rows.
func (f *Frame) Height() int {
	if f == nil {
		return 0
	}
	return f.height
}

// Column returns column i. It panics when i is out of range, like a slice index.
func (f *Frame) Column(i int) Column {
	return f.columns[i]
}

// Lookup finds a column by name.
func (f *Frame) Lookup(name string) (Column, bool) {
	if f == nil {
		return Column{}, false
	}
	for _, c := range f.columns {
		if c.Name() == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the column names in order.
func (f *Frame) Names() []string {
	if f == nil {
		return nil
	}
	names := make([]string, len(f.columns))
	for i, c := range f.columns {
		names[i] = c.Name()
	}
	return names
}

// Columns returns a copy of the column list.
func (f *Frame) Columns() []Column {
	if f == nil {
		return nil
	}
	return append([]Column(nil), f.columns...)
}

// Key is a content hash over names, types and values. Equal frames have
// equal keys.
func (f *Frame) Key() uint64 {
	if f == nil {
		return 0
	}
	return f.key
}

// Equal reports whether two frames have identical content.
func (f *Frame) Equal(o *Frame) bool {
	if f == nil || o == nil {
		return f.Width() == 0 && o.Width() == 0
	}
	if f == o {
		return true
	}
	if f.key != o.key || f.height != o.height || len(f.columns) != len(o.columns) {
		return false
	}
	for i := range f.columns {
		if !f.columns[i].equal(o.columns[i]) {
			return false
		}
	}
	return true
}

// Tail returns the last n rows as a new frame.
func (f *Frame) Tail(n int) *Frame {
	if f == nil || n >= f.height {
		return f
	}
	if n < 0 {
		n = 0
	}
	cols := make([]Column, len(f.columns))
	for i, c := range f.columns {
		cols[i] = c.Slice(f.height-n, f.height)
	}
	return MustNew(cols...)
}

// SameSchema reports whether both frames have the same column names and types
// in the same order.
func (f *Frame) SameSchema(o *Frame) bool {
	if f.Width() != o.Width() {
		return false
	}
	for i := range f.columns {
		if f.columns[i].Name() != o.columns[i].Name() || f.columns[i].Type() != o.columns[i].Type() {
			return false
		}
	}
	return true
}

// Concat appends the rows of b to a. Both frames must share a schema.
func Concat(a, b *Frame) (*Frame, error) {
	if a.Width() == 0 {
		return b, nil
	}
	if b.Width() == 0 {
		return a, nil
	}
	if !a.SameSchema(b) {
		return nil, fmt.Errorf("%w: schemas differ (%v vs %v)", ErrShape, a.Names(), b.Names())
	}
	cols := make([]Column, len(a.columns))
	for i := range a.columns {
		c, err := a.columns[i].appendColumn(b.columns[i])
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	return New(cols...)
}

func (f *Frame) hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		_, _ = d.Write(buf[:])
	}
	for _, c := range f.columns {
		_, _ = d.WriteString(c.Name())
		_, _ = d.Write([]byte{0, byte(c.Type())})
		put(uint64(c.Len()))
		for i := 0; i < c.Len(); i++ {
			switch c.Type() {
			case TypeInt:
				put(uint64(c.ints[i]))
			case TypeUint:
				put(c.uints[i])
			case TypeString:
				put(uint64(len(c.strs[i])))
				_, _ = d.WriteString(c.strs[i])
			case TypeTime:
				put(uint64(c.times[i].UnixNano()))
			default:
				v := c.floats[i]
				if math.IsNaN(v) {
					v = math.NaN()
				}
				put(math.Float64bits(v))
			}
		}
	}
	return d.Sum64()
}
