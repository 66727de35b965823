package sensor

import (
	"errors"
	"fmt"

	"github.com/agnivade/levenshtein"

	"blcsview/internal/frame"
)

// ErrUnsupportedFormat is wrapped by every classification failure.
var ErrUnsupportedFormat = errors.New("unsupported data frame format")

// maxHintDistance bounds how far a column name may be from a known name
// before no suggestion is offered.
const maxHintDistance = 3

// FormatError describes a frame that cannot be classified.
type FormatError struct {
	// Column is the name of the discriminating column, empty when the frame
	// has fewer than two columns.
	Column string
	Width  int
	// Suggestion is the closest known name, if any is near enough.
	Suggestion string
}

func (e *FormatError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("%s: need at least 2 columns, got %d", ErrUnsupportedFormat, e.Width)
	}
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: column %q (did you mean %q?)", ErrUnsupportedFormat, e.Column, e.Suggestion)
	}
	return fmt.Sprintf("%s: column %q", ErrUnsupportedFormat, e.Column)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

var byName = func() map[string]Kind {
	m := make(map[string]Kind, 8)
	for _, k := range All() {
		m[k.Name()] = k
	}
	return m
}()

// Classify tags a frame with its sensor kind using the name of column 1.
// Names match exactly and case-sensitively.
func Classify(f *frame.Frame) (Kind, error) {
	if f.Width() < 2 {
		return Kind{}, &FormatError{Width: f.Width()}
	}
	name := f.Column(1).Name()
	if k, ok := byName[name]; ok {
		return k, nil
	}
	return Kind{}, &FormatError{Column: name, Width: f.Width(), Suggestion: suggest(name)}
}

func suggest(name string) string {
	best, bestDist := "", maxHintDistance+1
	for _, k := range All() {
		d := levenshtein.ComputeDistance(name, k.Name())
		if d < bestDist {
			best, bestDist = k.Name(), d
		}
	}
	return best
}
