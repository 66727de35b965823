// Package live keeps a rolling window of the most recent rows received per
// sensor kind. Real-time panes render from it.
package live

import (
	"time"

	"blcsview/internal/frame"
	"blcsview/internal/sensor"
)

// DefaultWindow is the number of rows kept per kind when none is configured.
const DefaultWindow = 512

// Series is the rolling buffer for one kind.
type Series struct {
	Frame    *frame.Frame
	Topic    string
	Updated  time.Time
	Received int // deliveries since the series was created
}

// Store maps kinds to their rolling series. Owned by the UI goroutine.
type Store struct {
	series map[sensor.Kind]*Series
	window int
}

// NewStore creates a store that keeps at most window rows per kind.
func NewStore(window int) *Store {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Store{
		series: make(map[sensor.Kind]*Series),
		window: window,
	}
}

// Append adds the rows of f to kind's series, dropping the oldest rows past
// the window. A frame whose schema differs from the buffered one restarts the
// series; restarted reports that.
func (s *Store) Append(kind sensor.Kind, topic string, f *frame.Frame, at time.Time) (restarted bool) {
	cur, ok := s.series[kind]
	if !ok {
		cur = &Series{}
		s.series[kind] = cur
	}
	merged, err := frame.Concat(cur.Frame, f)
	if err != nil {
		merged = f
		cur.Received = 0
		restarted = true
	}
	cur.Frame = merged.Tail(s.window)
	cur.Topic = topic
	cur.Updated = at
	cur.Received++
	return restarted
}

// Get returns the series for kind.
func (s *Store) Get(kind sensor.Kind) (Series, bool) {
	cur, ok := s.series[kind]
	if !ok {
		return Series{}, false
	}
	return *cur, true
}

// Frame is a shortcut for the buffered frame of kind, nil when nothing arrived.
func (s *Store) Frame(kind sensor.Kind) *frame.Frame {
	if cur, ok := s.series[kind]; ok {
		return cur.Frame
	}
	return nil
}

// Window returns the per-kind row limit.
func (s *Store) Window() int { return s.window }

// Len returns the number of kinds with data.
func (s *Store) Len() int { return len(s.series) }

// Reset drops every series.
func (s *Store) Reset() {
	s.series = make(map[sensor.Kind]*Series)
}
