// Package feed is the hand-off between producer goroutines and the UI tick:
// sends never block, the consumer drains without waiting.
package feed

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned by Send once the consumer has gone away.
	// Producers should stop when they see it.
	ErrClosed = errors.New("feed: consumer closed")
	// ErrFull is returned when a bounded queue drops a value.
	ErrFull = errors.New("feed: queue full, value dropped")
)

// Stats counts queue traffic since construction.
type Stats struct {
	Sent     uint64
	Received uint64
	Dropped  uint64
	Pending  int
}

// Queue is an unbounded (or optionally bounded) FIFO safe for any number of
// concurrent senders and a single receiver.
type Queue[T any] struct {
	mu       sync.Mutex
	items    []T
	head     int
	capacity int
	closed   bool
	stats    Stats
}

// NewQueue returns a queue. capacity <= 0 means unbounded.
func NewQueue[T any](capacity int) *Queue[T] {
	return &Queue[T]{capacity: capacity}
}

// Send enqueues v without blocking.
func (q *Queue[T]) Send(v T) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	if q.capacity > 0 && len(q.items)-q.head >= q.capacity {
		q.stats.Dropped++
		return ErrFull
	}
	q.items = append(q.items, v)
	q.stats.Sent++
	return nil
}

// TryReceive pops the oldest value, reporting false when empty.
func (q *Queue[T]) TryReceive() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var zero T
	if q.head >= len(q.items) {
		return zero, false
	}
	v := q.items[q.head]
	q.items[q.head] = zero
	q.head++
	q.stats.Received++
	q.compact()
	return v, true
}

// Drain returns every buffered value in arrival order and leaves the queue
// empty. Values sent concurrently with Drain land either in this batch or
// the next one.
func (q *Queue[T]) Drain() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.head >= len(q.items) {
		return nil
	}
	out := make([]T, len(q.items)-q.head)
	copy(out, q.items[q.head:])
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0
	q.stats.Received += uint64(len(out))
	return out
}

// Len returns the number of buffered values.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// Close drops the consumer end. Buffered values stay drainable.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Closed reports whether Close was called.
func (q *Queue[T]) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

func (q *Queue[T]) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	s := q.stats
	s.Pending = len(q.items) - q.head
	return s
}

// compact reclaims the consumed prefix once it dominates the slice.
func (q *Queue[T]) compact() {
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
		return
	}
	if q.head > 64 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		var zero T
		for i := n; i < len(q.items); i++ {
			q.items[i] = zero
		}
		q.items = q.items[:n]
		q.head = 0
	}
}
