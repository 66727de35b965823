package feed

import (
	"fmt"
	"time"

	"blcsview/internal/frame"
)

// Source identifies the producer that delivered a frame.
type Source uint8

const (
	SourceBus Source = iota + 1
	SourceCloud
	SourceFile
	SourceHTTP
)

func (s Source) String() string {
	switch s {
	case SourceBus:
		return "bus"
	case SourceCloud:
		return "cloud"
	case SourceFile:
		return "file"
	case SourceHTTP:
		return "http"
	default:
		return fmt.Sprintf("Source(%d)", uint8(s))
	}
}

// Delivery is one frame plus where it came from.
type Delivery struct {
	Frame  *frame.Frame
	Source Source
	// Topic is the bus topic, object name or request path.
	Topic string
	// Name and Version are optional metadata carried by the payload.
	Name     string
	Version  string
	Received time.Time
}

// ProducerError wraps a failure reported by a producer.
type ProducerError struct {
	Source Source
	Topic  string
	Err    error
}

func (e *ProducerError) Error() string {
	if e.Topic != "" {
		return fmt.Sprintf("%s %s: %v", e.Source, e.Topic, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Source, e.Err)
}

func (e *ProducerError) Unwrap() error { return e.Err }

// Options configures a Channel.
type Options struct {
	// Capacity bounds each queue; zero means unbounded.
	Capacity int
	// Notify is called after every accepted send. It must not block.
	Notify func()
}

// Channel pairs the frame stream and the error stream consumed by the UI tick.
type Channel struct {
	frames *Queue[Delivery]
	errors *Queue[error]
	notify func()
}

// New creates a channel.
func New(opts Options) *Channel {
	return &Channel{
		frames: NewQueue[Delivery](opts.Capacity),
		errors: NewQueue[error](opts.Capacity),
		notify: opts.Notify,
	}
}

// Sender returns a producer handle. Handles are cheap values; hand one to
// each producer.
func (c *Channel) Sender() Sender {
	return Sender{c: c}
}

// DrainFrames returns all pending deliveries in FIFO order.
func (c *Channel) DrainFrames() []Delivery { return c.frames.Drain() }

// DrainErrors returns all pending errors in FIFO order.
func (c *Channel) DrainErrors() []error { return c.errors.Drain() }

// Close drops the consumer end; subsequent sends return ErrClosed.
func (c *Channel) Close() {
	c.frames.Close()
	c.errors.Close()
}

// Stats returns the frame and error queue counters.
func (c *Channel) Stats() (frames, errs Stats) {
	return c.frames.Stats(), c.errors.Stats()
}

// Sender is the producer end of a Channel.
type Sender struct {
	c *Channel
}

// SendFrame enqueues a delivery, stamping Received when unset.
func (s Sender) SendFrame(d Delivery) error {
	if d.Received.IsZero() {
		d.Received = time.Now()
	}
	if err := s.c.frames.Send(d); err != nil {
		return err
	}
	s.wake()
	return nil
}

// SendError enqueues a producer error.
func (s Sender) SendError(err error) error {
	if err == nil {
		return nil
	}
	if qerr := s.c.errors.Send(err); qerr != nil {
		return qerr
	}
	s.wake()
	return nil
}

func (s Sender) wake() {
	if s.c.notify != nil {
		s.c.notify()
	}
}

// Signal returns a notify func and the channel it pokes. The channel has a
// one-slot buffer so bursts of sends coalesce into a single wake-up.
func Signal() (func(), <-chan struct{}) {
	ch := make(chan struct{}, 1)
	return func() {
		select {
		case ch <- struct{}{}:
		default:
		}
	}, ch
}
