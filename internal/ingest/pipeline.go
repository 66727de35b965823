// Package ingest is the per-tick consumer: it drains the feed, classifies
// frames, and keeps the pane registry and loaded list up to date.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"blcsview/internal/codec"
	"blcsview/internal/feed"
	"blcsview/internal/live"
	"blcsview/internal/loaded"
	"blcsview/internal/pane"
	"blcsview/internal/sensor"
)

// DecodeFunc parses one dropped file.
type DecodeFunc func(name string, data []byte) (loaded.LoadedFrame, error)

// DroppedFile is a file handed to the viewer: by path on the command line,
// pasted into the terminal, or written into the drop directory.
type DroppedFile struct {
	Name string
	Data []byte
	// Err is set when the bytes could not be read.
	Err error
}

// TickReport summarizes one Tick.
type TickReport struct {
	Frames      int
	Inserted    int
	Live        int
	Unsupported int
	Errors      int
}

// Empty reports whether the tick consumed nothing.
func (r TickReport) Empty() bool {
	return r.Frames == 0 && r.Errors == 0
}

// DropReport summarizes one DropFiles call.
type DropReport struct {
	Loaded   int
	Inserted int
	Failed   int
}

// Pipeline owns the registry, the loaded list and the live buffers. All
// methods must be called from the UI goroutine.
type Pipeline struct {
	Registry *pane.Registry
	Loaded   *loaded.List
	Live     *live.Store

	feed   *feed.Channel
	decode DecodeFunc
	logger *slog.Logger
	tracer trace.Tracer
	now    func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer used for tick and drop spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithDecoder replaces the file decoder. Defaults to codec.Decode.
func WithDecoder(d DecodeFunc) Option {
	return func(p *Pipeline) { p.decode = d }
}

// WithLiveWindow sets how many rows each live series keeps.
func WithLiveWindow(rows int) Option {
	return func(p *Pipeline) { p.Live = live.NewStore(rows) }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline consuming ch.
func New(ch *feed.Channel, opts ...Option) *Pipeline {
	p := &Pipeline{
		Registry: pane.NewRegistry(),
		Loaded:   loaded.NewList(),
		Live:     live.NewStore(live.DefaultWindow),
		feed:     ch,
		decode:   codec.Decode,
		logger:   slog.Default(),
		tracer:   noop.NewTracerProvider().Tracer("blcsview/ingest"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Tick drains pending frames then pending errors. It never blocks and never
// fails; every problem ends up in the log.
func (p *Pipeline) Tick(ctx context.Context) TickReport {
	var rep TickReport
	deliveries := p.feed.DrainFrames()
	errs := p.feed.DrainErrors()
	if len(deliveries) == 0 && len(errs) == 0 {
		return rep
	}

	_, span := p.tracer.Start(ctx, "ingest.tick")
	defer span.End()

	for _, d := range deliveries {
		rep.Frames++
		kind, err := sensor.Classify(d.Frame)
		if err != nil {
			rep.Unsupported++
			p.logger.Error("discarding frame",
				"error", err,
				"source", d.Source.String(),
				"topic", d.Topic,
				"columns", d.Frame.Names())
			continue
		}
		if d.Source == feed.SourceBus {
			if p.Live.Append(kind, d.Topic, d.Frame, d.Received) {
				p.logger.Warn("live schema changed, series restarted", "kind", kind.Label(), "topic", d.Topic)
			}
			rep.Live++
			continue
		}
		id := p.Registry.Insert(pane.Static(kind, d.Frame))
		rep.Inserted++
		p.logger.Debug("pane inserted", "tile", id.String(), "kind", kind.Label(), "source", d.Source.String())
	}

	for _, err := range errs {
		rep.Errors++
		attrs := []any{"error", err}
		var pe *feed.ProducerError
		if errors.As(err, &pe) {
			attrs = append(attrs, "source", pe.Source.String(), "topic", pe.Topic)
		}
		p.logger.Error("producer error", attrs...)
	}

	span.SetAttributes(
		attribute.Int("frames", rep.Frames),
		attribute.Int("inserted", rep.Inserted),
		attribute.Int("live", rep.Live),
		attribute.Int("unsupported", rep.Unsupported),
		attribute.Int("errors", rep.Errors),
	)
	return rep
}

// DropFiles parses each file in order. Parsed files join the loaded list and,
// when they classify, open a static pane. A file that fails is logged and the
// batch carries on.
func (p *Pipeline) DropFiles(ctx context.Context, files []DroppedFile) DropReport {
	var rep DropReport
	if len(files) == 0 {
		return rep
	}
	_, span := p.tracer.Start(ctx, "ingest.drop", trace.WithAttributes(attribute.Int("files", len(files))))
	defer span.End()

	for _, f := range files {
		if f.Err != nil {
			rep.Failed++
			p.logger.Error("reading dropped file", "file", f.Name, "error", f.Err)
			continue
		}
		lf, err := p.decode(f.Name, f.Data)
		if err != nil {
			rep.Failed++
			p.logger.Error("parsing dropped file", "file", f.Name, "error", err)
			continue
		}
		p.Loaded.Add(lf)
		rep.Loaded++

		kind, err := sensor.Classify(lf.Frame)
		if err != nil {
			p.logger.Error("loaded frame has no pane", "file", f.Name, "error", err)
			continue
		}
		p.Registry.Insert(pane.Static(kind, lf.Frame))
		rep.Inserted++
	}

	span.SetAttributes(
		attribute.Int("loaded", rep.Loaded),
		attribute.Int("failed", rep.Failed),
	)
	return rep
}

// ShowSelected opens a static pane for every selected loaded frame and
// returns how many opened.
func (p *Pipeline) ShowSelected() int {
	n := 0
	for _, lf := range p.Loaded.Selected() {
		kind, err := sensor.Classify(lf.Frame)
		if err != nil {
			p.logger.Error("cannot show loaded frame", "name", lf.Meta.Label(), "error", err)
			continue
		}
		p.Registry.Insert(pane.Static(kind, lf.Frame))
		n++
	}
	return n
}

// ToggleLive opens the real-time pane for kind, or closes it when open.
func (p *Pipeline) ToggleLive(kind sensor.Kind) (pane.TileID, bool) {
	id, opened := p.Registry.Toggle(pane.Live(kind))
	p.logger.Info("live pane toggled", "kind", kind.Label(), "opened", opened)
	return id, opened
}

// FrameFor returns the frame a pane renders: its own for static panes, the
// live buffer for real-time ones.
func (p *Pipeline) FrameFor(pn *pane.Pane) *live.Series {
	if !pn.IsRealTime() {
		return &live.Series{Frame: pn.Frame}
	}
	s, ok := p.Live.Get(pn.Kind)
	if !ok {
		return nil
	}
	return &s
}

// Reset rebuilds the registry, the loaded list and the live buffers from
// empty. The feed is left untouched.
func (p *Pipeline) Reset() {
	p.Registry.Reset()
	p.Loaded.DeleteAll()
	p.Live.Reset()
	p.logger.Info("application reset")
}

// Now returns the pipeline clock.
func (p *Pipeline) Now() time.Time { return p.now() }
