package ingest

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"blcsview/internal/feed"
	"blcsview/internal/frame"
	"blcsview/internal/pane"
	"blcsview/internal/sensor"
)

func newTestPipeline(t *testing.T) (*Pipeline, *feed.Channel, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	ch := feed.New(feed.Options{})
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(ch, WithLogger(logger), WithLiveWindow(4)), ch, &logs
}

func kindFrame(name string) *frame.Frame {
	return frame.MustNew(frame.Ints("Identifier", 1, 2), frame.Floats(name, 1, 2))
}

func TestTickInsertsStaticAndFeedsLive(t *testing.T) {
	t.Parallel()

	p, ch, logs := newTestPipeline(t)
	s := ch.Sender()
	require.NoError(t, s.SendFrame(feed.Delivery{Frame: kindFrame("Temperature"), Source: feed.SourceCloud}))
	require.NoError(t, s.SendFrame(feed.Delivery{Frame: kindFrame("DDOC.T1"), Source: feed.SourceBus, Topic: "blc/ddoc/t1"}))
	require.NoError(t, s.SendFrame(feed.Delivery{Frame: kindFrame("Pressure"), Source: feed.SourceHTTP}))
	require.NoError(t, s.SendError(&feed.ProducerError{Source: feed.SourceBus, Topic: "blc/atuc", Err: errors.New("disconnected")}))

	rep := p.Tick(context.Background())
	require.Equal(t, TickReport{Frames: 3, Inserted: 1, Live: 1, Unsupported: 1, Errors: 1}, rep)

	require.Equal(t, 1, p.Registry.Len())
	id := p.Registry.Active()[0]
	pn, ok := p.Registry.Get(id)
	require.True(t, ok)
	require.Equal(t, sensor.TemperatureController, pn.Kind)
	require.False(t, pn.IsRealTime())

	require.NotNil(t, p.Live.Frame(sensor.DissolvedOxygen(sensor.T1)))
	require.Contains(t, logs.String(), "unsupported data frame format")
	require.Contains(t, logs.String(), "disconnected")

	require.True(t, p.Tick(context.Background()).Empty(), "second tick sees nothing")
}

func TestTickEmptyIsNoop(t *testing.T) {
	t.Parallel()

	p, _, logs := newTestPipeline(t)
	require.True(t, p.Tick(context.Background()).Empty())
	require.Empty(t, logs.String())
}

func TestDropFilesContinuesPastBadFile(t *testing.T) {
	t.Parallel()

	p, _, logs := newTestPipeline(t)
	files := []DroppedFile{
		{Name: "a.csv", Data: []byte("Identifier,Turbidity\n1,0.5\n")},
		{Name: "b.json", Data: []byte("{not json")},
		{Name: "c.csv", Data: []byte("Identifier,DDOC.V2\n1,3.3\n")},
	}

	rep := p.DropFiles(context.Background(), files)
	require.Equal(t, DropReport{Loaded: 2, Inserted: 2, Failed: 1}, rep)
	require.Equal(t, 2, p.Loaded.Len())
	require.Equal(t, 2, p.Registry.Len())

	first, _ := p.Loaded.At(0)
	second, _ := p.Loaded.At(1)
	require.Equal(t, "a", first.Meta.Name)
	require.Equal(t, "c", second.Meta.Name)
	require.Equal(t, 1, strings.Count(logs.String(), "parsing dropped file"))
	require.Contains(t, logs.String(), "b.json")
}

func TestDropFilesUnclassifiedStaysLoaded(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPipeline(t)
	rep := p.DropFiles(context.Background(), []DroppedFile{
		{Name: "x.csv", Data: []byte("Identifier,Pressure\n1,2\n")},
		{Name: "missing.csv", Err: errors.New("permission denied")},
	})
	require.Equal(t, DropReport{Loaded: 1, Failed: 1}, rep)
	require.Equal(t, 0, p.Registry.Len())
}

func TestShowSelectedAndToggleLive(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPipeline(t)
	p.DropFiles(context.Background(), []DroppedFile{
		{Name: "a.csv", Data: []byte("Identifier,Turbidity\n1,0.5\n")},
		{Name: "b.csv", Data: []byte("Identifier,Temperature\n1,20\n")},
	})
	p.Registry.Reset()

	p.Loaded.ToggleSelect(1)
	require.Equal(t, 1, p.ShowSelected())
	pn, _ := p.Registry.Get(p.Registry.Active()[0])
	require.Equal(t, sensor.TemperatureController, pn.Kind)

	_, opened := p.ToggleLive(sensor.TemperatureController)
	require.True(t, opened)
	require.Equal(t, 2, p.Registry.Len())
	_, opened = p.ToggleLive(sensor.TemperatureController)
	require.False(t, opened)
	require.Equal(t, 1, p.Registry.Len())
}

func TestFrameForLivePane(t *testing.T) {
	t.Parallel()

	p, ch, _ := newTestPipeline(t)
	livePane := pane.Live(sensor.TurbidityController)
	require.Nil(t, p.FrameFor(&livePane))

	_ = ch.Sender().SendFrame(feed.Delivery{Frame: kindFrame("Turbidity"), Source: feed.SourceBus})
	_ = ch.Sender().SendFrame(feed.Delivery{Frame: kindFrame("Turbidity"), Source: feed.SourceBus})
	_ = ch.Sender().SendFrame(feed.Delivery{Frame: kindFrame("Turbidity"), Source: feed.SourceBus})
	p.Tick(context.Background())

	series := p.FrameFor(&livePane)
	require.NotNil(t, series)
	require.Equal(t, 4, series.Frame.Height(), "window caps the buffer")
	require.Equal(t, 3, series.Received)
}

func TestReset(t *testing.T) {
	t.Parallel()

	p, _, _ := newTestPipeline(t)
	p.DropFiles(context.Background(), []DroppedFile{{Name: "a.csv", Data: []byte("Identifier,Turbidity\n1,0.5\n")}})
	p.Loaded.ToggleAll()
	p.Reset()
	require.Equal(t, 0, p.Registry.Len())
	require.Equal(t, 0, p.Loaded.Len())
	require.Empty(t, p.Loaded.Selected())
}
