package bus

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"

	"blcsview/internal/codec"
	"blcsview/internal/feed"
	"blcsview/internal/frame"
	"blcsview/internal/loaded"
	"blcsview/internal/sensor"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t fakeToken) Error() error { return t.err }

// fakeClient implements only what the subscriber calls.
type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	connectErr   error
	subscribed   map[string]byte
	disconnected bool
}

func (c *fakeClient) Connect() mqtt.Token { return fakeToken{err: c.connectErr} }

func (c *fakeClient) SubscribeMultiple(filters map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = filters
	return fakeToken{}
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected = true
}

func (c *fakeClient) isDisconnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disconnected
}

type fakeMessage struct {
	mqtt.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func newTestSubscriber(t *testing.T) (*Subscriber, *feed.Channel, *fakeClient) {
	t.Helper()
	ch := feed.New(feed.Options{})
	client := &fakeClient{}
	s := NewSubscriber(Config{Broker: "tcp://broker:1883", QoS: 1}, ch.Sender(), nil)
	s.newClient = func(*mqtt.ClientOptions) mqtt.Client { return client }
	return s, ch, client
}

func payload(t *testing.T, format codec.Format, column string) []byte {
	t.Helper()
	data, err := codec.Encode(format, loaded.LoadedFrame{
		Meta:  loaded.Meta{Name: "bench"},
		Frame: frame.MustNew(frame.Uints("Identifier", 1), frame.Floats(column, 0.5)),
	})
	require.NoError(t, err)
	return data
}

func TestSubscribeCoversAllKinds(t *testing.T) {
	t.Parallel()

	s, _, client := newTestSubscriber(t)
	require.True(t, strings.HasPrefix(s.ClientID(), "blcsview-"))
	require.NoError(t, s.Start(context.Background()))

	s.onConnect(client)
	require.Len(t, client.subscribed, len(sensor.All()))
	require.Equal(t, byte(1), client.subscribed["blc/ddoc/c2"])
	require.True(t, s.Stats().Connected)
}

func TestHandleForwardsFrames(t *testing.T) {
	t.Parallel()

	s, ch, client := newTestSubscriber(t)
	s.handle(client, fakeMessage{topic: "blc/atuc", payload: payload(t, codec.FormatMsgpack, "Turbidity")})
	s.handle(client, fakeMessage{topic: "blc/dtec", payload: payload(t, codec.FormatJSON, "Temperature")})
	s.handle(client, fakeMessage{topic: "blc/dtec", payload: []byte{0xc1}})

	got := ch.DrainFrames()
	require.Len(t, got, 2)
	require.Equal(t, feed.SourceBus, got[0].Source)
	require.Equal(t, "blc/atuc", got[0].Topic)
	require.Equal(t, "bench", got[0].Name)

	errs := ch.DrainErrors()
	require.Len(t, errs, 1)
	var pe *feed.ProducerError
	require.True(t, errors.As(errs[0], &pe))
	require.Equal(t, "blc/dtec", pe.Topic)

	st := s.Stats()
	require.Equal(t, uint64(3), st.Received)
	require.Equal(t, uint64(1), st.DecodeErrors)
}

func TestHandleStopsWhenConsumerGone(t *testing.T) {
	t.Parallel()

	s, ch, client := newTestSubscriber(t)
	require.NoError(t, s.Start(context.Background()))
	ch.Close()

	s.handle(client, fakeMessage{topic: "blc/atuc", payload: payload(t, codec.FormatJSON, "Turbidity")})
	require.Eventually(t, client.isDisconnected, time.Second, 10*time.Millisecond)
}

func TestStartFailsOnConnectError(t *testing.T) {
	t.Parallel()

	s, _, client := newTestSubscriber(t)
	client.connectErr = errors.New("refused")
	err := s.Start(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "refused")
}

func TestContextCancelStops(t *testing.T) {
	t.Parallel()

	s, _, client := newTestSubscriber(t)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, s.Start(ctx))
	cancel()
	require.Eventually(t, client.isDisconnected, time.Second, 10*time.Millisecond)
}
