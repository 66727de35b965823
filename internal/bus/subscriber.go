// Package bus subscribes to the live sensor topics on an MQTT broker and
// forwards each decoded payload to the feed.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"blcsview/internal/codec"
	"blcsview/internal/feed"
	"blcsview/internal/sensor"
)

// Config holds connection settings.
type Config struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	QoS            byte
	ConnectTimeout time.Duration
	Topics         map[sensor.Kind]string
}

// Stats counts subscriber traffic.
type Stats struct {
	Received     uint64
	DecodeErrors uint64
	Connected    bool
}

// Subscriber forwards broker messages into a feed.
type Subscriber struct {
	cfg    Config
	sender feed.Sender
	logger *slog.Logger

	newClient func(*mqtt.ClientOptions) mqtt.Client
	byTopic   map[string]sensor.Kind

	mu        sync.Mutex
	client    mqtt.Client
	connected bool
	stopOnce  sync.Once

	received     atomic.Uint64
	decodeErrors atomic.Uint64
}

// NewSubscriber creates a subscriber. A random suffix is appended to the
// client id so two viewers can share a broker.
func NewSubscriber(cfg Config, sender feed.Sender, logger *slog.Logger) *Subscriber {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 5 * time.Second
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "blcsview"
	}
	cfg.ClientID = cfg.ClientID + "-" + uuid.NewString()[:8]
	if len(cfg.Topics) == 0 {
		cfg.Topics = make(map[sensor.Kind]string)
		for _, k := range sensor.All() {
			cfg.Topics[k] = k.Topic()
		}
	}
	byTopic := make(map[string]sensor.Kind, len(cfg.Topics))
	for k, topic := range cfg.Topics {
		byTopic[topic] = k
	}
	return &Subscriber{
		cfg:       cfg,
		sender:    sender,
		logger:    logger.With("component", "bus"),
		newClient: mqtt.NewClient,
		byTopic:   byTopic,
	}
}

// ClientID returns the client id presented to the broker.
func (s *Subscriber) ClientID() string { return s.cfg.ClientID }

// Start connects to the broker. Subscriptions are (re)established on every
// successful connect. The subscriber stops when ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(s.cfg.Broker)
	opts.SetClientID(s.cfg.ClientID)
	if s.cfg.Username != "" {
		opts.SetUsername(s.cfg.Username)
		opts.SetPassword(s.cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetOnConnectHandler(s.onConnect)
	opts.SetConnectionLostHandler(s.onConnectionLost)

	client := s.newClient(opts)
	s.mu.Lock()
	s.client = client
	s.mu.Unlock()

	s.logger.Info("connecting to mqtt broker", "broker", s.cfg.Broker, "client_id", s.cfg.ClientID)
	token := client.Connect()
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		// ConnectRetry keeps trying in the background.
		s.logger.Warn("mqtt connect still pending", "broker", s.cfg.Broker, "timeout", s.cfg.ConnectTimeout)
	} else if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect %s: %w", s.cfg.Broker, err)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop disconnects. Safe to call more than once and from message handlers.
func (s *Subscriber) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		client := s.client
		s.connected = false
		s.mu.Unlock()
		if client != nil {
			client.Disconnect(250)
		}
		s.logger.Info("mqtt subscriber stopped")
	})
}

func (s *Subscriber) Stats() Stats {
	s.mu.Lock()
	connected := s.connected
	s.mu.Unlock()
	return Stats{
		Received:     s.received.Load(),
		DecodeErrors: s.decodeErrors.Load(),
		Connected:    connected,
	}
}

func (s *Subscriber) onConnect(c mqtt.Client) {
	s.mu.Lock()
	s.connected = true
	s.mu.Unlock()

	filters := make(map[string]byte, len(s.byTopic))
	for topic := range s.byTopic {
		filters[topic] = s.cfg.QoS
	}
	token := c.SubscribeMultiple(filters, s.handle)
	if !token.WaitTimeout(s.cfg.ConnectTimeout) {
		s.report("", errors.New("subscribe timeout"))
		return
	}
	if err := token.Error(); err != nil {
		s.report("", fmt.Errorf("subscribe: %w", err))
		return
	}
	s.logger.Info("mqtt subscribed", "topics", len(filters))
}

func (s *Subscriber) onConnectionLost(_ mqtt.Client, err error) {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	s.logger.Warn("mqtt connection lost, will auto-reconnect", "error", err, "broker", s.cfg.Broker)
	s.report("", fmt.Errorf("connection lost: %w", err))
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	s.received.Add(1)
	lf, err := codec.DecodePayload(msg.Topic(), msg.Payload())
	if err != nil {
		s.decodeErrors.Add(1)
		s.report(msg.Topic(), err)
		return
	}
	if kind, ok := s.byTopic[msg.Topic()]; ok {
		s.logger.Debug("mqtt message", "topic", msg.Topic(), "kind", kind.Label(), "rows", lf.Frame.Height())
	}
	err = s.sender.SendFrame(feed.Delivery{
		Frame:   lf.Frame,
		Source:  feed.SourceBus,
		Topic:   msg.Topic(),
		Name:    lf.Meta.Name,
		Version: lf.Meta.Version,
	})
	if errors.Is(err, feed.ErrClosed) {
		go s.Stop()
	}
}

func (s *Subscriber) report(topic string, err error) {
	sendErr := s.sender.SendError(&feed.ProducerError{Source: feed.SourceBus, Topic: topic, Err: err})
	if errors.Is(sendErr, feed.ErrClosed) {
		go s.Stop()
	}
}
