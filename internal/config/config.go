package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"blcsview/internal/codec"
	"blcsview/internal/logging"
	"blcsview/internal/sensor"
)

// EnvConfig names the variable that points at a config file.
const EnvConfig = "BLCSVIEW_CONFIG"

// Config holds application configuration.
type Config struct {
	MQTT     MQTTConfig     `mapstructure:"mqtt"`
	Cloud    CloudConfig    `mapstructure:"cloud"`
	Receiver ReceiverConfig `mapstructure:"receiver"`
	Drop     DropConfig     `mapstructure:"drop"`
	UI       UIConfig       `mapstructure:"ui"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Log      logging.Config `mapstructure:"log"`
}

// MQTTConfig holds live bus settings. Topics is keyed by sensor slug
// (dtec, atuc, ddoc_c1 .. ddoc_v2).
type MQTTConfig struct {
	Enabled        bool              `mapstructure:"enabled"`
	Broker         string            `mapstructure:"broker"`
	ClientID       string            `mapstructure:"client_id"`
	Username       string            `mapstructure:"username"`
	Password       string            `mapstructure:"password"`
	QoS            int               `mapstructure:"qos"`
	ConnectTimeout time.Duration     `mapstructure:"connect_timeout"`
	Topics         map[string]string `mapstructure:"topics"`
}

// CloudConfig holds the object store the cloud loader reads from.
type CloudConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Index   string        `mapstructure:"index"`
	Token   string        `mapstructure:"token"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ReceiverConfig holds the HTTP push endpoint settings.
type ReceiverConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// DropConfig holds the watched drop directory.
type DropConfig struct {
	Dir      string        `mapstructure:"dir"`
	Debounce time.Duration `mapstructure:"debounce"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	Reactive     bool          `mapstructure:"reactive"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
	LiveWindow   int           `mapstructure:"live_window"`
	Layout       string        `mapstructure:"layout"`
	// ExportDir receives pane exports; ExportFormat is a file extension
	// (csv, json, yaml, msgpack).
	ExportDir    string `mapstructure:"export_dir"`
	ExportFormat string `mapstructure:"export_format"`
}

// Export resolves ExportFormat.
func (u UIConfig) Export() (codec.Format, error) {
	f, err := codec.FormatFor("export." + strings.TrimPrefix(u.ExportFormat, "."))
	if err != nil {
		return 0, fmt.Errorf("ui.export_format: %w", err)
	}
	return f, nil
}

// FeedConfig bounds the producer queues; zero is unbounded.
type FeedConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// DefaultPath is the config file used when neither a flag nor EnvConfig
// names one.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "blcsview", "config.toml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mqtt.enabled", true)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.client_id", "blcsview")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.qos", 1)
	v.SetDefault("mqtt.connect_timeout", 5*time.Second)
	for _, k := range sensor.All() {
		v.SetDefault("mqtt.topics."+k.Slug(), k.Topic())
	}
	v.SetDefault("cloud.base_url", "")
	v.SetDefault("cloud.index", "index.json")
	v.SetDefault("cloud.token", "")
	v.SetDefault("cloud.timeout", 30*time.Second)
	v.SetDefault("receiver.enabled", false)
	v.SetDefault("receiver.addr", "127.0.0.1:4390")
	v.SetDefault("drop.dir", "")
	v.SetDefault("drop.debounce", 250*time.Millisecond)
	v.SetDefault("ui.reactive", false)
	v.SetDefault("ui.tick_interval", 250*time.Millisecond)
	v.SetDefault("ui.live_window", 512)
	v.SetDefault("ui.layout", "vertical")
	v.SetDefault("ui.export_dir", ".")
	v.SetDefault("ui.export_format", "csv")
	v.SetDefault("feed.capacity", 0)

	logDefaults := logging.DefaultConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.sink", logDefaults.Sink)
	v.SetDefault("log.file", "")
	v.SetDefault("log.add_source", false)
	v.SetDefault("log.max_size_mb", logDefaults.MaxSizeMB)
	v.SetDefault("log.max_backups", logDefaults.MaxBackups)
	v.SetDefault("log.max_age_days", logDefaults.MaxAgeDays)
	v.SetDefault("log.compress", logDefaults.Compress)
}

// Load reads configuration from file and env. path overrides the file
// location; empty means $BLCSVIEW_CONFIG, then DefaultPath. Env var
// overrides use prefix BLCSVIEW_, e.g. BLCSVIEW_MQTT_BROKER.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	explicit := path != ""
	if explicit {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(filepath.Dir(DefaultPath()))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BLCSVIEW")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks ranges and enums.
func (c Config) Validate() error {
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos: must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		return errors.New("mqtt.broker: required when mqtt is enabled")
	}
	if _, err := c.MQTT.KindTopics(); err != nil {
		return err
	}
	if c.UI.TickInterval <= 0 {
		return fmt.Errorf("ui.tick_interval: must be positive, got %s", c.UI.TickInterval)
	}
	if c.UI.LiveWindow <= 0 {
		return fmt.Errorf("ui.live_window: must be positive, got %d", c.UI.LiveWindow)
	}
	switch c.UI.Layout {
	case "vertical", "horizontal", "grid", "tabs":
	default:
		return fmt.Errorf("ui.layout: invalid %q", c.UI.Layout)
	}
	if _, err := c.UI.Export(); err != nil {
		return err
	}
	if c.Feed.Capacity < 0 {
		return fmt.Errorf("feed.capacity: must not be negative, got %d", c.Feed.Capacity)
	}
	if c.Receiver.Enabled && c.Receiver.Addr == "" {
		return errors.New("receiver.addr: required when the receiver is enabled")
	}
	if _, err := c.Log.Normalize(); err != nil {
		return err
	}
	return nil
}

// KindTopics resolves the topic table, falling back to each kind's default.
func (m MQTTConfig) KindTopics() (map[sensor.Kind]string, error) {
	out := make(map[sensor.Kind]string, len(sensor.All()))
	for _, k := range sensor.All() {
		out[k] = k.Topic()
	}
	for key, topic := range m.Topics {
		k, err := sensor.ParseKind(key)
		if err != nil {
			return nil, fmt.Errorf("mqtt.topics: %w", err)
		}
		if topic = strings.TrimSpace(topic); topic != "" {
			out[k] = topic
		}
	}
	return out, nil
}
