package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"blcsview/internal/codec"
	"blcsview/internal/sensor"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfig, "")

	cfg, err := Load("")
	require.NoError(t, err)
	require.True(t, cfg.MQTT.Enabled)
	require.Equal(t, "tcp://localhost:1883", cfg.MQTT.Broker)
	require.Equal(t, 250*time.Millisecond, cfg.UI.TickInterval)
	require.Equal(t, "file", cfg.Log.Sink)

	topics, err := cfg.MQTT.KindTopics()
	require.NoError(t, err)
	require.Len(t, topics, 8)
	require.Equal(t, "blc/ddoc/v2", topics[sensor.DissolvedOxygen(sensor.V2)])
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[mqtt]
broker = "tcp://broker.lab:1883"
qos = 0

[mqtt.topics]
dtec = "lab/bench-1/temperature"

[ui]
tick_interval = "1s"
layout = "grid"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("BLCSVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "tcp://broker.lab:1883", cfg.MQTT.Broker)
	require.Equal(t, 0, cfg.MQTT.QoS)
	require.Equal(t, time.Second, cfg.UI.TickInterval)
	require.Equal(t, "grid", cfg.UI.Layout)
	require.Equal(t, "csv", cfg.UI.ExportFormat)
	export, err := cfg.UI.Export()
	require.NoError(t, err)
	require.Equal(t, codec.FormatCSV, export)
	require.Equal(t, "debug", cfg.Log.Level)

	topics, err := cfg.MQTT.KindTopics()
	require.NoError(t, err)
	require.Equal(t, "lab/bench-1/temperature", topics[sensor.TemperatureController])
	require.Equal(t, "blc/atuc", topics[sensor.TurbidityController])
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(EnvConfig, "")
	base, err := Load("")
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"qos", func(c *Config) { c.MQTT.QoS = 3 }},
		{"broker", func(c *Config) { c.MQTT.Broker = "" }},
		{"topic key", func(c *Config) { c.MQTT.Topics = map[string]string{"pressure": "x"} }},
		{"tick", func(c *Config) { c.UI.TickInterval = 0 }},
		{"window", func(c *Config) { c.UI.LiveWindow = -1 }},
		{"layout", func(c *Config) { c.UI.Layout = "spiral" }},
		{"export format", func(c *Config) { c.UI.ExportFormat = "xlsx" }},
		{"capacity", func(c *Config) { c.Feed.Capacity = -1 }},
		{"log", func(c *Config) { c.Log.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			cfg.MQTT.Topics = nil
			tt.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}
