// Package logging builds the process logger: slog over a rotating file by
// default, since the terminal belongs to the TUI.
package logging

import (
	"fmt"
	"strings"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

type Sink string

const (
	SinkStderr Sink = "stderr"
	SinkFile   Sink = "file"
	SinkNone   Sink = "none"
)

// Config mirrors the [log] section of the config file.
type Config struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Sink       string `mapstructure:"sink"`
	File       string `mapstructure:"file"`
	AddSource  bool   `mapstructure:"add_source"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		Format:     string(FormatText),
		Sink:       string(SinkFile),
		MaxSizeMB:  20,
		MaxBackups: 5,
		MaxAgeDays: 7,
		Compress:   true,
	}
}

// Normalize lower-cases enums, clamps negative rotation values and validates.
func (c Config) Normalize() (Config, error) {
	c.Level = strings.ToLower(strings.TrimSpace(c.Level))
	c.Format = strings.ToLower(strings.TrimSpace(c.Format))
	c.Sink = strings.ToLower(strings.TrimSpace(c.Sink))
	c.File = strings.TrimSpace(c.File)
	if c.Level == "" {
		c.Level = "info"
	}
	if c.Format == "" {
		c.Format = string(FormatText)
	}
	if c.Sink == "" {
		c.Sink = string(SinkFile)
	}
	c.MaxSizeMB = max(c.MaxSizeMB, 0)
	c.MaxBackups = max(c.MaxBackups, 0)
	c.MaxAgeDays = max(c.MaxAgeDays, 0)
	return c, c.Validate()
}

func (c Config) Validate() error {
	switch c.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level: invalid %q", c.Level)
	}
	switch Format(c.Format) {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("log.format: invalid %q", c.Format)
	}
	switch Sink(c.Sink) {
	case SinkStderr, SinkFile, SinkNone:
	default:
		return fmt.Errorf("log.sink: invalid %q", c.Sink)
	}
	return nil
}
