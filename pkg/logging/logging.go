// Package logging builds the zap logger shared by the dispatch binaries.
package logging

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output encodings.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects the log level and encoding.
type Config struct {
	Level  string `yaml:"level" split_words:"true"`
	Format string `yaml:"format" split_words:"true"`
}

// Default logs info and above as JSON.
func Default() Config {
	return Config{Level: "info", Format: FormatJSON}
}

// Validate checks the level and format.
func (c Config) Validate() error {
	if _, err := zapcore.ParseLevel(c.level()); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	switch c.format() {
	case FormatJSON, FormatConsole:
		return nil
	default:
		return fmt.Errorf("logging: unknown format %q", c.Format)
	}
}

// New returns a production logger for the json format and a development
// logger for the console format, both at the configured level.
func New(cfg Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := zapcore.ParseLevel(cfg.level())

	zc := zap.NewProductionConfig()
	if cfg.format() == FormatConsole {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("logging: build: %w", err)
	}
	return logger, nil
}

func (c Config) level() string {
	if level := strings.TrimSpace(c.Level); level != "" {
		return strings.ToLower(level)
	}
	return "info"
}

func (c Config) format() string {
	if format := strings.TrimSpace(c.Format); format != "" {
		return strings.ToLower(format)
	}
	return FormatJSON
}
