// SPDX-License-Identifier: EPL-2.0

// Package config loads mixcore settings from MIXCORE_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const envPrefix = "MIXCORE_"

type Config struct {
	Env                  string        `env:"ENV" envDefault:"production"`
	Driver               string        `env:"DRIVER" envDefault:"oto"`
	SampleRate           int           `env:"SAMPLE_RATE" envDefault:"48000"`
	PeriodFrames         int           `env:"PERIOD_FRAMES" envDefault:"512"`
	Workers              int           `env:"WORKERS" envDefault:"0"`
	StreamThresholdBytes int64         `env:"STREAM_THRESHOLD_BYTES" envDefault:"4194304"`
	StreamChunkFrames    int           `env:"STREAM_CHUNK_FRAMES" envDefault:"16384"`
	ControlTick          time.Duration `env:"CONTROL_TICK" envDefault:"16ms"`
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	return load(env.Options{Prefix: envPrefix})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("environment variables are invalid: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(c.Driver) {
	case "oto", "null":
	default:
		return fmt.Errorf("%sDRIVER must be oto or null, got %q", envPrefix, c.Driver)
	}

	positive := []struct {
		name  string
		value int64
	}{
		{name: "SAMPLE_RATE", value: int64(c.SampleRate)},
		{name: "PERIOD_FRAMES", value: int64(c.PeriodFrames)},
		{name: "STREAM_THRESHOLD_BYTES", value: c.StreamThresholdBytes},
		{name: "STREAM_CHUNK_FRAMES", value: int64(c.StreamChunkFrames)},
		{name: "CONTROL_TICK", value: int64(c.ControlTick)},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s%s must be positive, got %d", envPrefix, p.name, p.value)
		}
	}

	if c.Workers < 0 {
		return fmt.Errorf("%sWORKERS must not be negative, got %d", envPrefix, c.Workers)
	}
	if c.StreamChunkFrames < c.PeriodFrames {
		return fmt.Errorf("%sSTREAM_CHUNK_FRAMES (%d) must be at least PERIOD_FRAMES (%d)",
			envPrefix, c.StreamChunkFrames, c.PeriodFrames)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Level is the configured log level. Development always logs at debug.
func (c *Config) Level() slog.Level {
	if c.IsDevelopment() {
		return slog.LevelDebug
	}
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("%sLOG_LEVEL is invalid: %w", envPrefix, err)
	}
	return level, nil
}
