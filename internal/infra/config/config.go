package config

import (
	"github.com/caarlos0/env/v11"
)

// Config carries the environment-backed defaults. CLI flags take precedence
// over the segment parameters at parse time.
type Config struct {
	Output   string `env:"VODTOOL_OUTPUT"    envDefault:"test.pgm"`
	LogLevel string `env:"VODTOOL_LOG_LEVEL" envDefault:"info"`

	Duration  int64 `env:"VODTOOL_DURATION"  envDefault:"5"`
	Timescale int64 `env:"VODTOOL_TIMESCALE" envDefault:"1"`
	Segment   int64 `env:"VODTOOL_SEGMENT"   envDefault:"0"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
