package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvConfig is the FSMX_* environment surface.
type EnvConfig struct {
	Definition string `env:"FSMX_DEFINITION"`
	Instances  int    `env:"FSMX_INSTANCES"`
	TickRate   string `env:"FSMX_TICK_RATE"`
	Ticks      uint64 `env:"FSMX_TICKS"`
	Watch      *bool  `env:"FSMX_WATCH"`
	Snapshots  string `env:"FSMX_SNAPSHOTS"`
	LogLevel   string `env:"FSMX_LOG_LEVEL"`
	LogFormat  string `env:"FSMX_LOG_FORMAT"`
}

// LoadDotEnv loads a .env file into the process environment without overriding
// variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvConfig applies FSMX_* environment variables, skipping flags in changed.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	var ec EnvConfig
	if err := env.Parse(&ec); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	s := newConfigSetter(changed)

	s.setString("definition", ec.Definition, &cfg.Definition)
	s.setString("snapshots", ec.Snapshots, &cfg.Snapshots)
	s.setString("log-level", ec.LogLevel, &cfg.LogLevel)
	s.setString("log-format", ec.LogFormat, &cfg.LogFormat)
	s.setInt("instances", ec.Instances, &cfg.Instances)
	s.setUint("ticks", ec.Ticks, &cfg.Ticks)
	s.setBool("watch", ec.Watch, &cfg.Watch)

	return s.setDuration("tick-rate", ec.TickRate, &cfg.TickRate)
}
