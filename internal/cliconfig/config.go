package cliconfig

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds CLI configuration for fsmx. Values are layered: defaults, then the
// TOML file, then FSMX_* environment variables, then explicitly set flags.
type Config struct {
	Definition string
	Instances  int
	TickRate   time.Duration
	Ticks      uint64
	Watch      bool
	Snapshots  string
	LogLevel   string
	LogFormat  string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Instances: 1,
		TickRate:  100 * time.Millisecond,
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Definition == "" {
		return fmt.Errorf("definition is required")
	}
	if c.Instances < 0 {
		return fmt.Errorf("instances must not be negative")
	}
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	switch c.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("log format %q: want console or json", c.LogFormat)
	}
	if c.Snapshots != "" {
		if _, _, err := ParseSnapshotStore(c.Snapshots); err != nil {
			return err
		}
	}
	return nil
}

// ParseSnapshotStore splits a "kind:target" store spec. Kinds are json and yaml
// (target is a directory) and sqlite (target is a database file).
func ParseSnapshotStore(spec string) (kind, target string, err error) {
	kind, target, ok := strings.Cut(spec, ":")
	if !ok || target == "" {
		return "", "", fmt.Errorf("snapshot store %q: want kind:target", spec)
	}
	switch kind {
	case "json", "yaml", "sqlite":
		return kind, target, nil
	default:
		return "", "", fmt.Errorf("snapshot store %q: unknown kind %q", spec, kind)
	}
}

// configSetter applies values unless the corresponding flag was set explicitly.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setUint(flag string, value uint64, dst *uint64) {
	if value == 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
