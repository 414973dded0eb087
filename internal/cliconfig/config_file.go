package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Definition string `toml:"definition"`
	Instances  int    `toml:"instances"`
	TickRate   string `toml:"tick_rate"`
	Ticks      uint64 `toml:"ticks"`
	Watch      *bool  `toml:"watch"`
	Snapshots  string `toml:"snapshots"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.fsmx/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".fsmx", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies file values, skipping flags in changed.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("definition", fc.Definition, &cfg.Definition)
	s.setString("snapshots", fc.Snapshots, &cfg.Snapshots)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("log-format", fc.LogFormat, &cfg.LogFormat)
	s.setInt("instances", fc.Instances, &cfg.Instances)
	s.setUint("ticks", fc.Ticks, &cfg.Ticks)
	s.setBool("watch", fc.Watch, &cfg.Watch)

	return s.setDuration("tick-rate", fc.TickRate, &cfg.TickRate)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
