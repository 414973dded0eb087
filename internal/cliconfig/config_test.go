package cliconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	valid := func() Config {
		c := DefaultConfig()
		c.Definition = "machine.yaml"
		return c
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults with definition", func(*Config) {}, false},
		{"missing definition", func(c *Config) { c.Definition = "" }, true},
		{"negative instances", func(c *Config) { c.Instances = -1 }, true},
		{"zero tick rate", func(c *Config) { c.TickRate = 0 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"json log format", func(c *Config) { c.LogFormat = "json" }, false},
		{"sqlite store", func(c *Config) { c.Snapshots = "sqlite:/tmp/x.db" }, false},
		{"bad store", func(c *Config) { c.Snapshots = "redis:localhost" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseSnapshotStore(t *testing.T) {
	kind, target, err := ParseSnapshotStore("yaml:./snaps")
	require.NoError(t, err)
	assert.Equal(t, "yaml", kind)
	assert.Equal(t, "./snaps", target)

	kind, target, err = ParseSnapshotStore("sqlite:C:/data/fsmx.db")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", kind)
	assert.Equal(t, "C:/data/fsmx.db", target)

	for _, bad := range []string{"", "json", "json:", "s3:bucket"} {
		_, _, err := ParseSnapshotStore(bad)
		assert.Error(t, err, bad)
	}
}

func TestApplyFileConfig(t *testing.T) {
	trueVal := true
	fc := FileConfig{
		Definition: "door.toml",
		Instances:  4,
		TickRate:   "20ms",
		Ticks:      50,
		Watch:      &trueVal,
		Snapshots:  "json:snaps",
		LogLevel:   "debug",
	}

	cfg := DefaultConfig()
	require.NoError(t, ApplyFileConfig(&cfg, fc, map[string]bool{}))
	assert.Equal(t, Config{
		Definition: "door.toml",
		Instances:  4,
		TickRate:   20 * time.Millisecond,
		Ticks:      50,
		Watch:      true,
		Snapshots:  "json:snaps",
		LogLevel:   "debug",
		LogFormat:  "console",
	}, cfg)

	cfg = DefaultConfig()
	cfg.Instances = 9
	require.NoError(t, ApplyFileConfig(&cfg, fc, map[string]bool{"instances": true, "tick-rate": true}))
	assert.Equal(t, 9, cfg.Instances)
	assert.Equal(t, DefaultConfig().TickRate, cfg.TickRate)

	cfg = DefaultConfig()
	assert.Error(t, ApplyFileConfig(&cfg, FileConfig{TickRate: "soon"}, map[string]bool{}))
}

func TestLoadFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
definition = "traffic.yaml"
instances = 3
tick_rate = "5ms"
watch = false
snapshots = "sqlite:fsmx.db"
`), 0o644))

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "traffic.yaml", fc.Definition)
	assert.Equal(t, 3, fc.Instances)
	assert.Equal(t, "5ms", fc.TickRate)
	require.NotNil(t, fc.Watch)
	assert.False(t, *fc.Watch)
	assert.True(t, FileExists(path))

	_, err = LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
	assert.False(t, FileExists(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestApplyEnvConfig(t *testing.T) {
	t.Setenv("FSMX_DEFINITION", "env.yaml")
	t.Setenv("FSMX_INSTANCES", "7")
	t.Setenv("FSMX_TICK_RATE", "1s")
	t.Setenv("FSMX_WATCH", "true")
	t.Setenv("FSMX_LOG_FORMAT", "json")

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnvConfig(&cfg, map[string]bool{"definition": true}))
	assert.Equal(t, "", cfg.Definition)
	assert.Equal(t, 7, cfg.Instances)
	assert.Equal(t, time.Second, cfg.TickRate)
	assert.True(t, cfg.Watch)
	assert.Equal(t, "json", cfg.LogFormat)

	t.Setenv("FSMX_INSTANCES", "many")
	assert.Error(t, ApplyEnvConfig(&cfg, map[string]bool{}))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("FSMX_SNAPSHOTS=yaml:from-dotenv\n"), 0o644))
	t.Setenv("FSMX_SNAPSHOTS", "")
	os.Unsetenv("FSMX_SNAPSHOTS")
	require.NoError(t, LoadDotEnv(path))

	cfg := DefaultConfig()
	require.NoError(t, ApplyEnvConfig(&cfg, map[string]bool{}))
	assert.Equal(t, "yaml:from-dotenv", cfg.Snapshots)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log, err := Logger(&buf, "warn", "json")
	require.NoError(t, err)
	log.Info().Msg("hidden")
	log.Warn().Str("k", "v").Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	buf.Reset()
	log, err = Logger(&buf, "info", "console")
	require.NoError(t, err)
	log.Info().Msg("pretty")
	assert.Contains(t, buf.String(), "pretty")
	assert.NotContains(t, buf.String(), `"message"`)

	_, err = Logger(&buf, "shouting", "json")
	assert.Error(t, err)
}
