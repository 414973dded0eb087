package cliconfig

import (
	"io"
	"time"

	"github.com/rs/zerolog"
)

// Logger builds the CLI logger: human-readable console output by default, plain
// JSON lines with format "json".
func Logger(out io.Writer, level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}
	if format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
