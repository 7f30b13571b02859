// Package logging configures the process-wide zerolog logger used
// everywhere else in the server: pretty console output for local
// development, structured JSON when running under a log collector.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how New builds the root logger.
type Options struct {
	// Level is one of zerolog's level names (debug, info, warn, error);
	// an unrecognized or empty value falls back to info.
	Level string
	// Pretty switches to zerolog's human-readable console writer
	// instead of raw JSON lines.
	Pretty bool
	Output io.Writer
}

// New builds the root logger from opts, adding a timestamp to every
// entry; Component derives the per-layer child loggers that carry a
// component field.
func New(opts Options) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(opts.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	if opts.Pretty {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Component returns a child logger tagged with name, so log lines from
// the tick scheduler, transport, and admission layers can be filtered
// independently.
func Component(base zerolog.Logger, name string) zerolog.Logger {
	return base.With().Str("component", name).Logger()
}
