package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"

	"flightroute/internal/config"
)

type Logger = zerolog.Logger

// NewLogger writes JSON to stderr, or a console layout when logging.pretty is set.
func NewLogger(cfg config.Config) Logger {
	return New(os.Stderr, cfg)
}

// New is NewLogger with an explicit sink.
func New(w io.Writer, cfg config.Config) Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	if cfg.Logging.Pretty {
		w = zerolog.ConsoleWriter{Out: w}
	}
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil || cfg.Logging.Level == "" {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

// Nop discards everything; used by tests and library callers without logging.
func Nop() Logger { return zerolog.Nop() }
