// Package observability builds the service logger.
package observability

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger constructs the zerolog root logger. Format is "console" for
// development output or "json" for machine ingestion; unknown levels fall
// back to info.
func NewLogger(level, format, serviceName string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	} else {
		logger = zerolog.New(os.Stdout)
	}

	return logger.Level(lvl).With().
		Timestamp().
		Str("service", serviceName).
		Logger()
}
