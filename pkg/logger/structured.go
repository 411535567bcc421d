package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var zlog zerolog.Logger

// InitStructured initializes the structured zerolog logger
func InitStructured(env string) {
	var w io.Writer

	if env == "development" || env == "dev" {
		// Pretty console output for development
		w = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	} else {
		// JSON output for production (machine-readable)
		w = os.Stdout
	}

	zlog = zerolog.New(w).With().
		Timestamp().
		Str("service", "inkwell-backend").
		Logger()

	zerolog.TimeFieldFormat = time.RFC3339
}

// GetLogger returns the global zerolog logger
func GetLogger() *zerolog.Logger {
	return &zlog
}

// WithComponent returns a logger with a component field, e.g. "resolver"
// or "taxonomy"
func WithComponent(name string) zerolog.Logger {
	return zlog.With().Str("component", name).Logger()
}

// WithEntity returns a logger annotated with a content entity reference
func WithEntity(entityType string, entityID uint64) zerolog.Logger {
	return zlog.With().Str("entity_type", entityType).Uint64("entity_id", entityID).Logger()
}
