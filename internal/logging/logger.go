// Package logging provides structured logging configuration using log/slog.
//
// Every processing run gets a run id attached to its logger so all entries
// belonging to one invocation can be correlated when output from several
// runs lands in the same place.
package logging

import (
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
)

// Setup configures the global slog logger.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
//
// Use "json" in environments where logs are machine-parsed; "text" reads
// better on a terminal.
func Setup(level, format string) {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewRunLogger returns the default logger enriched with a fresh run id.
// All pipeline components log through this logger so every entry of one
// invocation carries the same run_id.
func NewRunLogger() *slog.Logger {
	return slog.Default().With("run_id", uuid.NewString())
}

// WithFields returns a logger with additional structured fields, for
// operation-specific loggers that carry context through a multi-step
// process.
func WithFields(logger *slog.Logger, args ...any) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(args...)
}
