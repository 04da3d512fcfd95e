// Package logging builds the slog loggers used by all processes.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewJSONLogger is used by long-running services; output goes to stdout in
// JSON with a fixed service attribute.
func NewJSONLogger(service, level string) *slog.Logger {
	return newLogger(os.Stdout, service, level, false)
}

// NewTextLogger is used by one-shot CLI commands where humans read the
// output directly.
func NewTextLogger(service, level string) *slog.Logger {
	return newLogger(os.Stderr, service, level, true)
}

func newLogger(w io.Writer, service, level string, text bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if text {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler).With("service", service)
}

func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
