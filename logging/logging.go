// Package logging wraps log/slog with the field names used across qgrid.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// Logger wraps slog.Logger with qgrid-specific helpers.
type Logger struct {
	*slog.Logger
}

// New creates a Logger with the given handler.
// If handler is nil, uses a text handler to stderr at Info.
func New(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewText creates a Logger that writes human-readable text to w.
func NewText(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewJSON creates a Logger that writes JSON lines to w.
func NewJSON(w io.Writer, level slog.Level) *Logger {
	return New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// Noop creates a Logger that discards all output.
func Noop() *Logger {
	return New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.Level(1000),
	}))
}

// FromConfig builds a logger from a format ("text" or "json") and a level
// name ("debug", "info", "warn", "error").
func FromConfig(w io.Writer, format, level string) *Logger {
	lvl := ParseLevel(level)
	if strings.EqualFold(format, "json") {
		return NewJSON(w, lvl)
	}
	return NewText(w, lvl)
}

// ParseLevel maps a level name to a slog.Level, defaulting to Info.
func ParseLevel(name string) slog.Level {
	switch strings.ToLower(name) {
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

// WithOp tags the logger with an operation name.
func (l *Logger) WithOp(op string) *Logger {
	return &Logger{Logger: l.Logger.With("op", op)}
}

// WithBackend tags the logger with the executing backend.
func (l *Logger) WithBackend(backend string) *Logger {
	return &Logger{Logger: l.Logger.With("backend", backend)}
}

// LogOp records the outcome of one register operation.
func (l *Logger) LogOp(ctx context.Context, op string, qubits int, took time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "operation failed",
			"op", op,
			"qubits", qubits,
			"error", err,
		)
		return
	}
	l.DebugContext(ctx, "operation completed",
		"op", op,
		"qubits", qubits,
		"took", took,
	)
}

// LogFallback records a GPU failure that was retried on the CPU executor.
func (l *Logger) LogFallback(ctx context.Context, op string, err error) {
	l.WarnContext(ctx, "gpu dispatch failed, using cpu",
		"op", op,
		"error", err,
	)
}
