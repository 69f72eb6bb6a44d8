package kanjisim

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/kanjisim/model"
)

// Logger wraps slog.Logger with kanjisim-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithBuildID tags every record with the engine build id.
func (l *Logger) WithBuildID(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("build_id", id),
	}
}

// LogLoad logs a dataset load.
func (l *Logger) LogLoad(ctx context.Context, source string, records, structuralErrors int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset load failed",
			"source", source,
			"error", err,
		)
		return
	}
	if structuralErrors > 0 {
		l.WarnContext(ctx, "dataset loaded with structural errors",
			"source", source,
			"records", records,
			"structural_errors", structuralErrors,
			"duration", duration,
		)
		return
	}
	l.InfoContext(ctx, "dataset loaded",
		"source", source,
		"records", records,
		"duration", duration,
	)
}

// LogBuild logs the feature and index build.
func (l *Logger) LogBuild(ctx context.Context, indexed, excluded, flagged int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "index build failed",
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "index built",
		"indexed", indexed,
		"excluded", excluded,
		"flagged", flagged,
		"duration", duration,
	)
}

// LogQuery logs a similarity query.
func (l *Logger) LogQuery(ctx context.Context, id model.ID, k, resultsFound int, err error) {
	if err != nil {
		l.DebugContext(ctx, "similar failed",
			"id", id,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "similar completed",
			"id", id,
			"k", k,
			"results", resultsFound,
		)
	}
}
