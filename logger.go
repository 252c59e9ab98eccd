package tpctrack

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/hupe1980/tpctrack/resultbuf"
)

// Logger wraps slog.Logger with tracker-specific context.
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
func NoopLogger() *Logger {
	return &Logger{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithEvent adds an event field to the logger.
func (l *Logger) WithEvent(event int) *Logger {
	return &Logger{
		Logger: l.Logger.With("event", event),
	}
}

// WithRun adds a run field to the logger.
func (l *Logger) WithRun(runID string) *Logger {
	return &Logger{
		Logger: l.Logger.With("run", runID),
	}
}

// LogFindTracks logs a completed or failed reconstruction.
func (l *Logger) LogFindTracks(ctx context.Context, hits, tracks int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "find tracks failed",
			"hits", hits,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "find tracks completed",
			"hits", hits,
			"tracks", tracks,
			"duration", duration,
		)
	}
}

// LogRefit logs a refit pass.
func (l *Logger) LogRefit(ctx context.Context, attempted, accepted int, err error) {
	switch {
	case err != nil:
		l.ErrorContext(ctx, "refit failed",
			"attempted", attempted,
			"error", err,
		)
	case accepted < attempted:
		l.DebugContext(ctx, "refit rejected tracks",
			"attempted", attempted,
			"accepted", accepted,
		)
	default:
		l.DebugContext(ctx, "refit completed",
			"tracks", attempted,
		)
	}
}

// LogEncode logs a result buffer encoding.
func (l *Logger) LogEncode(ctx context.Context, res resultbuf.Result, err error) {
	switch {
	case res.TracksDropped > 0:
		l.WarnContext(ctx, "result truncated",
			"written", res.TracksWritten,
			"dropped", res.TracksDropped,
			"bytes", res.BytesWritten,
		)
	case err != nil:
		l.ErrorContext(ctx, "encode failed",
			"error", err,
		)
	default:
		l.DebugContext(ctx, "result encoded",
			"tracks", res.TracksWritten,
			"bytes", res.BytesWritten,
		)
	}
}
