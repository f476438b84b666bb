package attrgraph

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with attrgraph-specific context.
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
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all log output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithContextID adds a context_id field to the logger.
func (l *Logger) WithContextID(id uint64) *Logger {
	return &Logger{
		Logger: l.Logger.With("context_id", id),
	}
}

// LogDestroy logs a node destruction.
func (l *Logger) LogDestroy(h Handle, err error) {
	if err != nil {
		l.Warn("destroy failed",
			"handle", uint32(h),
			"error", err,
		)
	} else {
		l.Debug("node destroyed",
			"handle", uint32(h),
		)
	}
}

// LogWrite logs a write and the dependency it must notify.
func (l *Logger) LogWrite(w WeakHandle, bytes int, dependency Handle, err error) {
	if err != nil {
		l.Debug("write failed",
			"handle", uint32(w.Handle()),
			"generation", w.Seed(),
			"bytes", bytes,
			"error", err,
		)
	} else {
		l.Debug("write completed",
			"handle", uint32(w.Handle()),
			"bytes", bytes,
			"dependency", uint32(dependency),
		)
	}
}

// LogReset logs a context reset.
func (l *Logger) LogReset(nodes int, stats MemoryStats) {
	l.Info("context reset",
		"nodes", nodes,
		"blocks", stats.ActiveBlocks,
		"bytes", stats.BytesReserved,
	)
}
