package vecann

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// Logger wraps slog.Logger with vecann-specific context.
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
	return &Logger{
		Logger: slog.New(slog.DiscardHandler),
	}
}

// WithInstance tags every record with the algorithm instance id.
func (l *Logger) WithInstance(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("instance", id),
	}
}

// WithAlgorithm adds the algorithm description.
func (l *Logger) WithAlgorithm(name string) *Logger {
	return &Logger{
		Logger: l.Logger.With("algorithm", name),
	}
}

// WithK adds a k (neighbor count) field to the logger.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{
		Logger: l.Logger.With("k", k),
	}
}

// WithDimension adds a dimension field to the logger.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{
		Logger: l.Logger.With("dimension", dim),
	}
}

// LogFit logs a fit operation.
func (l *Logger) LogFit(ctx context.Context, count, dimension int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "fit failed",
			"count", count,
			"dimension", dimension,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "fit completed",
			"count", count,
			"dimension", dimension,
			"duration", duration,
		)
	}
}

// LogQuery logs a single query.
func (l *Logger) LogQuery(ctx context.Context, k, resultsFound int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "query failed",
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "query completed",
			"k", k,
			"results", resultsFound,
		)
	}
}

// LogBatchQuery logs a batch query.
func (l *Logger) LogBatchQuery(ctx context.Context, queries, k int, duration time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "batch query failed",
			"queries", queries,
			"k", k,
			"error", err,
		)
	} else {
		l.DebugContext(ctx, "batch query completed",
			"queries", queries,
			"k", k,
			"duration", duration,
		)
	}
}

// LogSetQueryArguments logs a change of query-time parameters.
func (l *Logger) LogSetQueryArguments(ctx context.Context, args []int, err error) {
	if err != nil {
		l.WarnContext(ctx, "set query arguments rejected",
			"args", args,
			"error", err,
		)
	} else {
		l.InfoContext(ctx, "query arguments set",
			"args", args,
		)
	}
}
