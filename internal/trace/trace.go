// Package trace carries a *slog.Logger in a context.Context, so that
// library code can log without owning a logger of its own.
package trace

import (
	"context"
	"log/slog"
	"runtime"
)

type loggerKey struct{}

// the null logger is a logger that does nothing
var nullLogger = slog.New(slog.DiscardHandler)

// WithLogger returns a context carrying the logger. If the context
// already has a logger, it is returned as is.
func WithLogger(ctx context.Context, l *slog.Logger) context.Context {
	if _, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return ctx
	}
	return context.WithValue(ctx, loggerKey{}, l)
}

// From returns the logger in the context, or a logger that discards
// everything.
func From(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok && l != nil {
		return l
	}
	return nullLogger
}

// Event logs a debug level message tagged with the calling function
func Event(ctx context.Context, msg string, attrs ...slog.Attr) {
	l := From(ctx)
	if !l.Enabled(ctx, slog.LevelDebug) {
		return
	}
	l.LogAttrs(ctx, slog.LevelDebug, msg, append(attrs, caller())...)
}

// Error logs err at error level
func Error(ctx context.Context, err error, msg string, attrs ...slog.Attr) {
	l := From(ctx)
	attrs = append(attrs, slog.String("error", err.Error()), caller())
	l.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func caller() slog.Attr {
	pc, _, _, ok := runtime.Caller(2)
	if ok {
		if fn := runtime.FuncForPC(pc); fn != nil {
			return slog.String("fn", fn.Name())
		}
	}
	return slog.String("fn", "unknown")
}
