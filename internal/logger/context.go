package logger

import (
	"context"
	"log/slog"
	"sync"
)

type ctxKey int

const (
	requestLoggerKey ctxKey = iota
	logAttrsKey
)

// logAttrs collects attributes contributed by middleware and handlers during a
// request, so the final request log line carries all of them.
type logAttrs struct {
	mu    sync.Mutex
	attrs []slog.Attr
}

// ContextWithRequestLogger stores a request-scoped logger on the context.
func ContextWithRequestLogger(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerKey, l)
}

// ContextRequestLogger returns the request-scoped logger, or the default
// logger when none was set (e.g. in tests).
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// ContextWithLogAttrCollector prepares the context to accumulate log
// attributes for the final request log line.
func ContextWithLogAttrCollector(ctx context.Context) context.Context {
	return context.WithValue(ctx, logAttrsKey, &logAttrs{})
}

// ContextWithLogAttrs appends attributes to the request's collector. A no-op
// when no collector is present.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) {
	c, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return
	}
	c.mu.Lock()
	c.attrs = append(c.attrs, attrs...)
	c.mu.Unlock()
}

// ContextLogAttrs returns everything collected so far.
func ContextLogAttrs(ctx context.Context) []slog.Attr {
	c, ok := ctx.Value(logAttrsKey).(*logAttrs)
	if !ok {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]slog.Attr, len(c.attrs))
	copy(out, c.attrs)
	return out
}
