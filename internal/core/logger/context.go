package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// Get returns the logger carried by ctx, falling back to the global logger.
// The correlation middleware stores a request-scoped logger this way so the
// writer and the admin handlers log with the request's correlation id.
func Get(ctx context.Context) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	return zap.L()
}

// With attaches the logger to ctx so downstream Get calls see it.
func With(ctx context.Context, l *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey{}, l)
}
