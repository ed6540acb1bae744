package log

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// NewCtx stores logger in ctx, so everything called with the returned context logs through it
func NewCtx(ctx context.Context, logger *logrus.Entry) (context.Context, *logrus.Entry) {
	ctx = context.WithValue(ctx, ctxKey{}, logger)

	return ctx, bindCtx(ctx, logger)
}

// FromCtx returns the logger stored in ctx or an entry of the global logger
func FromCtx(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		// ctx may be a child of the context the logger was stored with
		return bindCtx(ctx, logger)
	}

	return logrus.NewEntry(Log())
}

// WrapCtx derives a logger from the one in ctx and stores it in a new context
func WrapCtx(ctx context.Context, wrap func(*logrus.Entry) *logrus.Entry) (context.Context, *logrus.Entry) {
	return NewCtx(ctx, wrap(FromCtx(ctx)))
}

// CtxWithFields adds fields to the logger in ctx
func CtxWithFields(ctx context.Context, fields logrus.Fields) (context.Context, *logrus.Entry) {
	return WrapCtx(ctx, func(e *logrus.Entry) *logrus.Entry {
		return e.WithFields(fields)
	})
}

func bindCtx(ctx context.Context, logger *logrus.Entry) *logrus.Entry {
	bound := *logger
	bound.Context = ctx

	return &bound
}
