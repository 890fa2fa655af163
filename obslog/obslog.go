// Package obslog implements the structured logging seam plugins and the
// graph executor use for diagnostics. It keeps the teacher's narrow
// With/Info/Error Logger interface, but backs the default implementation
// with go.uber.org/zap's sugared logger instead of a hand-rolled encoder.
package obslog

import (
	"go.uber.org/zap"
)

// Logger is the diagnostics seam every component in this module accepts.
// It mirrors the teacher's ecs.Logger shape exactly (With/Info/Error)
// so a host already used to that idiom needs no new vocabulary — only
// the backing implementation changed.
type Logger interface {
	With(key string, value any) Logger
	Info(msg string, kvs ...any)
	Error(msg string, kvs ...any)
}

// zapLogger adapts a zap.SugaredLogger to the Logger interface.
type zapLogger struct {
	sugar *zap.SugaredLogger
}

// NewZap wraps an existing zap.Logger. Pass zap.NewProduction() (or
// zap.NewDevelopment() for a human-readable console encoder) from the host.
func NewZap(z *zap.Logger) Logger {
	return zapLogger{sugar: z.Sugar()}
}

// NewNop returns a Logger that discards everything, used as the default
// when a host does not wire in a production logger.
func NewNop() Logger {
	return zapLogger{sugar: zap.NewNop().Sugar()}
}

func (l zapLogger) With(key string, value any) Logger {
	return zapLogger{sugar: l.sugar.With(key, value)}
}

func (l zapLogger) Info(msg string, kvs ...any) {
	l.sugar.Infow(msg, kvs...)
}

func (l zapLogger) Error(msg string, kvs ...any) {
	l.sugar.Errorw(msg, kvs...)
}

var _ Logger = zapLogger{}
