// Package logging defines the structured logger used by the installer and
// its zap-backed implementation.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging with key-value pairs.
type Logger interface {
	Debug(msg string, keysAndValues ...interface{})
	Info(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (noopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (noopLogger) Error(msg string, keysAndValues ...interface{}) {}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return noopLogger{}
}

// OrNop returns l, or a no-op logger when l is nil.
func OrNop(l Logger) Logger {
	if l == nil {
		return Nop()
	}
	return l
}

type zapLogger struct {
	s *zap.SugaredLogger
}

func (z zapLogger) Debug(msg string, kv ...interface{}) { z.s.Debugw(msg, kv...) }
func (z zapLogger) Info(msg string, kv ...interface{})  { z.s.Infow(msg, kv...) }
func (z zapLogger) Warn(msg string, kv ...interface{})  { z.s.Warnw(msg, kv...) }
func (z zapLogger) Error(msg string, kv ...interface{}) { z.s.Errorw(msg, kv...) }

// FromZap adapts a zap logger.
func FromZap(l *zap.Logger) Logger {
	return zapLogger{s: l.Sugar()}
}

// New builds a console logger writing to w. Timestamps are omitted because
// the runner prefixes its own.
func New(w io.Writer, debug bool) (Logger, func() error) {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	enc := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		NameKey:        "logger",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeName:     zapcore.FullNameEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	l := zap.New(core).Named("setup-steamcmd")

	return FromZap(l), l.Sync
}
