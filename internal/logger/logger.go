// Package logger wraps zap behind the small structured logging surface used across seithi.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logger consumed by scrapers, the pipeline and the HTTP layer.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)

	// The Obj variants attach a single structured payload under key.
	DebugObj(msg, key string, obj any)
	InfoObj(msg, key string, obj any)
	WarnObj(msg, key string, obj any)
	ErrorObj(msg, key string, obj any)

	With(fields ...any) Logger
	Sync() error
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// New builds a zap backed Logger. format is "json" (default) or "console".
func New(level, format string) (Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}

	var cfg zap.Config
	if strings.EqualFold(strings.TrimSpace(format), "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "ts"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	l, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &zapLogger{s: l.Sugar()}, nil
}

// FromZap adapts an existing zap logger, mostly for tests using zaptest/observer.
func FromZap(l *zap.Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return &zapLogger{s: l.Sugar()}
}

func parseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", level)
	}
}

func (l *zapLogger) Debug(msg string, fields ...any) { l.s.Debugw(msg, fields...) }
func (l *zapLogger) Info(msg string, fields ...any)  { l.s.Infow(msg, fields...) }
func (l *zapLogger) Warn(msg string, fields ...any)  { l.s.Warnw(msg, fields...) }
func (l *zapLogger) Error(msg string, fields ...any) { l.s.Errorw(msg, fields...) }

func (l *zapLogger) DebugObj(msg, key string, obj any) { l.s.Debugw(msg, key, obj) }
func (l *zapLogger) InfoObj(msg, key string, obj any)  { l.s.Infow(msg, key, obj) }
func (l *zapLogger) WarnObj(msg, key string, obj any)  { l.s.Warnw(msg, key, obj) }
func (l *zapLogger) ErrorObj(msg, key string, obj any) { l.s.Errorw(msg, key, obj) }

func (l *zapLogger) With(fields ...any) Logger { return &zapLogger{s: l.s.With(fields...)} }

func (l *zapLogger) Sync() error { return l.s.Sync() }

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...any)         {}
func (NopLogger) Info(string, ...any)          {}
func (NopLogger) Warn(string, ...any)          {}
func (NopLogger) Error(string, ...any)         {}
func (NopLogger) DebugObj(string, string, any) {}
func (NopLogger) InfoObj(string, string, any)  {}
func (NopLogger) WarnObj(string, string, any)  {}
func (NopLogger) ErrorObj(string, string, any) {}
func (n NopLogger) With(...any) Logger         { return n }
func (NopLogger) Sync() error                  { return nil }

// Ensure returns l, or a NopLogger when l is nil.
func Ensure(l Logger) Logger {
	if l == nil {
		return NopLogger{}
	}
	return l
}
