// Package logger provides a zap-based application logger.
package logger

import (
	"context"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents the minimum level a logger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// TraceIDFn extracts a trace id from the context for log correlation.
type TraceIDFn func(ctx context.Context) string

// Logger writes structured, leveled log records.
type Logger struct {
	sugar     *zap.SugaredLogger
	traceIDFn TraceIDFn
}

// New constructs a logger writing JSON records to w at or above minLevel.
// Every record carries the service name; when traceIDFn is non-nil the
// active trace id is stamped on each record as well.
func New(w io.Writer, minLevel Level, service string, traceIDFn TraceIDFn) *Logger {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "time"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(zapcore.NewJSONEncoder(cfg), zapcore.AddSync(w), zapLevel(minLevel))
	z := zap.New(core).With(zap.String("service", service))

	return &Logger{sugar: z.Sugar(), traceIDFn: traceIDFn}
}

// Debug logs at debug level with alternating key/value args.
func (l *Logger) Debug(ctx context.Context, msg string, args ...any) {
	l.sugar.Debugw(msg, l.with(ctx, args)...)
}

// Info logs at info level with alternating key/value args.
func (l *Logger) Info(ctx context.Context, msg string, args ...any) {
	l.sugar.Infow(msg, l.with(ctx, args)...)
}

// Warn logs at warn level with alternating key/value args.
func (l *Logger) Warn(ctx context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, l.with(ctx, args)...)
}

// Error logs at error level with alternating key/value args.
func (l *Logger) Error(ctx context.Context, msg string, args ...any) {
	l.sugar.Errorw(msg, l.with(ctx, args)...)
}

func (l *Logger) with(ctx context.Context, args []any) []any {
	if l.traceIDFn != nil {
		if id := l.traceIDFn(ctx); id != "" {
			args = append(args, "trace_id", id)
		}
	}
	return args
}

func zapLevel(lvl Level) zapcore.Level {
	switch lvl {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
