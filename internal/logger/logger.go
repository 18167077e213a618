// Package logger wraps zap's SugaredLogger with the key/value call style
// used throughout syllabus. A nil *Logger discards everything.
package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a structured logger writing to stderr.
type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for the given mode:
//   - "prod" or "production": JSON lines at info level,
//   - "quiet": console output at warn level,
//   - anything else: console output at debug level.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	case "quiet":
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	cfg.OutputPaths = []string{"stderr"}
	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("logger: build %s config: %w", mode, err)
	}
	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

// Nop returns a logger that discards all output.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Sync flushes buffered entries.
func (l *Logger) Sync() {
	if l == nil {
		return
	}
	_ = l.SugaredLogger.Sync()
}

// Debug logs msg with key/value pairs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Debugw(msg, keysAndValues...)
}

// Info logs msg with key/value pairs at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Infow(msg, keysAndValues...)
}

// Warn logs msg with key/value pairs at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Warnw(msg, keysAndValues...)
}

// Error logs msg with key/value pairs at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	if l == nil {
		return
	}
	l.SugaredLogger.Errorw(msg, keysAndValues...)
}

// With returns a child logger that adds the key/value pairs to every entry.
func (l *Logger) With(keysAndValues ...any) *Logger {
	if l == nil {
		return nil
	}
	return &Logger{SugaredLogger: l.SugaredLogger.With(keysAndValues...)}
}
