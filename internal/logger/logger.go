// Package logger provides a simple leveled logger for the application.
// It supports three levels: off (no output), normal (info/warn/error),
// and verbose (includes debug). Records are written through zerolog's
// console writer. The logger is safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level controls the verbosity of the logger.
type Level int

const (
	// LevelOff disables all log output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// gate is shared by a logger and every child derived from it, so SetLevel
// on any of them affects all.
type gate struct {
	mu    sync.RWMutex
	level Level
}

// Logger is a leveled logger. All methods are safe for concurrent use.
type Logger struct {
	gate *gate
	zl   zerolog.Logger
}

// New creates a logger with the given level, writing to the given output.
// If out is nil, os.Stderr is used.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	cw := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	}
	zl := zerolog.New(cw).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	return &Logger{gate: &gate{level: level}, zl: zl}
}

// With returns a child logger that adds key=value to every record.
func (l *Logger) With(key string, value any) *Logger {
	return &Logger{gate: l.gate, zl: l.zl.With().Interface(key, value).Logger()}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.gate.mu.Lock()
	defer l.gate.mu.Unlock()
	l.gate.level = level
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.gate.mu.RLock()
	defer l.gate.mu.RUnlock()
	return l.gate.level
}

func (l *Logger) enabled(min Level) bool {
	return l.GetLevel() >= min
}

// Debug logs a message at debug level (only visible in verbose mode).
func (l *Logger) Debug(format string, args ...any) {
	if l.enabled(LevelVerbose) {
		l.zl.Debug().Msg(fmt.Sprintf(format, args...))
	}
}

// Info logs a message at info level.
func (l *Logger) Info(format string, args ...any) {
	if l.enabled(LevelNormal) {
		l.zl.Info().Msg(fmt.Sprintf(format, args...))
	}
}

// Warn logs a message at warn level.
func (l *Logger) Warn(format string, args ...any) {
	if l.enabled(LevelNormal) {
		l.zl.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Error logs a message at error level.
func (l *Logger) Error(format string, args ...any) {
	if l.enabled(LevelNormal) {
		l.zl.Error().Msg(fmt.Sprintf(format, args...))
	}
}
