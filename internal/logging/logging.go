// Package logging provides the leveled logger shared by the CLI and the plan
// workers.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a --log-level flag value to a Level.
func ParseLevel(s string) (Level, error) {
	switch s {
	case "error":
		return LevelError, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "", "info":
		return LevelInfo, nil
	case "debug":
		return LevelDebug, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelError:
		return zerolog.ErrorLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelDebug:
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

type Logger struct {
	zl zerolog.Logger
}

// NewLogger writes human-readable output to w at the given level.
func NewLogger(level Level, w io.Writer) *Logger {
	console := zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	zl := zerolog.New(console).Level(level.zerolog()).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewDefault logs to stderr at info level.
func NewDefault() *Logger {
	return NewLogger(LevelInfo, os.Stderr)
}

// WithName returns a logger tagging every event with a component name.
func (l *Logger) WithName(name string) *Logger {
	return &Logger{zl: l.zl.With().Str("name", name).Logger()}
}

func (l *Logger) Debugf(format string, args ...any) {
	l.zl.Debug().Msgf(format, args...)
}

func (l *Logger) Infof(format string, args ...any) {
	l.zl.Info().Msgf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.zl.Warn().Msgf(format, args...)
}

func (l *Logger) Errorf(format string, args ...any) {
	l.zl.Error().Msgf(format, args...)
}
