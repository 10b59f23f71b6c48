// Package logging provides component-scoped structured logging for the
// server. Output is JSON by default (LOG_JSON=false switches to text),
// level comes from LOG_LEVEL.
package logging

import (
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	rootOnce sync.Once
	root     *slog.Logger
)

// Logger wraps slog with component and trace decoration.
type Logger struct {
	l *slog.Logger
}

// NewLogger creates a logger scoped to one component.
func NewLogger(component string) *Logger {
	rootOnce.Do(initRoot)
	return &Logger{l: root.With("component", component)}
}

func initRoot() {
	level := parseLevel(os.Getenv("LOG_LEVEL"))
	opts := &slog.HandlerOptions{Level: level}

	useJSON := true
	if v := os.Getenv("LOG_JSON"); v == "false" || v == "0" {
		useJSON = false
	}

	var handler slog.Handler
	if useJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	root = slog.New(handler)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithTrace returns a child logger carrying a trace ID; a fresh one is
// generated when the argument is empty.
func (lg *Logger) WithTrace(traceID string) *Logger {
	if traceID == "" {
		traceID = uuid.New().String()
	}
	return &Logger{l: lg.l.With("trace_id", traceID)}
}

// Debug logs at debug level with key-value pairs.
func (lg *Logger) Debug(msg string, args ...any) { lg.l.Debug(msg, args...) }

// Info logs at info level with key-value pairs.
func (lg *Logger) Info(msg string, args ...any) { lg.l.Info(msg, args...) }

// Warn logs at warn level with key-value pairs.
func (lg *Logger) Warn(msg string, args ...any) { lg.l.Warn(msg, args...) }

// Error logs at error level with key-value pairs.
func (lg *Logger) Error(msg string, args ...any) { lg.l.Error(msg, args...) }
