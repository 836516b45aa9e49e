// Package logger configures structured JSON logging for the admin API.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var log *slog.Logger
var level = new(slog.LevelVar)

func init() {
	level.Set(ParseLevel(os.Getenv("LOG_LEVEL")))
	log = newLogger(os.Stdout)
	slog.SetDefault(log)
}

func newLogger(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("service", "neural-admin")
}

// ParseLevel maps debug, info, warn(ing) and error (any case) to a slog
// level. Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// IsDebug returns true if debug logging is enabled
func IsDebug() bool {
	return level.Level() <= slog.LevelDebug
}

// Debug logs a debug message with structured fields
func Debug(msg string, args ...any) {
	log.Debug(msg, args...)
}

// Info logs an informational message with structured fields
func Info(msg string, args ...any) {
	log.Info(msg, args...)
}

// Warn logs a warning message with structured fields
func Warn(msg string, args ...any) {
	log.Warn(msg, args...)
}

// Error logs an error message with structured fields
func Error(msg string, args ...any) {
	log.Error(msg, args...)
}

// Fatal logs an error message and exits with status 1
func Fatal(msg string, args ...any) {
	log.Error(msg, args...)
	os.Exit(1)
}

// SetOutputForTest redirects log output to w, optionally at a different
// level. Returns a cleanup function that restores the original output.
// This should only be used in tests.
func SetOutputForTest(w io.Writer, lvl slog.Level) func() {
	original := log
	originalLevel := level.Level()
	level.Set(lvl)
	log = newLogger(w)
	slog.SetDefault(log)
	return func() {
		level.Set(originalLevel)
		log = original
		slog.SetDefault(log)
	}
}
