// Package logging builds the structured slog loggers used across the service.
//
// Logs are JSON on stderr and carry the module name and build version on
// every record. Debug level also records the source location.
package logging

import (
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
)

// LookupLevel maps a case-insensitive level name to a slog.Level. "warning"
// is accepted as an alias of "warn".
func LookupLevel(level string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ParseLevel is LookupLevel with unknown names falling back to info.
func ParseLevel(level string) slog.Level {
	lvl, _ := LookupLevel(level)
	return lvl
}

func newLogger(w io.Writer, module, version, level string) *slog.Logger {
	lvl := ParseLevel(level)
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		AddSource: lvl <= slog.LevelDebug,
		Level:     lvl,
	})
	return slog.New(handler).With("module", module, "version", version)
}

// NewStructuredLogger returns a JSON logger writing to stderr.
func NewStructuredLogger(module, version, level string) *slog.Logger {
	return newLogger(os.Stderr, module, version, level)
}

// SetDefaultStructuredLogger installs a structured logger as the slog default
// and routes the standard log package through it.
func SetDefaultStructuredLogger(module, version, level string) *slog.Logger {
	logger := NewStructuredLogger(module, version, level)
	slog.SetDefault(logger)
	return logger
}

// NewLogLogger adapts logger for APIs that still take a *log.Logger, such as
// http.Server.ErrorLog.
func NewLogLogger(logger *slog.Logger, level slog.Level) *log.Logger {
	return slog.NewLogLogger(logger.Handler(), level)
}
