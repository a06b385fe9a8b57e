// Package logger initializes the process-wide slog logger. CHOROMAP_LOG_LEVEL
// and CHOROMAP_LOG_FORMAT override the values passed to Setup.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var defaultLogger *slog.Logger

// Setup builds the default logger writing to stderr. level is one of
// debug, info, warn or error; format is text or json.
func Setup(level, format string) *slog.Logger {
	return setup(os.Stderr, level, format)
}

func setup(w io.Writer, level, format string) *slog.Logger {
	if v := os.Getenv("CHOROMAP_LOG_LEVEL"); v != "" {
		level = v
	}
	if v := os.Getenv("CHOROMAP_LOG_FORMAT"); v != "" {
		format = v
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var h slog.Handler
	if strings.ToLower(format) == "json" {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	defaultLogger = slog.New(h)
	return defaultLogger
}

// L returns the default logger, setting it up at info level if needed.
func L() *slog.Logger {
	if defaultLogger == nil {
		return Setup("info", "text")
	}
	return defaultLogger
}

func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
