package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New returns a structured logger writing to stdout. Production uses JSON so
// log shippers can parse it; other environments use the text handler.
func New(production bool, level string) *slog.Logger {
	return NewWithWriter(os.Stdout, production, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, production bool, level string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if production {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With("service", "pinguard")
}

// ParseLevel maps a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	lvl, _ := LookupLevel(level)
	return lvl
}

// LookupLevel maps a level name to slog.Level. Names are case-insensitive and
// surrounding whitespace is ignored; ok is false for unknown names.
func LookupLevel(level string) (lvl slog.Level, ok bool) {
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
