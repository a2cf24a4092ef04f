package app

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// NewLogger builds the process logger for the requested format. "json" suits
// log shippers; anything else gets the human-readable text handler. Logs go
// to stderr so CLI output on stdout stays clean.
func NewLogger(format string) *slog.Logger {
	return newLoggerTo(os.Stderr, format)
}

func newLoggerTo(w io.Writer, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
