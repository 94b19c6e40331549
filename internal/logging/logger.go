// Package logging builds the slog loggers shared by the CLI, the session
// store and the interaction machine.
package logging

import (
	"io"
	"log/slog"
)

// New returns a text logger writing to w at info level, or debug level when
// debug is set. Attributes keyed "error" are written as "err".
//
// The CLI passes os.Stderr so command output on stdout can be piped.
func New(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: shortErrorKey,
	}))
}

func shortErrorKey(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
