package main

import (
	"io"
	"log/slog"
)

// newLogger creates the converter's structured logger. Without --verbose the
// logger discards: user-facing status and warnings are printed by the commands.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
