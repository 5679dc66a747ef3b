package utils

import (
	"io"
	"log/slog"
)

// SetupLogger installs a text slog handler on w as the default logger.
// verbose enables debug output, quiet restricts output to warnings.
func SetupLogger(w io.Writer, verbose, quiet bool) *slog.Logger {
	level := slog.LevelInfo
	switch {
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelWarn
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
