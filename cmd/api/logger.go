// cmd/api/logger.go
package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// newLogger creates a structured logger that writes coloured, human-readable
// lines to stdout. Colour is turned off when stdout is not a terminal.
func newLogger(level *slog.LevelVar) *slog.Logger {
	return slog.New(newLogHandler(colorable.NewColorable(os.Stdout), level, !isatty.IsTerminal(os.Stdout.Fd())))
}

func newLogHandler(w io.Writer, level slog.Leveler, noColor bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Empty request ids and urls only add noise.
			if len(groups) == 0 && a.Value.Kind() == slog.KindString && a.Value.String() == "" {
				return slog.Attr{}
			}
			return a
		},
	})
}
