package logging

import (
	"log/slog"
	"os"
)

// stdout is used by the logging package itself so its own failures never
// loop back into the database handler.
var stdout = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

// Setup initializes the global slog logger with JSON output to stdout.
func Setup() {
	slog.SetDefault(stdout)
}

// WithDatabase makes the default logger also persist ERROR+ records through
// pg. Returns the handler so the caller can Stop it on shutdown.
func WithDatabase(sink LogSink) *PGHandler {
	pg := NewPGHandler(sink)
	slog.SetDefault(slog.New(NewMultiHandler(stdout.Handler(), pg)))
	return pg
}
