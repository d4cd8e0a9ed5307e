package logging

import (
	"log/slog"
	"os"
)

const serviceName = "battlearena"

// SetupJSON sets slog's default logger to use JSON output at the given level.
// Every record carries the service name.
func SetupJSON(level slog.Level) {
	logger := slog.New(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}),
	).With("service", serviceName)
	slog.SetDefault(logger)
}
