package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New builds the application logger: JSON output in prod, human-readable
// text everywhere else. The environment is attached to every record.
func New(level string, addSource bool, environment string) *slog.Logger {
	return NewWithWriter(os.Stdout, level, addSource, environment)
}

// NewWithWriter is New with an explicit destination, which tests use to
// capture output.
func NewWithWriter(w io.Writer, level string, addSource bool, environment string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLevel(level),
		AddSource: addSource,
	}

	var handler slog.Handler
	if strings.ToLower(environment) == "prod" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(
		slog.String("environment", environment),
	)
}

// Nop returns a logger that discards everything.
func Nop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
