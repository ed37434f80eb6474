package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/alkime/sonaris/internal/config"
)

// SetupLogger configures structured JSON logging for the server.
func SetupLogger(cfg *config.Config) *slog.Logger {
	return setup(cfg, func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewJSONHandler(w, opts)
	})
}

// SetupCLILogger configures human-readable text logging for the CLI.
func SetupCLILogger(cfg *config.Config) *slog.Logger {
	return setup(cfg, func(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(w, opts)
	})
}

func setup(cfg *config.Config, newHandler func(io.Writer, *slog.HandlerOptions) slog.Handler) *slog.Logger {
	//nolint:exhaustruct // Using default values for other HandlerOptions fields
	handler := newHandler(os.Stderr, &slog.HandlerOptions{
		Level: Level(cfg),
	})

	logger := slog.New(handler)

	// Set as default logger
	slog.SetDefault(logger)

	return logger
}

// Level determines the log level from the environment and LOG_LEVEL.
func Level(cfg *config.Config) slog.Level {
	switch {
	case cfg.LogLevel == "debug", cfg.Env == config.EnvDevelopment && cfg.LogLevel == "":
		return slog.LevelDebug
	case cfg.LogLevel == "warn":
		return slog.LevelWarn
	case cfg.LogLevel == "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
