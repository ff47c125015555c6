// Package logger builds the slog loggers used by the server and the TUI.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alkime/healthvoice/internal/config"
)

// Level returns the log level for cfg. Development always logs at debug.
func Level(cfg *config.Config) slog.Level {
	if cfg.Env == config.EnvDevelopment {
		return slog.LevelDebug
	}

	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupServer configures JSON logging to stdout and makes it the default.
func SetupServer(cfg *config.Config) *slog.Logger {
	return install(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: Level(cfg),
	}))
}

// SetupTUI logs as text to cfg.LogFile, since the terminal belongs to the
// UI. The returned closer must be called on exit.
func SetupTUI(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return install(slog.NewTextHandler(f, &slog.HandlerOptions{
		Level: Level(cfg),
	})), f, nil
}

func install(h slog.Handler) *slog.Logger {
	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}
