package logger_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/alkime/healthvoice/internal/config"
	"github.com/alkime/healthvoice/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		env, level string
		want       slog.Level
	}{
		{env: "development", level: "error", want: slog.LevelDebug},
		{env: "production", level: "", want: slog.LevelInfo},
		{env: "production", level: "DEBUG", want: slog.LevelDebug},
		{env: "production", level: "warn", want: slog.LevelWarn},
		{env: "production", level: "error", want: slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, logger.Level(&config.Config{Env: tt.env, LogLevel: tt.level}))
		})
	}
}

func TestSetupTUI_WritesToFile(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "healthvoice.log")

	log, closer, err := logger.SetupTUI(&config.Config{Env: "production", LogLevel: "info", LogFile: path})
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("attempt started", "stage", "recording")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "attempt started")
	assert.Contains(t, string(data), "stage=recording")
	assert.NotContains(t, string(data), "hidden")
}

func TestSetupTUI_BadPath(t *testing.T) {
	_, _, err := logger.SetupTUI(&config.Config{LogFile: filepath.Join(t.TempDir(), "missing", "x.log")})
	require.Error(t, err)
}
