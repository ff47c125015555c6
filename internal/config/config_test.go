package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alkime/healthvoice/internal/auth"
	"github.com/alkime/healthvoice/internal/config"
	"github.com/alkime/healthvoice/internal/login"
	"github.com/alkime/healthvoice/internal/recorder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 31536000, cfg.HSTSMaxAge)
	assert.Equal(t, 1500*time.Millisecond, cfg.RecognizerInterval)
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HEALTHVOICE_ENV", "production")
	t.Setenv("HEALTHVOICE_PORT", "9090")
	t.Setenv("HEALTHVOICE_OPENAI_API_KEY", "sk-env")
	t.Setenv("HEALTHVOICE_RECOGNIZER_INTERVAL", "2s")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "sk-env", cfg.OpenAIAPIKey)
	assert.Equal(t, 2*time.Second, cfg.RecognizerInterval)
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("HEALTHVOICE_LOG_LEVEL=debug\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("HEALTHVOICE_LOG_LEVEL") })

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfig_InvalidValue(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HEALTHVOICE_HSTS_MAX_AGE", "forever")

	_, err := config.LoadConfig()
	require.Error(t, err)
}

func TestBuildCSP(t *testing.T) {
	assert.Contains(t, config.BuildCSP("strict"), "default-src 'none'")
	assert.Contains(t, config.BuildCSP("relaxed"), "default-src 'self'")
	assert.Equal(t, config.BuildCSP("relaxed"), config.BuildCSP(""))
}

func TestDefaultFlow(t *testing.T) {
	flow := config.DefaultFlow()
	require.NoError(t, flow.Validate())

	assert.Equal(t, auth.DefaultTimings(), flow.AuthTimings())
	assert.Equal(t, recorder.DefaultLimits(), flow.RecorderLimits())
	assert.Equal(t, login.Options{TraditionalDelay: time.Second}, flow.LoginOptions())
}

func writeFlow(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "flow.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoadFlow(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		flow, err := config.LoadFlow("")
		require.NoError(t, err)
		assert.Equal(t, config.DefaultFlow(), flow)
	})

	t.Run("overrides", func(t *testing.T) {
		path := writeFlow(t, `
instructions_delay = "500ms"
success_redirect = "0s"

[recording]
auth_ceiling = "3s"
early_stop_chars = 10
`)

		flow, err := config.LoadFlow(path)
		require.NoError(t, err)

		timings := flow.AuthTimings()
		assert.Equal(t, 500*time.Millisecond, timings.InstructionsDelay)
		assert.Equal(t, 1500*time.Millisecond, timings.ProcessingDelay)
		assert.Zero(t, timings.SuccessDelay)

		limits := flow.RecorderLimits()
		assert.Equal(t, 3*time.Second, limits.AuthCeiling)
		assert.Equal(t, 15*time.Second, limits.CaptureCeiling)
		assert.Equal(t, 10, limits.EarlyStopChars)
		assert.Equal(t, time.Second, limits.Tick)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := config.LoadFlow(writeFlow(t, `instruction_delay = "1s"`))
		require.ErrorContains(t, err, "unknown keys: instruction_delay")
	})

	t.Run("bad duration", func(t *testing.T) {
		_, err := config.LoadFlow(writeFlow(t, `processing_delay = "soon"`))
		require.ErrorContains(t, err, "invalid duration")
	})

	t.Run("negative delay", func(t *testing.T) {
		_, err := config.LoadFlow(writeFlow(t, `auto_start_delay = "-1s"`))
		require.ErrorContains(t, err, "auto_start_delay must not be negative")
	})

	t.Run("zero ceiling", func(t *testing.T) {
		_, err := config.LoadFlow(writeFlow(t, "[recording]\ncapture_ceiling = \"0s\"\n"))
		require.ErrorContains(t, err, "ceilings must be positive")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.LoadFlow(filepath.Join(t.TempDir(), "nope.toml"))
		require.Error(t, err)
	})
}
