// Package config loads HealthVoice settings from the environment and the
// optional flow timing profile.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvPrefix prefixes every environment variable, e.g. HEALTHVOICE_PORT.
	EnvPrefix = "HEALTHVOICE"

	EnvProduction  = "production"
	EnvDevelopment = "development"
)

// Config holds all application configuration.
type Config struct {
	Env string `envconfig:"ENV" default:"development"`

	// HTTP surface
	Port           string   `envconfig:"PORT" default:"8080"`
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
	HSTSMaxAge     int      `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode        string   `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// LogFile receives logs while the terminal UI owns stdout.
	LogFile string `envconfig:"LOG_FILE" default:"healthvoice.log"`

	// Speech recognition
	OpenAIAPIKey       string        `envconfig:"OPENAI_API_KEY"`
	RecognizerInterval time.Duration `envconfig:"RECOGNIZER_INTERVAL" default:"1500ms"`

	// FlowFile is an optional TOML flow timing profile.
	FlowFile string `envconfig:"FLOW_FILE"`
}

// LoadConfig loads an optional .env file and then the environment.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("error loading .env file", "error", err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &cfg, nil
}

// IsProduction reports whether Env is production.
func (c *Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// BuildCSP returns the Content-Security-Policy for mode. The API serves JSON
// only, so both modes forbid scripts from anywhere but self.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'none'; " +
			"frame-ancestors 'none'; " +
			"base-uri 'none'; " +
			"form-action 'none'"
	}

	return "default-src 'self'; " +
		"style-src 'self' 'unsafe-inline'; " +
		"script-src 'self'; " +
		"img-src 'self' data:"
}
