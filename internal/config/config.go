// Package config loads staffdesk settings from the environment and an
// optional .env file.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const DefaultEnvFile = ".env"

// Env variable names shared with the setup command.
const (
	EnvSupabaseURL = "SUPABASE_URL"
	EnvSupabaseKey = "SUPABASE_ANON_KEY"
	EnvAddr        = "STAFFDESK_ADDR"
	EnvTable       = "STAFFDESK_TABLE"
)

type Config struct {
	Addr           string        `env:"STAFFDESK_ADDR"            envDefault:":3000"`
	SupabaseURL    string        `env:"SUPABASE_URL"`
	SupabaseKey    string        `env:"SUPABASE_ANON_KEY"`
	Table          string        `env:"STAFFDESK_TABLE"           envDefault:"employees"`
	RequestTimeout time.Duration `env:"STAFFDESK_REQUEST_TIMEOUT" envDefault:"8s"`
	ReadTimeout    time.Duration `env:"STAFFDESK_READ_TIMEOUT"    envDefault:"5s"`
	WriteTimeout   time.Duration `env:"STAFFDESK_WRITE_TIMEOUT"   envDefault:"10s"`
	Debug          bool          `env:"STAFFDESK_DEBUG"`
	OTelEndpoint   string        `env:"STAFFDESK_OTEL_ENDPOINT"`
	OTelEnabled    bool          `env:"STAFFDESK_OTEL_ENABLED"    envDefault:"true"`
}

// Load reads envFile (when present) into the environment and parses Config.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := LoadDotEnv(envFile); err != nil {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SupabaseURL = strings.TrimRight(strings.TrimSpace(cfg.SupabaseURL), "/")
	cfg.SupabaseKey = strings.TrimSpace(cfg.SupabaseKey)
	cfg.Table = strings.TrimSpace(cfg.Table)
	return cfg, nil
}

// Validate checks the settings every command needs to reach the backend.
func (c Config) Validate() error {
	if c.SupabaseURL == "" {
		return fmt.Errorf("%s is required", EnvSupabaseURL)
	}
	parsed, err := url.Parse(c.SupabaseURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) url, got %q", EnvSupabaseURL, c.SupabaseURL)
	}
	if c.SupabaseKey == "" {
		return fmt.Errorf("%s is required", EnvSupabaseKey)
	}
	if c.Table == "" {
		return fmt.Errorf("%s must not be empty", EnvTable)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("STAFFDESK_REQUEST_TIMEOUT must be positive")
	}
	return nil
}

// TracingEnabled reports whether spans should be exported.
func (c Config) TracingEnabled() bool {
	return c.OTelEnabled && strings.TrimSpace(c.OTelEndpoint) != ""
}
