package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(EnvSupabaseURL, "https://abc.supabase.co/")
	t.Setenv(EnvSupabaseKey, " key ")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.Addr)
	assert.Equal(t, "https://abc.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, "key", cfg.SupabaseKey)
	assert.Equal(t, "employees", cfg.Table)
	assert.Equal(t, 8*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.TracingEnabled())
	assert.NoError(t, cfg.Validate())
}

func TestLoadDotEnvDoesNotOverrideProcessEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# comment\nSUPABASE_URL=https://from-file.supabase.co\nexport STAFFDESK_ADDR=\":4000\"\nSTAFFDESK_TABLE='staff'\nnot a pair\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(EnvSupabaseURL, "https://from-env.supabase.co")
	t.Setenv(EnvSupabaseKey, "k")
	// Registered with t.Setenv so the values set by LoadDotEnv are restored.
	t.Setenv(EnvAddr, "")
	os.Unsetenv(EnvAddr)
	t.Setenv(EnvTable, "")
	os.Unsetenv(EnvTable)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://from-env.supabase.co", cfg.SupabaseURL)
	assert.Equal(t, ":4000", cfg.Addr)
	assert.Equal(t, "staff", cfg.Table)
}

func TestMissingDotEnvIsIgnored(t *testing.T) {
	require.NoError(t, LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))
}

func TestWriteDotEnvRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	values := map[string]string{"B": "two words", "A": "1"}
	require.NoError(t, WriteDotEnv(path, values, false))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A=1\nB=\"two words\"\n", string(raw))

	assert.Error(t, WriteDotEnv(path, values, false))
	assert.NoError(t, WriteDotEnv(path, values, true))
}

func TestValidate(t *testing.T) {
	base := Config{SupabaseURL: "https://abc.supabase.co", SupabaseKey: "k", Table: "employees", RequestTimeout: time.Second}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "missing url", mutate: func(c *Config) { c.SupabaseURL = "" }},
		{name: "relative url", mutate: func(c *Config) { c.SupabaseURL = "abc.supabase.co" }},
		{name: "missing key", mutate: func(c *Config) { c.SupabaseKey = "" }},
		{name: "empty table", mutate: func(c *Config) { c.Table = "" }},
		{name: "zero timeout", mutate: func(c *Config) { c.RequestTimeout = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestTracingEnabled(t *testing.T) {
	cfg := Config{OTelEndpoint: "http://localhost:4318", OTelEnabled: true}
	assert.True(t, cfg.TracingEnabled())
	cfg.OTelEnabled = false
	assert.False(t, cfg.TracingEnabled())
}
