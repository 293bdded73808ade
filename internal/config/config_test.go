package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CELERIX_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "./data", c.DataDir)
	assert.Equal(t, "7001", c.Port)
	assert.Equal(t, "7002", c.HTTPPort)
	assert.False(t, c.DisableTLS)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CELERIX_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("CELERIX_PORT", "9001")
	t.Setenv("CELERIX_DISABLE_TLS", "true")
	t.Setenv("CELERIX_LOG_LEVEL", "debug")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9001", c.Port)
	assert.True(t, c.DisableTLS)
	assert.Equal(t, "debug", c.Log.Level)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	t.Setenv("CELERIX_CONFIG", path)

	want := Config{
		DataDir:   "/var/lib/celerix-admin",
		Port:      "7101",
		HTTPPort:  "7102",
		StoreAddr: "10.0.0.5:7101",
		Log:       LogConfig{Level: "warn", Path: "/var/log/celerix-admin.log", Pretty: true},
	}
	require.NoError(t, Save(want))
	_, err := os.Stat(path)
	require.NoError(t, err)

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("port = [unterminated"), 0o644))
	t.Setenv("CELERIX_CONFIG", path)

	_, err := Load()
	assert.Error(t, err)
}
