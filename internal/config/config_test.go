package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("DefaultsWhenNoFile", func(t *testing.T) {
		settings, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, ":8184", settings.ListenAddr)
		assert.Equal(t, "info", settings.LogLevel)
	})

	t.Run("MissingFileIsNotAnError", func(t *testing.T) {
		settings, err := Load("/does/not/exist.yaml")
		require.NoError(t, err)
		assert.Equal(t, Defaults(), settings)
	})

	t.Run("YAMLFileOverridesDefaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("listen_addr: \":9999\"\nlog_level: debug\n"), 0o644))

		settings, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9999", settings.ListenAddr)
		assert.Equal(t, "debug", settings.LogLevel)
	})

	t.Run("EnvOverridesFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))
		t.Setenv("REBASEKIT_LOG_LEVEL", "warn")
		t.Setenv("REBASEKIT_AUTH_TOKEN", "sekrit")

		settings, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "warn", settings.LogLevel)
		assert.Equal(t, "sekrit", settings.AuthToken)
	})

	t.Run("MalformedYAMLFails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("listen_addr: [oops\n"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})
}
