package cmd

import (
	"path/filepath"
	"testing"

	"github.com/ssargent/csvmap/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCommand(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "csvmap.yaml")
	dataDir := filepath.Join(tmpDir, "data")

	t.Run("successful initialization", func(t *testing.T) {
		res, err := runCommand(t, nil, "", "init", "--config", configPath, "--data-dir", dataDir, "--print-keys")
		require.NoError(t, err)
		assert.Contains(t, res.stdout, "Configuration created at "+configPath)

		cfg, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, dataDir, cfg.DataDir)
		assert.Len(t, cfg.Security.APIKey, 64)
		assert.Contains(t, res.stdout, "API key: "+cfg.Security.APIKey)
	})

	t.Run("existing config is kept", func(t *testing.T) {
		before, err := config.LoadConfig(configPath)
		require.NoError(t, err)

		res, err := runCommand(t, nil, "", "init", "--config", configPath)
		require.NoError(t, err)
		assert.Contains(t, res.stderr, "already exists")

		after, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, before.Security.APIKey, after.Security.APIKey)
	})

	t.Run("force reinitialization", func(t *testing.T) {
		before, err := config.LoadConfig(configPath)
		require.NoError(t, err)

		res, err := runCommand(t, nil, "", "init", "--config", configPath, "--force")
		require.NoError(t, err)
		assert.NotContains(t, res.stdout, "API key:")

		after, err := config.LoadConfig(configPath)
		require.NoError(t, err)
		assert.NotEqual(t, before.Security.APIKey, after.Security.APIKey)
	})
}
