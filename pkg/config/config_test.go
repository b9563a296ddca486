package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "./data", cfg.DataDir)
	assert.Equal(t, 30*time.Second, cfg.Download.Timeout)
	assert.Equal(t, 1, cfg.Download.Workers)
	assert.NotEmpty(t, cfg.Download.UserAgent)
	assert.Equal(t, 95, cfg.Download.JPEGQuality)
	assert.Contains(t, cfg.Collector.SearchURL, "{query}")
	assert.Equal(t, "unsplash.csv", cfg.Annotations.File)
	assert.Equal(t, "csv", cfg.Annotations.Format)
	assert.Equal(t, 5, cfg.Grid.Columns)
	assert.Equal(t, "info", cfg.Logging.Level)

	require.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("IMGDATASET_DATA_DIR", "/env/data")
	t.Setenv("IMGDATASET_TIMEOUT", "45s")
	t.Setenv("IMGDATASET_WORKERS", "4")
	t.Setenv("IMGDATASET_USER_AGENT", "env-agent")
	t.Setenv("IMGDATASET_SEARCH_URL", "http://search.local/{query}")
	t.Setenv("IMGDATASET_LOG_LEVEL", "debug")

	cfg := DefaultConfig()
	require.NoError(t, cfg.LoadFromEnv())

	assert.Equal(t, "/env/data", cfg.DataDir)
	assert.Equal(t, 45*time.Second, cfg.Download.Timeout)
	assert.Equal(t, 4, cfg.Download.Workers)
	assert.Equal(t, "env-agent", cfg.Download.UserAgent)
	assert.Equal(t, "http://search.local/{query}", cfg.Collector.SearchURL)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromEnvInvalid(t *testing.T) {
	t.Setenv("IMGDATASET_WORKERS", "many")

	cfg := DefaultConfig()
	assert.Error(t, cfg.LoadFromEnv())
}

func TestLoadFromFile(t *testing.T) {
	t.Run("valid yaml file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		content := `
data_dir: /file/data
download:
  timeout: 10s
  workers: 2
collector:
  limit: 12
annotations:
  file: labels.csv
  format: parquet
grid:
  cell_size: 128
logging:
  level: warn
`
		require.NoError(t, os.WriteFile(configPath, []byte(content), 0644))

		cfg := DefaultConfig()
		require.NoError(t, cfg.LoadFromFile(configPath))

		assert.Equal(t, "/file/data", cfg.DataDir)
		assert.Equal(t, 10*time.Second, cfg.Download.Timeout)
		assert.Equal(t, 2, cfg.Download.Workers)
		assert.Equal(t, 12, cfg.Collector.Limit)
		assert.Equal(t, "labels.csv", cfg.Annotations.File)
		assert.Equal(t, "parquet", cfg.Annotations.Format)
		assert.Equal(t, 128, cfg.Grid.CellSize)
		assert.Equal(t, "warn", cfg.Logging.Level)
		// Untouched values keep their defaults
		assert.Equal(t, 5, cfg.Grid.Columns)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte("data_dir: [unclosed"), 0644))

		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(configPath))
	})

	t.Run("missing explicit file", func(t *testing.T) {
		cfg := DefaultConfig()
		assert.Error(t, cfg.LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml")))
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, true},
		{"zero workers", func(c *Config) { c.Download.Workers = 0 }, true},
		{"too many workers", func(c *Config) { c.Download.Workers = 11 }, true},
		{"bad quality", func(c *Config) { c.Download.JPEGQuality = 0 }, true},
		{"search url without placeholder", func(c *Config) { c.Collector.SearchURL = "http://x" }, true},
		{"unknown format", func(c *Config) { c.Annotations.Format = "xlsx" }, true},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, true},
		{"parquet format", func(c *Config) { c.Annotations.Format = "parquet" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("data_dir: /from/file\ndownload:\n  workers: 2\n"), 0644))

	t.Setenv("IMGDATASET_DATA_DIR", "/from/env")

	cfg, err := Load(configPath, map[string]interface{}{"workers": 3})
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.DataDir)
	assert.Equal(t, 3, cfg.Download.Workers)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DataDir = "/saved"
	cfg.Grid.CellSize = 64
	require.NoError(t, cfg.Save(path))

	loaded := DefaultConfig()
	require.NoError(t, loaded.LoadFromFile(path))
	assert.Equal(t, "/saved", loaded.DataDir)
	assert.Equal(t, 64, loaded.Grid.CellSize)
	assert.Equal(t, cfg.Download.Timeout, loaded.Download.Timeout)
}
