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

	assert.Equal(t, StorageDataLake, cfg.Storage.Kind)
	assert.Equal(t, "jonoaoedlext", cfg.Storage.Account)
	assert.Equal(t, "dev", cfg.Storage.Container)
	assert.Equal(t, []string{"cc", "cp", "l"}, cfg.PageNames())

	src, ok := cfg.PageSource(PageCounterPicker)
	require.True(t, ok)
	assert.Equal(t, "consumption/vw_opponent_civ_analysis.csv.gz", src)

	assert.False(t, cfg.Logging.DebugMode, "logging is off unless asked for")
	require.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Storage, cfg.Storage)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
storage:
  kind: dir
  dir: /srv/aoe
  timeout: 5s
pages:
  l:
    source: leaderboard.csv
render:
  max_passes: 6
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, StorageDir, cfg.Storage.Kind)
	assert.Equal(t, "/srv/aoe", cfg.Storage.Dir)
	assert.Equal(t, 5*time.Second, cfg.GetStorageTimeout())
	assert.Equal(t, 6, cfg.Render.MaxPasses)

	src, _ := cfg.PageSource(PageLeaderboard)
	assert.Equal(t, "leaderboard.csv", src)
	// Pages not mentioned in the file keep their defaults.
	_, ok := cfg.PageSource(PagePerformance)
	assert.True(t, ok)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("storage: [unterminated"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config")
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.UI.Theme = "light"

	require.NoError(t, cfg.Save(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "light", loaded.UI.Theme)
	assert.Equal(t, cfg.Pages, loaded.Pages)
}

func TestDurationFallbacks(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 60*time.Second, cfg.GetStorageTimeout())
	assert.Zero(t, cfg.GetCacheMaxAge())

	cfg.Storage.Timeout = "garbage"
	cfg.Cache.MaxAge = "garbage"
	assert.Equal(t, 60*time.Second, cfg.GetStorageTimeout())
	assert.Equal(t, 7*24*time.Hour, cfg.GetCacheMaxAge())

	cfg.Cache.MaxAge = "2h"
	assert.Equal(t, 2*time.Hour, cfg.GetCacheMaxAge())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad kind", func(c *Config) { c.Storage.Kind = "s3" }, "invalid storage kind"},
		{"no account", func(c *Config) { c.Storage.Account = "" }, "storage account"},
		{"no container", func(c *Config) { c.Storage.Container = "" }, "storage container"},
		{"dir without path", func(c *Config) { c.Storage.Kind = StorageDir; c.Storage.Dir = "" }, "storage dir"},
		{"no pages", func(c *Config) { c.Pages = nil }, "no pages"},
		{"empty source", func(c *Config) { c.Pages["l"] = PageConfig{} }, `page "l" has no source`},
		{"cache without path", func(c *Config) { c.Cache.Path = "" }, "cache.path"},
		{"negative passes", func(c *Config) { c.Render.MaxPasses = -1 }, "max_passes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoggingCategoryToggle(t *testing.T) {
	lc := LoggingConfig{}
	assert.False(t, lc.IsCategoryEnabled("fetch"))

	lc.DebugMode = true
	assert.True(t, lc.IsCategoryEnabled("fetch"))

	lc.Categories = map[string]bool{"fetch": false}
	assert.False(t, lc.IsCategoryEnabled("fetch"))
	assert.True(t, lc.IsCategoryEnabled("render"))

	opts := lc.Options()
	assert.True(t, opts.DebugMode)
	assert.Equal(t, lc.Categories, opts.Categories)
}
