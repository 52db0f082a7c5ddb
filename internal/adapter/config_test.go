package adapter

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	d := DefaultConfig()
	assert.Equal(t, d.Feed.URL, cfg.Feed.URL)
	assert.Equal(t, "image", cfg.Feed.QueryTags)
	assert.Equal(t, 30*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, 4, cfg.Sync.MaxConcurrentDownloads)
	assert.Equal(t, 10, cfg.Sync.NearEndThreshold)
	assert.Equal(t, int64(16777216), cfg.Sync.MaxContentBytes)
	assert.False(t, cfg.IsConfigured())
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
feed:
  client_id: from-file
  timeout: 5s
cache:
  dir: ""
sync:
  max_concurrent_downloads: 2
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	t.Setenv("GALLERYSYNC_SYNC_NEAR_END_THRESHOLD", "3")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "from-file", cfg.Feed.ClientID)
	assert.Equal(t, 5*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "", cfg.Cache.Dir)
	assert.Equal(t, 2, cfg.Sync.MaxConcurrentDownloads)
	assert.Equal(t, 3, cfg.Sync.NearEndThreshold)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.IsConfigured())
}

func TestLoadConfig_RejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sync:\n  max_concurrent_downloads: 0\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "max_concurrent_downloads")

	require.NoError(t, os.WriteFile(path, []byte("sync:\n  near_end_threshold: 0\n"), 0644))
	_, err = LoadConfig(path)
	assert.ErrorContains(t, err, "near_end_threshold")
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Feed.ClientID = "abc123"
	cfg.Cache.Dir = "/tmp/gallery-cache"
	cfg.Sync.MaxConcurrentDownloads = 7
	cfg.Viewer.Command = "feh"
	cfg.Viewer.Args = []string{"--scale-down"}

	written, err := SaveConfig(cfg, path)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "abc123", loaded.Feed.ClientID)
	assert.Equal(t, "/tmp/gallery-cache", loaded.Cache.Dir)
	assert.Equal(t, 7, loaded.Sync.MaxConcurrentDownloads)
	assert.Equal(t, cfg.Feed.Timeout, loaded.Feed.Timeout)
	assert.Equal(t, "feh", loaded.Viewer.Command)
	assert.Equal(t, []string{"--scale-down"}, loaded.Viewer.Args)
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		" Error ": slog.LevelError,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), in)
	}
}

func TestSetupLogger_WritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, closer, err := SetupLogger(&LoggingConfig{File: path, Level: "debug", MaxSizeMB: 1})
	require.NoError(t, err)

	logger.Debug("hello", "id", "x1")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"hello"`)
	assert.Contains(t, string(data), `"id":"x1"`)
}
