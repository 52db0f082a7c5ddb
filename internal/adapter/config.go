package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mmcdole/gallerysync/internal/domain"
)

const appName = "gallerysync"

// Config holds all application configuration
type Config struct {
	Feed    FeedConfig    `mapstructure:"feed"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
	Logging LoggingConfig `mapstructure:"logging"`
	Viewer  ViewerConfig  `mapstructure:"viewer"`
}

// FeedConfig holds upstream gallery API configuration
type FeedConfig struct {
	URL       string        `mapstructure:"url"`        // Paginated endpoint, page number is appended
	ClientID  string        `mapstructure:"client_id"`  // Sent as "Client-ID <id>"
	QueryTags string        `mapstructure:"query_tags"` // q_tags query parameter
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds local store configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"` // Empty keeps the cache in memory only
}

// SyncConfig holds orchestrator tuning
type SyncConfig struct {
	MaxConcurrentDownloads int   `mapstructure:"max_concurrent_downloads"`
	NearEndThreshold       int   `mapstructure:"near_end_threshold"`
	MaxContentBytes        int64 `mapstructure:"max_content_bytes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File       string `mapstructure:"file"`
	Level      string `mapstructure:"level"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// ViewerConfig holds the external image viewer used to open exported content
type ViewerConfig struct {
	Command string   `mapstructure:"command"` // Empty for auto-detect / system default
	Args    []string `mapstructure:"args"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Feed: FeedConfig{
			URL:       "https://api.imgur.com/3/gallery/hot/viral/all",
			QueryTags: "image",
			Timeout:   30 * time.Second,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Sync: SyncConfig{
			MaxConcurrentDownloads: 4,
			NearEndThreshold:       10,
			MaxContentBytes:        domain.MaxItemSizeBytes,
		},
		Logging: LoggingConfig{
			File:       defaultLogPath(),
			Level:      "INFO",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName, appName+".log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, appName+".log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// defaultCachePath returns the default cache directory path for the current OS
func defaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName, "cache")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName, "cache")
	}
}

// newViper builds a viper instance seeded with defaults so env overrides
// apply to every key, including ones missing from the file.
func newViper() *viper.Viper {
	v := viper.New()
	d := DefaultConfig()

	v.SetDefault("feed.url", d.Feed.URL)
	v.SetDefault("feed.client_id", d.Feed.ClientID)
	v.SetDefault("feed.query_tags", d.Feed.QueryTags)
	v.SetDefault("feed.timeout", d.Feed.Timeout)
	v.SetDefault("cache.dir", d.Cache.Dir)
	v.SetDefault("sync.max_concurrent_downloads", d.Sync.MaxConcurrentDownloads)
	v.SetDefault("sync.near_end_threshold", d.Sync.NearEndThreshold)
	v.SetDefault("sync.max_content_bytes", d.Sync.MaxContentBytes)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.max_size_mb", d.Logging.MaxSizeMB)
	v.SetDefault("logging.max_backups", d.Logging.MaxBackups)
	v.SetDefault("logging.max_age_days", d.Logging.MaxAgeDays)
	v.SetDefault("viewer.command", d.Viewer.Command)
	v.SetDefault("viewer.args", d.Viewer.Args)

	// Environment variable overrides: GALLERYSYNC_FEED_CLIENT_ID, ...
	v.SetEnvPrefix(strings.ToUpper(appName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// LoadConfig loads configuration from file and environment.
// An empty path searches the default config directory and ".".
func LoadConfig(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(path != "" && errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes cfg to path, or to the default location when path is empty.
func SaveConfig(cfg *Config, path string) (string, error) {
	if path == "" {
		path = filepath.Join(defaultConfigPath(), "config.yaml")
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()

	// Set fields individually to ensure correct key names (snake_case)
	v.Set("feed.url", cfg.Feed.URL)
	v.Set("feed.client_id", cfg.Feed.ClientID)
	v.Set("feed.query_tags", cfg.Feed.QueryTags)
	v.Set("feed.timeout", cfg.Feed.Timeout.String())

	v.Set("cache.dir", cfg.Cache.Dir)

	v.Set("sync.max_concurrent_downloads", cfg.Sync.MaxConcurrentDownloads)
	v.Set("sync.near_end_threshold", cfg.Sync.NearEndThreshold)
	v.Set("sync.max_content_bytes", cfg.Sync.MaxContentBytes)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.max_size_mb", cfg.Logging.MaxSizeMB)
	v.Set("logging.max_backups", cfg.Logging.MaxBackups)
	v.Set("logging.max_age_days", cfg.Logging.MaxAgeDays)

	v.Set("viewer.command", cfg.Viewer.Command)
	if len(cfg.Viewer.Args) > 0 {
		v.Set("viewer.args", cfg.Viewer.Args)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}

	return path, nil
}

// IsConfigured returns true if the feed URL and client id are set
func (c *Config) IsConfigured() bool {
	return c.Feed.URL != "" && c.Feed.ClientID != ""
}

// Validate rejects settings the sync engine cannot run with.
func (c *Config) Validate() error {
	if c.Sync.MaxConcurrentDownloads < 1 {
		return fmt.Errorf("sync.max_concurrent_downloads must be at least 1, got %d", c.Sync.MaxConcurrentDownloads)
	}
	if c.Sync.NearEndThreshold < 1 {
		return fmt.Errorf("sync.near_end_threshold must be at least 1, got %d", c.Sync.NearEndThreshold)
	}
	if c.Sync.MaxContentBytes <= 0 {
		return fmt.Errorf("sync.max_content_bytes must be positive, got %d", c.Sync.MaxContentBytes)
	}
	if c.Feed.Timeout < 0 {
		return fmt.Errorf("feed.timeout must not be negative, got %s", c.Feed.Timeout)
	}
	return nil
}

// ClearCache removes all cached data under dir
func ClearCache(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}
