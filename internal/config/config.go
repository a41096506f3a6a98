package config

import (
	"fmt"

	"github.com/flatkv/flatkv/internal/store"
)

// Config is the full flatkv configuration.
type Config struct {
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Cache    CacheConfig    `toml:"cache" mapstructure:"cache"`
	Backup   BackupConfig   `toml:"backup" mapstructure:"backup"`
}

// DatabaseConfig represents the [database] section.
type DatabaseConfig struct {
	Path            string `toml:"path" mapstructure:"path"`
	Engine          string `toml:"engine" mapstructure:"engine"`
	CreateIfMissing bool   `toml:"create_if_missing" mapstructure:"create_if_missing"`
	SyncWrites      bool   `toml:"sync_writes" mapstructure:"sync_writes"`
	CacheBytes      int64  `toml:"cache_bytes" mapstructure:"cache_bytes"`
}

// CacheConfig represents the [cache] section, the optional read-through
// LRU in front of Get.
type CacheConfig struct {
	Entries int `toml:"entries" mapstructure:"entries"`
}

// BackupConfig represents the [backup] section.
type BackupConfig struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	FlushFirst bool   `toml:"flush_first" mapstructure:"flush_first"`
}

// StoreOptions translates the database and cache sections into store
// open options.
func (c *Config) StoreOptions() store.Options {
	return store.Options{
		Engine:          c.Database.Engine,
		CreateIfMissing: c.Database.CreateIfMissing,
		SyncWrites:      c.Database.SyncWrites,
		CacheEntries:    c.Cache.Entries,
		CacheBytes:      c.Database.CacheBytes,
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Database.Engine == "" {
		return fmt.Errorf("database engine is required")
	}
	if c.Database.CacheBytes < 0 {
		return fmt.Errorf("cache_bytes must be non-negative, got %d", c.Database.CacheBytes)
	}
	if c.Cache.Entries < 0 {
		return fmt.Errorf("cache entries must be non-negative, got %d", c.Cache.Entries)
	}
	return nil
}
