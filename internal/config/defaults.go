package config

import "github.com/spf13/viper"

// setDefaults installs the built-in defaults before any file or
// environment override is applied.
func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "")
	v.SetDefault("database.engine", "pebble")
	v.SetDefault("database.create_if_missing", true)
	v.SetDefault("database.sync_writes", true)
	v.SetDefault("database.cache_bytes", 0)

	// Disabled by default so reads hit the engine unless asked for.
	v.SetDefault("cache.entries", 0)

	v.SetDefault("backup.dir", "")
	v.SetDefault("backup.flush_first", true)
}
