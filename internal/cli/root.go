package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flatkv/flatkv/internal/config"
	"github.com/flatkv/flatkv/internal/store"

	// Engine backends register themselves on import.
	_ "github.com/flatkv/flatkv/internal/store/leveldb"
	_ "github.com/flatkv/flatkv/internal/store/pebble"
)

var (
	// Global flags
	configFile   string
	dbPath       string
	engineName   string
	syncWrites   bool
	createDB     bool
	cacheEntries int
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "flatkv",
	Short: "flatkv - flat key-value store over an embedded engine",
	Long: `flatkv exposes an embedded key-value engine (pebble by default,
goleveldb as an alternative) through a flat surface: point reads and
writes, prefix scans, full-database backup and restore, and a
msgpack-based export/import stream.`,
	Version:       "0.1.0-dev",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path")
	rootCmd.PersistentFlags().StringVar(&engineName, "engine", "", "engine backend (pebble, leveldb)")
	rootCmd.PersistentFlags().BoolVar(&syncWrites, "sync", true, "wait for durable storage on every write")
	rootCmd.PersistentFlags().BoolVar(&createDB, "create", true, "create the database if missing")
	rootCmd.PersistentFlags().IntVar(&cacheEntries, "cache-entries", 0, "enable a read cache of this many entries")
}

// loadConfig resolves the effective configuration: file and environment
// first, explicitly set flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") || cfg.Database.Path == "" {
		cfg.Database.Path = dbPath
	}
	if flags.Changed("engine") {
		cfg.Database.Engine = engineName
	}
	if flags.Changed("sync") {
		cfg.Database.SyncWrites = syncWrites
	}
	if flags.Changed("create") {
		cfg.Database.CreateIfMissing = createDB
	}
	if flags.Changed("cache-entries") {
		cfg.Cache.Entries = cacheEntries
	}

	if cfg.Database.Path == "" {
		return nil, fmt.Errorf("no database path: pass --db or set database.path in the config file")
	}
	return cfg, nil
}

func openStore(cmd *cobra.Command, readOnly bool) (*store.Store, *config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	var s *store.Store
	if readOnly {
		s, err = store.OpenReadOnly(cfg.Database.Path, cfg.StoreOptions())
	} else {
		s, err = store.Open(cfg.Database.Path, cfg.StoreOptions())
	}
	if err != nil {
		return nil, nil, err
	}
	return s, cfg, nil
}
