package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/contacts/internal/contract"
	"github.com/huangsam/contacts/internal/iocache"
	"github.com/huangsam/contacts/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cacheSetup loads minimal configuration needed for cache operations.
// This is used by commands that need cache access without full shared setup.
func cacheSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get cache-related config values
	backend := schema.DatabaseBackend(viper.GetString("cache-backend"))
	connStr := viper.GetString("cache-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	cfg.CacheBackend = backend
	cfg.CacheDBConnect = connStr
	return nil
}

// openCacheManager opens the configured durable tier and registers it for
// shutdown, exiting when the backend cannot be reached.
func openCacheManager() *iocache.CacheStoreManager {
	mgr, err := iocache.InitStores(cfg.CacheBackend, cfg.CacheDBConnect)
	if err != nil {
		contract.LogFatal("Failed to initialize cache", err)
	}
	cacheManager = mgr
	return mgr
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization instead of the full
// sharedSetup. They never talk to the contact store.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the query cache (keeps listings fast between runs)",
	Long: `Manage the durable query cache behind contacts.

Every listing and contact read is cached under a key built from its inputs.
Results are written through to a database so the next run can show them
right away while it refreshes them from the store.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (in-memory)

Subcommands:
  status  - Show cache statistics and connection info
  clear   - Remove all cached data
  prune   - Remove cached data older than a given age
  migrate - Apply or roll back cache schema migrations

Examples:
  # Check cache status
  contacts cache status

  # Clear the cache after pointing at a different store
  contacts cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached query results",
	Long: `Delete all cached query results from the configured backend.

Use this when:
- The base URL now points at a different store
- Cache may be corrupted

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  contacts cache clear

  # Clear MySQL cache (set connection string via env variable)
  CONTACTS_CACHE_BACKEND=mysql CONTACTS_CACHE_DB_CONNECT="..." contacts cache clear`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, contract.GetCacheDBFilePath(), cfg.CacheDBConnect); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show the backend, entry count, entry time range and size of the query cache.

Examples:
  # Check cache status
  contacts cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		mgr := openCacheManager()

		store := mgr.GetQueryStore()
		if store == nil {
			iocache.PrintCacheStatus(os.Stdout, schema.CacheStatus{Backend: string(schema.NoneBackend)})
			return
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cachePruneCmd drops persisted results older than a cutoff.
var cachePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove cached query results older than a given age",
	Long: `Delete persisted query results written more than --older-than ago.

Listings already in memory are unaffected. Pruned keys are simply fetched
again the next time they are read.

Examples:
  # Drop anything older than a week
  contacts cache prune --older-than 168h`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		age := viper.GetDuration("older-than")
		if age <= 0 {
			contract.LogFatal("Invalid --older-than", fmt.Errorf("must be positive, got %s", age))
		}
		mgr := openCacheManager()

		n, err := mgr.PruneCache(time.Now().Add(-age))
		if err != nil {
			contract.LogFatal("Failed to prune cache", err)
		}
		fmt.Printf("Pruned %d cached results.\n", n)
	},
}

// cacheMigrateCmd runs schema migrations on the cache database.
var cacheMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back cache schema migrations",
	Long: `Run the embedded schema migrations against the cache database.

Examples:
  # Migrate to the latest version
  contacts cache migrate

  # Roll back every migration
  contacts cache migrate --target-version 0`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.MigrateCache(os.Stdout, cfg.CacheBackend, cfg.CacheDBConnect, viper.GetInt("target-version")); err != nil {
			contract.LogFatal("Failed to migrate cache", err)
		}
	},
}
