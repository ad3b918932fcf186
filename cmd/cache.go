package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/iocache"
	"github.com/spf13/cobra"
)

// cacheCmd focused on cache management.
//
// Cache subcommands load only the cache settings instead of running sharedSetup.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the harvest cache",
	Long: `Manage the cache of upstream API responses.

Supported backends: SQLite (default), MySQL, PostgreSQL, Redis, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  clear  - Remove all cached data

Examples:
  # Check cache status
  mlscore cache status

  # Clear a Redis cache
  MLSCORE_CACHE_BACKEND=redis MLSCORE_CACHE_DB_CONNECT="redis://localhost:6379/0" mlscore cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached harvest responses",
	Long: `Delete all cached harvest responses from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table
For Redis: Deletes every cache key`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		backend, connStr, err := backendSetup("cache-backend", "cache-db-connect")
		if err != nil {
			return err
		}
		if err := iocache.ClearCache(backend, iocache.GetCacheDBFilePath(), connStr); err != nil {
			return contract.WrapError(contract.CodeStorage, err, "failed to clear cache")
		}
		fmt.Println("Cache cleared successfully.")
		return nil
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		backend, connStr, err := backendSetup("cache-backend", "cache-db-connect")
		if err != nil {
			return err
		}
		if err := iocache.InitStores(backend, connStr, "", ""); err != nil {
			return contract.WrapError(contract.CodeStorage, err, "failed to initialize cache")
		}
		status, err := storeManager.GetCacheStore().GetStatus()
		if err != nil {
			return contract.WrapError(contract.CodeStorage, err, "failed to get cache status")
		}
		iocache.PrintCacheStatus(os.Stdout, status)
		return nil
	},
}
