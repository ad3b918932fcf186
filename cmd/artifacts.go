package cmd

import (
	"fmt"
	"os"

	"github.com/huangsam/mlscore/core"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/iocache"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// artifactStoreOrError returns the configured artifact store.
func artifactStoreOrError() (contract.ArtifactStore, error) {
	if storeManager == nil || storeManager.GetArtifactStore() == nil {
		return nil, contract.NewError(contract.CodeStorage, "artifact store is not configured")
	}
	return storeManager.GetArtifactStore(), nil
}

// artifactsCmd focused on the artifact store.
var artifactsCmd = &cobra.Command{
	Use:   "artifacts",
	Short: "Browse and manage scored artifacts",
	Long: `Browse and manage the artifacts recorded by previous scoring runs.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  list    - Show the most recently scored artifacts
  show    - Show one artifact with its harvested metadata
  rate    - Show the rating of one artifact
  search  - Find artifacts whose name matches a regular expression
  delete  - Remove one artifact
  export  - Export runs and artifacts to Parquet files
  status  - Show store statistics and connection info
  clear   - Remove all stored data
  migrate - Run database migrations`,
}

var artifactsListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List the most recently scored artifacts",
	Args:    cobra.NoArgs,
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runExecutor(core.ExecuteArtifactsList)
	},
}

var artifactsShowCmd = &cobra.Command{
	Use:     "show <id>",
	Short:   "Show one artifact with its harvested metadata",
	Args:    cobra.ExactArgs(1),
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return runExecutor(core.ExecuteArtifactShow(args[0]))
	},
}

var artifactsRateCmd = &cobra.Command{
	Use:     "rate <id>",
	Short:   "Show the rating of one artifact",
	Args:    cobra.ExactArgs(1),
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return runExecutor(core.ExecuteArtifactRate(args[0]))
	},
}

var artifactsSearchCmd = &cobra.Command{
	Use:   "search <regex>",
	Short: "Find artifacts whose name matches a regular expression",
	Long: `Find artifacts whose name matches a regular expression.

Examples:
  # Every BERT variant
  mlscore artifacts search '^bert'`,
	Args:    cobra.ExactArgs(1),
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return runExecutor(core.ExecuteArtifactSearch(args[0]))
	},
}

var artifactsDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Short:   "Remove one artifact from the store",
	Args:    cobra.ExactArgs(1),
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		return runExecutor(core.ExecuteArtifactDelete(os.Stdout, args[0]))
	},
}

var artifactsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export scoring runs and artifacts to Parquet files",
	Long: `Export every scoring run and artifact to Parquet files.

Two files are written next to --output-file, one for runs and one for artifacts.

Examples:
  mlscore artifacts export --output-file scores.parquet`,
	Args:    cobra.NoArgs,
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := artifactStoreOrError()
		if err != nil {
			return err
		}
		if err := iocache.ExportStore(os.Stdout, store, cfg.OutputFile); err != nil {
			return contract.WrapError(contract.CodeStorage, err, "export failed")
		}
		return nil
	},
}

var artifactsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Display artifact store statistics and connection details",
	Args:    cobra.NoArgs,
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		store, err := artifactStoreOrError()
		if err != nil {
			return err
		}
		status, err := store.GetStatus()
		if err != nil {
			return contract.WrapError(contract.CodeStorage, err, "failed to get store status")
		}
		iocache.PrintStoreStatus(os.Stdout, status)
		return nil
	},
}

var artifactsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored runs and artifacts",
	Long: `Delete all scoring runs and artifacts from the configured backend.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the artifact tables`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		backend, connStr, err := backendSetup("store-backend", "store-db-connect")
		if err != nil {
			return err
		}
		if err := iocache.ClearStore(backend, iocache.GetStoreDBFilePath(), connStr); err != nil {
			return contract.WrapError(contract.CodeStorage, err, "failed to clear artifact store")
		}
		fmt.Println("Artifact store cleared successfully.")
		return nil
	},
}

var artifactsMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations of the artifact store",
	Long: `Apply or roll back the schema migrations of the artifact store.

Examples:
  # Migrate to the latest version
  mlscore artifacts migrate

  # Roll back everything
  mlscore artifacts migrate --target-version 0`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		backend, connStr, err := backendSetup("store-backend", "store-db-connect")
		if err != nil {
			return err
		}
		if err := iocache.MigrateStore(os.Stdout, backend, connStr, viper.GetInt("target-version")); err != nil {
			return contract.WrapError(contract.CodeStorage, err, "migration failed")
		}
		return nil
	},
}
