// Package cmd defines the command-line interface for mlscore.
package cmd

import (
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the artifacts subcommands to the parent artifacts command
	artifactsCmd.AddCommand(artifactsListCmd)
	artifactsCmd.AddCommand(artifactsShowCmd)
	artifactsCmd.AddCommand(artifactsRateCmd)
	artifactsCmd.AddCommand(artifactsSearchCmd)
	artifactsCmd.AddCommand(artifactsDeleteCmd)
	artifactsCmd.AddCommand(artifactsExportCmd)
	artifactsCmd.AddCommand(artifactsStatusCmd)
	artifactsCmd.AddCommand(artifactsClearCmd)
	artifactsCmd.AddCommand(artifactsMigrateCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json or ndjson or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for text columns")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("log-level", contract.DefaultLogLevel, "Log level: debug or info or warn or error")
	rootCmd.PersistentFlags().String("timeout", contract.DefaultTimeout.String(), "Timeout of one upstream request")
	rootCmd.PersistentFlags().Int("retries", contract.DefaultRetries, "Retries of a failed upstream request")
	rootCmd.PersistentFlags().Float64("rate-limit", contract.DefaultRateLimit, "Outbound requests per second (0 = unlimited)")
	rootCmd.PersistentFlags().String("github-token", "", "GitHub API token")
	rootCmd.PersistentFlags().String("hf-token", "", "Hugging Face API token")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Harvest cache backend: sqlite or mysql or postgresql or redis or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Connection string of the cache backend (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("cache-ttl", contract.DefaultCacheTTL.String(), "Lifetime of a cached harvest response")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Artifact store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Connection string of the artifact store (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of scoreCmd to Viper
	scoreCmd.Flags().String("url-file", "", "File with one artifact URL per line (or comma-separated groups)")
	scoreCmd.Flags().Int("workers", contract.DefaultWorkers, "Number of concurrent scoring workers")
	if err := viper.BindPFlags(scoreCmd.Flags()); err != nil {
		contract.LogFatal("Error binding score flags", err)
	}

	// Bind all flags of artifactsCmd to Viper
	artifactsCmd.PersistentFlags().IntP("limit", "l", contract.DefaultLimit, "Number of artifacts to display")
	if err := viper.BindPFlags(artifactsCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding artifacts flags", err)
	}

	// Bind all flags of serveCmd to Viper
	serveCmd.Flags().String("listen", contract.DefaultListen, "Address the HTTP API listens on")
	if err := viper.BindPFlags(serveCmd.Flags()); err != nil {
		contract.LogFatal("Error binding serve flags", err)
	}

	// Bind all flags of artifactsMigrateCmd to Viper
	artifactsMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(artifactsMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding artifacts migrate flags", err)
	}
}
