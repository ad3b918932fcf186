package cmd

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/internal/iocache"
	"github.com/huangsam/mlscore/schema"
	"github.com/spf13/cobra"
)

// versionCmd prints build metadata and the formats this binary reads and writes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build metadata and scoring format versions.",
	Run: func(cmd *cobra.Command, _ []string) {
		storeVersion := "unknown"
		if v, err := iocache.LatestStoreVersion(schema.SQLiteBackend); err == nil {
			storeVersion = fmt.Sprintf("v%d", v)
		}
		dims := make([]string, len(schema.AllDimensions))
		for i, dim := range schema.AllDimensions {
			dims[i] = string(dim)
		}

		cmd.Printf("mlscore %s (%s, built %s)\n", version, commit, date)
		cmd.Printf("  Runtime:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		cmd.Printf("  Store schema: %s\n", storeVersion)
		cmd.Printf("  Cache format: v%d\n", harvest.CacheFormatVersion)
		cmd.Printf("  Dimensions:   %s\n", strings.Join(dims, ", "))
		cmd.Printf("  Devices:      %d tiers\n", len(schema.AllDevices))
	},
}
