package cmd

import (
	"github.com/huangsam/mlscore/core"
	"github.com/spf13/cobra"
)

// metricsCmd displays the formal definitions of all scoring dimensions.
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Display the dimensions, weights and formula of the net score",
	Long: `Show every scoring dimension with its weight and the net score formula.

Custom weights from .mlscore.yaml are reflected. Nothing is harvested.

Examples:
  # Show default weights
  mlscore metrics

  # View with custom weights from config file
  mlscore metrics --config .mlscore.yaml`,
	Args:    cobra.NoArgs,
	PreRunE: noArgsSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runExecutor(core.ExecuteMetrics)
	},
}
