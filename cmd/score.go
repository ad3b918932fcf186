package cmd

import (
	"github.com/huangsam/mlscore/core"
	"github.com/spf13/cobra"
)

// scoreCmd harvests and scores one or more artifact URLs.
var scoreCmd = &cobra.Command{
	Use:   "score [url...]",
	Short: "Score Hugging Face models, datasets and GitHub code repositories",
	Long: `Harvest public metadata of every URL and rate it on eight dimensions.

URLs come from positional arguments and from --url-file. A line of the file may
hold a comma-separated code, dataset and model group; the code and dataset URLs
are then linked to the model of that line.

Every scored artifact is recorded in the artifact store unless the store backend
is none. The exit status is non-zero if any URL failed.

Examples:
  # Score one model
  mlscore score https://huggingface.co/google-bert/bert-base-uncased

  # Score a list of URLs as NDJSON
  mlscore score --url-file urls.txt --output ndjson

  # Score without touching any database
  mlscore score --cache-backend none --store-backend none https://github.com/pallets/flask`,
	Args:    cobra.ArbitraryArgs,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return runExecutor(core.ExecuteScore)
	},
}
