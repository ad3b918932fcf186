package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/parquet"
)

// ExportStore writes every scoring run and artifact of the store to two
// Parquet files named after outputFile, reporting progress to w.
func ExportStore(w io.Writer, store contract.ArtifactStore, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("artifact store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}
	if status.TotalArtifacts == 0 && status.TotalRuns == 0 {
		return errors.New("no artifact data found to export")
	}

	_, _ = fmt.Fprintf(w, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(w, "Total scoring runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(w, "Total artifacts: %d\n", status.TotalArtifacts)

	runs, err := store.ListRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve score runs: %w", err)
	}
	records, err := store.ListArtifacts(0)
	if err != nil {
		return fmt.Errorf("failed to retrieve artifacts: %w", err)
	}

	runsFile := outputFile + ".score_runs.parquet"
	if err := parquet.WriteScoreRunsParquet(parquet.ConvertScoreRunRecords(runs), runsFile); err != nil {
		return fmt.Errorf("failed to write score runs: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d score runs to: %s\n", len(runs), runsFile)

	artifactsFile := outputFile + ".artifacts.parquet"
	if err := parquet.WriteArtifactsParquet(parquet.ConvertArtifactRecords(records), artifactsFile); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Exported %d artifacts to: %s\n", len(records), artifactsFile)
	return nil
}
