// Package core has core logic for evidence normalization, scoring and orchestration.
package core

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/internal/outwriter"
	"github.com/huangsam/mlscore/schema"
)

// ExecutorFunc defines the function signature for executing the CLI commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// GetScoreResults scores every configured URL against the public upstreams.
func GetScoreResults(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) (BatchResult, error) {
	if len(cfg.URLs) == 0 {
		return BatchResult{}, contract.NewError(contract.CodeInvalidInput, "at least one artifact url is required")
	}
	pipeline := NewPipeline(cfg, mgr, harvest.Endpoints{})
	return pipeline.ScoreURLs(ctx, cfg.URLs, cfg.Workers, cfg.ConfigParams()), nil
}

// ExecuteScore scores the configured URLs and prints the records.
// Rejected URLs are reported after the successful records are printed.
func ExecuteScore(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	result, err := GetScoreResults(ctx, cfg, mgr)
	if err != nil {
		return err
	}
	if err := outwriter.PrintArtifacts(result.Records, cfg, result.Duration); err != nil {
		return err
	}
	return result.Err()
}

// ExecuteMetrics displays the dimensions, weights and device budgets.
// This is a static display that does not contact any upstream.
func ExecuteMetrics(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.PrintMetricsDefinitions(cfg)
}

// ExecuteArtifactsList prints the newest stored records, at most cfg.Limit of them.
func ExecuteArtifactsList(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	records, err := ListArtifacts(mgr, cfg.Limit)
	if err != nil {
		return err
	}
	return outwriter.PrintArtifacts(records, cfg, 0)
}

// ExecuteArtifactShow returns an executor printing the record with the given ID.
func ExecuteArtifactShow(id string) ExecutorFunc {
	return func(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
		record, err := GetArtifact(mgr, id)
		if err != nil {
			return err
		}
		return outwriter.PrintArtifactDetail(record, cfg)
	}
}

// ExecuteArtifactRate returns an executor printing the score report of one record.
func ExecuteArtifactRate(id string) ExecutorFunc {
	return func(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
		record, err := GetArtifact(mgr, id)
		if err != nil {
			return err
		}
		return outwriter.PrintRating(record, cfg)
	}
}

// ExecuteArtifactSearch returns an executor printing the records whose name matches pattern.
func ExecuteArtifactSearch(pattern string) ExecutorFunc {
	return func(_ context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
		records, err := SearchArtifacts(mgr, pattern)
		if err != nil {
			return err
		}
		return outwriter.PrintArtifacts(records, cfg, 0)
	}
}

// ExecuteArtifactDelete returns an executor removing one record and reporting it to w.
func ExecuteArtifactDelete(w io.Writer, id string) ExecutorFunc {
	return func(_ context.Context, _ *contract.Config, mgr contract.StoreManager) error {
		if err := DeleteArtifact(mgr, id); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "Deleted artifact %s\n", id)
		return err
	}
}

// ListArtifacts returns the newest stored records. A non-positive limit returns all of them.
func ListArtifacts(mgr contract.StoreManager, limit int) ([]schema.ArtifactRecord, error) {
	store, err := artifactStore(mgr)
	if err != nil {
		return nil, err
	}
	return store.ListArtifacts(min(limit, contract.MaxLimit))
}

// GetArtifact returns the stored record with the given ID.
func GetArtifact(mgr contract.StoreManager, id string) (schema.ArtifactRecord, error) {
	store, err := artifactStore(mgr)
	if err != nil {
		return schema.ArtifactRecord{}, err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return schema.ArtifactRecord{}, contract.NewError(contract.CodeInvalidInput, "artifact id is required")
	}
	return store.GetArtifact(id)
}

// SearchArtifacts returns the stored records whose name matches pattern.
// A pattern that does not compile is invalid input.
func SearchArtifacts(mgr contract.StoreManager, pattern string) ([]schema.ArtifactRecord, error) {
	store, err := artifactStore(mgr)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(pattern) == "" {
		return nil, contract.NewError(contract.CodeInvalidInput, "name pattern is required")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, contract.WrapError(contract.CodeInvalidInput, err, "invalid name pattern %q", pattern)
	}
	return store.FindByName(re)
}

// DeleteArtifact removes the stored record with the given ID.
func DeleteArtifact(mgr contract.StoreManager, id string) error {
	store, err := artifactStore(mgr)
	if err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return contract.NewError(contract.CodeInvalidInput, "artifact id is required")
	}
	return store.DeleteArtifact(id)
}

// artifactStore returns the configured store or a storage error.
func artifactStore(mgr contract.StoreManager) (contract.ArtifactStore, error) {
	if mgr == nil {
		return nil, contract.NewError(contract.CodeStorage, "artifact store is not configured")
	}
	store := mgr.GetArtifactStore()
	if store == nil {
		return nil, contract.NewError(contract.CodeStorage, "artifact store is not configured")
	}
	return store, nil
}
