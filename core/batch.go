package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
)

// BatchResult is the outcome of scoring a list of URLs.
type BatchResult struct {
	Records  []schema.ArtifactRecord // successful records, in input order
	Errors   []error                 // one per rejected URL, in input order
	RunID    int64                   // 0 when no run was recorded
	Duration time.Duration
}

// Err joins the per-URL errors into one invalid-input error, or returns nil.
func (r BatchResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return contract.WrapError(contract.CodeInvalidInput, errors.Join(r.Errors...), "%d url(s) rejected", len(r.Errors))
}

// urlJob is one unit of work of the batch pool.
type urlJob struct {
	index int
	url   string
}

// urlOutcome is the result of one job.
type urlOutcome struct {
	index  int
	record schema.ArtifactRecord
	err    error
}

// ScoreURLs processes urls with a pool of workers. Records are persisted to
// the artifact store when one is configured; store failures are logged and
// never fail the batch.
func (m *ArtifactManager) ScoreURLs(ctx context.Context, urls []string, workers int, configParams map[string]any) BatchResult {
	start := time.Now()
	logger := contract.LoggerFrom(ctx)
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}

	// --- 0. Begin run tracking (if configured) ---
	var runID int64
	if m.store != nil {
		var err error
		runID, err = m.store.BeginRun(start, configParams)
		if err != nil {
			logger.Warn("score run tracking initialization failed", "err", err)
			runID = 0
		}
	}

	// --- 1. Score every URL ---
	jobCh := make(chan urlJob, len(urls))
	outCh := make(chan urlOutcome, len(urls))
	var wg sync.WaitGroup

	for range min(workers, max(len(urls), 1)) {
		wg.Go(func() {
			for job := range jobCh {
				record, err := m.Process(ctx, job.url)
				outCh <- urlOutcome{index: job.index, record: record, err: err}
			}
		})
	}

	for i, u := range urls {
		jobCh <- urlJob{index: i, url: u}
	}
	close(jobCh)

	wg.Wait()
	close(outCh)

	outcomes := make([]urlOutcome, len(urls))
	for o := range outCh {
		outcomes[o.index] = o
	}

	// --- 2. Collect and persist ---
	result := BatchResult{RunID: runID}
	for _, o := range outcomes {
		if o.err != nil {
			logger.Warn("url rejected", "url", urls[o.index], "err", o.err)
			result.Errors = append(result.Errors, o.err)
			continue
		}
		if m.store != nil {
			if err := m.store.SaveArtifact(runID, o.record); err != nil {
				logger.Warn("failed to save artifact", "id", o.record.ID, "err", err)
			}
		}
		result.Records = append(result.Records, o.record)
	}

	// --- 3. End run tracking ---
	if m.store != nil && runID > 0 {
		if err := m.store.EndRun(runID, time.Now(), len(urls)); err != nil {
			logger.Warn("failed to finalize score run tracking", "run_id", runID, "err", err)
		}
	}

	result.Duration = time.Since(start)
	logger.Debug("batch scored", "urls", len(urls), "records", len(result.Records), "duration", result.Duration)
	return result
}
