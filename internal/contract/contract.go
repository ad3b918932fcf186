// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"regexp"
	"time"

	"github.com/huangsam/mlscore/schema"
)

// MetadataSource fetches the upstream document of one artifact kind.
// Implementations exist per kind and are selected by the harvester.
type MetadataSource interface {
	// Kind returns the artifact kind served by the source.
	Kind() schema.ArtifactKind

	// Fetch returns the decoded upstream payload for an identifier such as "owner/name".
	Fetch(ctx context.Context, identifier string) (map[string]any, error)
}

// Harvester turns an artifact URL into raw metadata. It never fails:
// upstream errors are reported through an error-marked payload.
type Harvester interface {
	Harvest(ctx context.Context, url string) schema.RawMetadata
}

// RepositoryClient reads repository trees and commit history.
// Both methods return nil on any failure.
type RepositoryClient interface {
	// ListTree returns every file path of repo ("owner/name") at branch.
	// An empty branch resolves to the default branch.
	ListTree(ctx context.Context, repo, branch string) []string

	// ListCommitAuthors returns one author identifier per commit of the first page.
	ListCommitAuthors(ctx context.Context, repo string, perPage int) []string
}

// DocumentFetcher reads the free-text README of an artifact.
type DocumentFetcher interface {
	FetchReadme(ctx context.Context, kind schema.ArtifactKind, identifier string) (string, bool)
}

// StoreManager defines the interface for managing cache and artifact stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetCacheStore() CacheStore
	GetArtifactStore() ArtifactStore
}

// CacheStore defines the interface for cache data storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ArtifactStore persists artifact records and scoring runs.
type ArtifactStore interface {
	// BeginRun creates a new scoring run and returns its unique ID
	BeginRun(startTime time.Time, configParams map[string]any) (int64, error)

	// EndRun updates the scoring run with completion data
	EndRun(runID int64, endTime time.Time, totalURLs int) error

	// SaveArtifact inserts or replaces an artifact record
	SaveArtifact(runID int64, record schema.ArtifactRecord) error

	// GetArtifact returns the record with the given ID or ErrNotFound
	GetArtifact(id string) (schema.ArtifactRecord, error)

	// ListArtifacts returns the newest records first, at most limit of them
	ListArtifacts(limit int) ([]schema.ArtifactRecord, error)

	// FindByName returns records whose name matches the pattern
	FindByName(pattern *regexp.Regexp) ([]schema.ArtifactRecord, error)

	// DeleteArtifact removes a record or returns ErrNotFound
	DeleteArtifact(id string) error

	// ListRuns returns every scoring run, oldest first
	ListRuns() ([]schema.ScoreRunRecord, error)

	// GetStatus returns status information about the artifact store
	GetStatus() (schema.StoreStatus, error)

	// Close closes the underlying connection
	Close() error
}
