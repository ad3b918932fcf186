package harvest

import (
	"context"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/mock"
)

// MockRepositoryClient is a mock implementation of RepositoryClient for testing.
type MockRepositoryClient struct {
	mock.Mock
}

var _ contract.RepositoryClient = &MockRepositoryClient{} // Compile-time check

// ListTree implements the RepositoryClient interface.
func (m *MockRepositoryClient) ListTree(ctx context.Context, repo, branch string) []string {
	args := m.Called(ctx, repo, branch)
	paths, _ := args.Get(0).([]string)
	return paths
}

// ListCommitAuthors implements the RepositoryClient interface.
func (m *MockRepositoryClient) ListCommitAuthors(ctx context.Context, repo string, perPage int) []string {
	args := m.Called(ctx, repo, perPage)
	authors, _ := args.Get(0).([]string)
	return authors
}

// MockDocumentFetcher is a mock implementation of DocumentFetcher for testing.
type MockDocumentFetcher struct {
	mock.Mock
}

var _ contract.DocumentFetcher = &MockDocumentFetcher{} // Compile-time check

// FetchReadme implements the DocumentFetcher interface.
func (m *MockDocumentFetcher) FetchReadme(ctx context.Context, kind schema.ArtifactKind, identifier string) (string, bool) {
	args := m.Called(ctx, kind, identifier)
	return args.String(0), args.Bool(1)
}

// MockHarvester is a mock implementation of Harvester for testing.
type MockHarvester struct {
	mock.Mock
}

var _ contract.Harvester = &MockHarvester{} // Compile-time check

// Harvest implements the Harvester interface.
func (m *MockHarvester) Harvest(ctx context.Context, url string) schema.RawMetadata {
	args := m.Called(ctx, url)
	raw, _ := args.Get(0).(schema.RawMetadata)
	return raw
}
