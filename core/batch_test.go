package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/internal/iocache"
	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func sequentialIDs() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

func codeRaw(url, id string) schema.RawMetadata {
	return schema.RawMetadata{
		Kind:       schema.CodeKind,
		URL:        url,
		Identifier: id,
		Payload:    map[string]any{"full_name": id, "stargazers_count": float64(10)},
	}
}

func TestScoreURLs_PreservesInputOrder(t *testing.T) {
	urls := []string{
		"https://github.com/a/one",
		"https://github.com/b/two",
		"https://github.com/c/three",
		"https://github.com/d/four",
	}
	h := &harvest.MockHarvester{}
	for _, u := range urls {
		h.On("Harvest", mock.Anything, u).Return(codeRaw(u, u[len("https://github.com/"):])).Once()
	}

	m := NewArtifactManager(h, nil, nil, WithIDGenerator(sequentialIDs()))
	result := m.ScoreURLs(context.Background(), urls, 3, nil)

	require.NoError(t, result.Err())
	require.Len(t, result.Records, len(urls))
	for i, u := range urls {
		assert.Equal(t, u, result.Records[i].URL)
	}
	assert.Equal(t, "one", result.Records[0].Name)
	assert.Equal(t, "four", result.Records[3].Name)
	assert.Zero(t, result.RunID)
	assert.Positive(t, result.Duration)
	h.AssertExpectations(t)
}

func TestScoreURLs_CollectsInvalidInput(t *testing.T) {
	good := "https://github.com/pallets/flask"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, good).Return(codeRaw(good, "pallets/flask")).Once()

	m := NewArtifactManager(h, nil, nil)
	result := m.ScoreURLs(context.Background(), []string{"", good, "not-a-url"}, 2, nil)

	require.Len(t, result.Records, 1)
	assert.Equal(t, good, result.Records[0].URL)
	require.Len(t, result.Errors, 2)

	err := result.Err()
	require.Error(t, err)
	assert.True(t, contract.HasCode(err, contract.CodeInvalidInput))
	assert.Contains(t, err.Error(), "2 url(s) rejected")
}

func TestScoreURLs_PersistsToStore(t *testing.T) {
	urls := []string{"https://github.com/a/one", "https://github.com/b/two"}
	h := &harvest.MockHarvester{}
	for _, u := range urls {
		h.On("Harvest", mock.Anything, u).Return(codeRaw(u, u[len("https://github.com/"):])).Once()
	}

	params := map[string]any{"workers": 2}
	store := &iocache.MockArtifactStore{}
	store.On("BeginRun", mock.AnythingOfType("time.Time"), params).Return(int64(7), nil).Once()
	store.On("SaveArtifact", int64(7), mock.AnythingOfType("schema.ArtifactRecord")).Return(nil).Twice()
	store.On("EndRun", int64(7), mock.AnythingOfType("time.Time"), 2).Return(nil).Once()

	m := NewArtifactManager(h, nil, nil, WithArtifactStore(store))
	result := m.ScoreURLs(context.Background(), urls, 2, params)

	assert.Equal(t, int64(7), result.RunID)
	assert.Len(t, result.Records, 2)
	store.AssertExpectations(t)
}

func TestScoreURLs_StoreFailuresAreNotFatal(t *testing.T) {
	url := "https://github.com/a/one"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(codeRaw(url, "a/one")).Once()

	store := &iocache.MockArtifactStore{}
	store.On("BeginRun", mock.Anything, mock.Anything).Return(int64(0), errors.New("database is locked")).Once()
	store.On("SaveArtifact", int64(0), mock.AnythingOfType("schema.ArtifactRecord")).Return(errors.New("database is locked")).Once()

	m := NewArtifactManager(h, nil, nil, WithArtifactStore(store))
	result := m.ScoreURLs(context.Background(), []string{url}, 1, nil)

	require.NoError(t, result.Err())
	assert.Len(t, result.Records, 1)
	assert.Zero(t, result.RunID)
	store.AssertExpectations(t)
	store.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
}

func TestScoreURLs_Empty(t *testing.T) {
	m := NewArtifactManager(&harvest.MockHarvester{}, nil, nil)
	result := m.ScoreURLs(context.Background(), nil, 4, nil)
	assert.Empty(t, result.Records)
	assert.NoError(t, result.Err())
}

func TestScoreURLs_SQLiteStore(t *testing.T) {
	store, err := iocache.NewArtifactStore(schema.SQLiteBackend, t.TempDir()+"/store.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	url := "https://github.com/pallets/flask"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(codeRaw(url, "pallets/flask")).Once()

	m := NewArtifactManager(h, nil, nil, WithArtifactStore(store))
	result := m.ScoreURLs(context.Background(), []string{url}, 1, map[string]any{"workers": 1})
	require.Len(t, result.Records, 1)
	assert.Positive(t, result.RunID)

	got, err := store.GetArtifact(result.Records[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "flask", got.Name)
	assert.True(t, got.Scores.NetScore.Equal(result.Records[0].Scores.NetScore))

	runs, err := store.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, int32(1), runs[0].TotalURLs)
	assert.NotNil(t, runs[0].EndTime)
}

func TestScoreURLs_RerunUpsertsArtifact(t *testing.T) {
	url := "https://github.com/pallets/flask"
	store, err := iocache.NewArtifactStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(codeRaw(url, "pallets/flask")).Twice()
	m := NewArtifactManager(h, nil, nil,
		WithArtifactStore(store),
		WithIDGenerator(func() string { return "flask" }))

	first := m.ScoreURLs(context.Background(), []string{url}, 1, nil)
	require.NoError(t, first.Err())
	second := m.ScoreURLs(context.Background(), []string{url}, 1, nil)
	require.NoError(t, second.Err())

	assert.Equal(t, withoutLatencies(first.Records[0].Scores), withoutLatencies(second.Records[0].Scores))

	all, err := store.ListArtifacts(0)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "flask", all[0].ID)
	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Records[0].Scores.NetScore, all[0].Scores.NetScore)
	h.AssertExpectations(t)
}
