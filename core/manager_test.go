package core

import (
	"context"
	"testing"
	"time"

	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/internal/harvest"
	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.June, 2, 9, 30, 0, 0, time.UTC)

func modelRaw(url string) schema.RawMetadata {
	return schema.RawMetadata{
		Kind:       schema.ModelKind,
		URL:        url,
		Identifier: "google-bert/bert-base-uncased",
		Payload: map[string]any{
			"id":        "google-bert/bert-base-uncased",
			"downloads": float64(2500000),
			"likes":     float64(1900),
			"tags":      []any{"transformers", "license:apache-2.0"},
			"cardData":  map[string]any{"license": "apache-2.0"},
		},
	}
}

func newTestManager(h contract.Harvester, opts ...ManagerOption) *ArtifactManager {
	base := []ManagerOption{
		WithIDGenerator(func() string { return "abc123" }),
		WithClock(func() time.Time { return fixedNow }),
	}
	return NewArtifactManager(h, nil, nil, append(base, opts...)...)
}

func TestProcess_Model(t *testing.T) {
	url := "https://huggingface.co/google-bert/bert-base-uncased"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(modelRaw(url)).Once()

	record, err := newTestManager(h).Process(context.Background(), url)
	require.NoError(t, err)

	assert.Equal(t, "abc123", record.ID)
	assert.Equal(t, "bert-base-uncased", record.Name)
	assert.Equal(t, schema.ModelKind, record.Kind)
	assert.Equal(t, url, record.URL)
	assert.Equal(t, "pkg:huggingface/google-bert/bert-base-uncased", record.PURL)
	assert.Equal(t, fixedNow, record.CreatedAt)
	assert.Equal(t, "apache-2.0", record.Metadata.License)
	assert.Equal(t, int64(2500000), record.Metadata.Downloads)
	assert.Empty(t, record.Metadata.HarvestError)
	assert.Equal(t, "1.00", record.Scores.License.String())
	assert.Equal(t, "0.50", record.Scores.Reproducibility.String())
	h.AssertExpectations(t)
}

func TestProcess_TrimsWhitespace(t *testing.T) {
	url := "https://github.com/pallets/flask"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(schema.RawMetadata{
		Kind:       schema.CodeKind,
		URL:        url,
		Identifier: "pallets/flask",
		Payload:    map[string]any{"full_name": "pallets/flask"},
	}).Once()

	record, err := newTestManager(h).Process(context.Background(), "  "+url+"\n")
	require.NoError(t, err)
	assert.Equal(t, url, record.URL)
	assert.Equal(t, "flask", record.Name)
	h.AssertExpectations(t)
}

func TestProcess_PackageURL(t *testing.T) {
	url := "https://huggingface.co/google-bert/bert-base-uncased"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(modelRaw(url)).Once()

	record, err := newTestManager(h).Process(context.Background(), "pkg:huggingface/google-bert/bert-base-uncased")
	require.NoError(t, err)
	assert.Equal(t, url, record.URL)
	assert.Equal(t, "bert-base-uncased", record.Name)
	assert.Equal(t, "pkg:huggingface/google-bert/bert-base-uncased", record.PURL)
	h.AssertExpectations(t)
}

func TestProcess_UnsupportedPackageURL(t *testing.T) {
	h := &harvest.MockHarvester{}
	_, err := newTestManager(h).Process(context.Background(), "pkg:npm/lodash")
	require.Error(t, err)
	assert.True(t, contract.HasCode(err, contract.CodeInvalidInput), "got %v", err)
	h.AssertNotCalled(t, "Harvest", mock.Anything, mock.Anything)
}

func TestProcess_HarvestFailurePassesThrough(t *testing.T) {
	url := "https://huggingface.co/nobody/missing-model"
	h := &harvest.MockHarvester{}
	h.On("Harvest", mock.Anything, url).Return(schema.RawMetadata{
		Kind:       schema.ModelKind,
		URL:        url,
		Identifier: "nobody/missing-model",
		Payload:    schema.ErrorPayload("upstream returned 404"),
	}).Once()

	record, err := newTestManager(h).Process(context.Background(), url)
	require.NoError(t, err)
	assert.Equal(t, "upstream returned 404", record.Metadata.HarvestError)
	assert.Equal(t, "0.00", record.Scores.License.String())
	assert.Equal(t, "0.50", record.Scores.TreeScore.String())
}

func TestProcess_InvalidURL(t *testing.T) {
	h := &harvest.MockHarvester{}
	m := newTestManager(h)

	for _, url := range []string{"", "   ", "not a url", "://missing-scheme", "/relative/path"} {
		t.Run(url, func(t *testing.T) {
			_, err := m.Process(context.Background(), url)
			require.Error(t, err)
			assert.True(t, contract.HasCode(err, contract.CodeInvalidInput), "got %v", err)
		})
	}
	h.AssertNotCalled(t, "Harvest", mock.Anything, mock.Anything)
}

func TestArtifactName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://huggingface.co/google-bert/bert-base-uncased", "bert-base-uncased"},
		{"https://github.com/pallets/flask.git", "flask"},
		{"https://github.com/pallets/flask/", "flask"},
		{"https://huggingface.co/datasets/rajpurkar/squad", "squad"},
		{"https://example.com/a/b@c!d", "b_c_d"},
		{"https://example.com/", UnknownArtifactName},
		{"https://example.com", UnknownArtifactName},
		{"https://example.com/models/modèle_v1.2", "modèle_v1.2"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, ArtifactName(tt.url))
		})
	}
}

func TestNewArtifactID(t *testing.T) {
	a, b := NewArtifactID(), NewArtifactID()
	assert.Len(t, a, 32)
	assert.NotContains(t, a, "-")
	assert.NotEqual(t, a, b)
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("https://huggingface.co/gpt2"))
	assert.NoError(t, ValidateURL("http://localhost:8080/x"))
	assert.Error(t, ValidateURL(""))
	assert.Error(t, ValidateURL("huggingface.co/gpt2"))
}
