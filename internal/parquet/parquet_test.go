package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/mlscore/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRuns() []ScoreRun {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	end := now.Add(90 * time.Second)
	duration := int32(90000)
	config := `{"workers":4}`
	return []ScoreRun{
		{RunID: 1, StartTime: now, EndTime: &end, RunDurationMs: &duration, TotalURLs: 3, ConfigParams: &config},
		{RunID: 2, StartTime: now.Add(time.Hour)}, // still running
	}
}

func sampleRecords() []schema.ArtifactRecord {
	size := 512.0
	report := schema.ScoreReport{
		NetScore:    schema.NewFixed(0.87),
		License:     schema.NewFixed(1),
		BusFactor:   schema.NewFixed(0.3),
		CodeQuality: schema.NewFixed(0.65),
	}
	report.SizeScore.Set(schema.RaspberryPi, schema.NewFixed(0.2))
	report.SizeScore.Set(schema.AWSServer, schema.NewFixed(1))
	return []schema.ArtifactRecord{
		{
			ID:   "0f8fad5bd9cb469fa16570867728950e",
			Name: "bert-base-uncased",
			Kind: schema.ModelKind,
			URL:  "https://huggingface.co/google-bert/bert-base-uncased",
			PURL: "pkg:huggingface/google-bert/bert-base-uncased",
			Metadata: schema.ArtifactSummary{
				License:   "apache-2.0",
				Downloads: 1200,
				Likes:     80,
				SizeMB:    &size,
			},
			Scores:    report,
			CreatedAt: time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:   "7c9e6679742540de944be07fc1f90ae7",
			Name: "squad",
			Kind: schema.DatasetKind,
			URL:  "https://huggingface.co/datasets/rajpurkar/squad",
		},
	}
}

func TestScoreRunStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(ScoreRun))
	require.NotNil(t, s)

	for _, colName := range []string{"run_id", "start_time", "end_time", "run_duration_ms", "total_urls", "config_params"} {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestArtifactStructTags(t *testing.T) {
	s := parquet.SchemaOf(new(Artifact))
	require.NotNil(t, s)

	expected := []string{
		"id", "name", "kind", "url", "purl", "license", "size_mb", "created_at",
		"net_score", "license_score", "size_raspberry_pi", "size_aws_server", "code_quality_latency",
	}
	for _, colName := range expected {
		_, ok := s.Lookup(colName)
		assert.True(t, ok, "Column %s should exist in schema", colName)
	}
}

func TestWriteScoreRunsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "score_runs.parquet")
	data := sampleRuns()
	require.NoError(t, WriteScoreRunsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[ScoreRun](file)
	defer func() { _ = reader.Close() }()

	readData := make([]ScoreRun, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, len(data), n)

	assert.Equal(t, int64(1), readData[0].RunID)
	assert.Equal(t, int32(3), readData[0].TotalURLs)
	require.NotNil(t, readData[0].EndTime)
	assert.WithinDuration(t, *data[0].EndTime, *readData[0].EndTime, time.Millisecond)
	require.NotNil(t, readData[0].ConfigParams)
	assert.Equal(t, `{"workers":4}`, *readData[0].ConfigParams)

	assert.Nil(t, readData[1].EndTime)
	assert.Nil(t, readData[1].RunDurationMs)
	assert.Nil(t, readData[1].ConfigParams)
}

func TestWriteArtifactsParquet(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "artifacts.parquet")
	data := ConvertArtifactRecords(sampleRecords())
	require.NoError(t, WriteArtifactsParquet(data, outputPath))

	file, err := os.Open(outputPath)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[Artifact](file)
	defer func() { _ = reader.Close() }()

	readData := make([]Artifact, reader.NumRows())
	n, err := reader.Read(readData)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	require.Equal(t, 2, n)

	assert.Equal(t, "bert-base-uncased", readData[0].Name)
	assert.Equal(t, "model", readData[0].Kind)
	assert.InDelta(t, 0.87, readData[0].NetScore, 1e-9)
	assert.InDelta(t, 0.2, readData[0].SizeRaspberryPi, 1e-9)
	require.NotNil(t, readData[0].SizeMB)
	assert.InDelta(t, 512.0, *readData[0].SizeMB, 1e-9)

	assert.Equal(t, "squad", readData[1].Name)
	assert.Nil(t, readData[1].PURL)
	assert.Nil(t, readData[1].LicenseName)
	assert.Nil(t, readData[1].SizeMB)
}

func TestWriteParquet_EmptyData(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteScoreRunsParquet([]ScoreRun{}, outputPath))

	info, err := os.Stat(outputPath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0), "Output file should contain schema even if empty")
}

func TestWriteParquet_InvalidPath(t *testing.T) {
	err := WriteArtifactsParquet(nil, "/nonexistent/directory/output.parquet")
	require.Error(t, err)
}

func TestConvertArtifactRecords(t *testing.T) {
	rows := ConvertArtifactRecords(sampleRecords())
	require.Len(t, rows, 2)

	assert.Equal(t, "0f8fad5bd9cb469fa16570867728950e", rows[0].ID)
	require.NotNil(t, rows[0].PURL)
	assert.Equal(t, "pkg:huggingface/google-bert/bert-base-uncased", *rows[0].PURL)
	require.NotNil(t, rows[0].LicenseName)
	assert.Equal(t, "apache-2.0", *rows[0].LicenseName)
	assert.InDelta(t, 1.0, rows[0].LicenseScore, 1e-9)
	assert.InDelta(t, 0.65, rows[0].CodeQuality, 1e-9)
	assert.Equal(t, int64(1200), rows[0].Downloads)
}

func TestConvertScoreRunRecords(t *testing.T) {
	start := time.Now()
	runs := ConvertScoreRunRecords([]schema.ScoreRunRecord{{RunID: 9, StartTime: start, TotalURLs: 4}})
	require.Len(t, runs, 1)
	assert.Equal(t, int64(9), runs[0].RunID)
	assert.Equal(t, start, runs[0].StartTime)
	assert.Equal(t, int32(4), runs[0].TotalURLs)
}
