// Package parquet provides data structures and functions for exporting scored
// artifacts and scoring runs to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/mlscore/schema"
	"github.com/parquet-go/parquet-go"
)

// ScoreRun represents a single scoring run with metadata.
// This struct maps to the mlscore_score_runs database table.
type ScoreRun struct {
	// RunID is the unique identifier for this scoring run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when the run began
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when the run completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// TotalURLs is the number of URLs scored in this run
	TotalURLs int32 `parquet:"total_urls,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Artifact is one scored artifact flattened into columns.
// Scores and latencies are the rounded report values.
type Artifact struct {
	ID          string    `parquet:"id,snappy"`
	Name        string    `parquet:"name,snappy"`
	Kind        string    `parquet:"kind,snappy,dict"`
	URL         string    `parquet:"url,snappy"`
	PURL        *string   `parquet:"purl,optional,snappy"`
	LicenseName *string   `parquet:"license,optional,snappy"`
	Downloads   int64     `parquet:"downloads,snappy"`
	Likes       int64     `parquet:"likes,snappy"`
	SizeMB      *float64  `parquet:"size_mb,optional,snappy"`
	CreatedAt   time.Time `parquet:"created_at,snappy"`

	NetScore                 float64 `parquet:"net_score,snappy"`
	NetScoreLatency          float64 `parquet:"net_score_latency,snappy"`
	RampUpTime               float64 `parquet:"ramp_up_time,snappy"`
	RampUpTimeLatency        float64 `parquet:"ramp_up_time_latency,snappy"`
	BusFactor                float64 `parquet:"bus_factor,snappy"`
	BusFactorLatency         float64 `parquet:"bus_factor_latency,snappy"`
	PerformanceClaims        float64 `parquet:"performance_claims,snappy"`
	PerformanceClaimsLatency float64 `parquet:"performance_claims_latency,snappy"`
	LicenseScore             float64 `parquet:"license_score,snappy"`
	LicenseLatency           float64 `parquet:"license_latency,snappy"`
	SizeRaspberryPi          float64 `parquet:"size_raspberry_pi,snappy"`
	SizeJetsonNano           float64 `parquet:"size_jetson_nano,snappy"`
	SizeDesktopPC            float64 `parquet:"size_desktop_pc,snappy"`
	SizeAWSServer            float64 `parquet:"size_aws_server,snappy"`
	SizeScoreLatency         float64 `parquet:"size_score_latency,snappy"`
	DatasetAndCode           float64 `parquet:"dataset_and_code,snappy"`
	DatasetAndCodeLatency    float64 `parquet:"dataset_and_code_latency,snappy"`
	DatasetQuality           float64 `parquet:"dataset_quality,snappy"`
	DatasetQualityLatency    float64 `parquet:"dataset_quality_latency,snappy"`
	CodeQuality              float64 `parquet:"code_quality,snappy"`
	CodeQualityLatency       float64 `parquet:"code_quality_latency,snappy"`
}

// WriteScoreRunsParquet writes scoring runs to a Parquet file.
func WriteScoreRunsParquet(data []ScoreRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteArtifactsParquet writes artifacts to a Parquet file.
func WriteArtifactsParquet(data []Artifact, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteArtifacts streams artifacts as Parquet to w.
func WriteArtifacts(w io.Writer, data []Artifact) error {
	return write(w, data)
}

func writeFile[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return write(file, data)
}

// write encodes rows with a schema derived from the struct tags of T.
func write[T any](w io.Writer, data []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// ConvertScoreRunRecords converts schema.ScoreRunRecord to ScoreRun for Parquet export.
func ConvertScoreRunRecords(records []schema.ScoreRunRecord) []ScoreRun {
	result := make([]ScoreRun, len(records))
	for i, record := range records {
		result[i] = ScoreRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			TotalURLs:     record.TotalURLs,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertArtifactRecords converts schema.ArtifactRecord to Artifact for Parquet export.
func ConvertArtifactRecords(records []schema.ArtifactRecord) []Artifact {
	result := make([]Artifact, len(records))
	for i, record := range records {
		s := record.Scores
		result[i] = Artifact{
			ID:          record.ID,
			Name:        record.Name,
			Kind:        string(record.Kind),
			URL:         record.URL,
			PURL:        optionalString(record.PURL),
			LicenseName: optionalString(record.Metadata.License),
			Downloads:   record.Metadata.Downloads,
			Likes:       record.Metadata.Likes,
			SizeMB:      record.Metadata.SizeMB,
			CreatedAt:   record.CreatedAt,

			NetScore:                 s.NetScore.Float64(),
			NetScoreLatency:          s.NetScoreLatency.Float64(),
			RampUpTime:               s.RampUpTime.Float64(),
			RampUpTimeLatency:        s.RampUpTimeLatency.Float64(),
			BusFactor:                s.BusFactor.Float64(),
			BusFactorLatency:         s.BusFactorLatency.Float64(),
			PerformanceClaims:        s.PerformanceClaims.Float64(),
			PerformanceClaimsLatency: s.PerformanceClaimsLatency.Float64(),
			LicenseScore:             s.License.Float64(),
			LicenseLatency:           s.LicenseLatency.Float64(),
			SizeRaspberryPi:          s.SizeScore.RaspberryPi.Float64(),
			SizeJetsonNano:           s.SizeScore.JetsonNano.Float64(),
			SizeDesktopPC:            s.SizeScore.DesktopPC.Float64(),
			SizeAWSServer:            s.SizeScore.AWSServer.Float64(),
			SizeScoreLatency:         s.SizeScoreLatency.Float64(),
			DatasetAndCode:           s.DatasetAndCode.Float64(),
			DatasetAndCodeLatency:    s.DatasetAndCodeLatency.Float64(),
			DatasetQuality:           s.DatasetQuality.Float64(),
			DatasetQualityLatency:    s.DatasetQualityLatency.Float64(),
			CodeQuality:              s.CodeQuality.Float64(),
			CodeQualityLatency:       s.CodeQualityLatency.Float64(),
		}
	}
	return result
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
