// Package schema has models and constants for all parts of mlscore.
package schema

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ErrorField is the payload key marking a failed upstream fetch.
const ErrorField = "error"

// RawMetadata is the decoded document of one upstream fetch, tagged with its kind.
// Payload may carry an ErrorField entry instead of real data.
type RawMetadata struct {
	Kind       ArtifactKind   `json:"kind"`
	URL        string         `json:"url"`
	Identifier string         `json:"identifier"` // owner/name form of the URL
	Payload    map[string]any `json:"payload"`
}

// ErrorMessage returns the error marker of the payload, or "".
func (r RawMetadata) ErrorMessage() string {
	if r.Payload == nil {
		return ""
	}
	msg, _ := r.Payload[ErrorField].(string)
	return msg
}

// HasError reports whether the upstream fetch failed.
func (r RawMetadata) HasError() bool {
	_, ok := r.Payload[ErrorField]
	return ok
}

// ErrorPayload builds a payload that only carries an error marker.
func ErrorPayload(msg string) map[string]any {
	return map[string]any{ErrorField: msg}
}

// DimensionScore is the rounded result of one dimension.
type DimensionScore struct {
	Score   Fixed `json:"score"`
	Latency Fixed `json:"latency"`
}

// SizeScore holds one score per device tier.
type SizeScore struct {
	RaspberryPi Fixed `json:"raspberry_pi"`
	JetsonNano  Fixed `json:"jetson_nano"`
	DesktopPC   Fixed `json:"desktop_pc"`
	AWSServer   Fixed `json:"aws_server"`
}

// Get returns the score of a device tier.
func (s SizeScore) Get(tier DeviceTier) Fixed {
	switch tier {
	case RaspberryPi:
		return s.RaspberryPi
	case JetsonNano:
		return s.JetsonNano
	case DesktopPC:
		return s.DesktopPC
	case AWSServer:
		return s.AWSServer
	default:
		return Fixed{}
	}
}

// Set updates the score of a device tier.
func (s *SizeScore) Set(tier DeviceTier, v Fixed) {
	switch tier {
	case RaspberryPi:
		s.RaspberryPi = v
	case JetsonNano:
		s.JetsonNano = v
	case DesktopPC:
		s.DesktopPC = v
	case AWSServer:
		s.AWSServer = v
	}
}

// ScoreReport is the aggregate output of one scoring invocation.
// Field names are part of the externally observed format.
type ScoreReport struct {
	NetScore                 Fixed     `json:"net_score"`
	NetScoreLatency          Fixed     `json:"net_score_latency"`
	RampUpTime               Fixed     `json:"ramp_up_time"`
	RampUpTimeLatency        Fixed     `json:"ramp_up_time_latency"`
	BusFactor                Fixed     `json:"bus_factor"`
	BusFactorLatency         Fixed     `json:"bus_factor_latency"`
	PerformanceClaims        Fixed     `json:"performance_claims"`
	PerformanceClaimsLatency Fixed     `json:"performance_claims_latency"`
	License                  Fixed     `json:"license"`
	LicenseLatency           Fixed     `json:"license_latency"`
	SizeScore                SizeScore `json:"size_score"`
	SizeScoreLatency         Fixed     `json:"size_score_latency"`
	DatasetAndCode           Fixed     `json:"dataset_and_code"`
	DatasetAndCodeLatency    Fixed     `json:"dataset_and_code_latency"`
	DatasetQuality           Fixed     `json:"dataset_quality"`
	DatasetQualityLatency    Fixed     `json:"dataset_quality_latency"`
	CodeQuality              Fixed     `json:"code_quality"`
	CodeQualityLatency       Fixed     `json:"code_quality_latency"`
	Reproducibility          Fixed     `json:"reproducibility"`
	ReproducibilityLatency   Fixed     `json:"reproducibility_latency"`
	Reviewedness             Fixed     `json:"reviewedness"`
	ReviewednessLatency      Fixed     `json:"reviewedness_latency"`
	TreeScore                Fixed     `json:"tree_score"`
	TreeScoreLatency         Fixed     `json:"tree_score_latency"`
}

// Dimension returns the score and latency of a dimension.
// For the size dimension the score is the mean of the four device scores.
func (r ScoreReport) Dimension(dim Dimension) DimensionScore {
	switch dim {
	case LicenseDim:
		return DimensionScore{r.License, r.LicenseLatency}
	case BusFactorDim:
		return DimensionScore{r.BusFactor, r.BusFactorLatency}
	case CodeQualityDim:
		return DimensionScore{r.CodeQuality, r.CodeQualityLatency}
	case DatasetQualityDim:
		return DimensionScore{r.DatasetQuality, r.DatasetQualityLatency}
	case DatasetAndCodeDim:
		return DimensionScore{r.DatasetAndCode, r.DatasetAndCodeLatency}
	case PerformanceClaimsDim:
		return DimensionScore{r.PerformanceClaims, r.PerformanceClaimsLatency}
	case RampUpTimeDim:
		return DimensionScore{r.RampUpTime, r.RampUpTimeLatency}
	case SizeDim:
		return DimensionScore{r.SizeScore.Mean(), r.SizeScoreLatency}
	case ReproducibilityDim:
		return DimensionScore{r.Reproducibility, r.ReproducibilityLatency}
	case ReviewednessDim:
		return DimensionScore{r.Reviewedness, r.ReviewednessLatency}
	case TreeScoreDim:
		return DimensionScore{r.TreeScore, r.TreeScoreLatency}
	default:
		return DimensionScore{}
	}
}

// SetDimension stores the score and latency of a non-size dimension.
func (r *ScoreReport) SetDimension(dim Dimension, ds DimensionScore) {
	switch dim {
	case LicenseDim:
		r.License, r.LicenseLatency = ds.Score, ds.Latency
	case BusFactorDim:
		r.BusFactor, r.BusFactorLatency = ds.Score, ds.Latency
	case CodeQualityDim:
		r.CodeQuality, r.CodeQualityLatency = ds.Score, ds.Latency
	case DatasetQualityDim:
		r.DatasetQuality, r.DatasetQualityLatency = ds.Score, ds.Latency
	case DatasetAndCodeDim:
		r.DatasetAndCode, r.DatasetAndCodeLatency = ds.Score, ds.Latency
	case PerformanceClaimsDim:
		r.PerformanceClaims, r.PerformanceClaimsLatency = ds.Score, ds.Latency
	case RampUpTimeDim:
		r.RampUpTime, r.RampUpTimeLatency = ds.Score, ds.Latency
	case SizeDim:
		r.SizeScoreLatency = ds.Latency
	case ReproducibilityDim:
		r.Reproducibility, r.ReproducibilityLatency = ds.Score, ds.Latency
	case ReviewednessDim:
		r.Reviewedness, r.ReviewednessLatency = ds.Score, ds.Latency
	case TreeScoreDim:
		r.TreeScore, r.TreeScoreLatency = ds.Score, ds.Latency
	}
}

// Mean returns the arithmetic mean of the device scores, rounded to two places.
func (s SizeScore) Mean() Fixed {
	return FixedFromDecimal(s.ExactMean())
}

// ExactMean returns the unrounded mean of the device scores.
func (s SizeScore) ExactMean() decimal.Decimal {
	sum := s.RaspberryPi.Decimal().
		Add(s.JetsonNano.Decimal()).
		Add(s.DesktopPC.Decimal()).
		Add(s.AWSServer.Decimal())
	return sum.Div(decimalFour)
}

// ArtifactSummary is the evidence-derived metadata kept with a record.
type ArtifactSummary struct {
	Identifier   string   `json:"identifier"`
	Description  string   `json:"description,omitempty"`
	License      string   `json:"license,omitempty"`
	Downloads    int64    `json:"downloads"`
	Likes        int64    `json:"likes"`
	SizeMB       *float64 `json:"size_mb,omitempty"`
	Contributors int      `json:"contributors"`
	Languages    []string `json:"languages,omitempty"`
	DownloadURL  string   `json:"download_url,omitempty"`
	HarvestError string   `json:"harvest_error,omitempty"`
}

// ArtifactRecord is the final result of processing one artifact URL.
type ArtifactRecord struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      ArtifactKind    `json:"kind"`
	URL       string          `json:"url"`
	PURL      string          `json:"purl,omitempty"`
	Metadata  ArtifactSummary `json:"metadata"`
	Scores    ScoreReport     `json:"scores"`
	CreatedAt time.Time       `json:"created_at"`
}

// KindLabel returns the upper-case label used in tables.
func (r ArtifactRecord) KindLabel() string {
	return strings.ToUpper(string(r.Kind))
}

// ScoreRunRecord represents a row from the mlscore_score_runs table.
type ScoreRunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalURLs     int32
	ConfigParams  *string
}
