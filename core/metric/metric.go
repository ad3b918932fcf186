// Package metric has the pure per-dimension scorers of mlscore.
// Every scorer is deterministic, performs no I/O and returns a value in [0,1].
package metric

import (
	"math"
	"unicode/utf8"

	"github.com/huangsam/mlscore/schema"
)

// Result is the outcome of one scorer. Devices is only set by the size scorer.
type Result struct {
	Score   float64
	Devices map[schema.DeviceTier]float64
}

// Scorer computes one dimension from the evidence of an artifact.
type Scorer func(ev *schema.Evidence) Result

// Default returns the scorer of every computed dimension. The size scorer
// uses the given device limits.
func Default(limits map[schema.DeviceTier]float64) map[schema.Dimension]Scorer {
	return map[schema.Dimension]Scorer{
		schema.LicenseDim: func(ev *schema.Evidence) Result {
			return Result{Score: License(ev.License)}
		},
		schema.BusFactorDim: func(ev *schema.Evidence) Result {
			return Result{Score: BusFactor(ev.BusFactor)}
		},
		schema.CodeQualityDim: func(ev *schema.Evidence) Result {
			return Result{Score: CodeQuality(ev.CodeQuality)}
		},
		schema.DatasetQualityDim: func(ev *schema.Evidence) Result {
			return Result{Score: DatasetQuality(ev.DatasetQuality)}
		},
		schema.DatasetAndCodeDim: func(ev *schema.Evidence) Result {
			return Result{Score: DatasetAndCode(ev.DatasetAndCode)}
		},
		schema.PerformanceClaimsDim: func(ev *schema.Evidence) Result {
			return Result{Score: PerformanceClaims(ev.PerformanceClaims)}
		},
		schema.RampUpTimeDim: func(ev *schema.Evidence) Result {
			return Result{Score: RampUp(ev.RampUp)}
		},
		schema.SizeDim: func(ev *schema.Evidence) Result {
			devices := Size(ev.Size, limits)
			return Result{Score: Mean(devices), Devices: devices}
		},
	}
}

// Mean returns the average device score over all tiers.
func Mean(devices map[schema.DeviceTier]float64) float64 {
	var sum float64
	for _, tier := range schema.AllDevices {
		sum += devices[tier]
	}
	return sum / float64(len(schema.AllDevices))
}

// clamp01 bounds v to [0,1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// runeLen counts characters rather than bytes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
