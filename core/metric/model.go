package metric

import (
	"math"
	"strings"

	"github.com/huangsam/mlscore/schema"
)

// unknownPerformance is the floor of a model without any performance signal.
const unknownPerformance = 0.1

// engagementTiers are checked from the highest tier down; only one applies.
var engagementTiers = []struct {
	downloads int64
	likes     int64
	bonus     float64
}{
	{1_000_000, 1000, 0.4},
	{100_000, 500, 0.3},
	{10_000, 100, 0.2},
	{1_000, 10, 0.1},
}

// PerformanceClaims scores evaluation results and engagement of a model.
// Datasets and code repositories make no performance claims. An empty kind
// is scored as a model.
func PerformanceClaims(ev schema.PerformanceEvidence) float64 {
	if ev.Kind == schema.DatasetKind || ev.Kind == schema.CodeKind {
		return 0
	}

	var score float64
	switch {
	case ev.ModelIndex > 0:
		score += 0.5
		if ev.ResultCount > 1 {
			score += 0.2
		}
	case ev.CardModelIndex:
		score += 0.3
	}
	if ev.EvalTags {
		score += 0.25
	}
	for _, tier := range engagementTiers {
		if ev.Downloads >= tier.downloads || ev.Likes >= tier.likes {
			score += tier.bonus
			break
		}
	}

	if score == 0 {
		score = unknownPerformance
	}
	return clamp01(score)
}

// Ramp-up documentation thresholds.
const (
	knownFamilyDocLength = 50
	unknownDocLength     = 100
	rampUpFloor          = 0.3
)

// RampUp scores how quickly a newcomer can start using the artifact.
func RampUp(ev schema.RampUpEvidence) float64 {
	descLen := runeLen(ev.Description)

	minDoc := unknownDocLength
	if ev.KnownFamily {
		minDoc = knownFamilyDocLength
	}
	clearDocs := runeLen(strings.TrimSpace(ev.Description)) >= minDoc || ev.HasDocFile

	var score float64
	if clearDocs {
		switch {
		case descLen > 300:
			score += 0.40
		case descLen > 150:
			score += 0.35
		case descLen > 100:
			score += 0.25
		default:
			score += 0.20
		}
	}
	if ev.HasQuickStart {
		score += 0.30
	}
	if ev.HasInstall {
		score += 0.25
	}
	if ev.HasRunnableExamples {
		score += 0.25
	}
	if ev.MinimalDeps {
		score += 0.15
	}

	switch ev.SizeClass {
	case schema.SmallModel:
		score += 0.10
	case schema.LargeModel:
		score -= 0.02
	}

	switch ev.Kind {
	case schema.DatasetKind:
		score += 0.10
	case schema.CodeKind:
		if !ev.HasRunnableExamples {
			score -= 0.02
		}
	}

	if score > 0 && score < rampUpFloor {
		score = rampUpFloor
	}
	return clamp01(score)
}

// Size scores how well the artifact fits the memory budget of each device tier.
// An unknown size scores zero everywhere.
func Size(ev schema.SizeEvidence, limits map[schema.DeviceTier]float64) map[schema.DeviceTier]float64 {
	out := make(map[schema.DeviceTier]float64, len(schema.AllDevices))
	for _, tier := range schema.AllDevices {
		out[tier] = 0
		if !ev.Known || ev.SizeMB <= 0 || math.IsNaN(ev.SizeMB) {
			continue
		}
		out[tier] = clamp01(min(1, limits[tier]/ev.SizeMB))
	}
	return out
}
