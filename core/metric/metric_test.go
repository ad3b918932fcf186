package metric

import (
	"math"
	"strings"
	"testing"

	"github.com/huangsam/mlscore/schema"
	"github.com/stretchr/testify/assert"
)

const eps = 1e-9

func TestLicense(t *testing.T) {
	tests := []struct {
		license string
		want    float64
	}{
		{"apache-2.0", 1.0},
		{"mit", 1.0},
		{"bsd-3-clause", 1.0},
		{"cc0-1.0", 1.0},
		{"unlicense", 1.0},
		{"mpl-2.0", 0.75},
		{"custom", 0.5},
		{"gpl-3.0", 0.5},
		{"unknown", 0.0},
		{"none", 0.0},
		{"other", 0.0},
		{"", 0.0},
		{"  MIT  ", 1.0},
		{"other, mpl-2.0", 0.75},
		{"gemma, apache-2.0", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.license, func(t *testing.T) {
			assert.InDelta(t, tt.want, License(schema.LicenseEvidence{License: tt.license}), eps)
		})
	}
}

func TestBusFactor(t *testing.T) {
	assert.InDelta(t, 0.5, BusFactor(schema.BusFactorEvidence{CommitAuthors: []string{"a", "b", "a", "c", "d", "e"}}), eps)
	assert.InDelta(t, 0.0, BusFactor(schema.BusFactorEvidence{}), eps)
	assert.InDelta(t, 0.1, BusFactor(schema.BusFactorEvidence{CommitAuthors: []string{"solo"}}), eps)

	many := make([]string, 25)
	for i := range many {
		many[i] = strings.Repeat("x", i+1)
	}
	assert.InDelta(t, 1.0, BusFactor(schema.BusFactorEvidence{CommitAuthors: many}), eps)
}

func TestCodeQuality(t *testing.T) {
	full := schema.CodeQualityEvidence{
		HasTests:       true,
		HasCI:          true,
		HasLintConfig:  true,
		LanguageCounts: map[string]int{"python": 30, "javascript": 10},
		TotalCodeFiles: 100,
		HasReadme:      true,
		HasPackaging:   true,
	}
	assert.InDelta(t, 1.0, CodeQuality(full), eps)

	assert.InDelta(t, 0.0, CodeQuality(schema.CodeQualityEvidence{}), eps)

	// README only: half of the docs/packaging weight
	assert.InDelta(t, 0.10, CodeQuality(schema.CodeQualityEvidence{HasReadme: true}), eps)

	// 10 files in 2 languages: volume 0.5 + 0.08
	partial := schema.CodeQualityEvidence{
		HasTests:       true,
		LanguageCounts: map[string]int{"Python": 8, "Go": 2, "Rust": 0},
		TotalCodeFiles: 10,
	}
	assert.InDelta(t, 0.25+0.25*0.58, CodeQuality(partial), eps)
}

func TestDatasetQuality(t *testing.T) {
	assert.InDelta(t, 0.0, DatasetQuality(schema.DatasetQualityEvidence{}), eps)

	ev := schema.DatasetQualityEvidence{
		DatasetURL:  "https://huggingface.co/datasets/org/data",
		Description: strings.Repeat("d", 60),
		HasReadme:   true,
		Downloads:   1000,
	}
	assert.InDelta(t, 0.3+0.1+0.1+0.03, DatasetQuality(ev), eps)

	ev.CodeURL = "https://github.com/org/repo"
	ev.Description = strings.Repeat("d", 101)
	ev.HasExamples = true
	ev.MLIntegration = true
	ev.TransformersConfig = true
	ev.Likes = 100
	assert.InDelta(t, 1.0, DatasetQuality(ev), eps)
}

func TestDatasetAndCode(t *testing.T) {
	assert.InDelta(t, 0.0, DatasetAndCode(schema.DatasetAndCodeEvidence{}), eps)

	dataset := schema.DatasetAndCodeEvidence{
		Kind:             schema.DatasetKind,
		Description:      strings.Repeat("d", 150),
		HasDocumentation: true,
		ExampleCount:     50_000,
		License:          "cc-by-4.0",
		Downloads:        50,
		Likes:            4,
	}
	assert.InDelta(t, 0.25+0.15+0.20+0.05+0.04, DatasetAndCode(dataset), eps)

	// Description length only counts when documented
	dataset.HasDocumentation = false
	assert.InDelta(t, 0.15+0.20+0.05+0.04, DatasetAndCode(dataset), eps)

	model := schema.DatasetAndCodeEvidence{
		Kind:            schema.ModelKind,
		HasCodeExamples: true,
		MLIntegration:   true,
		License:         "gemma",
		Downloads:       1_000_000,
		Likes:           10_000,
	}
	assert.InDelta(t, 0.30+0.20+0.10+0.15+0.08, DatasetAndCode(model), eps)

	model.License = "unknown"
	model.ExampleCount = 5_000_000 // ignored outside datasets
	assert.InDelta(t, 0.30+0.20+0.15+0.08, DatasetAndCode(model), eps)
}

func TestPerformanceClaims(t *testing.T) {
	tests := []struct {
		name string
		ev   schema.PerformanceEvidence
		want float64
	}{
		{"empty", schema.PerformanceEvidence{}, 0.1},
		{"model without signal", schema.PerformanceEvidence{Kind: schema.ModelKind}, 0.1},
		{"dataset", schema.PerformanceEvidence{Kind: schema.DatasetKind, ModelIndex: 3}, 0.0},
		{"code", schema.PerformanceEvidence{Kind: schema.CodeKind, Downloads: 1 << 30}, 0.0},
		{"one result", schema.PerformanceEvidence{Kind: schema.ModelKind, ModelIndex: 1, ResultCount: 1}, 0.5},
		{"many results", schema.PerformanceEvidence{Kind: schema.ModelKind, ModelIndex: 1, ResultCount: 4}, 0.7},
		{"card only", schema.PerformanceEvidence{Kind: schema.ModelKind, CardModelIndex: true}, 0.3},
		{"eval tags", schema.PerformanceEvidence{Kind: schema.ModelKind, EvalTags: true}, 0.25},
		{"engagement 1k downloads", schema.PerformanceEvidence{Downloads: 1_000}, 0.1},
		{"engagement 100 likes", schema.PerformanceEvidence{Likes: 100}, 0.2},
		{"engagement 100k downloads", schema.PerformanceEvidence{Downloads: 100_000, Likes: 1}, 0.3},
		{"engagement 1k likes", schema.PerformanceEvidence{Likes: 1000}, 0.4},
		{"capped", schema.PerformanceEvidence{ModelIndex: 2, ResultCount: 2, EvalTags: true, Downloads: 5_000_000}, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PerformanceClaims(tt.ev), eps)
		})
	}
}

func TestRampUp(t *testing.T) {
	tests := []struct {
		name string
		ev   schema.RampUpEvidence
		want float64
	}{
		{"nothing", schema.RampUpEvidence{SizeClass: schema.MediumModel}, 0.0},
		{"large only clamps to zero", schema.RampUpEvidence{SizeClass: schema.LargeModel}, 0.0},
		{"small only floors", schema.RampUpEvidence{SizeClass: schema.SmallModel}, 0.3},
		{"dataset floors", schema.RampUpEvidence{Kind: schema.DatasetKind}, 0.3},
		{"doc file short description", schema.RampUpEvidence{HasDocFile: true, Description: "x"}, 0.3},
		{"long description", schema.RampUpEvidence{Description: strings.Repeat("a", 301)}, 0.4},
		{"known family threshold", schema.RampUpEvidence{Description: strings.Repeat("a", 60), KnownFamily: true, HasInstall: true}, 0.45},
		{"unknown family below threshold", schema.RampUpEvidence{Description: strings.Repeat("a", 60), HasInstall: true}, 0.3},
		{
			"code without runnable",
			schema.RampUpEvidence{Kind: schema.CodeKind, Description: strings.Repeat("a", 160), HasQuickStart: true},
			0.35 + 0.30 - 0.02,
		},
		{
			"everything",
			schema.RampUpEvidence{
				Description:         strings.Repeat("a", 400),
				HasQuickStart:       true,
				HasInstall:          true,
				HasRunnableExamples: true,
				MinimalDeps:         true,
				SizeClass:           schema.SmallModel,
			},
			1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, RampUp(tt.ev), eps)
		})
	}
}

func TestSize(t *testing.T) {
	limits := schema.GetDefaultDeviceLimits()

	fits := Size(schema.KnownSize(100), limits)
	for _, tier := range schema.AllDevices {
		assert.InDelta(t, 1.0, fits[tier], eps, tier)
	}

	big := Size(schema.KnownSize(16000), limits)
	assert.InDelta(t, 100.0/16000, big[schema.RaspberryPi], eps)
	assert.InDelta(t, 200.0/16000, big[schema.JetsonNano], eps)
	assert.InDelta(t, 0.5, big[schema.DesktopPC], eps)
	assert.InDelta(t, 1.0, big[schema.AWSServer], eps)

	unknown := Size(schema.SizeEvidence{}, limits)
	assert.Len(t, unknown, len(schema.AllDevices))
	for _, tier := range schema.AllDevices {
		assert.Zero(t, unknown[tier])
	}

	assert.Zero(t, Size(schema.SizeEvidence{Known: true, SizeMB: math.NaN()}, limits)[schema.AWSServer])
}

func TestDefaultScorersStayInRange(t *testing.T) {
	scorers := Default(schema.GetDefaultDeviceLimits())
	assert.Len(t, scorers, len(schema.AllDimensions))

	evs := []schema.Evidence{
		{},
		{Kind: schema.ModelKind, Size: schema.KnownSize(1)},
		{
			Kind:      schema.CodeKind,
			License:   schema.LicenseEvidence{License: "mit"},
			BusFactor: schema.BusFactorEvidence{CommitAuthors: []string{"a"}},
			RampUp:    schema.RampUpEvidence{Kind: schema.CodeKind, HasInstall: true},
			Size:      schema.KnownSize(1e9),
		},
	}
	for _, ev := range evs {
		for _, dim := range schema.AllDimensions {
			res := scorers[dim](&ev)
			assert.GreaterOrEqual(t, res.Score, 0.0, dim)
			assert.LessOrEqual(t, res.Score, 1.0, dim)
			if dim == schema.SizeDim {
				assert.Len(t, res.Devices, len(schema.AllDevices))
			}
		}
	}
}

func TestMean(t *testing.T) {
	devices := map[schema.DeviceTier]float64{
		schema.RaspberryPi: 0.2,
		schema.JetsonNano:  0.4,
		schema.DesktopPC:   1,
		schema.AWSServer:   1,
	}
	assert.InDelta(t, 0.65, Mean(devices), eps)
	assert.Zero(t, Mean(nil))
}
