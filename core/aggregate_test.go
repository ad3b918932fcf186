package core

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/huangsam/mlscore/core/metric"
	"github.com/huangsam/mlscore/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// constScorer returns a scorer that always yields v.
func constScorer(v float64) metric.Scorer {
	return func(*schema.Evidence) metric.Result { return metric.Result{Score: v} }
}

// constSizeScorer returns a size scorer that yields v for every device.
func constSizeScorer(v float64) metric.Scorer {
	return func(*schema.Evidence) metric.Result {
		devices := make(map[schema.DeviceTier]float64, len(schema.AllDevices))
		for _, tier := range schema.AllDevices {
			devices[tier] = v
		}
		return metric.Result{Score: v, Devices: devices}
	}
}

func panicScorer(*schema.Evidence) metric.Result {
	panic("upstream parser exploded")
}

func allConst(v float64) []AggregatorOption {
	var opts []AggregatorOption
	for _, dim := range schema.AllDimensions {
		if dim == schema.SizeDim {
			opts = append(opts, WithScorer(dim, constSizeScorer(v)))
			continue
		}
		opts = append(opts, WithScorer(dim, constScorer(v)))
	}
	return opts
}

func TestAggregate_AllOnes(t *testing.T) {
	a := NewAggregator(nil, nil, allConst(1)...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	assert.Equal(t, "1.00", report.NetScore.String())
	for _, dim := range schema.AllDimensions {
		assert.Equal(t, "1.00", report.Dimension(dim).Score.String(), "dimension %s", dim)
	}
	for _, tier := range schema.AllDevices {
		assert.Equal(t, "1.00", report.SizeScore.Get(tier).String())
	}
}

func TestAggregate_Placeholders(t *testing.T) {
	a := NewAggregator(nil, nil, allConst(0)...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	for _, dim := range schema.PlaceholderDimensions {
		ds := report.Dimension(dim)
		assert.Equal(t, "0.50", ds.Score.String(), "dimension %s", dim)
		assert.Equal(t, "0.00", ds.Latency.String(), "dimension %s", dim)
	}
	assert.Equal(t, "0.00", report.NetScore.String())
}

func TestAggregate_FailingScorerContributesZero(t *testing.T) {
	opts := append(allConst(1), WithScorer(schema.LicenseDim, panicScorer))
	a := NewAggregator(nil, nil, opts...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	assert.Equal(t, "0.00", report.License.String())
	assert.Equal(t, "0.00", report.LicenseLatency.String())
	assert.Equal(t, "1.00", report.BusFactor.String())
	assert.Equal(t, "1.00", report.CodeQuality.String())
	// 1.0 minus the license weight of 0.15
	assert.Equal(t, "0.85", report.NetScore.String())
}

func TestAggregate_FailingSizeScorerZeroesDevices(t *testing.T) {
	opts := append(allConst(1), WithScorer(schema.SizeDim, panicScorer))
	a := NewAggregator(nil, nil, opts...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	for _, tier := range schema.AllDevices {
		assert.Equal(t, "0.00", report.SizeScore.Get(tier).String())
	}
	assert.Equal(t, "0.00", report.SizeScoreLatency.String())
	assert.Equal(t, "0.85", report.NetScore.String())
}

func TestAggregate_MissingScorer(t *testing.T) {
	a := NewAggregator(nil, nil, append(allConst(1), WithScorer(schema.RampUpTimeDim, nil))...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	assert.Equal(t, "0.00", report.RampUpTime.String())
	assert.Equal(t, "0.85", report.NetScore.String())
}

func TestAggregate_RoundsHalfUp(t *testing.T) {
	opts := append(allConst(0),
		WithScorer(schema.LicenseDim, constScorer(0.1234)),
		WithScorer(schema.BusFactorDim, constScorer(1.239)),
		WithScorer(schema.CodeQualityDim, constScorer(0.125)),
	)
	a := NewAggregator(nil, nil, opts...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	assert.Equal(t, "0.12", report.License.String())
	assert.Equal(t, "1.00", report.BusFactor.String(), "scores are bounded before rounding")
	assert.Equal(t, "0.13", report.CodeQuality.String())
}

func TestAggregate_NetScoreUsesRoundedScores(t *testing.T) {
	weights := map[schema.Dimension]decimal.Decimal{
		schema.LicenseDim:   decimal.RequireFromString("0.5"),
		schema.BusFactorDim: decimal.RequireFromString("0.5"),
	}
	opts := append(allConst(0),
		WithScorer(schema.LicenseDim, constScorer(0.125)),
		WithScorer(schema.BusFactorDim, constScorer(0.125)),
	)
	a := NewAggregator(weights, nil, opts...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})

	// 0.5*0.13 + 0.5*0.13 = 0.13
	assert.Equal(t, "0.13", report.NetScore.String())
}

func TestAggregate_NetScoreUsesExactSizeMean(t *testing.T) {
	weights := map[schema.Dimension]decimal.Decimal{
		schema.LicenseDim: decimal.RequireFromString("0.5"),
		schema.SizeDim:    decimal.RequireFromString("0.5"),
	}
	sizeScorer := func(*schema.Evidence) metric.Result {
		return metric.Result{Devices: map[schema.DeviceTier]float64{schema.RaspberryPi: 0.03}}
	}
	opts := append(allConst(0), WithScorer(schema.SizeDim, sizeScorer))
	report := NewAggregator(weights, nil, opts...).Aggregate(context.Background(), &schema.Evidence{})

	// The displayed mean rounds 0.0075 up, the net score weights it exactly.
	assert.Equal(t, "0.01", report.SizeScore.Mean().String())
	assert.Equal(t, "0.00", report.NetScore.String())
}

func TestAggregate_NetScoreBounded(t *testing.T) {
	weights := DefaultDecimalWeights()
	weights[schema.LicenseDim] = decimal.NewFromInt(5)
	a := NewAggregator(weights, nil, allConst(1)...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})
	assert.Equal(t, "1.00", report.NetScore.String())
}

func TestAggregate_NonFiniteScore(t *testing.T) {
	nan := func(*schema.Evidence) metric.Result { return metric.Result{Score: math.NaN()} }
	a := NewAggregator(nil, nil, append(allConst(1), WithScorer(schema.LicenseDim, nan))...)
	report := a.Aggregate(context.Background(), &schema.Evidence{})
	assert.Equal(t, "0.00", report.License.String())
}

func TestAggregate_NilEvidence(t *testing.T) {
	a := NewAggregator(nil, nil)
	require.NotPanics(t, func() {
		report := a.Aggregate(context.Background(), nil)
		assert.Equal(t, "0.50", report.TreeScore.String())
	})
}

func TestAggregate_DefaultScorers(t *testing.T) {
	ev := &schema.Evidence{
		License:   schema.LicenseEvidence{License: "apache-2.0"},
		BusFactor: schema.BusFactorEvidence{CommitAuthors: []string{"a", "b", "a", "c", "d", "e"}},
		Size:      schema.KnownSize(100),
	}
	report := NewAggregator(nil, nil).Aggregate(context.Background(), ev)

	assert.Equal(t, "1.00", report.License.String())
	assert.Equal(t, "0.50", report.BusFactor.String())
	assert.Equal(t, "0.10", report.PerformanceClaims.String())
	for _, tier := range schema.AllDevices {
		assert.Equal(t, "1.00", report.SizeScore.Get(tier).String())
	}
	assert.True(t, report.NetScore.Float64() > 0)
}

// withoutLatencies zeroes every timing field of a report.
func withoutLatencies(r schema.ScoreReport) schema.ScoreReport {
	for _, dim := range schema.AllDimensions {
		ds := r.Dimension(dim)
		ds.Latency = schema.Fixed{}
		r.SetDimension(dim, ds)
	}
	r.NetScoreLatency = schema.Fixed{}
	return r
}

func fixtureEvidence() *schema.Evidence {
	return &schema.Evidence{
		License:   schema.LicenseEvidence{License: "apache-2.0, mit"},
		BusFactor: schema.BusFactorEvidence{CommitAuthors: []string{"a", "b", "c"}},
		Size:      schema.KnownSize(420),
	}
}

func TestAggregate_Deterministic(t *testing.T) {
	a := NewAggregator(nil, nil)

	first := a.Aggregate(context.Background(), fixtureEvidence())
	second := a.Aggregate(context.Background(), fixtureEvidence())

	for _, r := range []schema.ScoreReport{first, second} {
		for _, dim := range schema.AllDimensions {
			assert.GreaterOrEqual(t, r.Dimension(dim).Latency.Float64(), 0.0, "dimension %s", dim)
		}
	}

	firstJSON, err := json.Marshal(withoutLatencies(first))
	require.NoError(t, err)
	secondJSON, err := json.Marshal(withoutLatencies(second))
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestFixedLatency(t *testing.T) {
	assert.Equal(t, "0.00", fixedLatency(0).String())
	assert.Equal(t, "0.00", fixedLatency(-time.Millisecond).String())
	assert.Equal(t, "1.50", fixedLatency(1500*time.Microsecond).String())
	assert.Equal(t, "0.01", fixedLatency(5*time.Microsecond).String())
	assert.Equal(t, "250.00", fixedLatency(250*time.Millisecond).String())
}

func TestFixedScore(t *testing.T) {
	assert.Equal(t, "0.00", fixedScore(-0.3).String())
	assert.Equal(t, "1.00", fixedScore(7).String())
	assert.Equal(t, "0.46", fixedScore(0.455).String())
}

func TestDefaultDecimalWeightsSumToOne(t *testing.T) {
	sum := decimal.Zero
	for _, w := range DefaultDecimalWeights() {
		sum = sum.Add(w)
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(1)), "got %s", sum)
}
