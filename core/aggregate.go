package core

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/huangsam/mlscore/core/metric"
	"github.com/huangsam/mlscore/internal/contract"
	"github.com/huangsam/mlscore/schema"
	"github.com/shopspring/decimal"
)

// AggregatorWorkers is the size of the scoring pool, one worker per dimension.
const AggregatorWorkers = 8

// Aggregator runs the dimension scorers concurrently and builds the report.
// It is safe for concurrent use once built.
type Aggregator struct {
	weights map[schema.Dimension]decimal.Decimal
	scorers map[schema.Dimension]metric.Scorer
}

// AggregatorOption configures an Aggregator.
type AggregatorOption func(*Aggregator)

// WithScorer replaces the scorer of one dimension.
func WithScorer(dim schema.Dimension, s metric.Scorer) AggregatorOption {
	return func(a *Aggregator) {
		a.scorers[dim] = s
	}
}

// NewAggregator creates an Aggregator. Nil weights or limits select the defaults.
func NewAggregator(weights map[schema.Dimension]decimal.Decimal, limits map[schema.DeviceTier]float64, opts ...AggregatorOption) *Aggregator {
	if weights == nil {
		weights = DefaultDecimalWeights()
	}
	if limits == nil {
		limits = schema.GetDefaultDeviceLimits()
	}
	a := &Aggregator{weights: weights, scorers: metric.Default(limits)}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DefaultDecimalWeights returns the default weight table in fixed point.
func DefaultDecimalWeights() map[schema.Dimension]decimal.Decimal {
	defaults := schema.GetDefaultWeights()
	out := make(map[schema.Dimension]decimal.Decimal, len(defaults))
	for dim, w := range defaults {
		out[dim] = decimal.NewFromFloat(w)
	}
	return out
}

// dimensionResult is the outcome of one scoring task.
type dimensionResult struct {
	dim     schema.Dimension
	result  metric.Result
	latency time.Duration
}

// Aggregate scores every dimension of ev and returns the rounded report.
// A failing scorer contributes zero for its dimension and is logged.
func (a *Aggregator) Aggregate(ctx context.Context, ev *schema.Evidence) schema.ScoreReport {
	if ev == nil {
		ev = &schema.Evidence{}
	}

	start := time.Now()
	dimCh := make(chan schema.Dimension, len(schema.AllDimensions))
	resultCh := make(chan dimensionResult, len(schema.AllDimensions))
	var wg sync.WaitGroup

	for range AggregatorWorkers {
		wg.Go(func() {
			for dim := range dimCh {
				resultCh <- a.score(ctx, dim, ev)
			}
		})
	}

	for _, dim := range schema.AllDimensions {
		dimCh <- dim
	}
	close(dimCh)

	wg.Wait()
	close(resultCh)
	elapsed := time.Since(start)

	var report schema.ScoreReport
	for r := range resultCh {
		latency := fixedLatency(r.latency)
		if r.dim == schema.SizeDim {
			for _, tier := range schema.AllDevices {
				report.SizeScore.Set(tier, fixedScore(r.result.Devices[tier]))
			}
			report.SizeScoreLatency = latency
			continue
		}
		report.SetDimension(r.dim, schema.DimensionScore{Score: fixedScore(r.result.Score), Latency: latency})
	}

	placeholder := schema.NewFixed(schema.PlaceholderScore)
	for _, dim := range schema.PlaceholderDimensions {
		report.SetDimension(dim, schema.DimensionScore{Score: placeholder})
	}

	report.NetScore = a.netScore(report)
	report.NetScoreLatency = fixedLatency(elapsed)
	return report
}

// score runs one scorer inside a recover boundary.
func (a *Aggregator) score(ctx context.Context, dim schema.Dimension, ev *schema.Evidence) (out dimensionResult) {
	out.dim = dim
	defer func() {
		if r := recover(); r != nil {
			contract.LoggerFrom(ctx).Warn("scorer failed", "dimension", dim, "err", r)
			out.result = metric.Result{}
			out.latency = 0
		}
	}()

	scorer, ok := a.scorers[dim]
	if !ok || scorer == nil {
		panic(fmt.Sprintf("no scorer registered for %s", dim))
	}
	start := time.Now()
	out.result = scorer(ev)
	out.latency = time.Since(start)
	return out
}

// netScore is the weighted sum of the rounded dimension scores, bounded to [0,1].
// The size dimension contributes the exact mean of its rounded device scores.
func (a *Aggregator) netScore(report schema.ScoreReport) schema.Fixed {
	sum := decimal.Zero
	for _, dim := range schema.AllDimensions {
		w, ok := a.weights[dim]
		if !ok {
			continue
		}
		score := report.Dimension(dim).Score.Decimal()
		if dim == schema.SizeDim {
			score = report.SizeScore.ExactMean()
		}
		sum = sum.Add(score.Mul(w))
	}
	sum = decimal.Max(decimal.Zero, decimal.Min(decimal.NewFromInt(1), sum))
	return schema.FixedFromDecimal(sum)
}

// fixedScore bounds v to [0,1] and rounds it. Non-finite values map to 0.
func fixedScore(v float64) schema.Fixed {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return schema.Fixed{}
	}
	return schema.NewFixed(max(0, min(1, v)))
}

// fixedLatency converts d to rounded milliseconds.
func fixedLatency(d time.Duration) schema.Fixed {
	if d <= 0 {
		return schema.Fixed{}
	}
	return schema.FixedFromDecimal(decimal.New(d.Microseconds(), -3))
}
