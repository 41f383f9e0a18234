package scoring

import (
	"context"
	"fmt"
	"sync"

	"github.com/meritboard/merit/pkg/metrics"
)

// Strategy selects how individual scorer outputs combine into one score.
type Strategy string

// Supported aggregation strategies.
const (
	StrategyWeightedAverage Strategy = "weighted-average"
	StrategyMinimum         Strategy = "minimum"
	StrategyMaximum         Strategy = "maximum"
)

// AggregateResult is a scorer result extended with the per-scorer
// breakdown, the strategy used, and the resolved weight map.
type AggregateResult struct {
	Result

	Individual map[string]Result
	Strategy   Strategy
	Weights    map[string]float64
}

// scorerEntry pairs a scorer with an optional aggregator-level weight
// override; when nil the scorer's intrinsic weight is used.
type scorerEntry struct {
	scorer   Scorer
	override *float64
}

// Aggregator runs an ordered list of scorers concurrently against the
// same content and combines their normalized scores by strategy. A
// failing or panicking scorer is isolated to a zero result so a single
// scorer can never abort the whole aggregation.
type Aggregator struct {
	entries  []scorerEntry
	strategy Strategy
}

// AggregatorOption applies a configuration option to the Aggregator.
type AggregatorOption func(*Aggregator)

// WithStrategy selects the aggregation strategy.
func WithStrategy(s Strategy) AggregatorOption {
	return func(a *Aggregator) {
		a.strategy = s
	}
}

// WithScorer appends a scorer using its intrinsic weight.
func WithScorer(s Scorer) AggregatorOption {
	return func(a *Aggregator) {
		a.entries = append(a.entries, scorerEntry{scorer: s})
	}
}

// WithWeightedScorer appends a scorer with an aggregator-level weight
// override.
func WithWeightedScorer(s Scorer, weight float64) AggregatorOption {
	return func(a *Aggregator) {
		w := weight
		a.entries = append(a.entries, scorerEntry{scorer: s, override: &w})
	}
}

// NewAggregator creates an aggregator with configuration options. It
// fails at construction on an unknown strategy, no scorers, or
// duplicate scorer ids.
func NewAggregator(opts ...AggregatorOption) (*Aggregator, error) {
	a := &Aggregator{strategy: StrategyWeightedAverage}
	for _, opt := range opts {
		opt(a)
	}

	switch a.strategy {
	case StrategyWeightedAverage, StrategyMinimum, StrategyMaximum:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, a.strategy)
	}
	if len(a.entries) == 0 {
		return nil, ErrNoScorers
	}
	seen := make(map[string]struct{}, len(a.entries))
	for _, e := range a.entries {
		if e.scorer == nil {
			return nil, ErrNoScorers
		}
		if _, dup := seen[e.scorer.ID()]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateScorer, e.scorer.ID())
		}
		seen[e.scorer.ID()] = struct{}{}
	}
	return a, nil
}

// Strategy returns the configured aggregation strategy.
func (a *Aggregator) Strategy() Strategy {
	return a.strategy
}

// Score runs all scorers concurrently against content, waits for all of
// them, and combines their outputs. With a zero total weight the
// weighted average is defined as 0, never NaN.
func (a *Aggregator) Score(ctx context.Context, content string) (AggregateResult, error) {
	results := make([]Result, len(a.entries))

	var wg sync.WaitGroup
	for i, entry := range a.entries {
		wg.Add(1)
		go func(i int, s Scorer) {
			defer wg.Done()
			results[i] = a.scoreOne(ctx, s, content)
		}(i, entry.scorer)
	}
	wg.Wait()

	individual := make(map[string]Result, len(a.entries))
	weights := make(map[string]float64, len(a.entries))
	for i, entry := range a.entries {
		individual[entry.scorer.ID()] = results[i]
		if entry.override != nil {
			weights[entry.scorer.ID()] = *entry.override
		} else {
			weights[entry.scorer.ID()] = entry.scorer.Weight()
		}
	}

	combined := a.combine(results, weights)
	return AggregateResult{
		Result: Result{
			RawScore:        combined * maxRawScore,
			NormalizedScore: combined,
		},
		Individual: individual,
		Strategy:   a.strategy,
		Weights:    weights,
	}, nil
}

// scoreOne isolates a single scorer: an error or panic degrades to a
// zero result and the aggregation continues with the remaining scorers.
func (a *Aggregator) scoreOne(ctx context.Context, s Scorer, content string) (out Result) {
	defer func() {
		if recover() != nil {
			metrics.RecordScorerError(s.ID())
			out = Result{}
		}
	}()

	res, err := s.Score(ctx, content)
	if err != nil {
		metrics.RecordScorerError(s.ID())
		return Result{}
	}
	res.NormalizedScore = clamp01(res.NormalizedScore)
	return res
}

func (a *Aggregator) combine(results []Result, weights map[string]float64) float64 {
	switch a.strategy {
	case StrategyMinimum:
		min := results[0].NormalizedScore
		for _, r := range results[1:] {
			if r.NormalizedScore < min {
				min = r.NormalizedScore
			}
		}
		return min
	case StrategyMaximum:
		max := results[0].NormalizedScore
		for _, r := range results[1:] {
			if r.NormalizedScore > max {
				max = r.NormalizedScore
			}
		}
		return max
	default:
		var sum, total float64
		for i, entry := range a.entries {
			w := weights[entry.scorer.ID()]
			sum += results[i].NormalizedScore * w
			total += w
		}
		if total <= 0 {
			return 0
		}
		return clamp01(sum / total)
	}
}
