// Package pipeline provides the chain module that runs the scorer
// aggregator against filtered, human-authored content.
package pipeline

import (
	"context"
	"time"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/internal/domain/module"
	"github.com/meritboard/merit/internal/domain/scoring"
	"github.com/meritboard/merit/pkg/metrics"
)

// Extra result keys written by the scoring module.
const (
	KeyScores   = "scores"
	KeyStrategy = "strategy"
	KeyWeights  = "weights"
)

// ScoringModule invokes the aggregator and merges its output into the
// result. It skips scoring entirely when an earlier stage filtered the
// event, flagged its author as a bot, or recognized a command.
type ScoringModule struct {
	name       string
	matcher    event.TypeMatcher
	aggregator *scoring.Aggregator
}

// Option applies a configuration option to the ScoringModule.
type Option func(*ScoringModule)

// WithMatcher restricts the event types the module applies to.
func WithMatcher(m event.TypeMatcher) Option {
	return func(s *ScoringModule) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithName overrides the default module name.
func WithName(name string) Option {
	return func(s *ScoringModule) {
		if name != "" {
			s.name = name
		}
	}
}

// NewScoringModule creates the scoring module around an aggregator.
func NewScoringModule(aggregator *scoring.Aggregator, opts ...Option) (*ScoringModule, error) {
	if aggregator == nil {
		return nil, scoring.ErrNoScorers
	}
	s := &ScoringModule{
		name:       "scoring",
		matcher:    event.AnyType(),
		aggregator: aggregator,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the module name.
func (s *ScoringModule) Name() string {
	return s.name
}

// CanProcess reports whether the module applies to the envelope.
func (s *ScoringModule) CanProcess(e event.Envelope) bool {
	return s.matcher.Matches(e.Type)
}

// Transform scores the result's content through the aggregator.
func (s *ScoringModule) Transform(ctx context.Context, _ event.Envelope, r module.Result) (module.Result, error) {
	if r.Filtered() || r.IsBot() || r.IsCommand() {
		return r, nil
	}
	content := r.Content()
	if content == "" {
		return r.AddDiagnostic("scoring: no content on result"), nil
	}

	start := time.Now()
	agg, err := s.aggregator.Score(ctx, content)
	metrics.RecordScoringLatency(float64(time.Since(start).Milliseconds()))
	if err != nil {
		// The aggregator isolates scorer failures; an error here means the
		// whole aggregation is unusable. Degrade to a zero score rather
		// than aborting the chain.
		return r.AddDiagnostic("scoring: " + err.Error()).
			Set(module.KeyRawScore, 0.0).
			Set(module.KeyNormalizedScore, 0.0), nil
	}

	metrics.RecordNormalizedScore(agg.NormalizedScore)
	r.Set(module.KeyRawScore, agg.RawScore)
	r.Set(module.KeyNormalizedScore, agg.NormalizedScore)
	r.Set(KeyScores, agg.Individual)
	r.Set(KeyStrategy, string(agg.Strategy))
	r.Set(KeyWeights, agg.Weights)
	return r, nil
}
