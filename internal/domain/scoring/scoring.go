// Package scoring defines the contract for computing normalized quality
// scores from text content and the aggregation of multiple scorers.
package scoring

import (
	"context"
)

// Raw score bounds shared by all scorers.
const (
	minRawScore = 0
	maxRawScore = 100
)

// defaultWeight is the intrinsic scorer weight when none is configured.
const defaultWeight = 1.0

// Result contains one scorer's output for a piece of content.
type Result struct {
	// RawScore is on the scorer-defined 0-100 scale.
	RawScore float64
	// NormalizedScore is always clamped to [0,1].
	NormalizedScore float64
	// Metrics carries scorer-specific observability values.
	Metrics map[string]float64
}

// Scorer is a pure mapping from text content to a normalized quality
// signal. Implementations must be safe for concurrent use.
type Scorer interface {
	// ID returns the scorer's unique identifier.
	ID() string

	// Weight returns the intrinsic weight applied to the normalized
	// score, independent of any aggregator-level weight.
	Weight() float64

	// Score computes the score for content, honoring ctx for cancellation.
	Score(ctx context.Context, content string) (Result, error)
}

// Normalize rescales raw linearly from [min,max] to [0,1], clamping at
// the bounds. A degenerate range yields 0.
func Normalize(raw, min, max float64) float64 {
	if max <= min {
		return 0
	}
	return clamp01((raw - min) / (max - min))
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func clampRaw(v float64) float64 {
	switch {
	case v < minRawScore:
		return minRawScore
	case v > maxRawScore:
		return maxRawScore
	default:
		return v
	}
}
