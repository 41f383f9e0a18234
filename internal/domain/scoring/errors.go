package scoring

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownStrategy = errors.New("unknown aggregation strategy")
	ErrNoScorers       = errors.New("aggregator requires at least one scorer")
	ErrDuplicateScorer = errors.New("duplicate scorer id")
)
