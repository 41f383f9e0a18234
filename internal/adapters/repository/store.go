// Package repository keeps contributor rankings derived from scored
// events. State lives for the process lifetime only; nothing is
// persisted.
package repository

import (
	"context"
)

// Entry is one row of the contributor ranking.
type Entry struct {
	Rank        int     `json:"rank"`
	Contributor string  `json:"contributor"`
	Score       float64 `json:"score"`
}

// Store holds each contributor's best score and answers ranking queries.
type Store interface {
	// UpdateBest records score for contributor when it beats their
	// current best. Returns true when the entry changed.
	UpdateBest(ctx context.Context, contributor string, score float64) (bool, error)

	// TopN returns the n highest-ranked contributors.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Rank returns the ranking entry for one contributor.
	Rank(ctx context.Context, contributor string) (Entry, error)

	// Count returns the number of ranked contributors.
	Count(ctx context.Context) int

	// Close releases store resources.
	Close() error
}
