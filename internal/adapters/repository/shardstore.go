package repository

import (
	"context"
	"hash/fnv"
	"sort"
	"sync"

	"github.com/meritboard/merit/pkg/metrics"
)

// defaultShardCount spreads contributors across locks.
const defaultShardCount = 8

// shard holds a slice of the contributor best-score map behind its own
// lock.
type shard struct {
	mu   sync.RWMutex
	best map[string]float64
}

// ShardStore implements Store with lock-striped maps and sorted reads.
type ShardStore struct {
	shards []*shard
}

// Option applies a configuration option to the ShardStore.
type Option func(*ShardStore)

// WithShardCount sets the number of lock stripes.
func WithShardCount(n int) Option {
	return func(s *ShardStore) {
		if n > 0 {
			s.shards = make([]*shard, n)
		}
	}
}

// NewShardStore creates a sharded ranking store with configuration options.
func NewShardStore(opts ...Option) *ShardStore {
	s := &ShardStore{shards: make([]*shard, defaultShardCount)}
	for _, opt := range opts {
		opt(s)
	}
	for i := range s.shards {
		s.shards[i] = &shard{best: make(map[string]float64)}
	}
	return s
}

func (s *ShardStore) shardFor(contributor string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(contributor))
	return s.shards[h.Sum32()%uint32(len(s.shards))]
}

// UpdateBest records score when it improves the contributor's best.
func (s *ShardStore) UpdateBest(_ context.Context, contributor string, score float64) (bool, error) {
	if contributor == "" {
		return false, ErrEmptyContributor
	}
	sh := s.shardFor(contributor)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	current, exists := sh.best[contributor]
	if exists && score <= current {
		return false, nil
	}
	sh.best[contributor] = score
	return true, nil
}

// TopN returns the n highest-ranked contributors, ranked by score
// descending with name as the tiebreaker.
func (s *ShardStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if n <= 0 {
		return []Entry{}, nil
	}
	entries := s.ranked(ctx)
	if n > len(entries) {
		n = len(entries)
	}
	return entries[:n], nil
}

// Rank returns one contributor's position and score.
func (s *ShardStore) Rank(ctx context.Context, contributor string) (Entry, error) {
	for _, e := range s.ranked(ctx) {
		if e.Contributor == contributor {
			return e, nil
		}
	}
	return Entry{}, ErrContributorNotFound
}

// Count returns the number of ranked contributors.
func (s *ShardStore) Count(_ context.Context) int {
	total := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		total += len(sh.best)
		sh.mu.RUnlock()
	}
	metrics.UpdateTotalContributors(total)
	return total
}

// Close releases store resources. Nothing to release for the in-memory
// implementation.
func (s *ShardStore) Close() error {
	return nil
}

// ranked snapshots all shards into a sorted, rank-assigned slice.
func (s *ShardStore) ranked(_ context.Context) []Entry {
	entries := make([]Entry, 0, 64)
	for _, sh := range s.shards {
		sh.mu.RLock()
		for contributor, score := range sh.best {
			entries = append(entries, Entry{Contributor: contributor, Score: score})
		}
		sh.mu.RUnlock()
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Contributor < entries[j].Contributor
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}
