// Package dedupe provides idempotency tracking for envelope ids.
package dedupe

import (
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultMaxEntries bounds the seen-id cache.
const defaultMaxEntries = 50_000

// Deduper records seen envelope ids to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it
	// if not. Returns true when id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes id from the seen set so it can be retried. Use
	// only when an envelope was recorded but failed to enqueue.
	Unrecord(ctx context.Context, id string)

	// Size returns the current number of tracked ids.
	Size() int64
}

// lruDeduper implements Deduper on a bounded LRU cache, evicting the
// least recently seen ids once full.
type lruDeduper struct {
	cache *lru.Cache[string, struct{}]
}

// config carries construction options until the cache is built.
type config struct {
	maxEntries int
}

// Option applies a configuration option to the deduper.
type Option func(*config)

// WithMaxEntries bounds the number of tracked ids.
func WithMaxEntries(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}

// NewLRUDeduper creates a bounded deduper with configuration options.
func NewLRUDeduper(opts ...Option) (Deduper, error) {
	cfg := config{maxEntries: defaultMaxEntries}
	for _, opt := range opts {
		opt(&cfg)
	}
	cache, err := lru.New[string, struct{}](cfg.maxEntries)
	if err != nil {
		return nil, err
	}
	return &lruDeduper{cache: cache}, nil
}

func (d *lruDeduper) SeenAndRecord(_ context.Context, id string) bool {
	seen, _ := d.cache.ContainsOrAdd(id, struct{}{})
	return seen
}

func (d *lruDeduper) Unrecord(_ context.Context, id string) {
	d.cache.Remove(id)
}

func (d *lruDeduper) Size() int64 {
	return int64(d.cache.Len())
}
