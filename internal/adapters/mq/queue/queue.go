// Package queue provides the bounded in-memory buffer between envelope
// ingest and the pipeline workers.
package queue

import (
	"context"
	"sync"

	"github.com/meritboard/merit/internal/domain/event"
	"github.com/meritboard/merit/pkg/metrics"
)

// defaultCapacity bounds the queue when no option is given.
const defaultCapacity = 100_000

// Queue provides non-blocking enqueue and channel-based dequeue
// semantics for event envelopes.
type Queue interface {
	// Enqueue adds an envelope. Returns false when the queue is full,
	// closed, or ctx is done.
	Enqueue(ctx context.Context, e event.Envelope) bool

	// Dequeue returns a channel receiving envelopes as they become
	// available. The channel closes when the queue closes.
	Dequeue(ctx context.Context) <-chan event.Envelope

	// Len returns the current number of queued envelopes.
	Len(ctx context.Context) int

	// Close stops the queue; no further enqueues succeed.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	envelopes chan event.Envelope
	capacity  int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity bounds the number of buffered envelopes.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.envelopes = make(chan event.Envelope, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	return q
}

// Enqueue adds an envelope without blocking.
func (q *InMemoryQueue) Enqueue(ctx context.Context, e event.Envelope) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError()
		return false
	}

	select {
	case q.envelopes <- e:
		metrics.RecordQueueEnqueue()
		q.observeSize()
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError()
		return false
	default:
		metrics.RecordQueueEnqueueError()
		return false
	}
}

// Dequeue returns a channel receiving envelopes until the queue closes
// or ctx is done.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan event.Envelope {
	out := make(chan event.Envelope)
	go func() {
		defer close(out)
		for e := range q.envelopes {
			select {
			case out <- e:
				metrics.RecordQueueDequeue()
				q.observeSize()
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued envelopes.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.envelopes)
}

// Close stops the queue. Safe to call more than once.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	close(q.envelopes)
	q.closed = true
	return nil
}

func (q *InMemoryQueue) observeSize() {
	size := len(q.envelopes)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
}
