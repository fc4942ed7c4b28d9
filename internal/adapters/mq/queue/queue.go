// Package queue defines the contract for enqueuing and consuming accepted
// submissions on their way to the standings.
//
// Implementations may use channels or more advanced structures; the default
// is an in-memory bounded queue.
package queue

import (
	"context"
	"sync"

	"github.com/rankdesk/rankdesk/internal/domain/model"
	"github.com/rankdesk/rankdesk/pkg/metrics"
)

// Default queue configuration constants.
const (
	defaultCapacity = 10000
)

// Submission is the payload type flowing through the queue.
type Submission = model.Submission

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a submission to the queue.
	// Returns false when the queue is full or closed; the caller treats
	// that as backpressure.
	Enqueue(ctx context.Context, sub Submission) bool

	// Dequeue returns a channel receiving submissions as they arrive.
	// The channel closes when the queue is closed.
	Dequeue(ctx context.Context) <-chan Submission

	// Len returns the current number of queued submissions.
	Len(ctx context.Context) int

	// Close stops the queue; no further enqueues are accepted.
	Close() error
}

// InMemoryQueue implements Queue over a buffered channel.
type InMemoryQueue struct {
	subs     chan Submission
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates an in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.subs = make(chan Submission, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)

	return q
}

// Enqueue adds a submission to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, sub Submission) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordQueueEnqueueError("closed")
		return false
	}

	select {
	case q.subs <- sub:
		metrics.RecordQueueEnqueue()
		metrics.UpdateQueueSize(len(q.subs))
		return true
	case <-ctx.Done():
		metrics.RecordQueueEnqueueError("context_cancelled")
		return false
	default:
		metrics.RecordQueueEnqueueError("queue_full")
		return false
	}
}

// Dequeue returns a channel receiving submissions as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan Submission {
	out := make(chan Submission)
	go func() {
		defer close(out)
		for sub := range q.subs {
			select {
			case out <- sub:
				metrics.RecordQueueDequeue()
				metrics.UpdateQueueSize(len(q.subs))
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued submissions.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.subs)
}

// Close stops the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.subs)
	q.closed = true
	return nil
}
