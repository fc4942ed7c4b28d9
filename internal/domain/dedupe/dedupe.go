// Package dedupe tracks submission ids for idempotency: a double-click on the
// submit button or a retried request must not score a session twice.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen submission ids to ensure at-most-once processing.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an id from the seen set, allowing a retry. Used when
	// a submission was marked seen but could not be enqueued.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map. Eviction is oldest
// first via a ring of the recorded ids; maxSize <= 0 disables eviction.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	ring    []string
	head    int
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[string]struct{})
	if d.maxSize > 0 {
		d.ring = make([]string, d.maxSize)
	}
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		if evicted := d.ring[d.head]; evicted != "" {
			if _, ok := d.seen[evicted]; ok {
				delete(d.seen, evicted)
				d.size.Add(-1)
			}
		}
		d.ring[d.head] = id
		d.head = (d.head + 1) % d.maxSize
	}

	d.seen[id] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		delete(d.seen, id)
		d.size.Add(-1)
	}
}

// Size returns the current number of recorded ids.
func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}
