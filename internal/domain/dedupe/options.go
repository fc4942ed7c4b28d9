// Package dedupe tracks submission ids for idempotency.
package dedupe

// Option applies a configuration option to the in-memory deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize bounds how many ids are kept. Beyond the bound the oldest
// recorded id is evicted first; maxSize <= 0 keeps everything.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
