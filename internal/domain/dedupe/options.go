// Package dedupe tracks prediction request IDs for idempotency.
package dedupe

// Option applies a configuration option to the requestDeduper.
type Option func(*requestDeduper)

// WithMaxSize sets the maximum number of request IDs to keep in memory.
// maxSize > 0 enables bounded mode with LIFO eviction; maxSize <= 0
// disables eviction entirely.
func WithMaxSize(maxSize int) Option {
	return func(d *requestDeduper) {
		d.maxSize = maxSize
	}
}
