// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) initializer to build a Config with defaults.
// - All functions accept context.Context as the first parameter.
// - External errors must be wrapped via this package's error helpers.
package config

import (
	"context"
	"runtime"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// JobQueueSize bounds the in-memory prediction job queue.
	JobQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of prediction workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the request deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ResultCacheSize bounds how many selection results are retained.
	ResultCacheSize int `koanf:"result_cache_size"`

	// TicketCount is the default number of tickets per prediction.
	TicketCount int `koanf:"ticket_count"`

	// PoolSize is the default candidate pool size per prediction.
	// Zero lets the engine derive it from the ticket count.
	PoolSize int `koanf:"pool_size"`

	// MaxTicketLimit caps GET /tickets?limit.
	MaxTicketLimit int `koanf:"max_ticket_limit"`

	// DrawsFile points to the historical draws CSV. Empty means no history.
	DrawsFile string `koanf:"draws_file"`

	// Seed is the base seed for the sampling engine.
	Seed uint64 `koanf:"seed"`

	// JobTimeoutMS bounds a single prediction run in milliseconds.
	JobTimeoutMS int `koanf:"job_timeout_ms"`
}

// New creates a Config with defaults. Context is accepted first to satisfy
// the project-wide convention; it is reserved for future use and currently
// unused.
func New(_ context.Context) *Config {
	c := &Config{
		LogLevel:        "info",
		Addr:            ":9080",
		JobQueueSize:    10_000,
		WorkerCount:     runtime.NumCPU() * 2,
		DedupeSize:      50_000,
		ResultCacheSize: 1_000,
		TicketCount:     1,
		PoolSize:        0,
		MaxTicketLimit:  100,
		DrawsFile:       "",
		Seed:            42,
		JobTimeoutMS:    30_000,
	}
	return c
}
