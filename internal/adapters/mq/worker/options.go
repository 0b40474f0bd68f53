// Package worker defines worker contracts for asynchronous prediction
// runs and ticket recording.
package worker

import (
	"time"

	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/pkg/logger"
)

// Option applies a configuration option to the InMemoryWorker.
type Option func(*InMemoryWorker)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(w *InMemoryWorker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(logger logger.Logger) Option {
	return func(w *InMemoryWorker) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDraws sets the historical draws shared by every prediction run.
func WithDraws(draws []model.HistoricalDraw) Option {
	return func(w *InMemoryWorker) {
		w.draws = draws
	}
}

// WithJobTimeout bounds how long a single prediction run may take.
func WithJobTimeout(d time.Duration) Option {
	return func(w *InMemoryWorker) {
		if d > 0 {
			w.jobTimeout = d
		}
	}
}
