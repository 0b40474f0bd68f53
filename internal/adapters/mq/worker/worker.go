// Package worker defines worker contracts for asynchronous prediction
// runs and ticket recording.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/oddsmith/powerpick/internal/domain/engine"
	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/pkg/logger"
	"github.com/oddsmith/powerpick/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 4 // multiplier for runtime.NumCPU()
	defaultJobTimeout       = 30 * time.Second
	metricsUpdateInterval   = 5 * time.Second
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
// Using the model.PredictionJob type for consistency.
type Job = model.PredictionJob

// Runner produces a selection result for one prediction request.
type Runner interface {
	Run(ctx context.Context, req engine.Request) (model.SelectionResult, error)
}

// ResultSink stores completed selection results for later retrieval.
type ResultSink interface {
	Put(ctx context.Context, requestID string, res model.SelectionResult)
}

// TicketRecorder keeps the best observed score per ticket.
type TicketRecorder interface {
	RecordTicket(ctx context.Context, t model.ScoredCandidate, requestID string) (bool, error)
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes prediction jobs and records their outcomes.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	// It will process any remaining jobs before stopping.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for processing prediction jobs.
type InMemoryWorker struct {
	queue    Queue
	runner   Runner
	results  ResultSink
	recorder TicketRecorder
	name     string

	// History shared by every run; loaded once at startup.
	draws      []model.HistoricalDraw
	jobTimeout time.Duration

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, runner Runner, results ResultSink, recorder TicketRecorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:      queue,
		runner:     runner,
		results:    results,
		recorder:   recorder,
		name:       "worker", // default name
		jobTimeout: defaultJobTimeout,
		shutdown:   make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger.Get().Named("worker"), // will be updated by options
	}

	// Apply all options
	for _, opt := range opts {
		opt(w)
	}

	// Set up logger with worker name if not already set
	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer func() {
		close(w.done)
	}()

	jobChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobChan:
			if !ok {
				// Channel closed, worker should stop
				return
			}

			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	// Signal shutdown
	close(w.shutdown)

	// Wait for worker to finish or context to timeout
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles a single prediction job end to end: run the
// engine, publish the result, and fold every ticket into the ranked
// store.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error {
	// Track overall processing latency
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	runCtx, cancel := context.WithTimeout(ctx, w.jobTimeout)
	defer cancel()

	res, err := w.runner.Run(runCtx, engine.Request{
		Vector:     job.Vector,
		Draws:      w.draws,
		NumTickets: job.NumTickets,
		PoolSize:   job.PoolSize,
	})
	if err != nil {
		metrics.RecordPredictionFailed()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "engine_error")
		metrics.RecordErrorByType("engine_error", "high")
		w.logger.Error(ctx, "prediction run failed",
			logger.String("requestID", job.RequestID),
			logger.Error(err),
		)
		return fmt.Errorf("failed to run prediction %s: %w", job.RequestID, err)
	}

	res.RequestID = job.RequestID
	w.results.Put(ctx, job.RequestID, res)

	var recordErrs []error
	for _, t := range res.Tickets {
		updated, err := w.recorder.RecordTicket(ctx, t, job.RequestID)
		if err != nil {
			metrics.RecordWorkerError()
			metrics.RecordErrorByComponent("worker", "store_error")
			metrics.RecordErrorByType("store_error", "high")
			w.logger.Error(ctx, "ticket record failed",
				logger.String("requestID", job.RequestID),
				logger.String("ticket", t.Candidate.Key()),
				logger.Error(err),
			)
			recordErrs = append(recordErrs, err)
			continue
		}
		if updated {
			metrics.RecordTicketRecorded()
		}
	}
	if len(recordErrs) > 0 {
		return fmt.Errorf("ticket recording failed: %w", errors.Join(recordErrs...))
	}

	metrics.RecordPredictionCompleted()
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	runner   Runner
	results  ResultSink
	recorder TicketRecorder

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Metrics tracking
	processedCount    int64
	lastProcessedTime time.Time

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, runner Runner, results ResultSink, recorder TicketRecorder, opts ...Option) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:           make([]*InMemoryWorker, workerCount),
		queue:             queue,
		runner:            runner,
		results:           results,
		recorder:          recorder,
		shutdown:          make(chan struct{}),
		done:              make(chan struct{}),
		lastProcessedTime: time.Now(),
		logger:            logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		workerOpts := append([]Option{WithName("worker-" + strconv.Itoa(i))}, opts...)
		pool.workers[i] = NewInMemoryWorker(
			queue,
			runner,
			results,
			recorder,
			workerOpts...,
		)
	}

	// Initialize worker metrics
	metrics.UpdateWorkerActiveCount(workerCount)
	metrics.UpdateWorkerIdleCount(0)
	metrics.UpdateWorkerMessagesPerSecond(0.0)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}

	// Start metrics updater
	go p.startMetricsUpdater(ctx)
}

// startMetricsUpdater starts a background goroutine that updates worker metrics.
func (p *Pool) startMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(metricsUpdateInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			return
		case <-ticker.C:
			p.updateMetrics()
		}
	}
}

// updateMetrics updates worker-related metrics.
func (p *Pool) updateMetrics() {
	// Calculate messages per second
	now := time.Now()
	timeDiff := now.Sub(p.lastProcessedTime).Seconds()
	if timeDiff > 0 {
		messagesPerSecond := float64(p.processedCount) / timeDiff
		metrics.UpdateWorkerMessagesPerSecond(messagesPerSecond)
	}

	// Reset counters
	p.processedCount = 0
	p.lastProcessedTime = now
}

// Stop gracefully stops all workers.
func (p *Pool) Stop() {
	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish
	for _, worker := range p.workers {
		select {
		case <-worker.done:
			// Worker finished
		case <-time.After(workerShutdownTimeout):
			// Worker timeout
		}
	}
}

// Shutdown gracefully shuts down the entire worker pool.
func (p *Pool) Shutdown(ctx context.Context) error {
	// First close the queue to stop new jobs
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	// Signal shutdown to all workers
	close(p.shutdown)

	// Wait for all workers to finish or context to timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	return nil
}
