// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sync"
	"time"

	jobqueue "github.com/oddsmith/powerpick/internal/adapters/mq/queue"
	workerpool "github.com/oddsmith/powerpick/internal/adapters/mq/worker"
	repository "github.com/oddsmith/powerpick/internal/adapters/repository"
	"github.com/oddsmith/powerpick/internal/domain/dedupe"
	"github.com/oddsmith/powerpick/internal/domain/engine"
	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/internal/domain/pool"
	"github.com/oddsmith/powerpick/pkg/logger"
	"github.com/oddsmith/powerpick/pkg/metrics"
)

// Service implements the API dependencies for the prediction system.
type Service struct {
	mu sync.RWMutex

	// Core components
	tickets    repository.Store
	results    *repository.ResultStore
	deduper    dedupe.Deduper
	jobQueue   jobqueue.Queue
	engine     *engine.Engine
	workerPool *workerpool.Pool

	// Configuration
	workerCount     int
	queueSize       int
	dedupeSize      int
	resultCacheSize int
	ticketCount     int
	poolSize        int
	seed            uint64
	jobTimeout      time.Duration
	draws           []model.HistoricalDraw

	// State
	started bool
	stopCh  chan struct{}

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the job queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithResultCacheSize sets the number of retained selection results.
func WithResultCacheSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.resultCacheSize = size
		}
	}
}

// WithTicketCount sets the default number of tickets per prediction.
func WithTicketCount(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.ticketCount = n
		}
	}
}

// WithPoolSize sets the default candidate pool size per prediction.
func WithPoolSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.poolSize = size
		}
	}
}

// WithSeed sets the base seed for the sampling engine.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithJobTimeout bounds how long a single prediction run may take.
func WithJobTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.jobTimeout = d
		}
	}
}

// WithDraws sets the historical draws shared by every prediction run.
func WithDraws(draws []model.HistoricalDraw) Option {
	return func(s *Service) {
		s.draws = draws
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU() * 2, // Default to 2x CPU cores
		queueSize:       10000,                // Default queue size
		dedupeSize:      50000,                // Default dedupe cache size
		resultCacheSize: 1000,                 // Default result cache size
		ticketCount:     1,
		seed:            pool.DefaultSeed,
		jobTimeout:      30 * time.Second,
		stopCh:          make(chan struct{}),
		logger:          nil, // Will be replaced when service starts
	}

	// Apply all options
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	// Initialize logger if not already set
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting prediction service...")

	// Initialize components
	s.tickets = repository.NewTreapStore(ctx)
	s.logger.Info(ctx, "using treap store")
	s.results = repository.NewResultStore(
		repository.WithResultCapacity(s.resultCacheSize),
	)
	s.deduper = dedupe.NewRequestDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.jobQueue = jobqueue.NewInMemoryQueue(
		jobqueue.WithCapacity(s.queueSize),
		jobqueue.WithBufferSize(s.queueSize),
	)
	s.engine = engine.New(
		engine.WithSeed(s.seed),
	)

	// Create and start worker pool
	s.workerPool = workerpool.NewPool(s.workerCount, s.jobQueue, s.engine, s.results, s.tickets,
		workerpool.WithDraws(s.draws),
		workerpool.WithJobTimeout(s.jobTimeout),
	)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "prediction service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("historicalDraws", len(s.draws)),
	)

	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping prediction service...")

	// Close the queue first so workers drain what is left and exit.
	if q, ok := s.jobQueue.(*jobqueue.InMemoryQueue); ok {
		_ = q.Close()
	}

	// Stop worker pool
	if s.workerPool != nil {
		s.workerPool.Stop()
	}

	// Close ticket store
	if s.tickets != nil {
		if closer, ok := s.tickets.(interface{ Close() error }); ok {
			_ = closer.Close()
		}
	}

	// Signal cleanup loop to stop
	select {
	case <-s.stopCh:
		// Channel already closed
	default:
		close(s.stopCh)
	}

	s.started = false
	s.logger.Info(context.Background(), "prediction service stopped")
}

// SeenAndRecord atomically checks if a request id was seen and records it if not.
// Returns true if the request was already seen, false if it was newly recorded.
// This is the ONLY method for deduplication - thread-safe and atomic.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordPredictionDuplicate()
	}
	return seen
}

// Unrecord removes a request ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Enqueue submits a prediction job for asynchronous processing.
// Zero NumTickets and PoolSize fall back to the configured defaults.
func (s *Service) Enqueue(ctx context.Context, job model.PredictionJob) bool {
	if job.NumTickets <= 0 {
		job.NumTickets = s.ticketCount
	}
	if job.PoolSize <= 0 {
		job.PoolSize = s.poolSize
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	s.logger.Debug(ctx, "enqueueing prediction job",
		logger.String("requestID", job.RequestID),
		logger.Int("numTickets", job.NumTickets),
		logger.Int("poolSize", job.PoolSize),
	)

	success := s.jobQueue.Enqueue(ctx, job)
	if success {
		metrics.RecordPredictionEnqueued()
		// Update queue size metric
		metrics.UpdateQueueSize(s.jobQueue.Len(ctx))
	}
	return success
}

// GetResult returns the stored selection result for a request id.
func (s *Service) GetResult(ctx context.Context, requestID string) (model.SelectionResult, error) {
	return s.results.Get(ctx, requestID)
}

// TopN returns the top N ranked tickets.
func (s *Service) TopN(ctx context.Context, n int) ([]repository.Entry, error) {
	return s.tickets.TopN(ctx, n)
}

// Rank returns the rank and score for a given ticket key.
func (s *Service) Rank(ctx context.Context, key string) (repository.Entry, error) {
	return s.tickets.Rank(ctx, key)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"drawCount":   len(s.draws),
	}

	if s.started {
		queueLen := s.jobQueue.Len(ctx)
		totalTickets := s.tickets.Count(ctx)

		stats["queueLength"] = queueLen
		stats["totalTickets"] = totalTickets
		stats["resultsCached"] = s.results.Len()

		// Update metrics
		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateStoreTicketsTotal(totalTickets)
		metrics.UpdateWorkerActiveCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}
