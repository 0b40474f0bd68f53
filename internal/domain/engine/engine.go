// Package engine composes pool generation, scoring, and diversity
// selection into the ticket prediction pipeline.
package engine

import (
	"context"
	"errors"
	"time"

	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/internal/domain/pool"
	"github.com/oddsmith/powerpick/internal/domain/scoring"
	"github.com/oddsmith/powerpick/internal/domain/selection"
	"github.com/oddsmith/powerpick/pkg/logger"
	"github.com/oddsmith/powerpick/pkg/metrics"
)

// Pool sizing defaults. Callers requesting many tickets need headroom
// for the diversity step to find distinct candidates.
const (
	DefaultPoolSize   = 2000
	poolSizePerTicket = 50
	defaultNumTickets = 1
)

// Request carries one engine invocation's inputs. Vector and Draws are
// supplied fresh per call by collaborators; the engine owns no
// persisted state.
type Request struct {
	Vector     model.ProbabilityVector
	Draws      []model.HistoricalDraw
	NumTickets int
	PoolSize   int
}

// Engine runs the full pipeline: generate a deduplicated candidate
// pool, score every member, select N diverse tickets, and attach
// provenance metadata. Safe for concurrent use; randomness is scoped
// per call.
type Engine struct {
	generator *pool.Generator
	selector  *selection.Selector
	logger    logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithSeed sets the seed of the per-call random source.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.generator = pool.New(pool.WithSeed(seed))
	}
}

// WithGenerator replaces the candidate pool generator.
func WithGenerator(g *pool.Generator) Option {
	return func(e *Engine) {
		if g != nil {
			e.generator = g
		}
	}
}

// WithLogger sets a custom logger for the engine.
func WithLogger(l logger.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New constructs an engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{
		generator: pool.New(),
		selector:  selection.New(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = logger.Get().Named("engine")
	}

	return e
}

// Run executes the pipeline for one request. Boundary validation
// failures (bad vector, empty pool) surface immediately; a malformed
// candidate inside the pool is logged and skipped so it cannot abort
// the rest of the batch; pool and selection shortfalls degrade
// gracefully and are reported in the result metadata.
func (e *Engine) Run(ctx context.Context, req Request) (model.SelectionResult, error) {
	numTickets := req.NumTickets
	if numTickets < 1 {
		numTickets = defaultNumTickets
	}
	poolSize := req.PoolSize
	if poolSize < 1 {
		poolSize = DefaultPoolSize
		if sized := poolSizePerTicket * numTickets; sized > poolSize {
			poolSize = sized
		}
	}

	poolStart := time.Now()
	p, err := e.generator.Generate(ctx, req.Vector, poolSize)
	if err != nil {
		return model.SelectionResult{}, err
	}
	metrics.RecordEngineStageLatency("pool", float64(time.Since(poolStart).Milliseconds()))
	if p.Shortfall > 0 {
		metrics.RecordPoolShortfall(p.Shortfall)
		e.logger.Warn(ctx, "candidate pool shortfall",
			logger.Int("requested", poolSize),
			logger.Int("generated", len(p.Candidates)),
			logger.Int("attempts", p.Attempts),
		)
	}

	scoreStart := time.Now()
	scorer := scoring.New(req.Vector, scoring.NewHistoryView(req.Draws))
	scored := make([]model.ScoredCandidate, 0, len(p.Candidates))
	for _, c := range p.Candidates {
		breakdown, err := scorer.Score(ctx, c)
		if err != nil {
			if errors.Is(err, model.ErrInvalidCandidate) {
				// Internal invariant violation: isolate the bad
				// candidate instead of aborting the batch.
				metrics.RecordInvalidCandidate()
				e.logger.Error(ctx, "skipping malformed candidate",
					logger.String("candidate", c.Key()),
					logger.Error(err),
				)
				continue
			}
			return model.SelectionResult{}, err
		}
		scored = append(scored, model.ScoredCandidate{Candidate: c, Scores: breakdown})
	}
	metrics.RecordEngineStageLatency("score", float64(time.Since(scoreStart).Milliseconds()))

	selectStart := time.Now()
	outcome, err := e.selector.Select(ctx, scored, numTickets)
	if err != nil {
		return model.SelectionResult{}, err
	}
	metrics.RecordEngineStageLatency("select", float64(time.Since(selectStart).Milliseconds()))
	if outcome.Shortfall > 0 {
		metrics.RecordSelectionShortfall(outcome.Shortfall)
	}

	return model.SelectionResult{
		Tickets:             outcome.Tickets,
		CandidatesEvaluated: len(scored),
		DatasetFingerprint:  model.Fingerprint(req.Draws),
		GeneratedAt:         time.Now().UTC(),
		Shortfall:           outcome.Shortfall,
	}, nil
}

// BestTicket runs the pipeline for a single ticket: the highest-total
// pool member.
func (e *Engine) BestTicket(ctx context.Context, req Request) (model.ScoredCandidate, error) {
	req.NumTickets = 1
	res, err := e.Run(ctx, req)
	if err != nil {
		return model.ScoredCandidate{}, err
	}
	return res.Tickets[0], nil
}
