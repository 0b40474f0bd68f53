package repository

import (
	"context"
	"sync"

	"github.com/oddsmith/powerpick/internal/domain/model"
)

// defaultResultCapacity bounds how many selection results stay
// retrievable before the oldest are evicted.
const defaultResultCapacity = 1000

// ResultStore keeps recent selection results addressable by request ID
// so clients can poll for the outcome of an accepted prediction job.
type ResultStore struct {
	mu       sync.RWMutex
	byID     map[string]model.SelectionResult
	order    []string // insertion order for FIFO eviction
	capacity int
}

// ResultOption applies a configuration option to the ResultStore.
type ResultOption func(*ResultStore)

// WithResultCapacity sets how many results are retained.
func WithResultCapacity(capacity int) ResultOption {
	return func(s *ResultStore) {
		if capacity > 0 {
			s.capacity = capacity
		}
	}
}

// NewResultStore creates a bounded in-memory result store.
func NewResultStore(opts ...ResultOption) *ResultStore {
	s := &ResultStore{
		byID:     make(map[string]model.SelectionResult),
		capacity: defaultResultCapacity,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Put stores a result under its request ID, evicting the oldest entry
// when full. Re-storing an existing ID overwrites in place.
func (s *ResultStore) Put(ctx context.Context, requestID string, res model.SelectionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[requestID]; !exists {
		if len(s.order) >= s.capacity {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.byID, oldest)
		}
		s.order = append(s.order, requestID)
	}
	s.byID[requestID] = res
}

// Get returns the stored result for a request ID.
// Returns ErrResultNotFound if it was never stored or already evicted.
func (s *ResultStore) Get(ctx context.Context, requestID string) (model.SelectionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	res, ok := s.byID[requestID]
	if !ok {
		return model.SelectionResult{}, ErrResultNotFound
	}
	return res, nil
}

// Len returns the number of retained results.
func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}
