package repository

import (
	"context"
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oddsmith/powerpick/internal/domain/model"
	"github.com/oddsmith/powerpick/pkg/metrics"
)

// Treap-based, in-memory Store implementation.
//
// Ordering: score DESC, then ticket key ASC (deterministic). The BST
// comparator's "less" means ranks earlier, so in-order traversal
// produces the ticket ranking from best to worst.

// scoreScale converts totals (bounded to [0,1]) to fixed point so
// equality and ordering are exact.
const scoreScale = 1_000_000_000_000 // 12 decimal places

type scoreFP int64

func toFixedPoint(x float64) scoreFP {
	if math.IsNaN(x) {
		return 0
	}
	if math.IsInf(x, 1) {
		return scoreFP(math.MaxInt64)
	}
	if math.IsInf(x, -1) {
		return scoreFP(math.MinInt64)
	}
	return scoreFP(math.Round(x * scoreScale))
}

func toFloat(x scoreFP) float64 {
	return float64(x) / scoreScale
}

// record stores the fixed-point score plus the ticket details behind
// a key's best observation.
type record struct {
	score     scoreFP
	candidate model.Candidate
	breakdown model.ScoreBreakdown
	requestID string
}

// Snapshot is an immutable view of the ticket ranking state.
type Snapshot struct {
	// Rank and score in O(1) for reads
	RankByKey  map[string]int
	ScoreByKey map[string]float64

	// Fast Top-K cache up to M items
	TopCache []Entry // sorted descending
}

// treap node
type node struct {
	key   string
	score scoreFP
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

// less returns true if (aScore, aKey) should rank earlier than
// (bScore, bKey): higher score first, key ascending on ties.
func less(aScore scoreFP, aKey string, bScore scoreFP, bKey string) bool {
	if aScore != bScore {
		return aScore > bScore
	}
	return aKey < bKey
}

func rotateRight(y *node) *node {
	x := y.left
	t2 := x.right
	x.right = y
	y.left = t2
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	t2 := y.left
	y.left = x
	x.right = t2
	fix(x)
	fix(y)
	return y
}

// scoreToPriority gives higher scores higher treap priorities so the
// hot part of the ranking stays near the root.
func scoreToPriority(score scoreFP) uint64 {
	const offset = uint64(1) << 63 // shift negatives into unsigned range
	return uint64(score) + offset
}

func insert(n *node, key string, score scoreFP) *node {
	if n == nil {
		return &node{key: key, score: score, prio: scoreToPriority(score), size: 1}
	}
	if less(score, key, n.score, n.key) {
		n.left = insert(n.left, key, score)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = insert(n.right, key, score)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func deleteNode(n *node, key string, score scoreFP) *node {
	if n == nil {
		return nil
	}
	if score == n.score && key == n.key {
		// Merge children by rotating the higher priority up to a leaf.
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = deleteNode(n.right, key, score)
		} else {
			n = rotateLeft(n)
			n.left = deleteNode(n.left, key, score)
		}
	} else if less(score, key, n.score, n.key) {
		n.left = deleteNode(n.left, key, score)
	} else {
		n.right = deleteNode(n.right, key, score)
	}
	fix(n)
	return n
}

// collectTopN appends up to limit entries in rank order (highest score
// first), relying on the BST ordering for deterministic tie-breaking.
func collectTopN(n *node, limit int, records map[string]record, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}

	collectTopN(n.left, limit, records, out)

	if len(*out) < limit {
		if rec, exists := records[n.key]; exists {
			*out = append(*out, entryFromRecord(n.key, rec))
		}
	}

	if len(*out) < limit {
		collectTopN(n.right, limit, records, out)
	}
}

func entryFromRecord(key string, rec record) Entry {
	return Entry{
		Key:        key,
		WhiteBalls: rec.candidate.WhiteBalls,
		Powerball:  rec.candidate.Powerball,
		Score:      toFloat(rec.score),
		Breakdown:  rec.breakdown,
		RequestID:  rec.requestID,
	}
}

// TreapStore is the in-memory ranked ticket store.
type TreapStore struct {
	mu               sync.RWMutex
	root             *node
	byKey            map[string]record
	snapshotInterval time.Duration
	topCacheSize     int

	// snapshot is an atomic pointer to the latest published Snapshot
	snapshot atomic.Pointer[Snapshot]

	// Periodic snapshot management
	wg       sync.WaitGroup
	stopChan chan struct{}
}

// Default snapshot configuration constants.
const (
	defaultSnapshotInterval = 1 * time.Second
	defaultTopCacheSize     = 500
	metricsTickerInterval   = 5 * time.Second
)

// NewTreapStore constructs a treap store with configuration options.
func NewTreapStore(ctx context.Context, opts ...Option) *TreapStore {
	s := &TreapStore{
		snapshotInterval: defaultSnapshotInterval,
		topCacheSize:     defaultTopCacheSize,
		byKey:            make(map[string]record),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.stopChan = make(chan struct{})
	s.startPeriodicSnapshots(ctx)
	s.startMetricsUpdater(ctx)

	return s
}

// startPeriodicSnapshots publishes snapshots at the configured interval.
func (s *TreapStore) startPeriodicSnapshots(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.snapshotInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.publishSnapshot()
			}
		}
	}()
}

// publishSnapshot rebuilds and publishes a new snapshot.
func (s *TreapStore) publishSnapshot() {
	start := time.Now()
	s.mu.RLock()
	s.publishSnapshotInternal()
	s.mu.RUnlock()

	ms := float64(time.Since(start).Milliseconds())
	metrics.RecordStoreSnapshotRebuildDuration(ms)
	metrics.UpdateStoreSnapshotLastDurationMs(ms)
	metrics.UpdateStoreSnapshotLastUnix(float64(time.Now().Unix()))
	metrics.IncrementStoreSnapshotCount()
}

// Close gracefully shuts down the background goroutines.
func (s *TreapStore) Close() error {
	select {
	case <-s.stopChan:
		// Channel already closed
	default:
		close(s.stopChan)
	}
	s.wg.Wait()
	return nil
}

// RecordTicket implements Store.RecordTicket with O(log n) expected
// time. Only an improved total replaces an existing ticket entry.
func (s *TreapStore) RecordTicket(ctx context.Context, t model.ScoredCandidate, requestID string) (bool, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreUpdateLatency(float64(latency))
	}()

	key := t.Key()
	ns := toFixedPoint(t.Scores.Total)
	isNewTicket := false

	s.mu.Lock()
	if old, ok := s.byKey[key]; ok {
		if ns <= old.score { // not an improvement
			s.mu.Unlock()
			return false, nil
		}
		s.root = deleteNode(s.root, key, old.score)
	} else {
		isNewTicket = true
	}
	s.byKey[key] = record{score: ns, candidate: t.Candidate, breakdown: t.Scores, requestID: requestID}
	s.root = insert(s.root, key, ns)
	s.mu.Unlock()

	if isNewTicket {
		metrics.UpdateStoreTicketsTotal(s.Count(ctx))
	}

	return true, nil
}

// Rank returns the current rank entry for a ticket key.
func (s *TreapStore) Rank(ctx context.Context, key string) (Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreQueryLatency(float64(latency))
	}()

	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.byKey[key]; !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return Entry{}, ErrTicketNotFound
	}

	allEntries := make([]Entry, 0, len(s.byKey))
	collectAll(s.root, s.byKey, &allEntries)
	sortEntries(allEntries)
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		if entry.Key == key {
			return entry, nil
		}
	}

	return Entry{}, ErrTicketNotFound
}

// TopN returns the top N entries ordered by score desc.
func (s *TreapStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordStoreQueryLatency(float64(latency))
	}()

	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, n)
	collectTopN(s.root, n, s.byKey, &out)
	assignRanksWithTies(out)
	return out, nil
}

// Count returns the total number of distinct tickets.
func (s *TreapStore) Count(ctx context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// publishSnapshotInternal rebuilds the snapshot (assumes lock held).
func (s *TreapStore) publishSnapshotInternal() {
	topCache := make([]Entry, 0, s.topCacheSize)
	collectTopN(s.root, s.topCacheSize, s.byKey, &topCache)

	rankByKey := make(map[string]int, len(s.byKey))
	scoreByKey := make(map[string]float64, len(s.byKey))

	allEntries := make([]Entry, 0, len(s.byKey))
	collectAll(s.root, s.byKey, &allEntries)
	assignRanksWithTies(allEntries)

	for _, entry := range allEntries {
		rankByKey[entry.Key] = entry.Rank
		scoreByKey[entry.Key] = entry.Score
	}

	for i := range topCache {
		if rank, exists := rankByKey[topCache[i].Key]; exists {
			topCache[i].Rank = rank
		}
	}

	s.snapshot.Store(&Snapshot{
		RankByKey:  rankByKey,
		ScoreByKey: scoreByKey,
		TopCache:   topCache,
	})
}

// startMetricsUpdater updates store metrics in the background.
func (s *TreapStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(metricsTickerInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.mu.RLock()
				count := len(s.byKey)
				s.mu.RUnlock()
				metrics.UpdateStoreTicketsTotal(count)
			}
		}
	}()
}

// collectAll appends all entries in rank order (highest scores first).
func collectAll(n *node, byKey map[string]record, out *[]Entry) {
	if n == nil {
		return
	}
	collectAll(n.left, byKey, out)
	if rec, ok := byKey[n.key]; ok {
		*out = append(*out, entryFromRecord(n.key, rec))
	}
	collectAll(n.right, byKey, out)
}

// sortEntries sorts by score descending, key ascending, matching the
// treap's comparator.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].Key < entries[j].Key
	})
}

// assignRanksWithTies gives tickets with equal scores equal ranks;
// the next distinct score takes the next consecutive rank.
func assignRanksWithTies(entries []Entry) {
	if len(entries) == 0 {
		return
	}

	currentRank := 1
	for i := 0; i < len(entries); i++ {
		entries[i].Rank = currentRank

		sameScoreCount := 1
		for j := i + 1; j < len(entries) && entries[j].Score == entries[i].Score; j++ {
			entries[j].Rank = currentRank
			sameScoreCount++
		}

		currentRank++
		i += sameScoreCount - 1
	}
}
