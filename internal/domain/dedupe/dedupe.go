// Package dedupe tracks prediction request IDs for idempotency.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// defaultMaxSize bounds the number of request IDs kept in memory.
const defaultMaxSize = 50000

// Deduper records seen request IDs to ensure at-most-once job
// processing.
type Deduper interface {
	// SeenAndRecord atomically checks if id was seen and records it if
	// not. Returns true if id was already seen, false if it was newly
	// recorded.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen list, allowing the request
	// to be retried. Use it when a request was marked seen but its job
	// could not be enqueued (e.g. queue backpressure).
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// node is one entry in the eviction list.
type node struct {
	id   string
	next *node
}

func (n *node) reset() {
	n.id = ""
	n.next = nil
}

// requestDeduper implements Deduper in memory. In bounded mode
// (maxSize > 0) it keeps a linked list with LIFO eviction and a
// sync.Pool of nodes; in unbounded mode it is a plain map.
type requestDeduper struct {
	mu       sync.RWMutex
	seen     map[string]*node // id -> node in bounded mode, nil in unbounded
	head     *node            // most recently recorded
	maxSize  int
	size     atomic.Int64
	nodePool sync.Pool
}

// NewRequestDeduper creates an in-memory deduper with configuration
// options.
func NewRequestDeduper(opts ...Option) Deduper {
	d := &requestDeduper{
		maxSize: defaultMaxSize,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]*node)
	if d.maxSize > 0 {
		d.nodePool = sync.Pool{
			New: func() interface{} {
				return &node{}
			},
		}
	}

	return d
}

// SeenAndRecord atomically checks if id was seen and records it if not.
func (d *requestDeduper) SeenAndRecord(ctx context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[id]; exists {
		return true
	}

	if d.maxSize > 0 {
		if len(d.seen) >= d.maxSize {
			d.evictOldest()
		}

		n := d.nodePool.Get().(*node)
		n.id = id
		n.next = d.head
		d.head = n
		d.seen[id] = n
	} else {
		d.seen[id] = nil
	}
	d.size.Add(1)
	return false
}

// Unrecord removes an ID from the seen list.
func (d *requestDeduper) Unrecord(ctx context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	n, exists := d.seen[id]
	if !exists {
		return
	}
	delete(d.seen, id)
	d.size.Add(-1)

	if d.maxSize <= 0 {
		return
	}

	// Unlink from the eviction list and recycle the node.
	if d.head == n {
		d.head = n.next
	} else {
		current := d.head
		for current != nil && current.next != n {
			current = current.next
		}
		if current != nil {
			current.next = n.next
		}
	}
	n.reset()
	d.nodePool.Put(n)
}

// evictOldest removes the least recently recorded entry (list tail).
// Must be called with d.mu held.
func (d *requestDeduper) evictOldest() {
	if d.head == nil {
		return
	}

	if d.head.next == nil {
		delete(d.seen, d.head.id)
		d.head.reset()
		d.nodePool.Put(d.head)
		d.head = nil
		d.size.Add(-1)
		return
	}

	var prev *node
	current := d.head
	for current.next != nil {
		prev = current
		current = current.next
	}
	prev.next = nil
	delete(d.seen, current.id)
	current.reset()
	d.nodePool.Put(current)
	d.size.Add(-1)
}

// Size returns the current number of recorded request IDs.
func (d *requestDeduper) Size() int64 {
	return d.size.Load()
}
