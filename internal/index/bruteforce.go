package index

import (
	"container/heap"
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/vecmath"
	"github.com/neilthomass/kowari/internal/vector"
)

// BruteForce is the reference linear-scan index: search computes cosine
// similarity against every stored entry. It is the oracle the approximate
// indexes (LSH, HNSW) are tested against.
type BruteForce struct {
	built   atomic.Bool
	dim     int
	entries []vector.Vector
}

// NewBruteForce constructs an empty brute-force index.
func NewBruteForce() *BruteForce {
	return &BruteForce{}
}

// Build implements Index.
func (b *BruteForce) Build(_ context.Context, entries []vector.Vector) error {
	if !b.built.CompareAndSwap(false, true) {
		return errs.ErrAlreadyBuilt
	}

	if len(entries) == 0 {
		return nil
	}

	dim := len(entries[0].Data)
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if len(e.Data) != dim {
			b.reset()
			return fmt.Errorf("%w: expected %d, got %d", errs.ErrDimensionMismatch, dim, len(e.Data))
		}
		if _, dup := seen[e.ID]; dup {
			b.reset()
			return fmt.Errorf("%w: %s", errs.ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}

	b.dim = dim
	b.entries = append([]vector.Vector(nil), entries...)
	return nil
}

// reset discards partial build state and returns the index to its
// pre-Build condition, but leaves it marked as "attempted" so a caller
// that ignores the error still can't silently Build again into the same
// object; a fresh index must be constructed instead.
func (b *BruteForce) reset() {
	b.dim = 0
	b.entries = nil
}

// Search implements Index.
func (b *BruteForce) Search(_ context.Context, query []float32, k int) ([]vector.Scored, error) {
	if !b.built.Load() {
		return nil, errs.ErrNotBuilt
	}
	if k == 0 {
		return nil, fmt.Errorf("%w: k must be > 0", errs.ErrInvalidArgument)
	}
	if len(b.entries) == 0 {
		return nil, nil
	}
	if err := vector.CheckDim(b.dim, query); err != nil {
		return nil, err
	}

	scored := make([]vector.Scored, len(b.entries))
	for i, e := range b.entries {
		sim, err := vecmath.Cosine(query, e.Data)
		if err != nil {
			return nil, err
		}
		scored[i] = vector.Scored{ID: e.ID, Score: sim}
	}

	if k > len(scored) {
		k = len(scored)
	}
	return topK(scored, k), nil
}

// topK returns the k highest-scored entries, descending by score and
// ascending by id on ties, via a bounded min-heap so the cost stays
// O(N log k) instead of a full O(N log N) sort when k is small.
func topK(scored []vector.Scored, k int) []vector.Scored {
	h := &scoredMinHeap{}
	for _, s := range scored {
		if h.Len() < k {
			heap.Push(h, s)
			continue
		}
		if less(h.items[0], s) {
			heap.Pop(h)
			heap.Push(h, s)
		}
	}

	result := append([]vector.Scored(nil), h.items...)
	sort.Slice(result, func(i, j int) bool { return less(result[j], result[i]) })
	return result
}

// less reports whether a ranks strictly below b (lower score first, ties
// broken by descending id so that a min-heap keeps the worst-ranked
// element at the root).
func less(a, b vector.Scored) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	return a.ID > b.ID
}

type scoredMinHeap struct {
	items []vector.Scored
}

func (h *scoredMinHeap) Len() int            { return len(h.items) }
func (h *scoredMinHeap) Less(i, j int) bool  { return less(h.items[i], h.items[j]) }
func (h *scoredMinHeap) Swap(i, j int)       { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *scoredMinHeap) Push(x interface{}) { h.items = append(h.items, x.(vector.Scored)) }
func (h *scoredMinHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
