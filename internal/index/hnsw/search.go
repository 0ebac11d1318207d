package hnsw

import (
	"container/heap"
	"context"
	"fmt"
	"sort"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/vecmath"
	"github.com/neilthomass/kowari/internal/vector"
)

// item is a scored graph node used by both heaps of the candidate search.
type item struct {
	id    string
	score float32
}

// better reports whether a outranks b: higher similarity first, ties
// broken by ascending id so heap order (and therefore search results) is
// reproducible for a fixed input order and seed.
func better(a, b item) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	return a.id < b.id
}

// itemHeap backs both the "nearest-first" exploration frontier and the
// "farthest-first" bounded result set; worstFirst selects which end sits
// at the root.
type itemHeap struct {
	items      []item
	worstFirst bool
}

func (h *itemHeap) Len() int { return len(h.items) }
func (h *itemHeap) Less(i, j int) bool {
	if h.worstFirst {
		return better(h.items[j], h.items[i])
	}
	return better(h.items[i], h.items[j])
}
func (h *itemHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *itemHeap) Push(x interface{}) { h.items = append(h.items, x.(item)) }
func (h *itemHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	it := old[n-1]
	h.items = old[:n-1]
	return it
}

// searchLayer runs the ef-bounded candidate search of spec §4.5 step 3a at
// a single layer, starting from entry. It maintains a nearest-first
// exploration frontier and a farthest-first bounded result set, stopping
// once the frontier's best remaining candidate is worse than the worst
// entry currently kept in the result.
func (g *Graph) searchLayer(query []float32, entry *node, ef, layer int) []item {
	visited := map[string]bool{entry.id: true}

	entrySim, _ := vecmath.Cosine(query, entry.vec)
	entryItem := item{id: entry.id, score: entrySim}

	frontier := &itemHeap{worstFirst: false}
	heap.Init(frontier)
	heap.Push(frontier, entryItem)

	result := &itemHeap{worstFirst: true}
	heap.Init(result)
	heap.Push(result, entryItem)

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(item)

		if result.Len() >= ef && better(result.items[0], current) {
			break
		}

		for _, nid := range neighborsAt(g.nodes[current.id], layer) {
			if visited[nid] {
				continue
			}
			visited[nid] = true

			n := g.nodes[nid]
			sim, _ := vecmath.Cosine(query, n.vec)
			cand := item{id: nid, score: sim}

			if result.Len() < ef || better(cand, result.items[0]) {
				heap.Push(frontier, cand)
				heap.Push(result, cand)
				if result.Len() > ef {
					heap.Pop(result)
				}
			}
		}
	}

	return result.items
}

// sortedByRank sorts items best-first (descending score, ascending id on
// ties), matching the tie-break rule of spec §3.
func sortedByRank(items []item) []item {
	out := make([]item, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return better(out[i], out[j]) })
	return out
}

// Search implements index.Index.
func (g *Graph) Search(_ context.Context, query []float32, k int) ([]vector.Scored, error) {
	if !g.built.Load() {
		return nil, errs.ErrNotBuilt
	}
	if k == 0 {
		return nil, fmt.Errorf("%w: k must be > 0", errs.ErrInvalidArgument)
	}
	if g.entryPoint == "" {
		return nil, nil
	}
	if err := vector.CheckDim(g.dim, query); err != nil {
		return nil, err
	}

	// Default ef_search is max(k, 32) per spec §4.5 unless the caller
	// configured an explicit EfSearch.
	ef := g.cfg.EfSearch
	if ef <= 0 {
		ef = 32
	}
	if ef < k {
		ef = k
	}

	return g.search(query, k, ef), nil
}

// SearchWithEf runs a search with an explicit ef, bypassing the
// configured EfSearch default. Useful for recall experiments (spec §8
// scenario S4 requires ef_search >= M for the self-recall guarantee).
func (g *Graph) SearchWithEf(_ context.Context, query []float32, k, ef int) ([]vector.Scored, error) {
	if !g.built.Load() {
		return nil, errs.ErrNotBuilt
	}
	if k == 0 {
		return nil, fmt.Errorf("%w: k must be > 0", errs.ErrInvalidArgument)
	}
	if g.entryPoint == "" {
		return nil, nil
	}
	if err := vector.CheckDim(g.dim, query); err != nil {
		return nil, err
	}
	if ef < k {
		ef = k
	}
	return g.search(query, k, ef), nil
}

func (g *Graph) search(query []float32, k, ef int) []vector.Scored {
	ep := g.nodes[g.entryPoint]
	for lc := g.topLevel; lc > 0; lc-- {
		ep = g.greedyClosest(query, ep, lc)
	}

	candidates := sortedByRank(g.searchLayer(query, ep, ef, 0))
	if k > len(candidates) {
		k = len(candidates)
	}

	out := make([]vector.Scored, k)
	for i := 0; i < k; i++ {
		out[i] = vector.Scored{ID: candidates[i].id, Score: candidates[i].score}
	}
	return out
}
