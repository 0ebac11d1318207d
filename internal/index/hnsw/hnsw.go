// Package hnsw implements a Hierarchical Navigable Small World graph index
// for approximate cosine nearest-neighbor search.
//
// The construction is staged exactly as specified: greedy descent from the
// entry point down to the target node's level, an ef_construction-bounded
// candidate search at each layer from that level down to 0, a
// diversity-preserving neighbor-selection heuristic (not a naive
// closest-M), and back-edge pruning when a neighbor's degree cap is
// exceeded.
package hnsw

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"

	"github.com/chewxy/math32"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/vecmath"
	"github.com/neilthomass/kowari/internal/vector"
)

// Defaults per spec §4.5.
const (
	DefaultM              = 16
	DefaultEfConstruction = 32
)

// Config configures an HNSW graph.
type Config struct {
	// M is the target out-degree on upper layers. Default 16.
	M int `yaml:"m"`
	// MMax0 is the out-degree cap on layer 0. Default 2*M.
	MMax0 int `yaml:"m_max0"`
	// EfConstruction is the candidate-list width during Build. Default 32.
	EfConstruction int `yaml:"ef_construction"`
	// EfSearch is the default candidate-list width during Search when the
	// caller doesn't request a wider one via SearchWithEf.
	EfSearch int `yaml:"ef_search"`
	// Seed seeds level sampling and is required for reproducible builds.
	Seed int64 `yaml:"seed"`
}

// DefaultConfig returns M=16, MMax0=32, EfConstruction=32.
func DefaultConfig() Config {
	return Config{M: DefaultM, MMax0: 2 * DefaultM, EfConstruction: DefaultEfConstruction}
}

func (c *Config) fillDefaults() {
	if c.M <= 0 {
		c.M = DefaultM
	}
	if c.MMax0 <= 0 {
		c.MMax0 = 2 * c.M
	}
	if c.EfConstruction <= 0 {
		c.EfConstruction = DefaultEfConstruction
	}
}

// node is a single graph vertex. neighbors[level] holds the ids of its
// bidirectional edges at that level.
type node struct {
	id        string
	vec       []float32
	level     int
	neighbors [][]string
}

// Graph is an HNSW index. Build is single-threaded and must be called
// exactly once; afterward the graph is immutable and Search is safe for
// concurrent use without synchronization.
type Graph struct {
	cfg Config
	mL  float32

	built atomic.Bool
	dim   int

	nodes      map[string]*node
	entryPoint string
	topLevel   int

	rng *rand.Rand
}

// New constructs an empty HNSW graph with the given configuration.
func New(cfg Config) *Graph {
	cfg.fillDefaults()
	return &Graph{
		cfg: cfg,
		mL:  1.0 / math32.Log(float32(cfg.M)),
	}
}

// Build implements index.Index.
func (g *Graph) Build(_ context.Context, entries []vector.Vector) error {
	if !g.built.CompareAndSwap(false, true) {
		return errs.ErrAlreadyBuilt
	}
	if len(entries) == 0 {
		return nil
	}

	dim := len(entries[0].Data)
	nodes := make(map[string]*node, len(entries))
	for _, e := range entries {
		if len(e.Data) != dim {
			return fmt.Errorf("%w: expected %d, got %d", errs.ErrDimensionMismatch, dim, len(e.Data))
		}
		if _, dup := nodes[e.ID]; dup {
			return fmt.Errorf("%w: %s", errs.ErrDuplicateID, e.ID)
		}
		nodes[e.ID] = &node{id: e.ID, vec: e.Data}
	}

	g.dim = dim
	g.nodes = nodes
	g.rng = rand.New(rand.NewSource(g.cfg.Seed))
	g.topLevel = -1

	for _, e := range entries {
		g.insert(nodes[e.ID])
	}
	return nil
}

// randomLevel samples L = floor(-ln(U) * mL), U ~ Uniform(0,1).
func (g *Graph) randomLevel() int {
	u := g.rng.Float32()
	for u == 0 {
		u = g.rng.Float32()
	}
	return int(-math32.Log(u) * g.mL)
}

// insert runs the per-node build procedure of §4.5.
func (g *Graph) insert(q *node) {
	q.level = g.randomLevel()
	q.neighbors = make([][]string, q.level+1)

	if g.entryPoint == "" {
		g.entryPoint = q.id
		g.topLevel = q.level
		return
	}

	ep := g.nodes[g.entryPoint]

	// Greedy descent from the entry point's top layer down to level+1.
	for lc := g.topLevel; lc > q.level; lc-- {
		ep = g.greedyClosest(q.vec, ep, lc)
	}

	// Layered candidate search, neighbor selection and linking.
	for lc := min(q.level, g.topLevel); lc >= 0; lc-- {
		found := g.searchLayer(q.vec, ep, g.cfg.EfConstruction, lc)
		candidates := make([]vector.Scored, len(found))
		for i, it := range found {
			candidates[i] = vector.Scored{ID: it.id, Score: it.score}
		}

		m := g.cfg.M
		if lc == 0 {
			m = g.cfg.MMax0
		}

		selected := selectNeighbors(q.vec, candidates, m, g.nodeVec)
		q.neighbors[lc] = idsOf(selected)

		for _, s := range selected {
			n := g.nodes[s.ID]
			g.link(n, q.id, lc)

			degreeCap := g.cfg.M
			if lc == 0 {
				degreeCap = g.cfg.MMax0
			}
			if len(n.neighbors[lc]) > degreeCap {
				g.prune(n, lc, degreeCap)
			}
		}

		if len(selected) > 0 {
			ep = g.nodes[selected[0].ID]
		}
	}

	if q.level > g.topLevel {
		g.topLevel = q.level
		g.entryPoint = q.id
	}
}

// greedyClosest hops to the neighbor with highest similarity to query
// repeatedly until no neighbor improves on the current node, as specified
// for the descent phase of both Build and Search.
func (g *Graph) greedyClosest(query []float32, from *node, layer int) *node {
	current := from
	currentSim, _ := vecmath.Cosine(query, current.vec)
	for {
		improved := false
		for _, nid := range neighborsAt(current, layer) {
			n := g.nodes[nid]
			sim, _ := vecmath.Cosine(query, n.vec)
			if sim > currentSim || (sim == currentSim && n.id < current.id) {
				current, currentSim = n, sim
				improved = true
			}
		}
		if !improved {
			return current
		}
	}
}

// link adds id to n's neighbor list at layer if not already present (the
// caller adds the opposite edge). It grows n.neighbors to cover layer via
// ensureLevel first.
func (g *Graph) link(n *node, id string, layer int) {
	ensureLevel(n, layer)
	for _, existing := range n.neighbors[layer] {
		if existing == id {
			return
		}
	}
	n.neighbors[layer] = append(n.neighbors[layer], id)
}

// ensureLevel grows n.neighbors so index `layer` is valid. A node can gain
// a back-edge at a layer higher than its own sampled level never happens
// (selection only links within lc <= node's own traversal depth), but we
// guard anyway for robustness.
func ensureLevel(n *node, layer int) {
	for len(n.neighbors) <= layer {
		n.neighbors = append(n.neighbors, nil)
	}
}

// prune re-runs the neighbor-selection heuristic on n's full neighbor list
// at layer, keeping it within degreeCap.
func (g *Graph) prune(n *node, layer, degreeCap int) {
	candidates := make([]vector.Scored, 0, len(n.neighbors[layer]))
	for _, nid := range n.neighbors[layer] {
		other := g.nodes[nid]
		sim, _ := vecmath.Cosine(n.vec, other.vec)
		candidates = append(candidates, vector.Scored{ID: nid, Score: sim})
	}
	selected := selectNeighbors(n.vec, candidates, degreeCap, g.nodeVec)
	n.neighbors[layer] = idsOf(selected)
}

func (g *Graph) nodeVec(id string) []float32 {
	return g.nodes[id].vec
}

func neighborsAt(n *node, layer int) []string {
	if layer >= len(n.neighbors) {
		return nil
	}
	return n.neighbors[layer]
}

func idsOf(scored []vector.Scored) []string {
	ids := make([]string, len(scored))
	for i, s := range scored {
		ids[i] = s.ID
	}
	return ids
}
