package index

import (
	"context"
	"fmt"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/bits-and-blooms/bitset"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/vecmath"
	"github.com/neilthomass/kowari/internal/vector"
)

// LSHConfig configures the random-hyperplane LSH index.
type LSHConfig struct {
	// NumHyperplanes is the signature width per table (H). Default 16.
	NumHyperplanes int
	// NumTables is the number of independent hash tables (T). Default 4.
	NumTables int
	// Seed seeds hyperplane generation. When zero, a time-derived seed is
	// chosen and recorded on Seed so the build remains replayable.
	Seed int64
}

// DefaultLSHConfig returns the spec's defaults: H=16, T=4.
func DefaultLSHConfig() LSHConfig {
	return LSHConfig{NumHyperplanes: 16, NumTables: 4}
}

// bucketEntry groups every id that shares one exact signature within a
// table.
type bucketEntry struct {
	sig *bitset.BitSet
	ids []string
}

// bucket is the list of distinct signatures observed in one table. Tables
// are small enough in practice (one entry per distinct signature, not per
// vector) that a linear scan to find or widen from a signature is cheap
// and avoids a separate string-keyed index into the same data.
type bucket []bucketEntry

func (b *bucket) add(sig *bitset.BitSet, id string) {
	for i := range *b {
		if (*b)[i].sig.Equal(sig) {
			(*b)[i].ids = append((*b)[i].ids, id)
			return
		}
	}
	*b = append(*b, bucketEntry{sig: sig, ids: []string{id}})
}

// LSH is the random-hyperplane locality-sensitive-hashing index.
type LSH struct {
	cfg LSHConfig

	built atomic.Bool
	dim   int

	// hyperplanes[t][h] is the normal of hyperplane h in table t.
	hyperplanes [][][]float32
	tables      []bucket
	signatures  map[string][]*bitset.BitSet // id -> signature per table
	data        map[string][]float32
}

// NewLSH constructs an empty LSH index. A zero-valued Seed is replaced by
// a recorded, non-zero one so builds remain reproducible on replay.
func NewLSH(cfg LSHConfig) *LSH {
	if cfg.NumHyperplanes <= 0 {
		cfg.NumHyperplanes = 16
	}
	if cfg.NumTables <= 0 {
		cfg.NumTables = 4
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &LSH{cfg: cfg}
}

// Seed returns the seed in effect for this index (useful when the
// constructor chose one automatically).
func (l *LSH) Seed() int64 { return l.cfg.Seed }

// Build implements Index.
func (l *LSH) Build(_ context.Context, entries []vector.Vector) error {
	if !l.built.CompareAndSwap(false, true) {
		return errs.ErrAlreadyBuilt
	}
	if len(entries) == 0 {
		return nil
	}

	dim := len(entries[0].Data)
	data := make(map[string][]float32, len(entries))
	for _, e := range entries {
		if len(e.Data) != dim {
			return fmt.Errorf("%w: expected %d, got %d", errs.ErrDimensionMismatch, dim, len(e.Data))
		}
		if _, dup := data[e.ID]; dup {
			return fmt.Errorf("%w: %s", errs.ErrDuplicateID, e.ID)
		}
		data[e.ID] = e.Data
	}

	rng := rand.New(rand.NewSource(l.cfg.Seed))
	hyperplanes := make([][][]float32, l.cfg.NumTables)
	for t := range hyperplanes {
		hyperplanes[t] = make([][]float32, l.cfg.NumHyperplanes)
		for h := range hyperplanes[t] {
			plane := make([]float32, dim)
			for i := range plane {
				plane[i] = float32(rng.NormFloat64())
			}
			hyperplanes[t][h] = plane
		}
	}

	tables := make([]bucket, l.cfg.NumTables)
	signatures := make(map[string][]*bitset.BitSet, len(entries))

	for _, e := range entries {
		sigs := make([]*bitset.BitSet, l.cfg.NumTables)
		for t := 0; t < l.cfg.NumTables; t++ {
			sig := signature(hyperplanes[t], e.Data)
			sigs[t] = sig
			tables[t].add(sig, e.ID)
		}
		signatures[e.ID] = sigs
	}

	l.dim = dim
	l.hyperplanes = hyperplanes
	l.tables = tables
	l.signatures = signatures
	l.data = data
	return nil
}

// signature computes the H-bit signature of v against one table's
// hyperplane normals: bit h is 1 iff dot(v, normal_h) >= 0.
func signature(hyperplanes [][]float32, v []float32) *bitset.BitSet {
	sig := bitset.New(uint(len(hyperplanes)))
	for h, plane := range hyperplanes {
		dot, _ := vecmath.Dot(v, plane)
		if dot >= 0 {
			sig.Set(uint(h))
		}
	}
	return sig
}

// Search implements Index.
func (l *LSH) Search(_ context.Context, query []float32, k int) ([]vector.Scored, error) {
	if !l.built.Load() {
		return nil, errs.ErrNotBuilt
	}
	if k == 0 {
		return nil, fmt.Errorf("%w: k must be > 0", errs.ErrInvalidArgument)
	}
	if len(l.data) == 0 {
		return nil, nil
	}
	if err := vector.CheckDim(l.dim, query); err != nil {
		return nil, err
	}

	querySigs := make([]*bitset.BitSet, l.cfg.NumTables)
	for t := 0; t < l.cfg.NumTables; t++ {
		querySigs[t] = signature(l.hyperplanes[t], query)
	}

	radiusCap := l.cfg.NumHyperplanes / 2
	candidates := make(map[string]struct{})
	for radius := 0; radius <= radiusCap; radius++ {
		l.collectAtRadius(querySigs, radius, candidates)
		if len(candidates) >= k {
			break
		}
	}

	scored := make([]vector.Scored, 0, len(candidates))
	for id := range candidates {
		sim, err := vecmath.Cosine(query, l.data[id])
		if err != nil {
			return nil, err
		}
		scored = append(scored, vector.Scored{ID: id, Score: sim})
	}

	if k > len(scored) {
		k = len(scored)
	}
	return topK(scored, k), nil
}

// collectAtRadius adds to candidates every id whose signature, in any
// table, is within exactly `radius` bits of the query's signature in that
// table (Hamming distance via XOR popcount). radius==0 is the exact-bucket
// match.
func (l *LSH) collectAtRadius(querySigs []*bitset.BitSet, radius int, candidates map[string]struct{}) {
	for t := 0; t < l.cfg.NumTables; t++ {
		for _, be := range l.tables[t] {
			if int(querySigs[t].Xor(be.sig).Count()) == radius {
				for _, id := range be.ids {
					candidates[id] = struct{}{}
				}
			}
		}
	}
}
