package hnsw

import (
	"sort"

	"github.com/neilthomass/kowari/internal/vecmath"
	"github.com/neilthomass/kowari/internal/vector"
)

// selectNeighbors implements the diversity-preserving heuristic of spec
// §4.5 step 3b: repeatedly take the best remaining candidate c unless some
// already-chosen neighbor n is closer to c than q is (sim(c,n) > sim(c,q)),
// in which case c is skipped as redundant. A plain "closest-M" substitute
// degrades graph connectivity at high dimensionality and is not used here.
//
// vecOf resolves a candidate id to its vector (the graph's node map).
func selectNeighbors(q []float32, candidates []vector.Scored, m int, vecOf func(id string) []float32) []vector.Scored {
	ordered := make([]vector.Scored, len(candidates))
	copy(ordered, candidates)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].ID < ordered[j].ID
	})

	selected := make([]vector.Scored, 0, m)
	for _, c := range ordered {
		if len(selected) >= m {
			break
		}
		cVec := vecOf(c.ID)
		keep := true
		for _, n := range selected {
			simCN, _ := vecmath.Cosine(cVec, vecOf(n.ID))
			if simCN > c.Score {
				keep = false
				break
			}
		}
		if keep {
			selected = append(selected, c)
		}
	}
	return selected
}
