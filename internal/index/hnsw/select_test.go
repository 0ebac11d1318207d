package hnsw

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilthomass/kowari/internal/vecmath"
	"github.com/neilthomass/kowari/internal/vector"
)

// selectNeighbors should prefer diversity over raw closeness: a candidate
// that is closer to an already-chosen neighbor than to the query itself is
// skipped even if it ranks well on raw similarity, while a candidate that
// is diverse from everything already chosen survives even with a lower
// raw score.
func TestSelectNeighborsPrefersDiversity(t *testing.T) {
	vecs := map[string][]float32{
		"q": {1, 0, 0},
		"b": {0.9, 0.4358899, 0},  // closest to q, picked first
		"a": {0.85, 0.5267827, 0}, // nearly collinear with b, redundant
		"c": {0, 0, 1},            // orthogonal to both q and b, diverse
	}
	vecOf := func(id string) []float32 { return vecs[id] }

	scoreOf := func(id string) float32 {
		sim, err := vecmath.Cosine(vecs["q"], vecs[id])
		require.NoError(t, err)
		return sim
	}

	candidates := []vector.Scored{
		{ID: "b", Score: scoreOf("b")},
		{ID: "a", Score: scoreOf("a")},
		{ID: "c", Score: scoreOf("c")},
	}

	selected := selectNeighbors(vecs["q"], candidates, 2, vecOf)
	require.Len(t, selected, 2)

	ids := map[string]bool{}
	for _, s := range selected {
		ids[s.ID] = true
	}
	assert.True(t, ids["b"], "closest candidate should always be selected")
	assert.False(t, ids["a"], "a is redundant with b and should be pruned for diversity")
	assert.True(t, ids["c"], "c is diverse from b and should survive despite a lower raw score")
}

func TestSelectNeighborsCapsAtM(t *testing.T) {
	vecs := map[string][]float32{
		"q": {1, 0, 0},
		"a": {0, 1, 0},
		"b": {0, 0, 1},
		"c": {-1, 0, 0},
	}
	vecOf := func(id string) []float32 { return vecs[id] }

	candidates := []vector.Scored{
		{ID: "a", Score: 0},
		{ID: "b", Score: 0},
		{ID: "c", Score: -1},
	}

	selected := selectNeighbors(vecs["q"], candidates, 2, vecOf)
	assert.Len(t, selected, 2)
}
