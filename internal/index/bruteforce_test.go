package index_test

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/index"
	"github.com/neilthomass/kowari/internal/vector"
)

func mustVec(t *testing.T, id string, data []float32) vector.Vector {
	t.Helper()
	v, err := vector.New(id, data)
	require.NoError(t, err)
	return v
}

// S1: trivial build/search.
func TestBruteForceTrivial(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()

	entries := []vector.Vector{
		mustVec(t, "a", []float32{1, 0}),
		mustVec(t, "b", []float32{0, 1}),
		mustVec(t, "c", []float32{1, 1}),
	}
	require.NoError(t, bf.Build(ctx, entries))

	results, err := bf.Search(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "a", results[0].ID)
	assert.Equal(t, "c", results[1].ID)
}

// S2: exact match.
func TestBruteForceExactMatch(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, []vector.Vector{
		mustVec(t, "a", []float32{1, 0}),
		mustVec(t, "b", []float32{0, 1}),
		mustVec(t, "c", []float32{1, 1}),
	}))

	results, err := bf.Search(ctx, []float32{0, 1}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "b", results[0].ID)
}

// S3: degenerate all-zero similarity, ascending-id tie-break.
func TestBruteForceDegenerateTieBreak(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, []vector.Vector{
		mustVec(t, "a", []float32{1, 0}),
		mustVec(t, "b", []float32{0, 1}),
		mustVec(t, "c", []float32{1, 1}),
	}))

	results, err := bf.Search(ctx, []float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []string{"a", "b", "c"}, ids(results))
}

// S6: dimension mismatch.
func TestBruteForceDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, []vector.Vector{
		mustVec(t, "a", make([]float32, 128)),
	}))

	_, err := bf.Search(ctx, make([]float32, 64), 1)
	assert.ErrorIs(t, err, errs.ErrDimensionMismatch)
}

// S7: empty build.
func TestBruteForceEmptyBuild(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, nil))

	results, err := bf.Search(ctx, []float32{1, 2, 3}, 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBruteForceDuplicateID(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	err := bf.Build(ctx, []vector.Vector{
		mustVec(t, "a", []float32{1, 0}),
		mustVec(t, "a", []float32{0, 1}),
	})
	assert.ErrorIs(t, err, errs.ErrDuplicateID)
}

func TestBruteForceAlreadyBuilt(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, nil))
	assert.ErrorIs(t, bf.Build(ctx, nil), errs.ErrAlreadyBuilt)
}

func TestBruteForceNotBuilt(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	_, err := bf.Search(ctx, []float32{1}, 1)
	assert.ErrorIs(t, err, errs.ErrNotBuilt)
}

func TestBruteForceZeroK(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, []vector.Vector{mustVec(t, "a", []float32{1})}))
	_, err := bf.Search(ctx, []float32{1}, 0)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

// Invariant 6 (monotonicity of k): brute-force search(q,k1) is a prefix of
// search(q,k2) for k1 < k2.
func TestBruteForceMonotonicity(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	rng := rand.New(rand.NewSource(1))

	entries := make([]vector.Vector, 20)
	for i := range entries {
		entries[i] = mustVec(t, fmt.Sprintf("v%02d", i), randVec(rng, 8))
	}
	require.NoError(t, bf.Build(ctx, entries))

	query := randVec(rng, 8)
	small, err := bf.Search(ctx, query, 5)
	require.NoError(t, err)
	big, err := bf.Search(ctx, query, 10)
	require.NoError(t, err)

	assert.Equal(t, ids(small), ids(big)[:5])
}

// k > N returns all N in order.
func TestBruteForceKGreaterThanN(t *testing.T) {
	ctx := context.Background()
	bf := index.NewBruteForce()
	require.NoError(t, bf.Build(ctx, []vector.Vector{
		mustVec(t, "a", []float32{1, 0}),
		mustVec(t, "b", []float32{0, 1}),
	}))

	results, err := bf.Search(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func randVec(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rng.Float32()
	}
	return v
}

func ids(results []vector.Scored) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.ID
	}
	return out
}
