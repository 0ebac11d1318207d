package vecmath_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neilthomass/kowari/internal/vecmath"
)

func TestCosineOrthogonal(t *testing.T) {
	sim, err := vecmath.Cosine([]float32{1, 0}, []float32{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0, sim, 1e-6)
}

func TestCosineIdentical(t *testing.T) {
	sim, err := vecmath.Cosine([]float32{1, 1}, []float32{1, 1})
	require.NoError(t, err)
	assert.InDelta(t, 1, sim, 1e-6)
}

func TestCosineZeroVector(t *testing.T) {
	sim, err := vecmath.Cosine([]float32{0, 0}, []float32{1, 1})
	require.NoError(t, err)
	assert.Equal(t, float32(0), sim)
}

func TestCosineDimensionMismatch(t *testing.T) {
	_, err := vecmath.Cosine([]float32{1, 0}, []float32{1, 0, 0})
	require.Error(t, err)
}

func TestEuclidean(t *testing.T) {
	d, err := vecmath.Euclidean([]float32{0, 0}, []float32{3, 4})
	require.NoError(t, err)
	assert.InDelta(t, 5, d, 1e-6)
}

func TestDotLargeVectors(t *testing.T) {
	a := make([]float32, 256)
	b := make([]float32, 256)
	for i := range a {
		a[i] = 1
		b[i] = 2
	}
	dot, err := vecmath.Dot(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 512, dot, 1e-3)
}

func TestNorm(t *testing.T) {
	assert.InDelta(t, 5, vecmath.Norm([]float32{3, 4}), 1e-6)
}
