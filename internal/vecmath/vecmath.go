// Package vecmath implements the pure vector-arithmetic primitives the
// indexing and query layers build on: dot product, norm, cosine similarity
// and Euclidean distance.
//
// Larger vectors are routed through github.com/viterin/vek's SIMD kernels;
// small ones (most LSH/HNSW distance calls operate on dims in the low
// hundreds, but the contract must still hold for dim=1) fall back to a
// plain loop, since vek's call overhead dominates below a few dozen lanes.
package vecmath

import (
	"fmt"

	"github.com/chewxy/math32"
	"github.com/viterin/vek/vek32"

	"github.com/neilthomass/kowari/internal/errs"
)

// simdThreshold is the minimum slice length at which vek's SIMD dot
// product pays for its own call overhead.
const simdThreshold = 32

// Dot returns the sum of pairwise products of a and b.
func Dot(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", errs.ErrDimensionMismatch, len(a), len(b))
	}
	if len(a) >= simdThreshold {
		return vek32.Dot(a, b), nil
	}
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Norm returns the Euclidean (L2) norm of a.
func Norm(a []float32) float32 {
	dot, _ := Dot(a, a)
	return math32.Sqrt(dot)
}

// Cosine returns the cosine similarity of a and b, 0 when either norm is
// zero. Fails when the lengths differ.
func Cosine(a, b []float32) (float32, error) {
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (na * nb), nil
}

// Euclidean returns the Euclidean distance between a and b.
func Euclidean(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", errs.ErrDimensionMismatch, len(a), len(b))
	}
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math32.Sqrt(sum), nil
}
