// Package vector defines the immutable (id, data) pair every index and
// storage backend in Kowari operates on.
package vector

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/neilthomass/kowari/internal/errs"
)

// Vector is an immutable, opaquely-identified, fixed-dimension real vector.
type Vector struct {
	ID   string
	Data []float32
}

// Scored pairs an identifier with a similarity score, as returned by an
// index's Search.
type Scored struct {
	ID    string
	Score float32
}

// New validates and constructs a Vector. It rejects empty ids and
// non-finite components (NaN, ±Inf).
func New(id string, data []float32) (Vector, error) {
	if id == "" {
		return Vector{}, fmt.Errorf("%w: empty id", errs.ErrInvalidArgument)
	}
	for i, v := range data {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return Vector{}, fmt.Errorf("%w: non-finite component at index %d", errs.ErrInvalidArgument, i)
		}
	}
	return Vector{ID: id, Data: data}, nil
}

// NewID generates a random identifier for callers that don't carry a
// natural one of their own (e.g. vectors derived from unkeyed input rows).
func NewID() string {
	return uuid.New().String()
}

// CheckDim returns ErrDimensionMismatch if data's length differs from dim.
func CheckDim(dim int, data []float32) error {
	if len(data) != dim {
		return fmt.Errorf("%w: expected %d, got %d", errs.ErrDimensionMismatch, dim, len(data))
	}
	return nil
}
