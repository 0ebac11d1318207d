// Package index defines the capability set shared by every Kowari index
// variant (BruteForce, LSH, HNSW) and lets the query engine stay
// polymorphic over which one it was handed.
package index

import (
	"context"

	"github.com/neilthomass/kowari/internal/vector"
)

// Index is the uniform contract every variant satisfies. Build must be
// called exactly once before Search; once it returns successfully the
// index is immutable for the rest of its lifetime and concurrent Search
// calls require no external synchronization.
type Index interface {
	// Build constructs the index from entries. Fails with
	// errs.ErrDimensionMismatch if any vector disagrees with the first
	// entry's dimension, errs.ErrDuplicateID if any id repeats, and
	// errs.ErrAlreadyBuilt if called a second time.
	Build(ctx context.Context, entries []vector.Vector) error

	// Search returns up to k identifiers ranked by descending estimated
	// cosine similarity to query. Fails with errs.ErrNotBuilt before
	// Build, errs.ErrDimensionMismatch on a query dimension mismatch, and
	// errs.ErrInvalidArgument when k == 0. When k exceeds the number of
	// indexed vectors, all of them are returned in ranked order.
	Search(ctx context.Context, query []float32, k int) ([]vector.Scored, error)
}
