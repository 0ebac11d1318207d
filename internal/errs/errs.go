// Package errs defines the error kinds shared by every index variant, the
// storage contract, and the query engine.
package errs

import "errors"

// Sentinel error kinds. Callers should compare with errors.Is; every error
// returned by the vector, vecmath, index, storage and query packages is one
// of these or wraps one via fmt.Errorf("%w: ..."). Config loading errors
// wrap the underlying file or YAML error instead.
var (
	// ErrDimensionMismatch is returned when a vector's length disagrees
	// with the dimension established by the first entry of a build.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrDuplicateID is returned when two entries in one build share an
	// identifier.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrNotBuilt is returned when Search is called before Build.
	ErrNotBuilt = errors.New("index not built")

	// ErrAlreadyBuilt is returned when Build is called a second time.
	ErrAlreadyBuilt = errors.New("index already built")

	// ErrInvalidArgument covers k == 0, empty vector ids, and non-finite
	// vector components. Zero or negative index configuration values are
	// not rejected: the LSH and HNSW constructors replace them with their
	// defaults.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotFound is returned by a storage lookup for an id an index
	// claims to hold. It indicates index/storage divergence and is fatal
	// to the query in progress.
	ErrNotFound = errors.New("not found")
)
