// Package storage defines the abstract vector store the query engine
// requires (spec §4.6) and ships one concrete, in-process implementation
// used by the engine's own tests. Persistent backends (the .kwi binary
// container, a JSON file store, a SQLite metadata store) live outside this
// module and satisfy the same contract.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/vector"
)

// Backend is the contract the query engine requires of any storage
// implementation.
type Backend interface {
	// AllVectors returns a snapshot of every stored vector, for indexing.
	AllVectors(ctx context.Context) ([]vector.Vector, error)
	// Get looks up a vector by id, failing with errs.ErrNotFound if absent.
	Get(ctx context.Context, id string) (vector.Vector, error)
	// Insert appends a vector, failing on duplicate id or dimension
	// mismatch against vectors already present.
	Insert(ctx context.Context, v vector.Vector) error
}

// Memory is an in-process, map-backed Backend. It holds the only copy of
// the raw vector data the engine's tests touch; indexes built against it
// are expected to copy or reference what they need at Build time.
type Memory struct {
	mu      sync.RWMutex
	dim     int
	vectors map[string]vector.Vector
}

// NewMemory constructs an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{vectors: make(map[string]vector.Vector)}
}

// AllVectors implements Backend.
func (m *Memory) AllVectors(_ context.Context) ([]vector.Vector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]vector.Vector, 0, len(m.vectors))
	for _, v := range m.vectors {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Get implements Backend.
func (m *Memory) Get(_ context.Context, id string) (vector.Vector, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.vectors[id]
	if !ok {
		return vector.Vector{}, fmt.Errorf("%w: %s", errs.ErrNotFound, id)
	}
	return v, nil
}

// Insert implements Backend.
func (m *Memory) Insert(_ context.Context, v vector.Vector) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.vectors[v.ID]; exists {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateID, v.ID)
	}
	if len(m.vectors) == 0 {
		m.dim = len(v.Data)
	} else if len(v.Data) != m.dim {
		return fmt.Errorf("%w: expected %d, got %d", errs.ErrDimensionMismatch, m.dim, len(v.Data))
	}

	m.vectors[v.ID] = v
	return nil
}

// Size returns the number of vectors currently stored.
func (m *Memory) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.vectors)
}
