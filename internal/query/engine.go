// Package query implements the orchestrator that binds a storage backend
// to an index: it delegates candidate generation to the index, resolves
// the returned identifiers back to vectors through storage, and returns
// the final ordered result. The engine does no ranking of its own — the
// index is authoritative for order.
package query

import (
	"context"
	"fmt"

	"github.com/neilthomass/kowari/internal/errs"
	"github.com/neilthomass/kowari/internal/index"
	"github.com/neilthomass/kowari/internal/obslog"
	"github.com/neilthomass/kowari/internal/storage"
	"github.com/neilthomass/kowari/internal/vector"
)

// Engine composes a storage backend and an index. It borrows both for its
// own (shorter) lifetime and owns neither.
type Engine struct {
	storage storage.Backend
	index   index.Index
}

// NewEngine binds a storage backend and an index into a query engine.
func NewEngine(backend storage.Backend, idx index.Index) *Engine {
	return &Engine{storage: backend, index: idx}
}

// Build streams every vector currently in storage into the bound index.
// It is a convenience wrapper; callers that already have the entry slice
// in hand may call index.Build directly instead.
func (e *Engine) Build(ctx context.Context) error {
	log := obslog.WithContext(context.WithValue(ctx, obslog.OperationKey, "build"))

	entries, err := e.storage.AllVectors(ctx)
	if err != nil {
		log.Error("failed to snapshot storage", "error", err)
		return err
	}

	if err := e.index.Build(ctx, entries); err != nil {
		log.Error("index build failed", "error", err, "entries", len(entries))
		return err
	}

	log.Info("index built", "entries", len(entries))
	return nil
}

// Search delegates to the index for up to k candidate identifiers, then
// resolves each against storage, preserving the index's ranking order.
// An id the index returns but storage cannot resolve is a fatal
// index/storage divergence and surfaces as errs.ErrNotFound.
func (e *Engine) Search(ctx context.Context, query []float32, k int) ([]vector.Vector, error) {
	log := obslog.WithContext(context.WithValue(ctx, obslog.OperationKey, "search"))

	candidates, err := e.index.Search(ctx, query, k)
	if err != nil {
		log.Debug("index search failed", "error", err, "k", k)
		return nil, err
	}

	results := make([]vector.Vector, len(candidates))
	for i, c := range candidates {
		v, err := e.storage.Get(ctx, c.ID)
		if err != nil {
			log.Error("index/storage divergence", "id", c.ID)
			return nil, fmt.Errorf("%w: index returned id %q not present in storage", errs.ErrNotFound, c.ID)
		}
		results[i] = v
	}
	return results, nil
}
