package driven

import (
	"context"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

// VectorIndex is the narrow contract the core holds against the external
// vector store. Store internals (similarity search, persistence, the
// embedding step) are the adapter's business.
type VectorIndex interface {
	// Ensure opens or creates the named collection. Idempotent; called
	// once per process by the index lifecycle.
	Ensure(ctx context.Context) error

	// Query runs a similarity search for text, returning up to k hits in
	// the index's native order (closest first), restricted to the given
	// metadata types.
	Query(ctx context.Context, text string, k int, types []domain.FileType) ([]VectorHit, error)

	// Upsert writes documents under the given ids. Slices are parallel
	// and must have equal length. Writing an existing id replaces it.
	Upsert(ctx context.Context, ids []string, documents []string, metadatas []map[string]any) error

	// ListIDs enumerates every stored id.
	ListIDs(ctx context.Context) ([]string, error)

	// Delete removes the given ids in one bulk operation.
	Delete(ctx context.Context, ids []string) error
}

// VectorHit is one raw similarity search result.
type VectorHit struct {
	// ID is the stored chunk id.
	ID string

	// Document is the stored chunk text.
	Document string

	// Metadata is the stored payload.
	Metadata map[string]any

	// Similarity is the normalised similarity in [0,1] when the store
	// reports one; nil otherwise.
	Similarity *float64

	// Distance is the store's raw distance or score; nil when absent.
	Distance *float64
}
