package services

import (
	"context"
	"fmt"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/logger"
)

// Retriever runs similarity search against the vector index and converts
// raw hits into domain records, preserving the index's native order.
type Retriever struct {
	lifecycle *IndexLifecycle
}

// NewRetriever creates a retriever over the given index lifecycle.
func NewRetriever(lifecycle *IndexLifecycle) *Retriever {
	return &Retriever{lifecycle: lifecycle}
}

var _ CandidateRetriever = (*Retriever)(nil)

// Retrieve returns up to k records for the query text, closest first,
// restricted to the ingestible file types.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) ([]domain.Record, error) {
	index, err := r.lifecycle.Collection(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	hits, err := index.Query(ctx, text, k, domain.IngestibleTypes())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	logger.Debug("retrieved %d candidates for query", len(hits))

	records := make([]domain.Record, len(hits))
	for i, hit := range hits {
		records[i] = domain.Record{
			ID:         hit.ID,
			Document:   hit.Document,
			Metadata:   hit.Metadata,
			Similarity: hit.Similarity,
			Distance:   hit.Distance,
		}
	}
	return records, nil
}
