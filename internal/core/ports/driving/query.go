package driving

import (
	"context"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

// QueryService answers natural-language queries over the indexed corpus.
type QueryService interface {
	// Query runs the full retrieve, rerank, format, generate pipeline
	// and returns one complete response.
	Query(ctx context.Context, spec domain.QuerySpec) (*domain.QueryResult, error)

	// QueryStream runs the same pipeline but delivers the response as an
	// ordered event sequence: one results event, zero or more chunk
	// events, then exactly one done or error event. The channel is
	// unbuffered and closed after the terminal event. Cancelling ctx
	// stops production at the next suspension point.
	QueryStream(ctx context.Context, spec domain.QuerySpec) <-chan domain.StreamEvent
}
