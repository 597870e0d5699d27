package driven

import "context"

// CrossEncoder scores query-document pairs jointly, producing relevance
// scores sharper than vector similarity alone.
//
// keepLoaded controls the model's resource lifetime: true keeps the model
// resident across calls (amortises load cost, holds memory), false loads
// and releases it for this call alone. Implementations must serialise
// scoring calls that share a physical model.
type CrossEncoder interface {
	// Score returns one relevance score per document, parallel to the
	// documents slice. Scores are unbounded reals.
	Score(ctx context.Context, query string, documents []string, keepLoaded bool) ([]float64, error)
}
