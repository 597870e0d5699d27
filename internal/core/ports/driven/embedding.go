package driven

import "context"

// Embedder generates vector embeddings from text. The core never calls it
// directly; the vector index adapter uses it to turn query text and chunk
// documents into vectors for the store.
type Embedder interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. Must match the
	// collection configuration.
	Dimensions() int
}
