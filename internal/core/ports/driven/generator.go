package driven

import "context"

// Generator produces answers from a grounding prompt, either as a single
// completion or as an incremental fragment stream.
type Generator interface {
	// Generate returns one complete answer.
	Generate(ctx context.Context, prompt string) (string, error)

	// GenerateStream produces the answer incrementally. Fragments arrive
	// on the first channel; a terminal failure arrives on the second.
	// Both channels are closed when production ends. The producer stops
	// at the next fragment boundary when ctx is cancelled.
	GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error)
}
