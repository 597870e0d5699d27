package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrConfig indicates invalid chunk, overlap or batch parameters.
	// Always rejected before any I/O.
	ErrConfig = errors.New("invalid configuration")

	// ErrIndexUnavailable indicates the vector store cannot be reached.
	// Fatal for the current request.
	ErrIndexUnavailable = errors.New("vector index unavailable")

	// ErrRerank indicates the cross-encoder scoring backend failed.
	// The orchestrator recovers by falling back to retrieval order.
	ErrRerank = errors.New("rerank failed")

	// ErrGeneration indicates the answer model failed. The orchestrator
	// recovers by substituting a failure marker string.
	ErrGeneration = errors.New("answer generation failed")
)

// IngestPartialError reports an ingestion that stopped mid-way because a
// batch upsert failed. Upserted counts the chunks written before the
// failure; the caller decides whether partial ingestion counts as success.
type IngestPartialError struct {
	// Upserted is the number of chunks written before the failure.
	Upserted int

	// Err is the underlying batch upsert failure.
	Err error
}

func (e *IngestPartialError) Error() string {
	return fmt.Sprintf("ingestion aborted after %d chunks: %v", e.Upserted, e.Err)
}

func (e *IngestPartialError) Unwrap() error {
	return e.Err
}
