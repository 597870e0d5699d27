package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// nsChunk is the UUIDv5 namespace for chunk identifiers.
var nsChunk = uuid.MustParse("7c9e6d2a-1f4b-4e8a-9c3d-5b2a8f1e6d40")

// Chunk is a bounded, possibly overlapping substring of a source document.
// It is the unit of indexing. CharStart is inclusive, CharEnd exclusive.
type Chunk struct {
	// ID is deterministic from (SourceFile, CharStart, CharEnd), so
	// re-ingesting unchanged content upserts the same identifiers.
	ID string

	// SourceFile is the path of the file the chunk was cut from.
	SourceFile string

	// CharStart and CharEnd delimit the chunk within the source text.
	CharStart int
	CharEnd   int

	// Text is the chunk content.
	Text string
}

// ChunkID derives the stable identifier for a chunk of the given file and
// character range. Content-addressed IDs make ingestion idempotent as long
// as the underlying store upserts by ID.
func ChunkID(sourceFile string, charStart, charEnd int) string {
	name := fmt.Sprintf("%s:%d:%d", sourceFile, charStart, charEnd)
	return uuid.NewSHA1(nsChunk, []byte(name)).String()
}
