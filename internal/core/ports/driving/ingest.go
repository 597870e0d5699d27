package driving

import (
	"context"

	"github.com/chengahtung/local-lode/internal/core/ports/driven"
)

// IngestOptions configures one ingestion run.
type IngestOptions struct {
	// CorpusRoot is the folder to discover files under.
	CorpusRoot string

	// ChunkSize, Overlap and BatchSize override the chunking and
	// batching parameters.
	ChunkSize int
	Overlap   int
	BatchSize int

	// IncludeDocx adds .docx files to the discovery set.
	IncludeDocx bool
}

// IngestService turns corpus files into indexed chunks.
type IngestService interface {
	// Ingest discovers, extracts, chunks and upserts the corpus.
	// Returns the total number of chunks upserted; on a mid-run batch
	// failure the count so far is returned together with a
	// *domain.IngestPartialError.
	Ingest(ctx context.Context, opts IngestOptions) (int, error)

	// Ledger lists ingestion bookkeeping entries, newest knowledge of
	// each file. Returns nil when no ledger is configured.
	Ledger(ctx context.Context) ([]driven.LedgerEntry, error)
}

// IndexAdmin manages the lifecycle of the index collection.
type IndexAdmin interface {
	// Reset removes every stored document from the collection and
	// returns how many were removed; 0 when already empty.
	Reset(ctx context.Context) (int, error)
}
