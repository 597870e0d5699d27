package driven

import (
	"context"
	"time"
)

// IngestLedger records which corpus files have been ingested and how many
// chunks each produced. Bookkeeping only; the vector index remains the
// source of truth for stored content.
type IngestLedger interface {
	// RecordFile upserts the ledger entry for one source file.
	RecordFile(ctx context.Context, sourceFile string, chunks int, modTime time.Time) error

	// Files lists all ledger entries, ordered by source file.
	Files(ctx context.Context) ([]LedgerEntry, error)

	// Clear removes all entries. Called when the index is reset.
	Clear(ctx context.Context) error
}

// LedgerEntry is one ingested file's bookkeeping record.
type LedgerEntry struct {
	SourceFile string
	Chunks     int
	ModTime    time.Time
	IngestedAt time.Time
}
