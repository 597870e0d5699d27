// Package sqlite provides the SQLite-backed ingest ledger. The ledger is
// bookkeeping only; the vector index stays the source of truth for what
// is actually searchable.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/chengahtung/local-lode/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.IngestLedger = (*Ledger)(nil)

// Ledger records ingested files in a local SQLite database.
type Ledger struct {
	db   *sql.DB
	path string
}

// NewLedger opens the ledger database at dataDir/ledger.db. If dataDir is
// empty, ~/.local-lode/data is used.
func NewLedger(dataDir string) (*Ledger, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local-lode", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	l := &Ledger{db: db, path: dbPath}
	if err := l.init(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// Path returns the database file path.
func (l *Ledger) Path() string {
	return l.path
}

// RecordFile upserts the entry for one source file.
func (l *Ledger) RecordFile(ctx context.Context, sourceFile string, chunks int, modTime time.Time) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO ingested_files (source_file, chunks, mod_time, ingested_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_file) DO UPDATE SET
			chunks = excluded.chunks,
			mod_time = excluded.mod_time,
			ingested_at = excluded.ingested_at`,
		sourceFile, chunks, modTime.UTC().Format(time.RFC3339Nano), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording %s: %w", sourceFile, err)
	}
	return nil
}

// Files lists all entries ordered by source file.
func (l *Ledger) Files(ctx context.Context) ([]driven.LedgerEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT source_file, chunks, mod_time, ingested_at
		FROM ingested_files
		ORDER BY source_file`)
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []driven.LedgerEntry
	for rows.Next() {
		var (
			entry               driven.LedgerEntry
			modTime, ingestedAt string
		)
		if err := rows.Scan(&entry.SourceFile, &entry.Chunks, &modTime, &ingestedAt); err != nil {
			return nil, fmt.Errorf("scanning ledger entry: %w", err)
		}
		if entry.ModTime, err = time.Parse(time.RFC3339Nano, modTime); err != nil {
			return nil, fmt.Errorf("parsing mod_time for %s: %w", entry.SourceFile, err)
		}
		if entry.IngestedAt, err = time.Parse(time.RFC3339Nano, ingestedAt); err != nil {
			return nil, fmt.Errorf("parsing ingested_at for %s: %w", entry.SourceFile, err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Clear removes all entries.
func (l *Ledger) Clear(ctx context.Context) error {
	if _, err := l.db.ExecContext(ctx, `DELETE FROM ingested_files`); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	return nil
}

func (l *Ledger) init() error {
	_, err := l.db.Exec(`
		CREATE TABLE IF NOT EXISTS ingested_files (
			source_file TEXT PRIMARY KEY,
			chunks      INTEGER NOT NULL,
			mod_time    TEXT NOT NULL,
			ingested_at TEXT NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
