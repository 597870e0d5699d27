package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/chengahtung/local-lode/internal/chunker"
	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
	"github.com/chengahtung/local-lode/internal/extract"
	"github.com/chengahtung/local-lode/internal/logger"
)

// Ingestor walks a corpus folder, extracts and chunks each supported file
// and upserts the chunks in batches. Chunk ids are derived from source
// path and character range, so re-ingesting unchanged content overwrites
// in place instead of duplicating.
type Ingestor struct {
	lifecycle *IndexLifecycle
	settings  driven.SettingsStore
	ledger    driven.IngestLedger
}

// NewIngestor creates an ingestor. ledger may be nil; bookkeeping is then
// skipped.
func NewIngestor(lifecycle *IndexLifecycle, settings driven.SettingsStore, ledger driven.IngestLedger) *Ingestor {
	return &Ingestor{lifecycle: lifecycle, settings: settings, ledger: ledger}
}

var _ driving.IngestService = (*Ingestor)(nil)

// ingestedFile tracks one source file's contribution for the ledger.
type ingestedFile struct {
	path    string
	chunks  int
	modTime time.Time
}

// Ingest runs one ingestion pass and returns the number of chunks
// upserted. Parameters not set in opts fall back to the stored settings.
// Parameter validation happens before any file or index I/O.
func (g *Ingestor) Ingest(ctx context.Context, opts driving.IngestOptions) (int, error) {
	settings, err := g.settings.GetAll()
	if err != nil {
		return 0, fmt.Errorf("load settings: %w", err)
	}
	root := opts.CorpusRoot
	if root == "" {
		root = settings.KBFolder
	}
	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = settings.ChunkSize
	}
	overlap := opts.Overlap
	if overlap <= 0 {
		overlap = settings.Overlap
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = settings.BatchSize
	}
	includeDocx := opts.IncludeDocx || settings.IngestDocx

	cut, err := chunker.New(chunkSize, overlap)
	if err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		return 0, fmt.Errorf("%w: batch_size must be positive, got %d", domain.ErrConfig, batchSize)
	}

	files, err := discoverFiles(root, includeDocx)
	if err != nil {
		return 0, err
	}
	logger.Section("Ingest")
	logger.Info("ingesting %d files from %s (chunk_size=%d overlap=%d batch_size=%d)",
		len(files), root, chunkSize, overlap, batchSize)

	index, err := g.lifecycle.Collection(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}

	var (
		total     int
		pending   batch
		processed []ingestedFile
	)
	flush := func() error {
		if pending.len() == 0 {
			return nil
		}
		if err := index.Upsert(ctx, pending.ids, pending.documents, pending.metadatas); err != nil {
			return err
		}
		total += pending.len()
		logger.Debug("upserted batch of %d chunks (%d total)", pending.len(), total)
		pending = batch{}
		return nil
	}

	for _, path := range files {
		res, err := extract.File(path)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			continue
		}

		count := 0
		for chunk := range cut.Chunks(path, res.Text) {
			pending.add(chunk, res)
			count++
			if pending.len() >= batchSize {
				if err := flush(); err != nil {
					return total, &domain.IngestPartialError{Upserted: total, Err: err}
				}
			}
		}
		logger.Debug("%s: %d chunks", path, count)

		info, statErr := os.Stat(path)
		modTime := time.Now()
		if statErr == nil {
			modTime = info.ModTime()
		}
		processed = append(processed, ingestedFile{path: path, chunks: count, modTime: modTime})
	}

	if err := flush(); err != nil {
		return total, &domain.IngestPartialError{Upserted: total, Err: err}
	}

	if g.ledger != nil {
		for _, f := range processed {
			if err := g.ledger.RecordFile(ctx, f.path, f.chunks, f.modTime); err != nil {
				logger.Warn("ledger: recording %s failed: %v", f.path, err)
			}
		}
	}

	logger.Info("ingestion complete: %d chunks from %d files", total, len(processed))
	return total, nil
}

// Ledger lists ingestion bookkeeping entries, or nil when no ledger is
// configured.
func (g *Ingestor) Ledger(ctx context.Context) ([]driven.LedgerEntry, error) {
	if g.ledger == nil {
		return nil, nil
	}
	return g.ledger.Files(ctx)
}

// batch accumulates parallel upsert slices across file boundaries.
type batch struct {
	ids       []string
	documents []string
	metadatas []map[string]any
}

func (b *batch) len() int { return len(b.ids) }

func (b *batch) add(chunk domain.Chunk, res *extract.Result) {
	b.ids = append(b.ids, chunk.ID)
	b.documents = append(b.documents, chunk.Text)
	b.metadatas = append(b.metadatas, map[string]any{
		"id":          chunk.ID,
		"source_file": chunk.SourceFile,
		"title":       res.Title,
		"type":        string(res.Type),
		"char_start":  chunk.CharStart,
		"char_end":    chunk.CharEnd,
	})
}

// discoverFiles walks root and returns the supported files in lexical
// order. Docx files are included only when asked for.
func discoverFiles(root string, includeDocx bool) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ftype, ok := domain.FileTypeForPath(path)
		if !ok {
			return nil
		}
		if ftype == domain.FileTypeDocx && !includeDocx {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return files, nil
}
