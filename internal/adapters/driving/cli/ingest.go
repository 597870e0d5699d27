package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
	"github.com/chengahtung/local-lode/internal/logger"
)

var (
	ingestFolder    string
	ingestChunkSize int
	ingestOverlap   int
	ingestBatchSize int
	ingestDocx      bool
	ingestWatch     bool
	ingestStatus    bool
)

// watchDebounce coalesces bursts of filesystem events into one re-ingest.
const watchDebounce = 2 * time.Second

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest corpus files into the index",
	Long: `Discovers markdown, text and optionally docx files under the corpus
folder, splits them into overlapping chunks and writes them to the
vector store. Re-ingesting unchanged content overwrites in place.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestFolder, "folder", "", "corpus folder (default: configured kb_folder)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "characters per chunk (default: configured chunk_size)")
	ingestCmd.Flags().IntVar(&ingestOverlap, "overlap", 0, "overlapping characters between chunks (default: configured overlap)")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "chunks per upsert batch (default: configured batch_size)")
	ingestCmd.Flags().BoolVar(&ingestDocx, "docx", false, "include .docx files")
	ingestCmd.Flags().BoolVar(&ingestWatch, "watch", false, "keep running and re-ingest on file changes")
	ingestCmd.Flags().BoolVar(&ingestStatus, "status", false, "list ingested files instead of ingesting")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	if ingestStatus {
		return printIngestStatus(cmd)
	}

	opts := driving.IngestOptions{
		CorpusRoot:  ingestFolder,
		ChunkSize:   ingestChunkSize,
		Overlap:     ingestOverlap,
		BatchSize:   ingestBatchSize,
		IncludeDocx: ingestDocx,
	}

	if err := ingestOnce(cmd, opts); err != nil {
		return err
	}
	if !ingestWatch {
		return nil
	}
	return watchAndIngest(cmd, opts)
}

func ingestOnce(cmd *cobra.Command, opts driving.IngestOptions) error {
	count, err := ingestService.Ingest(context.Background(), opts)
	if err != nil {
		var partial *domain.IngestPartialError
		if errors.As(err, &partial) {
			cmd.Printf("Ingestion aborted after %d chunks: %v\n", partial.Upserted, partial.Err)
		}
		return err
	}
	cmd.Printf("Ingested %d chunks.\n", count)
	return nil
}

func printIngestStatus(cmd *cobra.Command) error {
	entries, err := ingestService.Ledger(context.Background())
	if err != nil {
		return fmt.Errorf("reading ledger: %w", err)
	}
	if entries == nil {
		cmd.Println("No ingest ledger configured.")
		return nil
	}
	if len(entries) == 0 {
		cmd.Println("Nothing ingested yet.")
		return nil
	}

	for _, e := range entries {
		cmd.Printf("  %s  %d chunks  (modified %s, ingested %s)\n",
			e.SourceFile, e.Chunks,
			e.ModTime.Format("2006-01-02 15:04"),
			e.IngestedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

// watchAndIngest blocks, re-running ingestion whenever files under the
// corpus folder change. Events are debounced because editors tend to
// fire several writes per save.
func watchAndIngest(cmd *cobra.Command, opts driving.IngestOptions) error {
	root := opts.CorpusRoot
	if root == "" {
		if settingsService == nil {
			return errors.New("settings service not configured")
		}
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("loading settings: %w", err)
		}
		root = settings.KBFolder
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the root and every subdirectory; fsnotify is not recursive.
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watching %s: %w", root, err)
	}

	cmd.Printf("Watching %s for changes (ctrl-c to stop)...\n", root)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("watch: %s %s", event.Op, event.Name)
			if event.Op&fsnotify.Create != 0 {
				// New directories need their own watch.
				_ = watcher.Add(event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerCh = timer.C
			} else {
				timer.Reset(watchDebounce)
			}
		case <-timerCh:
			timer = nil
			timerCh = nil
			if err := ingestOnce(cmd, opts); err != nil {
				logger.Warn("re-ingest failed: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}
