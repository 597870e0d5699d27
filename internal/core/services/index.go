package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/logger"
)

// IndexLifecycle owns the open-or-create handshake with the vector index.
// The collection is ensured at most once per process; a failed attempt
// leaves the lifecycle retryable, which is why this is a mutex and a flag
// rather than a sync.Once.
type IndexLifecycle struct {
	index  driven.VectorIndex
	ledger driven.IngestLedger

	mu    sync.Mutex
	ready bool
}

// NewIndexLifecycle creates a lifecycle around the given index.
// ledger may be nil when no ingest bookkeeping is configured.
func NewIndexLifecycle(index driven.VectorIndex, ledger driven.IngestLedger) *IndexLifecycle {
	return &IndexLifecycle{index: index, ledger: ledger}
}

// Collection returns the index, ensuring the collection exists on first use.
func (l *IndexLifecycle) Collection(ctx context.Context) (driven.VectorIndex, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.ready {
		logger.Debug("ensuring index collection")
		if err := l.index.Ensure(ctx); err != nil {
			return nil, fmt.Errorf("ensure collection: %w", err)
		}
		l.ready = true
	}
	return l.index, nil
}

// Reset removes every stored document and returns how many were removed.
// All-or-nothing: a failed delete removes nothing. The ingest ledger is
// cleared alongside so bookkeeping never outlives the data.
func (l *IndexLifecycle) Reset(ctx context.Context) (int, error) {
	index, err := l.Collection(ctx)
	if err != nil {
		return 0, err
	}

	ids, err := index.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list ids: %w", err)
	}
	if len(ids) == 0 {
		logger.Debug("reset: collection already empty")
		return 0, nil
	}

	if err := index.Delete(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete %d ids: %w", len(ids), err)
	}
	logger.Info("reset: removed %d documents", len(ids))

	if l.ledger != nil {
		if err := l.ledger.Clear(ctx); err != nil {
			logger.Warn("reset: clearing ingest ledger failed: %v", err)
		}
	}
	return len(ids), nil
}
