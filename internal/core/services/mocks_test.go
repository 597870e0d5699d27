package services

import (
	"context"
	"time"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
)

// mockIndex is a hand-rolled VectorIndex double. Function fields override
// behaviour per test; call counters verify interactions.
type mockIndex struct {
	ensureFn  func(ctx context.Context) error
	queryFn   func(ctx context.Context, text string, k int, types []domain.FileType) ([]driven.VectorHit, error)
	upsertFn  func(ctx context.Context, ids, documents []string, metadatas []map[string]any) error
	listIDsFn func(ctx context.Context) ([]string, error)
	deleteFn  func(ctx context.Context, ids []string) error

	ensureCalls int
	upsertIDs   [][]string
	deletedIDs  [][]string
}

var _ driven.VectorIndex = (*mockIndex)(nil)

func (m *mockIndex) Ensure(ctx context.Context) error {
	m.ensureCalls++
	if m.ensureFn != nil {
		return m.ensureFn(ctx)
	}
	return nil
}

func (m *mockIndex) Query(ctx context.Context, text string, k int, types []domain.FileType) ([]driven.VectorHit, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, text, k, types)
	}
	return nil, nil
}

func (m *mockIndex) Upsert(ctx context.Context, ids, documents []string, metadatas []map[string]any) error {
	m.upsertIDs = append(m.upsertIDs, append([]string(nil), ids...))
	if m.upsertFn != nil {
		return m.upsertFn(ctx, ids, documents, metadatas)
	}
	return nil
}

func (m *mockIndex) ListIDs(ctx context.Context) ([]string, error) {
	if m.listIDsFn != nil {
		return m.listIDsFn(ctx)
	}
	return nil, nil
}

func (m *mockIndex) Delete(ctx context.Context, ids []string) error {
	m.deletedIDs = append(m.deletedIDs, append([]string(nil), ids...))
	if m.deleteFn != nil {
		return m.deleteFn(ctx, ids)
	}
	return nil
}

// mockScorer is a CrossEncoder double.
type mockScorer struct {
	scoreFn    func(ctx context.Context, query string, documents []string, keepLoaded bool) ([]float64, error)
	calls      int
	keepLoaded []bool
}

var _ driven.CrossEncoder = (*mockScorer)(nil)

func (m *mockScorer) Score(ctx context.Context, query string, documents []string, keepLoaded bool) ([]float64, error) {
	m.calls++
	m.keepLoaded = append(m.keepLoaded, keepLoaded)
	if m.scoreFn != nil {
		return m.scoreFn(ctx, query, documents, keepLoaded)
	}
	return make([]float64, len(documents)), nil
}

// mockGenerator is a Generator double.
type mockGenerator struct {
	generateFn func(ctx context.Context, prompt string) (string, error)
	streamFn   func(ctx context.Context, prompt string) (<-chan string, <-chan error)
	prompts    []string
}

var _ driven.Generator = (*mockGenerator)(nil)

func (m *mockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.prompts = append(m.prompts, prompt)
	if m.generateFn != nil {
		return m.generateFn(ctx, prompt)
	}
	return "", nil
}

func (m *mockGenerator) GenerateStream(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	m.prompts = append(m.prompts, prompt)
	if m.streamFn != nil {
		return m.streamFn(ctx, prompt)
	}
	fragments := make(chan string)
	errs := make(chan error, 1)
	close(fragments)
	close(errs)
	return fragments, errs
}

// staticStream builds a GenerateStream implementation that yields the
// given fragments then the given terminal error (nil for success).
func staticStream(fragments []string, terminal error) func(ctx context.Context, prompt string) (<-chan string, <-chan error) {
	return func(ctx context.Context, prompt string) (<-chan string, <-chan error) {
		out := make(chan string)
		errs := make(chan error, 1)
		go func() {
			defer close(out)
			defer close(errs)
			for _, f := range fragments {
				select {
				case out <- f:
				case <-ctx.Done():
					return
				}
			}
			if terminal != nil {
				errs <- terminal
			}
		}()
		return out, errs
	}
}

// mockSettingsStore is an in-memory SettingsStore double.
type mockSettingsStore struct {
	settings  domain.Settings
	getErr    error
	updateErr error
}

var _ driven.SettingsStore = (*mockSettingsStore)(nil)

func newMockSettingsStore() *mockSettingsStore {
	return &mockSettingsStore{settings: domain.DefaultSettings()}
}

func (m *mockSettingsStore) GetAll() (domain.Settings, error) {
	if m.getErr != nil {
		return domain.Settings{}, m.getErr
	}
	return m.settings, nil
}

func (m *mockSettingsStore) Update(patch domain.SettingsPatch) (domain.Settings, error) {
	if m.updateErr != nil {
		return domain.Settings{}, m.updateErr
	}
	m.settings = patch.Apply(m.settings)
	return m.settings, nil
}

func (m *mockSettingsStore) ResetKBFolder() (domain.Settings, error) {
	m.settings.KBFolder = m.settings.OriginalKBFolder
	return m.settings, nil
}

// mockLedger is an in-memory IngestLedger double.
type mockLedger struct {
	entries   map[string]driven.LedgerEntry
	clears    int
	recordErr error
}

var _ driven.IngestLedger = (*mockLedger)(nil)

func newMockLedger() *mockLedger {
	return &mockLedger{entries: map[string]driven.LedgerEntry{}}
}

func (m *mockLedger) RecordFile(ctx context.Context, sourceFile string, chunks int, modTime time.Time) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.entries[sourceFile] = driven.LedgerEntry{
		SourceFile: sourceFile,
		Chunks:     chunks,
		ModTime:    modTime,
		IngestedAt: time.Now(),
	}
	return nil
}

func (m *mockLedger) Files(ctx context.Context) ([]driven.LedgerEntry, error) {
	entries := make([]driven.LedgerEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	return entries, nil
}

func (m *mockLedger) Clear(ctx context.Context) error {
	m.clears++
	m.entries = map[string]driven.LedgerEntry{}
	return nil
}

// mockRetriever is a CandidateRetriever double for orchestrator tests.
type mockRetriever struct {
	records []domain.Record
	err     error
	lastK   int
}

var _ CandidateRetriever = (*mockRetriever)(nil)

func (m *mockRetriever) Retrieve(ctx context.Context, text string, k int) ([]domain.Record, error) {
	m.lastK = k
	return m.records, m.err
}

// mockReranker is a CandidateReranker double for orchestrator tests.
type mockReranker struct {
	ranked []domain.RankedRecord
	err    error
	calls  int
}

var _ CandidateReranker = (*mockReranker)(nil)

func (m *mockReranker) Rerank(ctx context.Context, query string, candidates []domain.Record) ([]domain.RankedRecord, error) {
	m.calls++
	return m.ranked, m.err
}
