package cli

import (
	"context"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
)

type stubQueryService struct {
	result *domain.QueryResult
	err    error
	events []domain.StreamEvent
	spec   domain.QuerySpec
}

func (s *stubQueryService) Query(ctx context.Context, spec domain.QuerySpec) (*domain.QueryResult, error) {
	s.spec = spec
	return s.result, s.err
}

func (s *stubQueryService) QueryStream(ctx context.Context, spec domain.QuerySpec) <-chan domain.StreamEvent {
	s.spec = spec
	ch := make(chan domain.StreamEvent)
	go func() {
		defer close(ch)
		for _, ev := range s.events {
			ch <- ev
		}
	}()
	return ch
}

type stubIngestService struct {
	count   int
	err     error
	entries []driven.LedgerEntry
	opts    driving.IngestOptions
}

func (s *stubIngestService) Ingest(ctx context.Context, opts driving.IngestOptions) (int, error) {
	s.opts = opts
	return s.count, s.err
}

func (s *stubIngestService) Ledger(ctx context.Context) ([]driven.LedgerEntry, error) {
	return s.entries, nil
}

type stubAdmin struct {
	removed int
	err     error
}

func (s *stubAdmin) Reset(ctx context.Context) (int, error) { return s.removed, s.err }

type stubSettingsService struct {
	settings domain.Settings
	patch    domain.SettingsPatch
	err      error
}

func (s *stubSettingsService) Get() (domain.Settings, error) { return s.settings, s.err }

func (s *stubSettingsService) Update(patch domain.SettingsPatch) (domain.Settings, error) {
	if s.err != nil {
		return domain.Settings{}, s.err
	}
	s.patch = patch
	s.settings = patch.Apply(s.settings)
	return s.settings, nil
}

func (s *stubSettingsService) ResetKBFolder() (domain.Settings, error) {
	s.settings.KBFolder = s.settings.OriginalKBFolder
	return s.settings, nil
}

// setupTestServices wires stub services and returns a cleanup restoring
// the previous wiring.
func setupTestServices() (query *stubQueryService, ingest *stubIngestService, admin *stubAdmin, settings *stubSettingsService, cleanup func()) {
	oldQuery, oldIngest, oldAdmin, oldSettings := queryService, ingestService, adminService, settingsService

	sim := 0.87
	query = &stubQueryService{result: &domain.QueryResult{
		Results: []domain.FormattedResult{{
			Rank:       1,
			Similarity: &sim,
			Title:      "Solar Power",
			Source:     "kb/solar.md",
			Snippet:    "solar panels convert light",
		}},
		TotalResults: 1,
	}}
	ingest = &stubIngestService{count: 9}
	admin = &stubAdmin{removed: 3}
	settings = &stubSettingsService{settings: domain.DefaultSettings()}

	SetServices(Services{Query: query, Ingest: ingest, Admin: admin, Settings: settings})

	cleanup = func() {
		queryService, ingestService, adminService, settingsService = oldQuery, oldIngest, oldAdmin, oldSettings
	}
	return query, ingest, admin, settings, cleanup
}
