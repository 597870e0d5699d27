package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/logger"
)

// Reranker re-orders retrieval candidates by cross-encoder relevance.
// The keep-loaded preference is read from settings per call so a settings
// update takes effect without restarting.
type Reranker struct {
	scorer   driven.CrossEncoder
	settings driven.SettingsStore
}

// NewReranker creates a reranker over the given scorer. settings may be
// nil, in which case the model is kept loaded between calls.
func NewReranker(scorer driven.CrossEncoder, settings driven.SettingsStore) *Reranker {
	return &Reranker{scorer: scorer, settings: settings}
}

var _ CandidateReranker = (*Reranker)(nil)

// Rerank scores every candidate against the query and returns them sorted
// by descending score with 1-based ranks. Ties keep retrieval order.
// Empty candidates return empty without touching the model.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []domain.Record) ([]domain.RankedRecord, error) {
	if len(candidates) == 0 {
		return []domain.RankedRecord{}, nil
	}

	keepLoaded := true
	if r.settings != nil {
		if s, err := r.settings.GetAll(); err == nil {
			keepLoaded = s.RerankerKeepLoaded
		}
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Document
	}

	scores, err := r.scorer.Score(ctx, query, documents, keepLoaded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRerank, err)
	}
	if len(scores) != len(candidates) {
		return nil, fmt.Errorf("%w: got %d scores for %d documents", domain.ErrRerank, len(scores), len(candidates))
	}

	ranked := make([]domain.RankedRecord, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedRecord{Record: c, Score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	logger.Debug("reranked %d candidates, top score %.4f", len(ranked), ranked[0].Score)
	return ranked, nil
}
