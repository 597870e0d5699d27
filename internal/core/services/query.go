package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/chengahtung/local-lode/internal/core/domain"
	"github.com/chengahtung/local-lode/internal/core/ports/driven"
	"github.com/chengahtung/local-lode/internal/core/ports/driving"
	"github.com/chengahtung/local-lode/internal/logger"
)

// DefaultNResults is used when a query does not say how many candidates
// to retrieve.
const DefaultNResults = 5

// contextRecordLimit caps how many records ground the generated answer.
const contextRecordLimit = 10

// CandidateRetriever yields similarity-ordered candidates for a query.
type CandidateRetriever interface {
	Retrieve(ctx context.Context, text string, k int) ([]domain.Record, error)
}

// CandidateReranker re-orders candidates by relevance to the query.
type CandidateReranker interface {
	Rerank(ctx context.Context, query string, candidates []domain.Record) ([]domain.RankedRecord, error)
}

// Query orchestrates the retrieve, rerank, format, generate pipeline.
type Query struct {
	retriever CandidateRetriever
	reranker  CandidateReranker
	generator driven.Generator
}

// NewQuery creates the orchestrator. reranker and generator may be nil;
// the corresponding pipeline stages are then skipped even when requested.
func NewQuery(retriever CandidateRetriever, reranker CandidateReranker, generator driven.Generator) *Query {
	return &Query{retriever: retriever, reranker: reranker, generator: generator}
}

var _ driving.QueryService = (*Query)(nil)

// Query runs the full pipeline and returns one complete response.
func (q *Query) Query(ctx context.Context, spec domain.QuerySpec) (*domain.QueryResult, error) {
	logger.Section("Query")
	logger.Debug("query=%q n_results=%d rerank=%t llm=%t", spec.Text, spec.NResults, spec.UseRerank, spec.UseLLM)

	chosen, err := q.selectRecords(ctx, spec)
	if err != nil {
		return nil, err
	}
	formatted := formatRecords(chosen)

	var llmResponse *string
	if spec.UseLLM && q.generator != nil && len(formatted) > 0 {
		answer := q.generate(ctx, spec.Text, formatted)
		llmResponse = &answer
	}

	return &domain.QueryResult{
		Results:      formatted,
		LLMResponse:  llmResponse,
		TotalResults: len(formatted),
	}, nil
}

// QueryStream runs the pipeline as an event sequence. The channel is
// unbuffered; every send races ctx so a gone consumer stops production.
func (q *Query) QueryStream(ctx context.Context, spec domain.QuerySpec) <-chan domain.StreamEvent {
	events := make(chan domain.StreamEvent)

	go func() {
		defer close(events)

		emit := func(ev domain.StreamEvent) bool {
			select {
			case events <- ev:
				return true
			case <-ctx.Done():
				return false
			}
		}

		base := spec
		base.UseLLM = false
		result, err := q.Query(ctx, base)
		if err != nil {
			emit(domain.ErrorEvent(err))
			return
		}
		if !emit(domain.ResultsEvent(result)) {
			return
		}

		if spec.UseLLM && q.generator != nil && len(result.Results) > 0 {
			prompt := answerPrompt(spec.Text, result.Results)
			fragments, errs := q.generator.GenerateStream(ctx, prompt)
			for fragment := range fragments {
				if !emit(domain.ChunkEvent(fragment)) {
					return
				}
			}
			if genErr := <-errs; genErr != nil {
				emit(domain.ErrorEvent(fmt.Errorf("%w: %v", domain.ErrGeneration, genErr)))
				return
			}
		}

		emit(domain.DoneEvent())
	}()

	return events
}

// selectRecords retrieves candidates and optionally reranks them. A
// rerank failure is logged and falls back to retrieval order; it never
// fails the query.
func (q *Query) selectRecords(ctx context.Context, spec domain.QuerySpec) ([]domain.RankedRecord, error) {
	k := spec.NResults
	if k <= 0 {
		k = DefaultNResults
	}

	candidates, err := q.retriever.Retrieve(ctx, spec.Text, k)
	if err != nil {
		return nil, fmt.Errorf("retrieve: %w", err)
	}

	if spec.UseRerank && q.reranker != nil && len(candidates) > 0 {
		ranked, err := q.reranker.Rerank(ctx, spec.Text, candidates)
		if err == nil {
			return ranked, nil
		}
		logger.Warn("rerank failed, using retrieval order: %v", err)
	}

	ranked := make([]domain.RankedRecord, len(candidates))
	for i, c := range candidates {
		ranked[i] = domain.RankedRecord{Record: c, Rank: i + 1}
	}
	return ranked, nil
}

// generate produces the complete answer for the sync path. A generator
// failure is folded into the response as a marker string so the search
// results still reach the caller.
func (q *Query) generate(ctx context.Context, question string, results []domain.FormattedResult) string {
	logger.Debug("generating answer over %d records", min(len(results), contextRecordLimit))

	answer, err := q.generator.Generate(ctx, answerPrompt(question, results))
	if err != nil {
		logger.Warn("answer generation failed: %v", err)
		return fmt.Sprintf("(LLM call failed: %v)", err)
	}
	return answer
}

// answerPrompt builds the grounding prompt from at most the top
// contextRecordLimit formatted results. Each record contributes its id
// (metadata id, falling back to rank), title and full document.
func answerPrompt(question string, results []domain.FormattedResult) string {
	if len(results) > contextRecordLimit {
		results = results[:contextRecordLimit]
	}

	blocks := make([]string, len(results))
	for i, res := range results {
		id, _ := res.Metadata["id"].(string)
		if id == "" {
			id = strconv.Itoa(res.Rank)
		}
		blocks[i] = fmt.Sprintf("[%s], Title: [%s]\n %s", id, res.Title, res.Document)
	}
	grounding := strings.Join(blocks, "\n\n")

	return fmt.Sprintf(
		"Answer the question using only the context below. Cite the bracketed ids of the records you rely on. If the context does not contain the answer, say so.\n\nContext:\n%s\n\nQuestion: %s",
		grounding, question)
}
