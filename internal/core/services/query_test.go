package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

func queryRecords(n int) []domain.Record {
	recs := make([]domain.Record, n)
	for i := range recs {
		recs[i] = domain.Record{
			ID:       fmt.Sprintf("c%d", i+1),
			Document: fmt.Sprintf("document %d", i+1),
			Metadata: map[string]any{
				"id":          fmt.Sprintf("c%d", i+1),
				"source_file": fmt.Sprintf("kb/f%d.md", i+1),
				"title":       fmt.Sprintf("Title %d", i+1),
			},
		}
	}
	return recs
}

func TestQueryWithoutRerankOrLLM(t *testing.T) {
	retriever := &mockRetriever{records: queryRecords(3)}
	q := NewQuery(retriever, nil, nil)

	res, err := q.Query(context.Background(), domain.QuerySpec{Text: "q", NResults: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, res.TotalResults)
	assert.Nil(t, res.LLMResponse)
	require.Len(t, res.Results, 3)
	for i, r := range res.Results {
		assert.Equal(t, i+1, r.Rank, "retrieval order preserved")
	}
	assert.Equal(t, "c1", res.Results[0].Metadata["id"])
}

func TestQueryDefaultsNResults(t *testing.T) {
	retriever := &mockRetriever{}
	q := NewQuery(retriever, nil, nil)

	_, err := q.Query(context.Background(), domain.QuerySpec{Text: "q"})
	require.NoError(t, err)
	assert.Equal(t, DefaultNResults, retriever.lastK)
}

func TestQueryRerankReorders(t *testing.T) {
	recs := queryRecords(2)
	reranker := &mockReranker{ranked: []domain.RankedRecord{
		{Record: recs[1], Score: 9.0, Rank: 1},
		{Record: recs[0], Score: 1.0, Rank: 2},
	}}
	q := NewQuery(&mockRetriever{records: recs}, reranker, nil)

	res, err := q.Query(context.Background(), domain.QuerySpec{Text: "q", NResults: 2, UseRerank: true})
	require.NoError(t, err)
	assert.Equal(t, 1, reranker.calls)
	assert.Equal(t, "c2", res.Results[0].Metadata["id"])
	assert.Equal(t, "c1", res.Results[1].Metadata["id"])
}

func TestQueryRerankFailureFallsBack(t *testing.T) {
	reranker := &mockReranker{err: fmt.Errorf("%w: backend down", domain.ErrRerank)}
	q := NewQuery(&mockRetriever{records: queryRecords(2)}, reranker, nil)

	res, err := q.Query(context.Background(), domain.QuerySpec{Text: "q", NResults: 2, UseRerank: true})
	require.NoError(t, err, "rerank failure must not fail the query")
	assert.Equal(t, "c1", res.Results[0].Metadata["id"], "retrieval order kept")
	assert.Equal(t, "c2", res.Results[1].Metadata["id"])
}

func TestQueryRetrieveFailureIsFatal(t *testing.T) {
	retriever := &mockRetriever{err: fmt.Errorf("%w: refused", domain.ErrIndexUnavailable)}
	q := NewQuery(retriever, nil, nil)

	_, err := q.Query(context.Background(), domain.QuerySpec{Text: "q"})
	assert.ErrorIs(t, err, domain.ErrIndexUnavailable)
}

func TestQueryLLMAnswer(t *testing.T) {
	gen := &mockGenerator{}
	gen.generateFn = func(ctx context.Context, prompt string) (string, error) {
		return "the answer", nil
	}
	q := NewQuery(&mockRetriever{records: queryRecords(2)}, nil, gen)

	res, err := q.Query(context.Background(), domain.QuerySpec{Text: "why?", NResults: 2, UseLLM: true})
	require.NoError(t, err)
	require.NotNil(t, res.LLMResponse)
	assert.Equal(t, "the answer", *res.LLMResponse)

	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "[c1], Title: [Title 1]\n document 1")
	assert.Contains(t, gen.prompts[0], "Question: why?")
}

func TestQueryLLMFailureEmbedsMarker(t *testing.T) {
	gen := &mockGenerator{}
	gen.generateFn = func(ctx context.Context, prompt string) (string, error) {
		return "", errors.New("model timeout")
	}
	q := NewQuery(&mockRetriever{records: queryRecords(1)}, nil, gen)

	res, err := q.Query(context.Background(), domain.QuerySpec{Text: "q", NResults: 1, UseLLM: true})
	require.NoError(t, err)
	require.NotNil(t, res.LLMResponse)
	assert.Equal(t, "(LLM call failed: model timeout)", *res.LLMResponse)
	assert.Equal(t, 1, res.TotalResults, "results still returned")
}

func TestQueryLLMSkippedWhenNoResults(t *testing.T) {
	gen := &mockGenerator{}
	q := NewQuery(&mockRetriever{}, nil, gen)

	res, err := q.Query(context.Background(), domain.QuerySpec{Text: "q", UseLLM: true})
	require.NoError(t, err)
	assert.Nil(t, res.LLMResponse)
	assert.Empty(t, gen.prompts)
}

func TestAnswerPromptCapsAtTenRecords(t *testing.T) {
	ranked := make([]domain.RankedRecord, 15)
	recs := queryRecords(15)
	for i, r := range recs {
		ranked[i] = domain.RankedRecord{Record: r, Rank: i + 1}
	}
	prompt := answerPrompt("q", formatRecords(ranked))

	assert.Contains(t, prompt, "[c10]")
	assert.NotContains(t, prompt, "[c11]")
}

func TestAnswerPromptIDFallsBackToRank(t *testing.T) {
	results := []domain.FormattedResult{{Rank: 3, Title: "T", Document: "d", Metadata: map[string]any{}}}
	prompt := answerPrompt("q", results)
	assert.Contains(t, prompt, "[3], Title: [T]\n d")
}

func collect(ch <-chan domain.StreamEvent) []domain.StreamEvent {
	var events []domain.StreamEvent
	for ev := range ch {
		events = append(events, ev)
	}
	return events
}

func TestStreamOrderWithoutLLM(t *testing.T) {
	q := NewQuery(&mockRetriever{records: queryRecords(2)}, nil, nil)

	events := collect(q.QueryStream(context.Background(), domain.QuerySpec{Text: "q", NResults: 2}))
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventResults, events[0].Type)
	assert.Equal(t, domain.EventDone, events[1].Type)

	result, ok := events[0].Payload.(*domain.QueryResult)
	require.True(t, ok)
	assert.Equal(t, 2, result.TotalResults)
	assert.Nil(t, result.LLMResponse, "results event computed with generation off")
}

func TestStreamOrderWithLLM(t *testing.T) {
	gen := &mockGenerator{streamFn: staticStream([]string{"The ", "answer."}, nil)}
	q := NewQuery(&mockRetriever{records: queryRecords(1)}, nil, gen)

	events := collect(q.QueryStream(context.Background(), domain.QuerySpec{Text: "q", NResults: 1, UseLLM: true}))
	require.Len(t, events, 4)
	assert.Equal(t, domain.EventResults, events[0].Type)
	assert.Equal(t, domain.EventChunk, events[1].Type)
	assert.Equal(t, "The ", events[1].Payload)
	assert.Equal(t, domain.EventChunk, events[2].Type)
	assert.Equal(t, "answer.", events[2].Payload)
	assert.Equal(t, domain.EventDone, events[3].Type)
}

func TestStreamRetrieveFailureEmitsErrorOnly(t *testing.T) {
	retriever := &mockRetriever{err: fmt.Errorf("%w: refused", domain.ErrIndexUnavailable)}
	q := NewQuery(retriever, nil, nil)

	events := collect(q.QueryStream(context.Background(), domain.QuerySpec{Text: "q"}))
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventError, events[0].Type)
}

func TestStreamGenerationFailureTerminatesWithError(t *testing.T) {
	gen := &mockGenerator{streamFn: staticStream([]string{"partial"}, errors.New("model died"))}
	q := NewQuery(&mockRetriever{records: queryRecords(1)}, nil, gen)

	events := collect(q.QueryStream(context.Background(), domain.QuerySpec{Text: "q", NResults: 1, UseLLM: true}))
	require.Len(t, events, 3)
	assert.Equal(t, domain.EventResults, events[0].Type)
	assert.Equal(t, domain.EventChunk, events[1].Type)
	assert.Equal(t, domain.EventError, events[2].Type)

	payload, ok := events[2].Payload.(string)
	require.True(t, ok)
	assert.Contains(t, payload, "model died")
}

func TestStreamTerminalEventIsLast(t *testing.T) {
	gen := &mockGenerator{streamFn: staticStream([]string{"a", "b", "c"}, nil)}
	q := NewQuery(&mockRetriever{records: queryRecords(1)}, nil, gen)

	events := collect(q.QueryStream(context.Background(), domain.QuerySpec{Text: "q", NResults: 1, UseLLM: true}))
	require.NotEmpty(t, events)
	for i, ev := range events[:len(events)-1] {
		assert.NotEqual(t, domain.EventDone, ev.Type, "event %d", i)
		assert.NotEqual(t, domain.EventError, ev.Type, "event %d", i)
	}
	last := events[len(events)-1].Type
	assert.True(t, last == domain.EventDone || last == domain.EventError)
}

func TestStreamConsumerCancellation(t *testing.T) {
	fragments := make([]string, 1000)
	for i := range fragments {
		fragments[i] = "x"
	}
	gen := &mockGenerator{streamFn: staticStream(fragments, nil)}
	q := NewQuery(&mockRetriever{records: queryRecords(1)}, nil, gen)

	ctx, cancel := context.WithCancel(context.Background())
	ch := q.QueryStream(ctx, domain.QuerySpec{Text: "q", NResults: 1, UseLLM: true})

	<-ch // results
	<-ch // first chunk
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // channel closed, producer stopped
			}
		case <-deadline:
			t.Fatal("producer did not stop after cancellation")
		}
	}
}

func TestStreamEventPayloadShapes(t *testing.T) {
	q := NewQuery(&mockRetriever{records: queryRecords(1)}, nil, nil)

	events := collect(q.QueryStream(context.Background(), domain.QuerySpec{Text: "q", NResults: 1}))
	require.Len(t, events, 2)
	assert.IsType(t, &domain.QueryResult{}, events[0].Payload)
	assert.Nil(t, events[1].Payload)

	var sawChunkNonString bool
	for _, ev := range events {
		if ev.Type == domain.EventChunk {
			if _, ok := ev.Payload.(string); !ok {
				sawChunkNonString = true
			}
		}
	}
	assert.False(t, sawChunkNonString)
}
