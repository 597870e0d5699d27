package services

import (
	"path/filepath"
	"strings"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

const snippetLimit = 140

// formatRecords turns ranked records into their presentation form.
// Ranks are re-numbered 1..N in slice order so the output is always
// contiguous regardless of how the input was selected.
func formatRecords(records []domain.RankedRecord) []domain.FormattedResult {
	results := make([]domain.FormattedResult, len(records))
	for i, rec := range records {
		results[i] = domain.FormattedResult{
			Rank:       i + 1,
			Similarity: deriveSimilarity(rec.Record),
			Title:      resultTitle(rec.Metadata),
			Source:     resultSource(rec.Metadata),
			Snippet:    snippet(rec.Document),
			Document:   rec.Document,
			Metadata:   rec.Metadata,
		}
	}
	return results
}

// deriveSimilarity prefers the index's explicit similarity. When only a
// bounded [0,1] distance is available it derives 1-distance; anything
// else yields nil rather than a fabricated number.
func deriveSimilarity(rec domain.Record) *float64 {
	if rec.Similarity != nil {
		return rec.Similarity
	}
	if rec.Distance != nil {
		d := *rec.Distance
		if d >= 0.0 && d <= 1.0 {
			sim := 1.0 - d
			return &sim
		}
	}
	return nil
}

// snippet collapses runs of whitespace and truncates to snippetLimit
// characters, appending an ellipsis when text was cut.
func snippet(document string) string {
	collapsed := strings.Join(strings.Fields(document), " ")
	runes := []rune(collapsed)
	if len(runes) <= snippetLimit {
		return collapsed
	}
	return strings.TrimRight(string(runes[:snippetLimit]), " ") + "..."
}

func resultTitle(meta map[string]any) string {
	if title, ok := meta["title"].(string); ok && title != "" {
		return title
	}
	if source, ok := meta["source_file"].(string); ok && source != "" {
		base := filepath.Base(source)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ""
}

func resultSource(meta map[string]any) string {
	if source, ok := meta["source_file"].(string); ok && source != "" {
		return source
	}
	if source, ok := meta["source"].(string); ok {
		return source
	}
	return ""
}
