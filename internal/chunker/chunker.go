// Package chunker splits document text into overlapping fixed-size
// character windows. Chunking is pure: no I/O, no side effects.
package chunker

import (
	"fmt"
	"iter"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 100000

// DefaultOverlap is the default number of overlapping characters.
const DefaultOverlap = 200

// Chunker cuts text into windows of chunkSize characters where adjacent
// windows share overlap characters. Window i covers
// [i*(chunkSize-overlap), i*(chunkSize-overlap)+chunkSize), clipped to the
// text length; iteration stops once a window's start reaches the end.
type Chunker struct {
	chunkSize int
	overlap   int
}

// New creates a chunker, rejecting parameters under which windows would
// never advance.
func New(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("%w: chunk_size must be positive, got %d", domain.ErrConfig, chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must not be negative, got %d", domain.ErrConfig, overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("%w: overlap %d must be smaller than chunk_size %d", domain.ErrConfig, overlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}, nil
}

// Chunks returns a lazy, finite, restartable sequence of windows over text.
// Positions count characters (runes), matching how chunk boundaries are
// recorded in the index.
func (c *Chunker) Chunks(sourceFile, text string) iter.Seq[domain.Chunk] {
	return func(yield func(domain.Chunk) bool) {
		runes := []rune(text)
		step := c.chunkSize - c.overlap

		for start := 0; start < len(runes); start += step {
			end := start + c.chunkSize
			if end > len(runes) {
				end = len(runes)
			}

			chunk := domain.Chunk{
				ID:         domain.ChunkID(sourceFile, start, end),
				SourceFile: sourceFile,
				CharStart:  start,
				CharEnd:    end,
				Text:       string(runes[start:end]),
			}
			if !yield(chunk) {
				return
			}
		}
	}
}

// Slice collects the full window sequence into a slice.
func (c *Chunker) Slice(sourceFile, text string) []domain.Chunk {
	var chunks []domain.Chunk
	for chunk := range c.Chunks(sourceFile, text) {
		chunks = append(chunks, chunk)
	}
	return chunks
}
