package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

func TestNewRejectsBadParameters(t *testing.T) {
	tests := []struct {
		name      string
		chunkSize int
		overlap   int
	}{
		{"zero chunk size", 0, 0},
		{"negative chunk size", -1, 0},
		{"negative overlap", 100, -1},
		{"overlap equals chunk size", 100, 100},
		{"overlap exceeds chunk size", 100, 120},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.chunkSize, tt.overlap)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfig)
		})
	}
}

func TestChunksWindowFormula(t *testing.T) {
	// 250 characters with chunk_size=100, overlap=20 must produce
	// windows starting at 0, 80, 160, 240.
	c, err := New(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("a", 250)
	chunks := c.Slice("kb/a.txt", text)

	require.Len(t, chunks, 4)

	wantRanges := [][2]int{{0, 100}, {80, 180}, {160, 250}, {240, 250}}
	for i, want := range wantRanges {
		assert.Equal(t, want[0], chunks[i].CharStart, "chunk %d start", i)
		assert.Equal(t, want[1], chunks[i].CharEnd, "chunk %d end", i)
		assert.Equal(t, want[1]-want[0], len(chunks[i].Text), "chunk %d length", i)
	}
}

func TestChunksCoverageAndOverlap(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		chunkSize int
		overlap   int
	}{
		{"no overlap", 95, 10, 0},
		{"small overlap", 333, 50, 10},
		{"large overlap", 100, 20, 19},
		{"single window", 5, 100, 20},
		{"exact fit", 100, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.chunkSize, tt.overlap)
			require.NoError(t, err)

			text := strings.Repeat("x", tt.length)
			chunks := c.Slice("f.txt", text)
			require.NotEmpty(t, chunks)

			// Full coverage: first window starts at 0, last ends at length.
			assert.Equal(t, 0, chunks[0].CharStart)
			assert.Equal(t, tt.length, chunks[len(chunks)-1].CharEnd)

			// Every adjacent pair overlaps by exactly overlap characters
			// (the final window may be shorter but still starts
			// chunkSize-overlap after its predecessor).
			for i := 1; i < len(chunks); i++ {
				step := chunks[i].CharStart - chunks[i-1].CharStart
				assert.Equal(t, tt.chunkSize-tt.overlap, step, "step between chunks %d and %d", i-1, i)
			}
		})
	}
}

func TestChunksEmptyText(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	assert.Empty(t, c.Slice("f.txt", ""))
}

func TestChunksTextMatchesRange(t *testing.T) {
	c, err := New(10, 3)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxyz"
	runes := []rune(text)
	for chunk := range c.Chunks("f.txt", text) {
		assert.Equal(t, string(runes[chunk.CharStart:chunk.CharEnd]), chunk.Text)
	}
}

func TestChunksRestartable(t *testing.T) {
	c, err := New(10, 2)
	require.NoError(t, err)

	seq := c.Chunks("f.txt", strings.Repeat("y", 40))

	first := 0
	for range seq {
		first++
	}
	second := 0
	for range seq {
		second++
	}
	assert.Equal(t, first, second, "iterating twice yields the same windows")
}

func TestChunksStableIDs(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	a := c.Slice("kb/doc.md", strings.Repeat("z", 250))
	b := c.Slice("kb/doc.md", strings.Repeat("z", 250))

	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID, "chunk %d", i)
	}
}
