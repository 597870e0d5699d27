package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("kb/notes.md", 0, 100)
	b := ChunkID("kb/notes.md", 0, 100)
	assert.Equal(t, a, b, "same file and range must yield the same ID")

	_, err := uuid.Parse(a)
	require.NoError(t, err, "chunk IDs are UUIDs")
}

func TestChunkIDDistinct(t *testing.T) {
	base := ChunkID("kb/notes.md", 0, 100)

	assert.NotEqual(t, base, ChunkID("kb/notes.md", 80, 180), "different range")
	assert.NotEqual(t, base, ChunkID("kb/other.md", 0, 100), "different file")
}

func TestFileTypeForPath(t *testing.T) {
	tests := []struct {
		path string
		want FileType
		ok   bool
	}{
		{"kb/readme.md", FileTypeMarkdown, true},
		{"kb/notes.TXT", FileTypeText, true},
		{"kb/report.docx", FileTypeDocx, true},
		{"kb/image.png", "", false},
		{"kb/noext", "", false},
	}

	for _, tt := range tests {
		got, ok := FileTypeForPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestIngestibleTypes(t *testing.T) {
	assert.ElementsMatch(t,
		[]FileType{FileTypeMarkdown, FileTypeText, FileTypeDocx},
		IngestibleTypes())
}
