package domain

import (
	"path/filepath"
	"strings"
)

// FileType identifies the kind of source file a chunk came from.
// Only these types are ever ingested or retrieved.
type FileType string

// Supported file types.
const (
	FileTypeMarkdown FileType = "md"
	FileTypeText     FileType = "txt"
	FileTypeDocx     FileType = "docx"
)

// IngestibleTypes returns the closed set of file types the index accepts.
// Retrieval filters on the same set.
func IngestibleTypes() []FileType {
	return []FileType{FileTypeMarkdown, FileTypeText, FileTypeDocx}
}

// FileTypeForPath maps a file path to its FileType by extension.
// Returns false for unsupported extensions.
func FileTypeForPath(path string) (FileType, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md":
		return FileTypeMarkdown, true
	case ".txt":
		return FileTypeText, true
	case ".docx":
		return FileTypeDocx, true
	default:
		return "", false
	}
}

// Record is the canonical form of a single vector index hit.
// Records are immutable once produced by the retriever.
type Record struct {
	// ID is the stable chunk identifier assigned at ingestion time.
	ID string

	// Document is the chunk text.
	Document string

	// Metadata carries at least source_file, type and usually title.
	Metadata map[string]any

	// Similarity is the normalised similarity in [0,1] when the index
	// reports one. Nil when the index gave no usable similarity.
	Similarity *float64

	// Distance is the raw distance or score as reported by the index,
	// preserved for the similarity derivation in formatting.
	Distance *float64
}

// RankedRecord is a Record with a cross-encoder relevance score attached.
// The total order is descending score; ties keep the original retrieval
// order.
type RankedRecord struct {
	Record

	// Score is the raw cross-encoder output. Unbounded.
	Score float64

	// Rank is the 1-based position after sorting.
	Rank int
}

// FormattedResult is the presentation view of a selected record.
type FormattedResult struct {
	Rank       int            `json:"rank"`
	Similarity *float64       `json:"similarity"`
	Title      string         `json:"title"`
	Source     string         `json:"source"`
	Snippet    string         `json:"snippet"`
	Document   string         `json:"document"`
	Metadata   map[string]any `json:"metadata"`
}
