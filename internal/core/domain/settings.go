package domain

import "fmt"

// Settings holds the tunable parameters of the tool. A snapshot is read
// per operation; the core never caches settings across calls.
type Settings struct {
	// KBFolder is the corpus folder to ingest from.
	KBFolder string `json:"kb_folder" toml:"kb_folder"`

	// OriginalKBFolder is the folder KBFolder resets to.
	OriginalKBFolder string `json:"original_kb_folder" toml:"original_kb_folder"`

	// ChunkSize is the chunk window size in characters.
	ChunkSize int `json:"chunk_size" toml:"chunk_size"`

	// Overlap is the number of characters adjacent chunks share.
	// Must be strictly less than ChunkSize.
	Overlap int `json:"overlap" toml:"overlap"`

	// BatchSize is the maximum number of chunks per upsert call.
	BatchSize int `json:"batch_size" toml:"batch_size"`

	// IngestDocx includes .docx files in ingestion when true.
	IngestDocx bool `json:"ingest_docx" toml:"ingest_docx"`

	// RerankerKeepLoaded keeps the cross-encoder model resident across
	// rerank calls when true; false releases it after each call.
	RerankerKeepLoaded bool `json:"reranker_keep_loaded" toml:"reranker_keep_loaded"`
}

// DefaultSettings returns the initial settings used before any update.
func DefaultSettings() Settings {
	return Settings{
		KBFolder:           "kb",
		OriginalKBFolder:   "kb",
		ChunkSize:          100000,
		Overlap:            200,
		BatchSize:          64,
		IngestDocx:         false,
		RerankerKeepLoaded: true,
	}
}

// Validate rejects parameter combinations that would break chunking or
// batching. Checked before any I/O.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk_size must be positive, got %d", ErrConfig, s.ChunkSize)
	}
	if s.Overlap < 0 {
		return fmt.Errorf("%w: overlap must not be negative, got %d", ErrConfig, s.Overlap)
	}
	if s.Overlap >= s.ChunkSize {
		return fmt.Errorf("%w: overlap %d must be smaller than chunk_size %d", ErrConfig, s.Overlap, s.ChunkSize)
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("%w: batch_size must be positive, got %d", ErrConfig, s.BatchSize)
	}
	return nil
}

// SettingsPatch is a partial settings update. Nil fields are left unchanged.
type SettingsPatch struct {
	KBFolder           *string `json:"kb_folder"`
	ChunkSize          *int    `json:"chunk_size"`
	Overlap            *int    `json:"overlap"`
	BatchSize          *int    `json:"batch_size"`
	IngestDocx         *bool   `json:"ingest_docx"`
	RerankerKeepLoaded *bool   `json:"reranker_keep_loaded"`
}

// Apply returns a copy of s with the patch's non-nil fields applied.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.KBFolder != nil {
		s.KBFolder = *p.KBFolder
	}
	if p.ChunkSize != nil {
		s.ChunkSize = *p.ChunkSize
	}
	if p.Overlap != nil {
		s.Overlap = *p.Overlap
	}
	if p.BatchSize != nil {
		s.BatchSize = *p.BatchSize
	}
	if p.IngestDocx != nil {
		s.IngestDocx = *p.IngestDocx
	}
	if p.RerankerKeepLoaded != nil {
		s.RerankerKeepLoaded = *p.RerankerKeepLoaded
	}
	return s
}
