// Package extract turns corpus files into plain text with an inferred
// title, one extractor per supported file type.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

// Result is the extracted content of one corpus file.
type Result struct {
	// Text is the plain text content. May be empty for best-effort
	// formats; an empty text means zero chunks, not an error.
	Text string

	// Title is the inferred document title.
	Title string

	// Type is the file kind.
	Type domain.FileType
}

// File extracts plain text from the file at path according to its type.
// Unsupported extensions return an error; the ingestor logs and skips.
func File(path string) (*Result, error) {
	ftype, ok := domain.FileTypeForPath(path)
	if !ok {
		return nil, fmt.Errorf("unsupported file type: %s", path)
	}

	switch ftype {
	case domain.FileTypeDocx:
		return docxFile(path)
	case domain.FileTypeMarkdown:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		text := string(data)
		return &Result{Text: text, Title: markdownTitle(text, path), Type: ftype}, nil
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return &Result{Text: string(data), Title: titleFromPath(path), Type: ftype}, nil
	}
}

// markdownTitle uses the first level-one heading as the title, falling
// back to the filename stem.
func markdownTitle(text, path string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if after, ok := strings.CutPrefix(line, "# "); ok {
			if title := strings.TrimSpace(after); title != "" {
				return title
			}
		}
	}
	return titleFromPath(path)
}

// titleFromPath derives a readable title from the filename stem.
func titleFromPath(path string) string {
	name := filepath.Base(path)
	if ext := filepath.Ext(name); ext != "" {
		name = strings.TrimSuffix(name, ext)
	}
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return name
}
