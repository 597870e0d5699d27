package extract

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"strings"

	"github.com/chengahtung/local-lode/internal/core/domain"
)

// docxFile extracts text from a DOCX archive. Extraction is best-effort:
// a malformed archive or missing document part yields empty text so the
// ingestor produces zero chunks instead of failing the file.
func docxFile(path string) (*Result, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return &Result{Type: domain.FileTypeDocx, Title: titleFromPath(path)}, nil
	}
	defer reader.Close()

	text := extractDocumentText(&reader.Reader)

	title := extractCoreTitle(&reader.Reader)
	if title == "" {
		title = titleFromPath(path)
	}

	return &Result{Text: text, Title: title, Type: domain.FileTypeDocx}, nil
}

// extractDocumentText pulls text runs out of word/document.xml.
func extractDocumentText(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return ""
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return ""
		}
		return parseDocumentXML(content)
	}
	return ""
}

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

func parseDocumentXML(content []byte) string {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return ""
	}

	var result strings.Builder
	for i, para := range doc.Body.Paragraphs {
		if i > 0 {
			result.WriteString("\n")
		}
		for _, r := range para.Runs {
			for _, text := range r.Text {
				result.WriteString(text.Content)
			}
		}
	}
	return strings.TrimSpace(result.String())
}

// coreXML mirrors docProps/core.xml.
type coreXML struct {
	Title string `xml:"title"`
}

// extractCoreTitle reads the document title from docProps/core.xml,
// returning "" when absent.
func extractCoreTitle(reader *zip.Reader) string {
	for _, file := range reader.File {
		if file.Name != "docProps/core.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			break
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			break
		}

		var core coreXML
		if err := xml.Unmarshal(content, &core); err == nil {
			return strings.TrimSpace(core.Title)
		}
		break
	}
	return ""
}
