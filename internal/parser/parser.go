package parser

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"docchat/internal/models"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

var (
	pdfMagic = []byte("%PDF-")
	zipMagic = []byte("PK\x03\x04")
)

// DetectFormat resolves the document format from the file extension and
// cross-checks it against the leading magic bytes. A wrong or unknown format
// is rejected up front; a corrupt file of the right format is left for the
// format parser to report, never retried as the other format.
func DetectFormat(filename string, data []byte) (models.Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		if !bytes.HasPrefix(data, pdfMagic) {
			return "", fmt.Errorf("%w: %s does not look like a PDF", models.ErrUnsupportedFormat, filename)
		}
		return models.FormatPDF, nil
	case ".docx":
		if !bytes.HasPrefix(data, zipMagic) {
			return "", fmt.Errorf("%w: %s does not look like a DOCX container", models.ErrUnsupportedFormat, filename)
		}
		return models.FormatDOCX, nil
	default:
		return "", fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, ext)
	}
}

// Parse extracts plain text from the raw document bytes, one Page per PDF
// page and a single Page for DOCX.
func Parse(data []byte, format models.Format) ([]models.Page, error) {
	var (
		pages []models.Page
		err   error
	)
	switch format {
	case models.FormatPDF:
		pages, err = parsePDF(data)
	case models.FormatDOCX:
		pages, err = parseDOCX(data)
	default:
		return nil, fmt.Errorf("%w: %s", models.ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, err
	}
	if !hasText(pages) {
		return nil, models.ErrEmptyDocument
	}
	return pages, nil
}

// ParseFile reads a document from disk and parses it according to its
// detected format.
func ParseFile(path string) ([]models.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentParse, err)
	}
	format, err := DetectFormat(path, data)
	if err != nil {
		return nil, err
	}
	return Parse(data, format)
}

func parsePDF(data []byte) ([]models.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentParse, err)
	}

	var pages []models.Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("%w: page %d: %v", models.ErrDocumentParse, i, err)
		}
		pages = append(pages, models.Page{Text: pageText, SourceIndex: i})
	}
	return pages, nil
}

func parseDOCX(data []byte) ([]models.Page, error) {
	r, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDocumentParse, err)
	}
	defer r.Close()

	content := r.Editable().GetContent()
	text := extractDocxText(content)
	// DOCX has no page boundaries, the whole body is one source unit.
	return []models.Page{{Text: text, SourceIndex: 1}}, nil
}

// extractDocxText pulls run text out of the word/document.xml markup,
// one line per paragraph.
func extractDocxText(xmlContent string) string {
	var text strings.Builder
	for _, para := range strings.Split(xmlContent, "</w:p>") {
		wrote := false
		parts := strings.Split(para, "<w:t")
		for i, part := range parts {
			if i == 0 || part == "" {
				continue
			}
			// the split also matches <w:tbl> and friends
			if part[0] != '>' && part[0] != ' ' {
				continue
			}
			open := strings.Index(part, ">")
			end := strings.Index(part, "</w:t>")
			if open >= 0 && end > open {
				text.WriteString(part[open+1 : end])
				wrote = true
			}
		}
		if wrote {
			text.WriteString("\n")
		}
	}
	return text.String()
}

func hasText(pages []models.Page) bool {
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			return true
		}
	}
	return false
}
