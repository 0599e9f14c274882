package parser

import (
	"archive/zip"
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"docchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": `<?xml version="1.0"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
	}
	for name, content := range files {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

const sampleDocumentXML = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>The capital of France is Paris.</w:t></w:r></w:p>
<w:p><w:r><w:t xml:space="preserve">Second paragraph </w:t></w:r><w:r><w:t>with two runs.</w:t></w:r></w:p>
</w:body>
</w:document>`

func TestDetectFormat(t *testing.T) {
	pdfData := []byte("%PDF-1.4 rest")
	docxData := []byte("PK\x03\x04rest")

	format, err := DetectFormat("doc.pdf", pdfData)
	require.NoError(t, err)
	assert.Equal(t, models.FormatPDF, format)

	format, err = DetectFormat("doc.docx", docxData)
	require.NoError(t, err)
	assert.Equal(t, models.FormatDOCX, format)

	_, err = DetectFormat("doc.txt", []byte("plain"))
	assert.True(t, errors.Is(err, models.ErrUnsupportedFormat))

	// a .pdf extension over docx bytes is a format error, not a parse retry
	_, err = DetectFormat("doc.pdf", docxData)
	assert.True(t, errors.Is(err, models.ErrUnsupportedFormat))

	_, err = DetectFormat("doc.docx", pdfData)
	assert.True(t, errors.Is(err, models.ErrUnsupportedFormat))
}

func TestParseCorruptPDF(t *testing.T) {
	data := []byte("%PDF-1.4\nthis is not a real pdf body")
	_, err := Parse(data, models.FormatPDF)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDocumentParse))
}

func TestParseCorruptDOCX(t *testing.T) {
	data := []byte("PK\x03\x04 but not actually a zip archive")
	_, err := Parse(data, models.FormatDOCX)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrDocumentParse))
}

func TestParseDOCX(t *testing.T) {
	data := buildDocx(t, sampleDocumentXML)
	pages, err := Parse(data, models.FormatDOCX)
	require.NoError(t, err)
	require.Len(t, pages, 1)

	assert.Contains(t, pages[0].Text, "The capital of France is Paris.")
	assert.Contains(t, pages[0].Text, "Second paragraph with two runs.")
	assert.Equal(t, 1, pages[0].SourceIndex)
}

func TestParseDOCXWithoutText(t *testing.T) {
	empty := `<?xml version="1.0"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body></w:body></w:document>`
	data := buildDocx(t, empty)
	_, err := Parse(data, models.FormatDOCX)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyDocument))
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.docx")
	require.NoError(t, os.WriteFile(path, buildDocx(t, sampleDocumentXML), 0o644))

	pages, err := ParseFile(path)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0].Text, "Paris")
}

func TestExtractDocxText(t *testing.T) {
	text := extractDocxText(sampleDocumentXML)
	assert.Equal(t, "The capital of France is Paris.\nSecond paragraph with two runs.\n", text)

	// table tags that share the <w:t prefix are not text runs
	assert.Equal(t, "", extractDocxText(`<w:tbl><w:tr></w:tr></w:tbl>`))
}
