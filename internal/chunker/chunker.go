package chunker

import (
	"strings"

	"docchat/internal/models"
)

// Split windows the extracted text into overlapping chunks. Policy is
// flatten-then-window: page texts are joined into one stream and cut into
// windows of size characters whose starts slide by size-overlap, so the last
// overlap characters of a chunk equal the first overlap characters of the
// next. Each chunk keeps the source index of the page its window starts in.
// Deterministic for a given input and parameters.
func Split(pages []models.Page, size, overlap int) ([]models.Chunk, error) {
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size / 2
	}

	flat, offsets := flatten(pages)
	if strings.TrimSpace(flat) == "" {
		return nil, models.ErrEmptyDocument
	}

	if len(flat) <= size {
		return []models.Chunk{{
			Text:        flat,
			SourceIndex: pageAt(pages, offsets, 0),
			ChunkIndex:  0,
		}}, nil
	}

	var chunks []models.Chunk
	step := size - overlap
	for start := 0; ; start += step {
		end := min(start+size, len(flat))
		chunks = append(chunks, models.Chunk{
			Text:        flat[start:end],
			SourceIndex: pageAt(pages, offsets, start),
			ChunkIndex:  len(chunks),
		})
		if end == len(flat) {
			break
		}
	}
	return chunks, nil
}

// flatten joins page texts with a newline separator and records the start
// offset of each page within the joined stream.
func flatten(pages []models.Page) (string, []int) {
	var b strings.Builder
	offsets := make([]int, len(pages))
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		offsets[i] = b.Len()
		b.WriteString(p.Text)
	}
	return b.String(), offsets
}

func pageAt(pages []models.Page, offsets []int, pos int) int {
	idx := 1
	for i, off := range offsets {
		if off > pos {
			break
		}
		idx = pages[i].SourceIndex
	}
	return idx
}
