package chunker

import (
	"errors"
	"strings"
	"testing"

	"docchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pagesOf(texts ...string) []models.Page {
	pages := make([]models.Page, len(texts))
	for i, t := range texts {
		pages[i] = models.Page{Text: t, SourceIndex: i + 1}
	}
	return pages
}

func TestSplitSingleChunkWhenShort(t *testing.T) {
	chunks, err := Split(pagesOf("a short document"), 1000, 200)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "a short document", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].ChunkIndex)
	assert.Equal(t, 1, chunks[0].SourceIndex)
}

func TestSplitChunkCountFormula(t *testing.T) {
	// count = ceil((L-O)/(S-O)) for L > S
	cases := []struct {
		length, size, overlap int
	}{
		{2500, 1000, 200},
		{1001, 1000, 200},
		{5000, 500, 100},
		{300, 100, 30},
	}
	for _, tc := range cases {
		text := strings.Repeat("x", tc.length)
		chunks, err := Split(pagesOf(text), tc.size, tc.overlap)
		require.NoError(t, err)

		step := tc.size - tc.overlap
		want := (tc.length - tc.overlap + step - 1) / step
		assert.Len(t, chunks, want, "L=%d S=%d O=%d", tc.length, tc.size, tc.overlap)
	}
}

func TestSplitOverlapAdjacency(t *testing.T) {
	// use distinct characters so equal substrings mean equal positions
	var b strings.Builder
	for i := 0; b.Len() < 2500; i++ {
		b.WriteByte(byte('a' + i%26))
	}
	chunks, err := Split(pagesOf(b.String()), 1000, 200)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	for i := 0; i < len(chunks)-1; i++ {
		tail := chunks[i].Text[len(chunks[i].Text)-200:]
		head := chunks[i+1].Text[:200]
		assert.Equal(t, tail, head, "chunks %d and %d", i, i+1)
	}
}

func TestSplitChunkSizeBound(t *testing.T) {
	chunks, err := Split(pagesOf(strings.Repeat("y", 3333)), 1000, 200)
	require.NoError(t, err)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Text), 1000)
	}
}

func TestSplitDeterministic(t *testing.T) {
	pages := pagesOf(strings.Repeat("abc ", 700), strings.Repeat("def ", 700))
	first, err := Split(pages, 1000, 200)
	require.NoError(t, err)
	second, err := Split(pages, 1000, 200)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSplitPageAttribution(t *testing.T) {
	pages := pagesOf(strings.Repeat("a", 400), strings.Repeat("b", 400))
	chunks, err := Split(pages, 300, 50)
	require.NoError(t, err)

	assert.Equal(t, 1, chunks[0].SourceIndex)
	last := chunks[len(chunks)-1]
	assert.Equal(t, 2, last.SourceIndex)
}

func TestSplitEmptyDocument(t *testing.T) {
	_, err := Split(pagesOf("", "   \n "), 1000, 200)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrEmptyDocument))

	_, err = Split(nil, 1000, 200)
	assert.True(t, errors.Is(err, models.ErrEmptyDocument))
}

func TestSplitChunkIndexesAreSequential(t *testing.T) {
	chunks, err := Split(pagesOf(strings.Repeat("z", 2000)), 500, 100)
	require.NoError(t, err)
	for i, c := range chunks {
		assert.Equal(t, i, c.ChunkIndex)
	}
}
