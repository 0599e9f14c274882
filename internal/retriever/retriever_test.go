package retriever

import (
	"context"
	"testing"

	"docchat/internal/index"
	"docchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEmbedder struct {
	vector []float32
}

func (s *stubEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = s.vector
	}
	return out, nil
}

func (s *stubEmbedder) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	return s.vector, nil
}

func TestRetrieveTopK(t *testing.T) {
	chunks := []models.Chunk{
		{Text: "alpha", ChunkIndex: 0},
		{Text: "beta", ChunkIndex: 1},
		{Text: "gamma", ChunkIndex: 2},
	}
	vectors := [][]float32{{1, 0}, {0.9, 0.1}, {0, 1}}
	idx, err := index.BuildLinear(chunks, vectors)
	require.NoError(t, err)

	results, err := Retrieve(context.Background(), &stubEmbedder{vector: []float32{1, 0}}, idx, "query", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Chunk.Text)
	assert.Equal(t, "beta", results[1].Chunk.Text)
}

func TestRetrieveEmptyIndex(t *testing.T) {
	idx, err := index.BuildLinear(nil, nil)
	require.NoError(t, err)

	results, err := Retrieve(context.Background(), &stubEmbedder{vector: []float32{1, 0}}, idx, "query", 4)
	require.NoError(t, err)
	assert.Empty(t, results)
}
