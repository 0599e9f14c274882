package retriever

import (
	"context"

	"docchat/internal/embedding"
	"docchat/internal/index"
	"docchat/internal/models"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

// Retrieve embeds the query text and returns the k most similar chunks from
// the index. Call sites pick their own k (chat and resume review use
// different configured defaults).
func Retrieve(ctx context.Context, embedder embeddings.Embedder, idx index.Index, query string, k int) ([]models.ScoredChunk, error) {
	vector, err := embedding.EmbedQuery(ctx, embedder, query)
	if err != nil {
		return nil, err
	}

	results, err := idx.Query(ctx, vector, k)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("requested", k).Int("returned", len(results)).Msg("Retrieved chunks")
	return results, nil
}
