package index

import (
	"context"
	"fmt"
	"runtime"
	"strconv"

	"docchat/internal/models"

	"github.com/philippgille/chromem-go"
)

const chromemCollection = "document"

// Chromem backs the index with an in-memory chromem-go collection. The
// collection is created fresh per request, matching the linear backend's
// lifetime. The wrapper enforces the k-clamping and empty-index semantics
// chromem itself rejects.
type Chromem struct {
	collection *chromem.Collection
	chunks     []models.Chunk
}

func BuildChromem(ctx context.Context, chunks []models.Chunk, vectors [][]float32) (*Chromem, error) {
	if _, err := validate(chunks, vectors); err != nil {
		return nil, err
	}

	db := chromem.NewDB()
	collection, err := db.GetOrCreateCollection(chromemCollection, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %v", err)
	}

	if len(chunks) > 0 {
		docs := make([]chromem.Document, len(chunks))
		for i, c := range chunks {
			docs[i] = chromem.Document{
				ID:        strconv.Itoa(i),
				Content:   c.Text,
				Embedding: vectors[i],
			}
		}
		if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
			return nil, fmt.Errorf("failed to add documents: %v", err)
		}
	}

	return &Chromem{collection: collection, chunks: chunks}, nil
}

func (c *Chromem) Len() int { return len(c.chunks) }

func (c *Chromem) Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if len(c.chunks) == 0 || k <= 0 {
		return nil, nil
	}
	if k > len(c.chunks) {
		k = len(c.chunks)
	}

	results, err := c.collection.QueryEmbedding(ctx, vector, k, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %v", err)
	}

	scored := make([]models.ScoredChunk, 0, len(results))
	for _, res := range results {
		pos, err := strconv.Atoi(res.ID)
		if err != nil || pos < 0 || pos >= len(c.chunks) {
			continue
		}
		scored = append(scored, models.ScoredChunk{Chunk: c.chunks[pos], Score: res.Similarity})
	}
	return scored, nil
}
