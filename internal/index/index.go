package index

import (
	"context"
	"fmt"
	"math"
	"sort"

	"docchat/internal/models"
)

// Index answers nearest-neighbour queries over the chunks of one ingested
// document. An index lives for a single request and is discarded with it.
type Index interface {
	// Query returns the k entries most similar to the query vector, highest
	// cosine similarity first. k is clamped to the index size; an empty
	// index yields an empty result, never an error.
	Query(ctx context.Context, vector []float32, k int) ([]models.ScoredChunk, error)
	Len() int
}

// Build constructs the index backend selected by name. "linear" is the
// canonical brute-force scan; "chromem" stores the entries in an in-memory
// chromem-go collection.
func Build(ctx context.Context, backend string, chunks []models.Chunk, vectors [][]float32) (Index, error) {
	switch backend {
	case "", "linear":
		return BuildLinear(chunks, vectors)
	case "chromem":
		return BuildChromem(ctx, chunks, vectors)
	default:
		return nil, fmt.Errorf("unknown index backend: %s", backend)
	}
}

func validate(chunks []models.Chunk, vectors [][]float32) (int, error) {
	if len(chunks) != len(vectors) {
		return 0, fmt.Errorf("%w: %d chunks, %d vectors", models.ErrDimensionMismatch, len(chunks), len(vectors))
	}
	dim := 0
	for i, v := range vectors {
		if dim == 0 {
			dim = len(v)
		}
		if len(v) == 0 || len(v) != dim {
			return 0, fmt.Errorf("%w: vector %d has dimension %d, want %d", models.ErrDimensionMismatch, i, len(v), dim)
		}
	}
	return dim, nil
}

// Linear is a brute-force cosine similarity index. The document scale here
// (one small document per request) makes an ANN structure pointless; a full
// scan is O(n*d) per query and n stays in the tens.
type Linear struct {
	chunks  []models.Chunk
	vectors [][]float32
	norms   []float32
	dim     int
}

func BuildLinear(chunks []models.Chunk, vectors [][]float32) (*Linear, error) {
	dim, err := validate(chunks, vectors)
	if err != nil {
		return nil, err
	}
	norms := make([]float32, len(vectors))
	for i, v := range vectors {
		norms[i] = norm(v)
	}
	return &Linear{chunks: chunks, vectors: vectors, norms: norms, dim: dim}, nil
}

func (l *Linear) Len() int { return len(l.chunks) }

func (l *Linear) Query(_ context.Context, vector []float32, k int) ([]models.ScoredChunk, error) {
	if len(l.chunks) == 0 || k <= 0 {
		return nil, nil
	}
	if k > len(l.chunks) {
		k = len(l.chunks)
	}

	qn := norm(vector)
	results := make([]models.ScoredChunk, len(l.chunks))
	for i := range l.vectors {
		results[i] = models.ScoredChunk{
			Chunk: l.chunks[i],
			Score: cosine(l.vectors[i], vector, l.norms[i], qn),
		}
	}
	// stable: equal scores keep insertion order
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results[:k], nil
}

func cosine(a, b []float32, na, nb float32) float32 {
	if na == 0 || nb == 0 {
		return 0
	}
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float32
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot / (na * nb)
}

func norm(v []float32) float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return float32(math.Sqrt(sum))
}
