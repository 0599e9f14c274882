package rag

import (
	"context"
	"fmt"
	"strings"

	"docchat/internal/chunker"
	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/index"
	"docchat/internal/llmservice"
	"docchat/internal/models"
	"docchat/internal/retriever"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
)

// Request parameterizes one pipeline run. Chat and resume review are the
// same pipeline under different configurations: query text, top-k and the
// system instruction template are the only things that differ.
type Request struct {
	Query          string
	TopK           int
	SystemTemplate string
}

// RAG is one self-contained retrieval pipeline. It holds no per-request
// state: every Answer call rebuilds chunks, embeddings and the index from
// the pages it is given, and discards them with the response. Recomputing
// embeddings per request is a deliberate trade for statelessness, not an
// oversight.
type RAG struct {
	embedder  embeddings.Embedder
	generator llmservice.Generator
	cfg       *config.RAGConfig
}

func New(embedder embeddings.Embedder, generator llmservice.Generator, cfg *config.RAGConfig) *RAG {
	return &RAG{embedder: embedder, generator: generator, cfg: cfg}
}

// Answer runs the full pipeline and returns the whole response. A nil pages
// slice means no document is available: retrieval is skipped and the model
// answers from an empty context, which the grounding instruction turns into
// the fixed fallback sentence.
func (r *RAG) Answer(ctx context.Context, pages []models.Page, req Request) (*models.Answer, error) {
	retrieved, err := r.ingestAndRetrieve(ctx, pages, req)
	if err != nil {
		return nil, err
	}

	system := fmt.Sprintf(req.SystemTemplate, assembleContext(retrieved))

	gctx, cancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout())
	defer cancel()
	content, err := r.generator.Generate(gctx, system, req.Query)
	if err != nil {
		return nil, err
	}
	return &models.Answer{Content: content, Retrieved: retrieved}, nil
}

// AnswerStream runs the same pipeline but returns the model response as an
// incremental fragment stream. Ingestion failures surface before any
// fragment is produced.
func (r *RAG) AnswerStream(ctx context.Context, pages []models.Page, req Request) (<-chan models.GenerationChunk, error) {
	retrieved, err := r.ingestAndRetrieve(ctx, pages, req)
	if err != nil {
		return nil, err
	}

	system := fmt.Sprintf(req.SystemTemplate, assembleContext(retrieved))
	return r.generator.GenerateStream(ctx, system, req.Query)
}

// ingestAndRetrieve runs the sequential ingestion stages: chunk, embed
// (one batched call), build index, then query it. The index exists only for
// the duration of this call chain.
func (r *RAG) ingestAndRetrieve(ctx context.Context, pages []models.Page, req Request) ([]models.ScoredChunk, error) {
	if len(pages) == 0 {
		return nil, nil
	}

	chunks, err := chunker.Split(pages, r.cfg.ChunkSize, r.cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	log.Debug().Int("chunks", len(chunks)).Msg("Split document")

	ectx, cancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout())
	defer cancel()
	vectors, err := embedding.EmbedChunks(ectx, r.embedder, chunks)
	if err != nil {
		return nil, err
	}

	idx, err := index.Build(ctx, r.cfg.IndexBackend, chunks, vectors)
	if err != nil {
		return nil, err
	}

	qctx, qcancel := context.WithTimeout(ctx, r.cfg.ExternalTimeout())
	defer qcancel()
	return retriever.Retrieve(qctx, r.embedder, idx, req.Query, req.TopK)
}

// assembleContext concatenates retrieved chunk texts in retrieval order,
// separated by a blank line. No deduplication; chunk size times k already
// bounds the worst case.
func assembleContext(results []models.ScoredChunk) string {
	var b strings.Builder
	for i, res := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(res.Chunk.Text)
	}
	return b.String()
}
