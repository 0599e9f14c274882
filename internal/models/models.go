package models

// Format is the declared document format accepted by the loader.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Page is an ordered unit of extracted text with its source index.
type Page struct {
	Text        string
	SourceIndex int
}

// Chunk represents a bounded substring of the flattened document text,
// the atomic retrieval unit.
type Chunk struct {
	Text        string
	SourceIndex int
	ChunkIndex  int
}

// ScoredChunk pairs a retrieved chunk with its cosine similarity score.
type ScoredChunk struct {
	Chunk Chunk
	Score float32
}

// GenerationChunk is one incremental fragment of a streamed model response.
// Err is non-nil only on the terminal chunk of a failed stream; the channel
// is closed after it.
type GenerationChunk struct {
	Content string
	Err     error
}

// Answer is the non-streaming pipeline output.
type Answer struct {
	Content   string
	Retrieved []ScoredChunk
}
