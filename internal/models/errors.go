package models

import "errors"

// Pipeline error taxonomy. Components wrap these with fmt.Errorf("...: %w", ...)
// so callers can discriminate with errors.Is while keeping detail in the message.
var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrDocumentParse     = errors.New("document parse failed")
	ErrEmptyDocument     = errors.New("document has no extractable text")
	ErrDimensionMismatch = errors.New("chunk and vector counts or dimensions mismatch")
	ErrEmbeddingProvider = errors.New("embedding provider failure")
	ErrGeneration        = errors.New("generation failure")
	ErrTimeout           = errors.New("external call timed out")
	ErrMissingQuery      = errors.New("query is required")
)
