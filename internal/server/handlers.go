package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"docchat/internal/models"
	"docchat/internal/parser"
	"docchat/internal/rag"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type chatRequest struct {
	Message string `json:"message"`
}

type retrievedChunk struct {
	Text  string  `json:"text"`
	Score float32 `json:"score"`
}

type chatResponse struct {
	Answer    string           `json:"answer"`
	Retrieved []retrievedChunk `json:"retrieved,omitempty"`
}

func (s *Server) handleChat(c *gin.Context) {
	msg, ok := s.bindQuery(c)
	if !ok {
		return
	}

	pages, ok := s.loadSlotDocument(c)
	if !ok {
		return
	}

	answer, err := s.pipeline.Answer(c.Request.Context(), pages, rag.Request{
		Query:          msg,
		TopK:           s.cfg.RAG.ChatTopK,
		SystemTemplate: models.GroundedSystemTemplate,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}

	resp := chatResponse{Answer: answer.Content}
	for _, r := range answer.Retrieved {
		resp.Retrieved = append(resp.Retrieved, retrievedChunk{Text: r.Chunk.Text, Score: r.Score})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleChatStream(c *gin.Context) {
	msg, ok := s.bindQuery(c)
	if !ok {
		return
	}

	pages, ok := s.loadSlotDocument(c)
	if !ok {
		return
	}

	stream, err := s.pipeline.AnswerStream(c.Request.Context(), pages, rag.Request{
		Query:          msg,
		TopK:           s.cfg.RAG.ChatTopK,
		SystemTemplate: models.GroundedSystemTemplate,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	s.writeEventStream(c, stream)
}

func (s *Server) handleListChats(c *gin.Context) {
	// chat history is not persisted, the route shape is kept for the UI
	c.JSON(http.StatusOK, gin.H{"chats": []any{}})
}

func (s *Server) handleReview(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		clientError(c, "invalid_request", "a resume file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" && ext != ".docx" {
		clientError(c, "unsupported_format", "only .pdf and .docx resumes are accepted")
		return
	}

	data, err := readUpload(header)
	if err != nil {
		clientError(c, "invalid_request", "could not read the uploaded file")
		return
	}

	format, err := parser.DetectFormat(header.Filename, data)
	if err != nil {
		errorResponse(c, err)
		return
	}
	pages, err := parser.Parse(data, format)
	if err != nil {
		errorResponse(c, err)
		return
	}

	stream, err := s.pipeline.AnswerStream(c.Request.Context(), pages, rag.Request{
		Query:          models.ResumeRetrievalQuery,
		TopK:           s.cfg.RAG.ReviewTopK,
		SystemTemplate: models.ResumeReviewTemplate,
	})
	if err != nil {
		errorResponse(c, err)
		return
	}
	s.writeEventStream(c, stream)
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		clientError(c, "invalid_request", "a file is required")
		return
	}

	data, err := readUpload(header)
	if err != nil {
		clientError(c, "invalid_request", "could not read the uploaded file")
		return
	}

	name, err := s.store.Save(header.Header.Get("Content-Type"), data)
	if err != nil {
		errorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "File uploaded successfully",
		"filename":     name,
		"originalName": header.Filename,
		"size":         header.Size,
		"type":         header.Header.Get("Content-Type"),
		"uploadedAt":   time.Now().UTC().Format(time.RFC3339),
	})
}

// bindQuery extracts and validates the chat message. A missing query is
// rejected before any pipeline stage runs.
func (s *Server) bindQuery(c *gin.Context) (string, bool) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		clientError(c, "invalid_request", "request body must be JSON")
		return "", false
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		errorResponse(c, models.ErrMissingQuery)
		return "", false
	}
	return msg, true
}

// loadSlotDocument parses the currently uploaded document. The absence of a
// document is soft: the pipeline runs with no pages and the model answers
// with the fallback sentence. A document that exists but cannot be parsed
// is a fault and produces an error response.
func (s *Server) loadSlotDocument(c *gin.Context) ([]models.Page, bool) {
	path, exists := s.store.CurrentDocument()
	if !exists {
		return nil, true
	}
	pages, err := parser.ParseFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to parse stored document")
		errorResponse(c, err)
		return nil, false
	}
	return pages, true
}

// writeEventStream forwards generation fragments as server-sent events,
// one `data:` event per fragment, flushing as it goes. It stops pulling as
// soon as the client disconnects; a mid-stream generation failure emits a
// terminal error event and ends the stream.
func (s *Server) writeEventStream(c *gin.Context, stream <-chan models.GenerationChunk) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	ctx := c.Request.Context()
	w := c.Writer
	for {
		select {
		case chunk, open := <-stream:
			if !open {
				return
			}
			if chunk.Err != nil {
				log.Error().Err(chunk.Err).Msg("Generation stream failed")
				fmt.Fprintf(w, "data: %s\n\n", mustJSON(gin.H{"error": errorCode(chunk.Err)}))
				w.Flush()
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", mustJSON(gin.H{"content": chunk.Content}))
			w.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return b
}

// errorCode maps a pipeline error to its machine-readable code.
func errorCode(err error) string {
	switch {
	case errors.Is(err, models.ErrMissingQuery):
		return "missing_query"
	case errors.Is(err, models.ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, models.ErrEmptyDocument):
		return "empty_document"
	case errors.Is(err, models.ErrDocumentParse):
		return "parse_failed"
	case errors.Is(err, models.ErrDimensionMismatch):
		return "index_failed"
	case errors.Is(err, models.ErrEmbeddingProvider):
		return "embedding_failed"
	case errors.Is(err, models.ErrGeneration):
		return "generation_failed"
	case errors.Is(err, models.ErrTimeout):
		return "timeout"
	default:
		return "internal_error"
	}
}

// errorResponse writes the JSON error body for err. Only the sentinel
// message is exposed, wrapped detail stays in the logs.
func errorResponse(c *gin.Context, err error) {
	code := errorCode(err)

	status := http.StatusInternalServerError
	switch code {
	case "missing_query", "unsupported_format", "empty_document", "invalid_request":
		status = http.StatusBadRequest
	case "timeout":
		status = http.StatusGatewayTimeout
	}

	message := "internal error"
	for _, sentinel := range []error{
		models.ErrMissingQuery, models.ErrUnsupportedFormat, models.ErrEmptyDocument,
		models.ErrDocumentParse, models.ErrDimensionMismatch, models.ErrEmbeddingProvider,
		models.ErrGeneration, models.ErrTimeout,
	} {
		if errors.Is(err, sentinel) {
			message = sentinel.Error()
			break
		}
	}

	c.AbortWithStatusJSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}

func clientError(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": gin.H{"code": code, "message": message}})
}
