package server

import (
	"net/http"
	"time"

	"docchat/internal/config"
	"docchat/internal/helper"
	"docchat/internal/rag"
	"docchat/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

type Server struct {
	engine   *gin.Engine
	pipeline *rag.RAG
	store    *storage.Store
	cfg      *config.Config
}

func New(pipeline *rag.RAG, store *storage.Store, cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), requestLogger())

	s := &Server{engine: engine, pipeline: pipeline, store: store, cfg: cfg}

	api := engine.Group("/api")
	api.POST("/chat", s.handleChat)
	api.POST("/chat/stream", s.handleChatStream)
	api.GET("/chat", s.handleListChats)
	api.POST("/review", s.handleReview)
	api.POST("/upload", s.handleUpload)

	return s
}

func (s *Server) Run() error {
	log.Info().Str("address", s.cfg.Server.Address).Msg("Starting server")
	return s.engine.Run(s.cfg.Server.Address)
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			generated, err := helper.GenerateUUID()
			if err == nil {
				id = generated
			}
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", c.GetString("request_id")).
			Msg("Request")
	}
}
