package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig `yaml:"server"`
	RAG        RAGConfig    `yaml:"rag"`
	Embedding  LLMConfig    `yaml:"embedding"`
	Generation LLMConfig    `yaml:"generation"`
}

type ServerConfig struct {
	Address   string `yaml:"address"`
	UploadDir string `yaml:"upload_dir"`
}

type RAGConfig struct {
	ChunkSize    int `yaml:"chunk_size"`
	ChunkOverlap int `yaml:"chunk_overlap"`
	ChatTopK     int `yaml:"chat_top_k"`
	ReviewTopK   int `yaml:"review_top_k"`
	// IndexBackend selects the vector index implementation: "linear" or "chromem".
	IndexBackend string `yaml:"index_backend"`
	// ExternalTimeoutSeconds bounds each embedding or generation call.
	ExternalTimeoutSeconds int `yaml:"external_timeout_seconds"`
}

// ExternalTimeout returns the per-call timeout for external capabilities.
func (c *RAGConfig) ExternalTimeout() time.Duration {
	return time.Duration(c.ExternalTimeoutSeconds) * time.Second
}

type LLMConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Key         string  `yaml:"key"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
}

const (
	defaultChunkSize       = 1000
	defaultChunkOverlap    = 200
	defaultChatTopK        = 4
	defaultReviewTopK      = 5
	defaultIndexBackend    = "linear"
	defaultExternalTimeout = 60
	defaultAddress         = ":8080"
	defaultUploadDir       = "./docs"
)

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	// API keys may come from the environment instead of the config file.
	if key := os.Getenv("EMBEDDING_API_KEY"); key != "" {
		cfg.Embedding.Key = key
	}
	if key := os.Getenv("GENERATION_API_KEY"); key != "" {
		cfg.Generation.Key = key
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = defaultAddress
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = defaultUploadDir
	}
	if cfg.RAG.ChunkSize <= 0 {
		cfg.RAG.ChunkSize = defaultChunkSize
	}
	if cfg.RAG.ChunkOverlap <= 0 {
		cfg.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if cfg.RAG.ChatTopK <= 0 {
		cfg.RAG.ChatTopK = defaultChatTopK
	}
	if cfg.RAG.ReviewTopK <= 0 {
		cfg.RAG.ReviewTopK = defaultReviewTopK
	}
	if cfg.RAG.IndexBackend == "" {
		cfg.RAG.IndexBackend = defaultIndexBackend
	}
	if cfg.RAG.ExternalTimeoutSeconds <= 0 {
		cfg.RAG.ExternalTimeoutSeconds = defaultExternalTimeout
	}
}
