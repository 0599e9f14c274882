package main

import (
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docchat/internal/config"
	"docchat/internal/embedding"
	"docchat/internal/llmservice"
	"docchat/internal/rag"
	"docchat/internal/server"
	"docchat/internal/storage"
)

const configFilePath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found")
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	embedder, err := embedding.NewEmbedder(&cfg.Embedding)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing embedder")
	}

	generator, err := llmservice.NewClient(&cfg.Generation)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing generation client")
	}

	store, err := storage.New(cfg.Server.UploadDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing document store")
	}

	pipeline := rag.New(embedder, generator, &cfg.RAG)

	srv := server.New(pipeline, store, cfg)
	if err := srv.Run(); err != nil {
		log.Fatal().Err(err).Msg("Server stopped")
	}
}
