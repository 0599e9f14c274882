package llmservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docchat/internal/config"
	"docchat/internal/models"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator is the consumed generation capability. The pipeline depends on
// this interface so tests can substitute a fake client.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
	// GenerateStream emits incremental fragments on the returned channel.
	// The channel is closed when the stream ends; a mid-stream failure is
	// delivered as a final chunk with Err set before the close.
	GenerateStream(ctx context.Context, system, user string) (<-chan models.GenerationChunk, error)
}

// streamBuffer bounds the producer/consumer channel. Text fragments are
// small, a few slots are enough to decouple the producer from the HTTP
// writer while still propagating backpressure.
const streamBuffer = 4

type Client struct {
	llm         *openai.LLM
	temperature float64
}

func NewClient(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrGeneration, err)
	}
	return &Client{llm: llm, temperature: llmConfig.Temperature}, nil
}

func (c *Client) Generate(ctx context.Context, system, user string) (string, error) {
	res, err := c.llm.GenerateContent(ctx, promptMessages(system, user), llms.WithTemperature(c.temperature))
	if err != nil {
		return "", wrapGenerationErr(err)
	}
	if len(res.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", models.ErrGeneration)
	}
	return res.Choices[0].Content, nil
}

func (c *Client) GenerateStream(ctx context.Context, system, user string) (<-chan models.GenerationChunk, error) {
	out := make(chan models.GenerationChunk, streamBuffer)

	go func() {
		defer close(out)
		_, err := c.llm.GenerateContent(ctx, promptMessages(system, user),
			llms.WithTemperature(c.temperature),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) == 0 {
					return nil
				}
				select {
				case out <- models.GenerationChunk{Content: string(chunk)}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		if err != nil && !errors.Is(err, context.Canceled) {
			select {
			case out <- models.GenerationChunk{Err: wrapGenerationErr(err)}:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

func promptMessages(system, user string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, user),
	}
}

func wrapGenerationErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", models.ErrTimeout, err)
	}
	return fmt.Errorf("%w: %v", models.ErrGeneration, err)
}
