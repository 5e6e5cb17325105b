package llmservice

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/models"
)

// Client calls the chat model. The model is an interface so tests can
// substitute a fake.
type Client struct {
	llm         llms.Model
	temperature float64
	maxTokens   int
	timeout     time.Duration
}

// New builds a client against any OpenAI-compatible chat API (Groq by
// default).
func New(llmConfig *config.LLMConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, models.GenerationError("init chat model", err)
	}
	return NewWithModel(llm, llmConfig), nil
}

// NewWithModel wraps an already-constructed model.
func NewWithModel(llm llms.Model, llmConfig *config.LLMConfig) *Client {
	return &Client{
		llm:         llm,
		temperature: llmConfig.Temperature,
		maxTokens:   llmConfig.MaxTokens,
		timeout:     time.Duration(llmConfig.TimeoutSecs) * time.Second,
	}
}

// Generate runs one chat completion. Failures come back as retryable
// generation errors; retry policy is the caller's decision, this
// client makes a single attempt.
func (c *Client) Generate(ctx context.Context, messages []llms.MessageContent) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	res, err := c.llm.GenerateContent(ctx, messages,
		llms.WithTemperature(c.temperature),
		llms.WithMaxTokens(c.maxTokens),
	)
	if err != nil {
		return "", models.GenerationError("chat completion failed", err)
	}
	if len(res.Choices) == 0 {
		return "", models.GenerationError("chat completion returned no choices", nil)
	}
	log.Debug().Int("choices", len(res.Choices)).Msg("chat completion done")
	return res.Choices[0].Content, nil
}
