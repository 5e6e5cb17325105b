package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/models"
)

// NewEmbedder builds the embedder selected by the config: an
// OpenAI-compatible endpoint or a local Ollama server.
func NewEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	switch llmConfig.Provider {
	case "ollama":
		return NewOllamaEmbedder(llmConfig)
	case "openai", "":
		return NewOpenAIEmbedder(llmConfig)
	default:
		return nil, models.ValidationError(fmt.Sprintf("unknown embedding provider: %s", llmConfig.Provider))
	}
}

// NewOpenAIEmbedder creates an embedder against any OpenAI-compatible
// embeddings API.
func NewOpenAIEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(llmConfig.BaseURL),
		openai.WithToken(strings.TrimPrefix(llmConfig.Key, "Bearer ")),
		openai.WithModel(llmConfig.Model),
		openai.WithEmbeddingModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init embedding client: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// NewOllamaEmbedder creates an embedder against a local Ollama server.
func NewOllamaEmbedder(llmConfig *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(llmConfig.BaseURL),
		ollama.WithModel(llmConfig.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("init ollama client: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// timeoutEmbedder bounds every embedding call so a stalled backend
// surfaces as an error instead of hanging the request.
type timeoutEmbedder struct {
	inner   embeddings.Embedder
	timeout time.Duration
}

// WithTimeout wraps an embedder with a per-call timeout. A zero or
// negative timeout returns the embedder unchanged.
func WithTimeout(inner embeddings.Embedder, timeout time.Duration) embeddings.Embedder {
	if timeout <= 0 {
		return inner
	}
	return &timeoutEmbedder{inner: inner, timeout: timeout}
}

func (e *timeoutEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.inner.EmbedDocuments(ctx, texts)
}

func (e *timeoutEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.inner.EmbedQuery(ctx, text)
}

// EmbedChunks maps every chunk to its vector in one batch call,
// preserving order. Any failure aborts the whole batch so the caller
// never persists a partial index.
func EmbedChunks(ctx context.Context, embedder embeddings.Embedder, filename string, chunks []models.Chunk) ([]models.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Str("file", filename).Msg("no chunks to embed")
		return nil, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, models.IngestionError("embedding call failed", err)
	}
	if len(vectors) != len(chunks) {
		return nil, models.IngestionError(
			fmt.Sprintf("embedding count mismatch: %d chunks, %d vectors", len(chunks), len(vectors)), nil)
	}

	chunkEmbeddings := make([]models.ChunkEmbedding, len(chunks))
	for i, chunk := range chunks {
		if len(vectors[i]) == 0 || (i > 0 && len(vectors[i]) != len(vectors[0])) {
			return nil, models.IngestionError(
				fmt.Sprintf("embedding for chunk %d has unexpected dimension", chunk.ChunkID), nil)
		}
		chunkEmbeddings[i] = models.ChunkEmbedding{
			Content:        chunk.Content,
			Embedding:      vectors[i],
			SourceFilename: filename,
			PageNumber:     chunk.PageNumber,
			ChunkID:        chunk.ChunkID,
		}
	}
	return chunkEmbeddings, nil
}
