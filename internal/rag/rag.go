package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"

	"github.com/rikas05/chat-with-pdf/internal/chunker"
	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/docstore"
	"github.com/rikas05/chat-with-pdf/internal/embedding"
	"github.com/rikas05/chat-with-pdf/internal/helper"
	"github.com/rikas05/chat-with-pdf/internal/models"
	"github.com/rikas05/chat-with-pdf/internal/parser"
	"github.com/rikas05/chat-with-pdf/internal/vectorstore"
)

// Generator produces a chat completion from a message sequence.
// Satisfied by llmservice.Client.
type Generator interface {
	Generate(ctx context.Context, messages []llms.MessageContent) (string, error)
}

// RAG wires the ingestion and retrieval pipeline together.
type RAG struct {
	embedder embeddings.Embedder
	index    vectorstore.Store
	docs     *docstore.Store
	llm      Generator
	chk      *chunker.Chunker
	topK     int
}

func NewRAG(embedder embeddings.Embedder, index vectorstore.Store, docs *docstore.Store, llm Generator, ragCfg *config.RAGConfig) (*RAG, error) {
	chk, err := chunker.New(ragCfg.ChunkSize, ragCfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	if ragCfg.TopK <= 0 {
		return nil, models.ValidationError(fmt.Sprintf("top-k must be positive, got %d", ragCfg.TopK))
	}
	return &RAG{
		embedder: embedder,
		index:    index,
		docs:     docs,
		llm:      llm,
		chk:      chk,
		topK:     ragCfg.TopK,
	}, nil
}

// Ingest parses the file, embeds every chunk and publishes a fresh
// index under a new document id. Any failure along the way leaves no
// partial state behind.
func (r *RAG) Ingest(ctx context.Context, filePath, filename string) (*models.Document, error) {
	parsed, err := parser.Parse(filePath, r.chk)
	if err != nil {
		return nil, err
	}
	if len(parsed.Chunks) == 0 {
		return nil, models.IngestionError("no text extracted from document", nil)
	}

	chunkEmbeddings, err := embedding.EmbedChunks(ctx, r.embedder, filename, parsed.Chunks)
	if err != nil {
		return nil, err
	}

	docID, err := helper.GenerateUUID()
	if err != nil {
		return nil, models.IngestionError("generate document id", err)
	}

	if err := r.index.Build(ctx, docID, chunkEmbeddings); err != nil {
		return nil, err
	}

	doc := &models.Document{
		ID:         docID,
		Filename:   filename,
		Pages:      parsed.Pages,
		ChunkCount: len(parsed.Chunks),
		CreatedAt:  time.Now(),
	}
	r.docs.Register(doc)

	log.Info().
		Str("doc_id", docID).
		Str("file", filename).
		Int("pages", parsed.Pages).
		Int("chunks", len(parsed.Chunks)).
		Msg("document ingested")
	return doc, nil
}

// Query retrieves the top-K chunks for the question and asks the chat
// model for an answer grounded in them. Prior turns, if any, are
// replayed as conversation context. The returned sources are exactly
// the retrieved chunks; the model cannot add sources of its own.
func (r *RAG) Query(ctx context.Context, docID, question string, history []models.Turn) (*models.Answer, error) {
	if strings.TrimSpace(question) == "" {
		return nil, models.ValidationError("question must not be empty")
	}
	if _, err := r.docs.Get(docID); err != nil {
		return nil, err
	}

	queryEmbedding, err := r.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, models.GenerationError("embed question", err)
	}

	results, err := r.index.Search(ctx, docID, queryEmbedding, r.topK)
	if err != nil {
		return nil, err
	}

	answer, err := r.llm.Generate(ctx, buildMessages(question, results, history))
	if err != nil {
		return nil, err
	}

	return &models.Answer{Content: answer, Sources: results}, nil
}

// TopK returns the configured retrieval depth.
func (r *RAG) TopK() int { return r.topK }

func buildMessages(question string, results []models.SearchResult, history []models.Turn) []llms.MessageContent {
	var contextText strings.Builder
	for _, res := range results {
		fmt.Fprintf(&contextText, "[%s p.%d #%d]\n%s\n\n",
			res.SourceFilename, res.Chunk.PageNumber, res.Chunk.ChunkID, res.Chunk.Content)
	}

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, models.SystemPromptTemplate),
	}
	for _, turn := range history {
		messages = append(messages,
			llms.TextParts(llms.ChatMessageTypeHuman, turn.Question),
			llms.TextParts(llms.ChatMessageTypeAI, turn.Answer),
		)
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman,
		fmt.Sprintf(models.AnswerPromptTemplate, contextText.String(), question)))
	return messages
}
