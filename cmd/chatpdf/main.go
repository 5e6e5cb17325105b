package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rikas05/chat-with-pdf/internal/chunker"
	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/docstore"
	"github.com/rikas05/chat-with-pdf/internal/embedding"
	"github.com/rikas05/chat-with-pdf/internal/helper"
	"github.com/rikas05/chat-with-pdf/internal/llmservice"
	"github.com/rikas05/chat-with-pdf/internal/models"
	"github.com/rikas05/chat-with-pdf/internal/parser"
	"github.com/rikas05/chat-with-pdf/internal/rag"
	"github.com/rikas05/chat-with-pdf/internal/server"
	"github.com/rikas05/chat-with-pdf/internal/vectorstore"
	"github.com/rikas05/chat-with-pdf/internal/vectorstore/chromem"
	"github.com/rikas05/chat-with-pdf/internal/vectorstore/postgres"
)

const defaultConfigPath = "./configs/config.yaml"

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", defaultConfigPath, "Path to the config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	filePath := flag.String("file", "", "Ingest a document from the terminal instead of serving")
	query := flag.String("query", "", "Run a one-shot query against the given -doc")
	docID := flag.String("doc", "", "Document id for -query")
	dryRun := flag.Bool("dry-run", false, "Parse and print chunks without indexing")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *dryRun && *filePath != "" {
		dryRunParse(cfg, *filePath)
		return
	}

	app, err := buildApp(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error wiring application")
	}

	var runErr error
	switch {
	case *filePath != "":
		runErr = ingestFile(ctx, app, *filePath)
	case *query != "":
		runErr = runQuery(ctx, app, *docID, *query)
	default:
		srv := server.New(app.rag, app.docs, cfg)
		runErr = srv.Run(ctx)
	}

	// Close before exiting; log.Fatal skips deferred calls.
	if err := app.index.Close(); err != nil {
		log.Error().Err(err).Msg("Error closing vector store")
	}
	if runErr != nil {
		log.Fatal().Err(runErr).Msg("Exited with error")
	}
}

type app struct {
	rag   *rag.RAG
	docs  *docstore.Store
	index vectorstore.Store
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	base, err := embedding.NewEmbedder(&cfg.EmbedLLM)
	if err != nil {
		return nil, err
	}
	embedder := embedding.WithTimeout(base, time.Duration(cfg.EmbedLLM.TimeoutSecs)*time.Second)

	llm, err := llmservice.New(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	var index vectorstore.Store
	var restored []chromem.RestoredDoc
	switch cfg.Store.Type {
	case "postgres":
		index, err = postgres.NewStore(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
	case "chromem", "":
		if cfg.Store.Path != "" {
			if err := helper.CreateFolder(cfg.Store.Path); err != nil {
				return nil, err
			}
		}
		cs, err := chromem.NewStore(cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		index = cs
		restored = cs.Restored()
	default:
		return nil, models.ValidationError(fmt.Sprintf("unknown store type: %s", cfg.Store.Type))
	}

	docs := docstore.New(index)
	for _, rd := range restored {
		docs.Register(&models.Document{ID: rd.ID, ChunkCount: rd.ChunkCount})
	}

	pipeline, err := rag.NewRAG(embedder, index, docs, llm, &cfg.RAG)
	if err != nil {
		return nil, err
	}
	return &app{rag: pipeline, docs: docs, index: index}, nil
}

func dryRunParse(cfg *config.Config, filePath string) {
	chk, err := chunker.New(cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid chunking parameters")
	}
	parsed, err := parser.Parse(filePath, chk)
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing document")
	}
	log.Info().Int("pages", parsed.Pages).Int("chunks", len(parsed.Chunks)).Msg("Parsed document")
	helper.PrettyPrint(parsed.Chunks)
}

func ingestFile(ctx context.Context, app *app, filePath string) error {
	doc, err := app.rag.Ingest(ctx, filePath, filepath.Base(filePath))
	if err != nil {
		return fmt.Errorf("ingest document: %w", err)
	}
	fmt.Printf("doc_id: %s (%d chunks from %d pages)\n", doc.ID, doc.ChunkCount, doc.Pages)
	return nil
}

func runQuery(ctx context.Context, app *app, docID, query string) error {
	if docID == "" {
		return models.ValidationError("please provide the document id with -doc")
	}
	answer, err := app.rag.Query(ctx, docID, query, nil)
	if err != nil {
		return fmt.Errorf("query document: %w", err)
	}

	log.Info().Msg("Query: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", query)

	log.Info().Msg("Sources: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	for _, src := range answer.Sources {
		fmt.Printf("%s p.%d #%d (similarity %.3f)\n",
			src.SourceFilename, src.Chunk.PageNumber, src.Chunk.ChunkID, src.Similarity)
	}
	fmt.Println()

	log.Info().Msg("Assistant: ~~~~~~~~~~~~~~~~~~~~~~~~~>>>>>")
	fmt.Printf("%s\n\n", answer.Content)
	return nil
}
