// Package postgres backs the vector store with Postgres + pgvector via
// bun, one row per chunk keyed by document id.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/models"
)

// ChunkRow is one indexed chunk.
type ChunkRow struct {
	bun.BaseModel `bun:"table:document_chunks,alias:dc"`

	ID             int64     `bun:"id,pk,autoincrement"`
	DocID          string    `bun:"doc_id,notnull"`
	ChunkID        int       `bun:"chunk_id,notnull"`
	PageNumber     int       `bun:"page_number,notnull"`
	SourceFilename string    `bun:"source_filename"`
	Content        string    `bun:"content,notnull"`
	Embedding      []float32 `bun:"embedding,notnull,type:vector(768)"`
}

// Store implements vectorstore.Store on a pgvector table.
type Store struct {
	db *bun.DB
}

// NewStore connects to Postgres and ensures the chunk table exists.
// Requires the pgvector extension to be installed.
func NewStore(ctx context.Context, cfg *config.DatabaseConfig) (*Store, error) {
	dsn := cfg.URL + "?sslmode=disable"
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn), pgdriver.WithPassword(cfg.Password)))
	db := bun.NewDB(sqldb, pgdialect.New())
	if cfg.Debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if _, err := db.NewCreateTable().Model((*ChunkRow)(nil)).IfNotExists().Exec(ctx); err != nil {
		return nil, fmt.Errorf("create chunk table: %w", err)
	}
	return &Store{db: db}, nil
}

// Build replaces the document's rows inside one transaction, so a
// concurrent search sees the old rows or the new rows, never a mix.
func (s *Store) Build(ctx context.Context, docID string, chunks []models.ChunkEmbedding) error {
	if len(chunks) == 0 {
		return models.IngestionError("no chunks to index", nil)
	}

	rows := make([]ChunkRow, len(chunks))
	for i, ce := range chunks {
		rows[i] = ChunkRow{
			DocID:          docID,
			ChunkID:        ce.ChunkID,
			PageNumber:     ce.PageNumber,
			SourceFilename: ce.SourceFilename,
			Content:        ce.Content,
			Embedding:      ce.Embedding,
		}
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*ChunkRow)(nil)).Where("doc_id = ?", docID).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&rows).Exec(ctx)
		return err
	})
	if err != nil {
		return models.IngestionError("store chunk rows", err)
	}
	return nil
}

func (s *Store) Search(ctx context.Context, docID string, queryEmbedding []float32, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		return nil, models.ValidationError(fmt.Sprintf("top-k must be positive, got %d", k))
	}

	exists, err := s.db.NewSelect().Model((*ChunkRow)(nil)).Where("doc_id = ?", docID).Exists(ctx)
	if err != nil {
		return nil, fmt.Errorf("check document: %w", err)
	}
	if !exists {
		return nil, models.NotFoundError(docID)
	}

	var rows []ChunkRow
	err = s.db.NewSelect().
		Model(&rows).
		Where("doc_id = ?", docID).
		OrderExpr("embedding <-> ?", queryEmbedding).
		OrderExpr("chunk_id ASC").
		Limit(k).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	out := make([]models.SearchResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, models.SearchResult{
			Chunk: models.Chunk{
				Content:    row.Content,
				PageNumber: row.PageNumber,
				ChunkID:    row.ChunkID,
			},
			SourceFilename: row.SourceFilename,
		})
	}
	return out, nil
}

// Drop removes the document's rows. Unknown ids are a no-op.
func (s *Store) Drop(ctx context.Context, docID string) error {
	_, err := s.db.NewDelete().Model((*ChunkRow)(nil)).Where("doc_id = ?", docID).Exec(ctx)
	if err != nil {
		return fmt.Errorf("drop document rows: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
