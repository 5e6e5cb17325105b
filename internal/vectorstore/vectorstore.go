// Package vectorstore defines the index capability the retrieval
// pipeline is built on, with chromem-go and Postgres/pgvector backends.
package vectorstore

import (
	"context"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

// Store holds one nearest-neighbor index per document.
//
// Build replaces any prior index for the same document id wholesale;
// a query running during a rebuild sees either the old or the new
// complete index, never a partial one. Search never returns chunks
// from another document, and k larger than the index returns all of
// it. Drop is idempotent and releases the index's resources.
type Store interface {
	Build(ctx context.Context, docID string, chunks []models.ChunkEmbedding) error
	Search(ctx context.Context, docID string, queryEmbedding []float32, k int) ([]models.SearchResult, error)
	Drop(ctx context.Context, docID string) error
	Close() error
}
