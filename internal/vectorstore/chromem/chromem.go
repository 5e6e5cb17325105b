// Package chromem backs the vector store with philippgille/chromem-go,
// one collection per document revision.
package chromem

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

const collectionPrefix = "doc-"

// Store maps document ids to chromem collections. Rebuilding a
// document writes into a fresh collection and swaps it in under the
// lock, so readers never observe a half-built index.
type Store struct {
	db *chromem.DB

	mu   sync.RWMutex
	live map[string]string // doc id -> current collection name
}

// NewStore creates an in-memory store, or a persistent one when path
// is non-empty.
func NewStore(path string) (*Store, error) {
	var db *chromem.DB
	var err error
	if path == "" {
		db = chromem.NewDB()
	} else {
		db, err = chromem.NewPersistentDB(path, false)
		if err != nil {
			return nil, fmt.Errorf("create persistent vector db: %w", err)
		}
	}
	s := &Store{db: db, live: map[string]string{}}
	s.restore()
	return s, nil
}

// RestoredDoc describes an index found on disk at startup.
type RestoredDoc struct {
	ID         string
	ChunkCount int
}

// Restored lists the documents recovered from a persistent database,
// latest revision per document.
func (s *Store) Restored() []RestoredDoc {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]RestoredDoc, 0, len(s.live))
	for docID, name := range s.live {
		if c := s.db.GetCollection(name, nil); c != nil {
			docs = append(docs, RestoredDoc{ID: docID, ChunkCount: c.Count()})
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// restore picks up the newest revision of every persisted collection.
func (s *Store) restore() {
	type rev struct {
		name string
		ts   int64
	}
	latest := map[string]rev{}
	for name := range s.db.ListCollections() {
		docID, ts, ok := parseCollectionName(name)
		if !ok {
			continue
		}
		if cur, exists := latest[docID]; !exists || ts > cur.ts {
			latest[docID] = rev{name: name, ts: ts}
		}
	}
	for docID, r := range latest {
		s.live[docID] = r.name
	}
	if len(s.live) > 0 {
		log.Info().Int("documents", len(s.live)).Msg("restored persisted indexes")
	}
}

func (s *Store) Build(ctx context.Context, docID string, chunks []models.ChunkEmbedding) error {
	if len(chunks) == 0 {
		return models.IngestionError("no chunks to index", nil)
	}

	name := fmt.Sprintf("%s%s-r%d", collectionPrefix, docID, time.Now().UnixNano())
	collection, err := s.db.GetOrCreateCollection(name, nil, nil)
	if err != nil {
		return models.IngestionError("create collection", err)
	}

	docs := make([]chromem.Document, len(chunks))
	for i, ce := range chunks {
		docs[i] = chromem.Document{
			ID:      fmt.Sprintf("%s-%d", docID, ce.ChunkID),
			Content: ce.Content,
			Metadata: map[string]string{
				"source": ce.SourceFilename,
				"page":   strconv.Itoa(ce.PageNumber),
				"chunk":  strconv.Itoa(ce.ChunkID),
			},
			Embedding: ce.Embedding,
		}
	}
	if err := collection.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		// Abandon the half-built collection; the live index is untouched.
		if delErr := s.db.DeleteCollection(name); delErr != nil {
			log.Warn().Err(delErr).Str("collection", name).Msg("failed to clean up aborted build")
		}
		return models.IngestionError("add documents to index", err)
	}

	s.mu.Lock()
	old := s.live[docID]
	s.live[docID] = name
	s.mu.Unlock()

	if old != "" {
		if err := s.db.DeleteCollection(old); err != nil {
			log.Warn().Err(err).Str("collection", old).Msg("failed to delete replaced index")
		}
	}
	return nil
}

func (s *Store) Search(ctx context.Context, docID string, queryEmbedding []float32, k int) ([]models.SearchResult, error) {
	if k <= 0 {
		return nil, models.ValidationError(fmt.Sprintf("top-k must be positive, got %d", k))
	}

	// Resolve the collection while holding the lock; a concurrent
	// rebuild deletes the replaced collection right after its swap, and
	// resolving outside the lock could land in that window. The handle
	// itself stays queryable even if the name is deleted afterwards.
	s.mu.RLock()
	name, ok := s.live[docID]
	var collection *chromem.Collection
	if ok {
		collection = s.db.GetCollection(name, nil)
	}
	s.mu.RUnlock()
	if collection == nil {
		return nil, models.NotFoundError(docID)
	}

	count := collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: queryEmbedding,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	out := make([]models.SearchResult, 0, len(results))
	for _, res := range results {
		page, _ := strconv.Atoi(res.Metadata["page"])
		chunkID, _ := strconv.Atoi(res.Metadata["chunk"])
		out = append(out, models.SearchResult{
			Chunk: models.Chunk{
				Content:    res.Content,
				PageNumber: page,
				ChunkID:    chunkID,
			},
			SourceFilename: res.Metadata["source"],
			Similarity:     res.Similarity,
		})
	}
	// Equal similarities fall back to original chunk order.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].Chunk.ChunkID < out[j].Chunk.ChunkID
	})
	return out, nil
}

func (s *Store) Drop(ctx context.Context, docID string) error {
	s.mu.Lock()
	name, ok := s.live[docID]
	delete(s.live, docID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if err := s.db.DeleteCollection(name); err != nil {
		return fmt.Errorf("delete collection: %w", err)
	}
	return nil
}

func (s *Store) Close() error { return nil }

func parseCollectionName(name string) (docID string, ts int64, ok bool) {
	if !strings.HasPrefix(name, collectionPrefix) {
		return "", 0, false
	}
	rest := strings.TrimPrefix(name, collectionPrefix)
	idx := strings.LastIndex(rest, "-r")
	if idx <= 0 {
		return "", 0, false
	}
	ts, err := strconv.ParseInt(rest[idx+2:], 10, 64)
	if err != nil {
		return "", 0, false
	}
	return rest[:idx], ts, true
}
