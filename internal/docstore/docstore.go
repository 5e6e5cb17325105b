// Package docstore tracks which index belongs to which uploaded
// document.
package docstore

import (
	"context"
	"sync"

	"github.com/rikas05/chat-with-pdf/internal/models"
	"github.com/rikas05/chat-with-pdf/internal/vectorstore"
)

// Store is the in-process registry of uploaded documents. It owns the
// document metadata; vectors live in the attached vectorstore.Store.
type Store struct {
	mu    sync.RWMutex
	docs  map[string]*models.Document
	order []string
	index vectorstore.Store
}

func New(index vectorstore.Store) *Store {
	return &Store{
		docs:  map[string]*models.Document{},
		index: index,
	}
}

// Register publishes a document. Its index must already be built, so
// readers never see a registered document without a complete index.
// Re-registering an id replaces the metadata but keeps its original
// position in the listing.
func (s *Store) Register(doc *models.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.docs[doc.ID]; !exists {
		s.order = append(s.order, doc.ID)
	}
	s.docs[doc.ID] = doc
}

func (s *Store) Get(docID string) (*models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[docID]
	if !ok {
		return nil, models.NotFoundError(docID)
	}
	return doc, nil
}

// Delete unregisters the document and releases its index. Deleting an
// unknown id is a no-op.
func (s *Store) Delete(ctx context.Context, docID string) error {
	s.mu.Lock()
	if _, ok := s.docs[docID]; ok {
		delete(s.docs, docID)
		for i, id := range s.order {
			if id == docID {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	return s.index.Drop(ctx, docID)
}

// List returns documents in registration order.
func (s *Store) List() []*models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Document, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.docs[id])
	}
	return out
}

func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
