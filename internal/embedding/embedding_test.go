package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

// fakeEmbedder is a deterministic stand-in for the model call: each
// vector encodes the text length so order is observable.
type fakeEmbedder struct {
	failDocuments bool
	shortByOne    bool
}

func (f *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if f.failDocuments {
		return nil, errors.New("embedding backend unavailable")
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		out[i] = []float32{float32(len(text)), 1}
	}
	if f.shortByOne && len(out) > 0 {
		out = out[:len(out)-1]
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text)), 1}, nil
}

func TestEmbedChunks_PreservesOrder(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "a", PageNumber: 1, ChunkID: 1},
		{Content: "bbb", PageNumber: 1, ChunkID: 2},
		{Content: "ccccc", PageNumber: 2, ChunkID: 3},
	}

	got, err := EmbedChunks(context.Background(), &fakeEmbedder{}, "file.pdf", chunks)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != len(chunks) {
		t.Fatalf("expected %d embeddings, got %d", len(chunks), len(got))
	}
	for i, ce := range got {
		if ce.ChunkID != chunks[i].ChunkID {
			t.Fatalf("embedding %d out of order: chunk id %d", i, ce.ChunkID)
		}
		if ce.Embedding[0] != float32(len(chunks[i].Content)) {
			t.Fatalf("embedding %d does not match its chunk text", i)
		}
		if ce.SourceFilename != "file.pdf" {
			t.Fatalf("expected source filename on embedding %d", i)
		}
	}
}

func TestEmbedChunks_EmptyInput(t *testing.T) {
	got, err := EmbedChunks(context.Background(), &fakeEmbedder{}, "file.pdf", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}
}

func TestEmbedChunks_FailureAbortsBatch(t *testing.T) {
	chunks := []models.Chunk{{Content: "a", ChunkID: 1}}
	got, err := EmbedChunks(context.Background(), &fakeEmbedder{failDocuments: true}, "file.pdf", chunks)
	if err == nil {
		t.Fatal("expected error when the embedding call fails")
	}
	if models.KindOf(err) != models.KindIngestion {
		t.Fatalf("expected ingestion error, got %v", err)
	}
	if got != nil {
		t.Fatal("no partial embeddings must be returned on failure")
	}
}

type deadlineObserver struct {
	fakeEmbedder
	sawDeadline bool
}

func (d *deadlineObserver) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	_, d.sawDeadline = ctx.Deadline()
	return d.fakeEmbedder.EmbedDocuments(ctx, texts)
}

func TestWithTimeout_BoundsCalls(t *testing.T) {
	obs := &deadlineObserver{}
	wrapped := WithTimeout(obs, time.Second)

	if _, err := wrapped.EmbedDocuments(context.Background(), []string{"x"}); err != nil {
		t.Fatal(err)
	}
	if !obs.sawDeadline {
		t.Fatal("expected a deadline on the embedding context")
	}

	if got := WithTimeout(obs, 0); got != obs {
		t.Fatal("zero timeout must return the embedder unchanged")
	}
}

func TestEmbedChunks_CountMismatch(t *testing.T) {
	chunks := []models.Chunk{
		{Content: "a", ChunkID: 1},
		{Content: "b", ChunkID: 2},
	}
	_, err := EmbedChunks(context.Background(), &fakeEmbedder{shortByOne: true}, "file.pdf", chunks)
	if err == nil {
		t.Fatal("expected error on count mismatch")
	}
	if models.KindOf(err) != models.KindIngestion {
		t.Fatalf("expected ingestion error, got %v", err)
	}
}
