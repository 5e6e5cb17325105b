package models

import "time"

// Chunk is a bounded span of document text, the unit of retrieval.
type Chunk struct {
	Content    string
	PageNumber int
	ChunkID    int
}

// ChunkEmbedding pairs a chunk with its vector and source metadata.
type ChunkEmbedding struct {
	Content        string
	Embedding      []float32
	SourceFilename string
	PageNumber     int
	ChunkID        int
}

// Document describes one uploaded file and the index built from it.
type Document struct {
	ID         string
	Filename   string
	Pages      int
	ChunkCount int
	CreatedAt  time.Time
}

// SearchResult is a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk          Chunk
	SourceFilename string
	Similarity     float32
}

// Turn is one prior question/answer exchange supplied by the client.
type Turn struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answer is the generator's output: the answer text plus the chunks it
// was grounded in. Sources always come from the retrieved set, never
// invented by the model.
type Answer struct {
	Content string
	Sources []SearchResult
}
