package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/rikas05/chat-with-pdf/internal/models"
)

// UploadResponse is returned by POST /upload_pdf.
type UploadResponse struct {
	DocID   string `json:"doc_id"`
	Message string `json:"message"`
	Chunks  int    `json:"chunks"`
}

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	DocID    string        `json:"doc_id"`
	Question string        `json:"question"`
	History  []models.Turn `json:"history,omitempty"`
}

// SourceDocument is one cited chunk in a chat response.
type SourceDocument struct {
	PageContent string         `json:"page_content"`
	Metadata    SourceMetadata `json:"metadata"`
}

type SourceMetadata struct {
	Source string `json:"source"`
	Page   int    `json:"page"`
	Chunk  int    `json:"chunk"`
}

// ChatResponse echoes the history back with the new turn appended.
type ChatResponse struct {
	Answer          string           `json:"answer"`
	SourceDocuments []SourceDocument `json:"source_documents"`
	History         []models.Turn    `json:"history"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	// MaxBytesReader enforces the cap; ParseMultipartForm's argument
	// only controls in-memory buffering.
	limit := s.cfg.Server.MaxUploadMB << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(limit); err != nil {
		writeError(w, models.ValidationError(fmt.Sprintf("failed to parse multipart form (limit %d MB)", s.cfg.Server.MaxUploadMB)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, models.ValidationError("missing file field"))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	tmp, err := os.CreateTemp(s.cfg.Server.UploadTempDir, "upload-*"+ext)
	if err != nil {
		writeError(w, models.IngestionError("create temp file", err))
		return
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		writeError(w, models.IngestionError("save uploaded file", err))
		return
	}
	if err := tmp.Close(); err != nil {
		writeError(w, models.IngestionError("flush uploaded file", err))
		return
	}

	doc, err := s.rag.Ingest(r.Context(), tmp.Name(), header.Filename)
	if err != nil {
		log.Error().Err(err).Str("file", header.Filename).Msg("ingestion failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, UploadResponse{
		DocID:   doc.ID,
		Message: fmt.Sprintf("Document processed successfully. Created %d text chunks.", doc.ChunkCount),
		Chunks:  doc.ChunkCount,
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, models.ValidationError("invalid request body"))
		return
	}
	if req.DocID == "" {
		writeError(w, models.ValidationError("doc_id is required"))
		return
	}

	answer, err := s.rag.Query(r.Context(), req.DocID, req.Question, req.History)
	if err != nil {
		log.Error().Err(err).Str("doc_id", req.DocID).Msg("chat failed")
		writeError(w, err)
		return
	}

	sources := make([]SourceDocument, 0, len(answer.Sources))
	for _, src := range answer.Sources {
		sources = append(sources, SourceDocument{
			PageContent: truncate(src.Chunk.Content, models.SnippetMaxChars),
			Metadata: SourceMetadata{
				Source: src.SourceFilename,
				Page:   src.Chunk.PageNumber,
				Chunk:  src.Chunk.ChunkID,
			},
		})
	}

	writeJSON(w, http.StatusOK, ChatResponse{
		Answer:          answer.Content,
		SourceDocuments: sources,
		History:         append(req.History, models.Turn{Question: req.Question, Answer: answer.Content}),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"llm_provider":    s.cfg.LLM.Provider,
		"model":           s.cfg.LLM.Model,
		"api_key_set":     s.cfg.LLM.Key != "",
		"embedding_model": s.cfg.EmbedLLM.Model,
		"documents":       s.docs.Count(),
	})
}

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs := s.docs.List()
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		ids = append(ids, doc.ID)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":     len(ids),
		"documents": ids,
	})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("doc_id")
	if err := s.docs.Delete(r.Context(), docID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": fmt.Sprintf("Document %s deleted successfully.", docID),
	})
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
