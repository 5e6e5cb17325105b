// Package server exposes the REST surface: upload, chat, health,
// document listing and deletion.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rikas05/chat-with-pdf/internal/config"
	"github.com/rikas05/chat-with-pdf/internal/docstore"
	"github.com/rikas05/chat-with-pdf/internal/models"
	"github.com/rikas05/chat-with-pdf/internal/rag"
)

type Server struct {
	rag  *rag.RAG
	docs *docstore.Store
	cfg  *config.Config
}

func New(r *rag.RAG, docs *docstore.Store, cfg *config.Config) *Server {
	return &Server{rag: r, docs: docs, cfg: cfg}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /upload_pdf", s.handleUpload)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /documents", s.handleListDocuments)
	mux.HandleFunc("DELETE /documents/{doc_id}", s.handleDeleteDocument)
	return logRequests(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		log.Info().Msg("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	}
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// writeError maps application error kinds onto HTTP statuses. The body
// mirrors the upstream backend's {"detail": ...} shape.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch models.KindOf(err) {
	case models.KindValidation:
		status = http.StatusBadRequest
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindGeneration:
		status = http.StatusBadGateway
	case models.KindIngestion:
		status = http.StatusInternalServerError
	}

	var appErr *models.AppError
	detail := err.Error()
	if errors.As(err, &appErr) {
		detail = appErr.Message
	}
	writeJSON(w, status, map[string]any{"detail": detail, "retryable": models.IsRetryable(err)})
}
