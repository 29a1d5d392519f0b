// Package server exposes the document service over HTTP with JSON bodies.
// Document bytes round-trip between client and server as base64; the server
// keeps no per-session state.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/docufill/docx-fill/internal/config"
	"github.com/docufill/docx-fill/internal/docx"
	"github.com/docufill/docx-fill/internal/oracle"
)

// DocumentService is the slice of the docx service the server consumes.
type DocumentService interface {
	ParseDocument(ctx context.Context, req docx.ParseDocumentRequest) (*docx.ParseDocumentResult, error)
	GenerateDocument(ctx context.Context, req docx.GenerateDocumentRequest) (*docx.GenerateDocumentResult, error)
	MaxFileSize() int64
}

// ValueExtractor is the slice of the oracle client the chat endpoint consumes.
type ValueExtractor interface {
	ExtractValue(ctx context.Context, original, description string, history []oracle.Message, utterance string) (*oracle.Extraction, error)
}

// Server represents the HTTP server instance
type Server struct {
	config    *config.Config
	documents DocumentService
	extractor ValueExtractor // nil when no oracle credential is configured
	mux       *http.ServeMux
}

// NewServer creates a new HTTP server instance. The extractor may be nil, in
// which case the chat endpoint reports that conversational extraction is
// unavailable.
func NewServer(cfg *config.Config, documents DocumentService, extractor ValueExtractor) (*Server, error) {
	if documents == nil {
		return nil, fmt.Errorf("documents service cannot be nil")
	}

	s := &Server{
		config:    cfg,
		documents: documents,
		extractor: extractor,
		mux:       http.NewServeMux(),
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up all HTTP routes.
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/parse-document", s.handleParseDocument)
	s.mux.HandleFunc("/api/generate-document", s.handleGenerateDocument)
	s.mux.HandleFunc("/api/chat", s.handleChat)
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Run starts the HTTP server and blocks until the context is canceled or the
// listener fails. Shutdown drains in-flight requests with a grace period.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", s.config.Address())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}

		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("serve: %w", err)
	}
}
