package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/docufill/docx-fill/internal/docx"
	"github.com/docufill/docx-fill/internal/oracle"
)

// HealthResponse represents the JSON response from /health.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ParseResponse represents the JSON response from /api/parse-document.
type ParseResponse struct {
	Text              string             `json:"text"`
	Placeholders      []docx.Placeholder `json:"placeholders"`
	OriginalBuffer    string             `json:"originalBuffer"`
	DetectionMethod   string             `json:"detectionMethod,omitempty"`
	TotalPlaceholders int                `json:"totalPlaceholders,omitempty"`
}

// GenerateRequest represents the JSON body of /api/generate-document.
type GenerateRequest struct {
	OriginalBuffer string             `json:"originalBuffer"`
	FilledValues   map[string]string  `json:"filledValues"`
	Placeholders   []docx.Placeholder `json:"placeholders,omitempty"`
}

// GenerateResponse represents the JSON response from /api/generate-document.
type GenerateResponse struct {
	Document string `json:"document"`
	Filename string `json:"filename"`
}

// ChatRequest represents the JSON body of /api/chat.
type ChatRequest struct {
	Message            string           `json:"message"`
	CurrentPlaceholder docx.Placeholder `json:"currentPlaceholder"`
	ChatHistory        []oracle.Message `json:"chatHistory"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// handleParseDocument accepts a multipart .docx upload and responds with the
// flattened text, detected placeholders and the original bytes as base64 so
// the client can send them back on generation.
func (s *Server) handleParseDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if err := r.ParseMultipartForm(s.documents.MaxFileSize()); err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, s.documents.MaxFileSize()+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	result, err := s.documents.ParseDocument(r.Context(), docx.ParseDocumentRequest{
		Filename: header.Filename,
		Content:  content,
	})
	if err != nil {
		if errors.Is(err, docx.ErrFileTooLarge) {
			writeError(w, http.StatusBadRequest, "Document is too large")
			return
		}

		log.Printf("parse error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to parse document")
		return
	}

	writeJSON(w, http.StatusOK, ParseResponse{
		Text:              result.Text,
		Placeholders:      result.Placeholders,
		OriginalBuffer:    base64.StdEncoding.EncodeToString(content),
		DetectionMethod:   result.DetectionMethod,
		TotalPlaceholders: result.TotalPlaceholders,
	})
}

// handleGenerateDocument fills the supplied values into the base64 document
// and responds with the completed archive. Failures never produce partial
// document bytes.
func (s *Server) handleGenerateDocument(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.OriginalBuffer)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid document buffer")
		return
	}

	result, err := s.documents.GenerateDocument(r.Context(), docx.GenerateDocumentRequest{
		Content:      content,
		FilledValues: req.FilledValues,
		Placeholders: req.Placeholders,
	})
	if err != nil {
		log.Printf("generation error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate document")
		return
	}

	writeJSON(w, http.StatusOK, GenerateResponse{
		Document: base64.StdEncoding.EncodeToString(result.Document),
		Filename: result.Filename,
	})
}

// handleChat runs one conversational extraction turn against the oracle.
// There is no deterministic substitute for it, so oracle failures are
// terminal for this endpoint.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if s.extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "Conversational extraction is not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	extraction, err := s.extractor.ExtractValue(
		r.Context(),
		req.CurrentPlaceholder.Original,
		req.CurrentPlaceholder.Description,
		req.ChatHistory,
		req.Message,
	)
	if err != nil {
		log.Printf("chat error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to process message")
		return
	}

	writeJSON(w, http.StatusOK, extraction)
}

// writeJSON encodes v as the JSON response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("error encoding response: %v", err)
	}
}

// writeError writes the uniform JSON error body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
