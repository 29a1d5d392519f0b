package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docufill/docx-fill/internal/config"
	"github.com/docufill/docx-fill/internal/docx"
	"github.com/docufill/docx-fill/internal/oracle"
)

// stubDocuments implements DocumentService with canned results.
type stubDocuments struct {
	parseResult    *docx.ParseDocumentResult
	parseErr       error
	generateResult *docx.GenerateDocumentResult
	generateErr    error

	lastGenerate docx.GenerateDocumentRequest
}

func (s *stubDocuments) ParseDocument(_ context.Context, _ docx.ParseDocumentRequest) (*docx.ParseDocumentResult, error) {
	return s.parseResult, s.parseErr
}

func (s *stubDocuments) GenerateDocument(_ context.Context, req docx.GenerateDocumentRequest) (*docx.GenerateDocumentResult, error) {
	s.lastGenerate = req
	return s.generateResult, s.generateErr
}

func (s *stubDocuments) MaxFileSize() int64 { return 1024 * 1024 }

// stubExtractor implements ValueExtractor with a canned extraction.
type stubExtractor struct {
	extraction *oracle.Extraction
	err        error
}

func (s *stubExtractor) ExtractValue(_ context.Context, _, _ string, _ []oracle.Message, _ string) (*oracle.Extraction, error) {
	return s.extraction, s.err
}

func newTestServer(t *testing.T, documents DocumentService, extractor ValueExtractor) *Server {
	t.Helper()

	srv, err := NewServer(config.DefaultConfig(), documents, extractor)
	require.NoError(t, err)

	return srv
}

func TestNewServerRequiresDocuments(t *testing.T) {
	_, err := NewServer(config.DefaultConfig(), nil, nil)
	assert.Error(t, err)
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{}, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Timestamp)
}

// multipartUpload builds a multipart body with one file field.
func multipartUpload(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return &buf, mw.FormDataContentType()
}

func TestHandleParseDocument(t *testing.T) {
	documents := &stubDocuments{
		parseResult: &docx.ParseDocumentResult{
			Text: "Agreement with [Company Name].",
			Placeholders: []docx.Placeholder{
				{ID: "1", Name: "company_name", Original: "[Company Name]", Description: "Company legal name", Position: 15},
			},
			DetectionMethod:   docx.DetectionMethodRegex,
			TotalPlaceholders: 1,
		},
	}
	srv := newTestServer(t, documents, nil)

	fileBytes := []byte("fake docx bytes")
	body, contentType := multipartUpload(t, "file", "agreement.docx", fileBytes)

	req := httptest.NewRequest(http.MethodPost, "/api/parse-document", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp ParseResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Agreement with [Company Name].", resp.Text)
	require.Len(t, resp.Placeholders, 1)
	assert.Equal(t, "company_name", resp.Placeholders[0].Name)
	assert.Equal(t, docx.DetectionMethodRegex, resp.DetectionMethod)
	assert.Equal(t, 1, resp.TotalPlaceholders)

	// The original bytes round-trip to the client as base64.
	decoded, err := base64.StdEncoding.DecodeString(resp.OriginalBuffer)
	require.NoError(t, err)
	assert.Equal(t, fileBytes, decoded)
}

func TestHandleParseDocumentMissingFile(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/parse-document", strings.NewReader("no multipart"))
	req.Header.Set("Content-Type", "text/plain")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "No file provided", resp.Error)
}

func TestHandleParseDocumentServiceFailure(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{parseErr: errors.New("boom")}, nil)

	body, contentType := multipartUpload(t, "file", "x.docx", []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/parse-document", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to parse document", resp.Error)
}

func TestHandleParseDocumentTooLarge(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{parseErr: docx.ErrFileTooLarge}, nil)

	body, contentType := multipartUpload(t, "file", "x.docx", []byte("bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/parse-document", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateDocument(t *testing.T) {
	documents := &stubDocuments{
		generateResult: &docx.GenerateDocumentResult{
			Document: []byte("filled docx bytes"),
			Filename: "completed_document_1756500000000.docx",
		},
	}
	srv := newTestServer(t, documents, nil)

	reqBody, err := json.Marshal(GenerateRequest{
		OriginalBuffer: base64.StdEncoding.EncodeToString([]byte("original docx")),
		FilledValues:   map[string]string{"company_name": "Acme Corp"},
		Placeholders: []docx.Placeholder{
			{ID: "1", Name: "company_name", Original: "[Company Name]"},
		},
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/generate-document", bytes.NewReader(reqBody))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed_document_1756500000000.docx", resp.Filename)

	decoded, err := base64.StdEncoding.DecodeString(resp.Document)
	require.NoError(t, err)
	assert.Equal(t, []byte("filled docx bytes"), decoded)

	// The decoded original bytes and values reach the service.
	assert.Equal(t, []byte("original docx"), documents.lastGenerate.Content)
	assert.Equal(t, "Acme Corp", documents.lastGenerate.FilledValues["company_name"])
}

func TestHandleGenerateDocumentBadBase64(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{}, nil)

	reqBody := `{"originalBuffer": "!!!not-base64!!!", "filledValues": {}}`
	req := httptest.NewRequest(http.MethodPost, "/api/generate-document", strings.NewReader(reqBody))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGenerateDocumentServiceFailure(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{generateErr: errors.New("zip broke")}, nil)

	reqBody, _ := json.Marshal(GenerateRequest{
		OriginalBuffer: base64.StdEncoding.EncodeToString([]byte("x")),
		FilledValues:   map[string]string{},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/generate-document", bytes.NewReader(reqBody))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to generate document", resp.Error)
}

func TestHandleChat(t *testing.T) {
	extractor := &stubExtractor{
		extraction: &oracle.Extraction{
			Message:           "Got it, using Acme Corp.",
			ExtractedValue:    "Acme Corp",
			NeedsConfirmation: false,
		},
	}
	srv := newTestServer(t, &stubDocuments{}, extractor)

	reqBody, _ := json.Marshal(ChatRequest{
		Message: "the company is acme corp",
		CurrentPlaceholder: docx.Placeholder{
			Original:    "[Company Name]",
			Description: "Company legal name",
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(reqBody))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp oracle.Extraction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Acme Corp", resp.ExtractedValue)
	assert.Equal(t, "Got it, using Acme Corp.", resp.Message)
}

func TestHandleChatWithoutExtractor(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{}, nil)

	reqBody, _ := json.Marshal(ChatRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(reqBody))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestHandleChatOracleFailureIsTerminal(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{}, &stubExtractor{err: errors.New("timeout")})

	reqBody, _ := json.Marshal(ChatRequest{Message: "hello"})
	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader(reqBody))

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Failed to process message", resp.Error)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, &stubDocuments{}, nil)

	paths := []string{"/api/parse-document", "/api/generate-document", "/api/chat"}
	for _, path := range paths {
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		assert.Equalf(t, http.StatusMethodNotAllowed, rec.Code, "GET %s", path)
	}
}
