package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type ingestFake struct {
	err      error
	lastHint string
}

func (f *ingestFake) Upload(_ context.Context, filename, mimeType, contentHint string, body io.Reader) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastHint = contentHint
	if _, err := io.ReadAll(body); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &domain.Document{
		FileID:      "file-1",
		Filename:    filename,
		MimeType:    mimeType,
		StoragePath: "file-1_constitution.pdf",
		ContentHint: domain.ParseContentType(contentHint),
		Status:      domain.StatusUploaded,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

type readerFake struct {
	err error
}

func (f readerFake) GetByID(context.Context, string) (*domain.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Document{
		FileID:   "file-1",
		Filename: "constitution.pdf",
		MimeType: "application/pdf",
		Status:   domain.StatusIngested,
	}, nil
}

type queryFake struct {
	err    error
	answer *domain.Answer
}

func (f queryFake) Search(context.Context, string, int, []string) ([]domain.RetrievedChunk, error) {
	return nil, f.err
}

func (f queryFake) Answer(context.Context, string, int, []string) (*domain.Answer, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.answer != nil {
		return f.answer, nil
	}
	return &domain.Answer{Text: "ok", Found: true}, nil
}

func newTestHandler(ingestor *ingestFake, reader readerFake, query queryFake) http.Handler {
	return NewRouter(ingestor, reader, query, nil, discardLogger()).Handler("api")
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestHealthzEndpoint(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{}, queryFake{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
}

func TestUploadDocumentSuccess(t *testing.T) {
	ingestor := &ingestFake{}
	handler := newTestHandler(ingestor, readerFake{}, queryFake{})

	body, contentType := multipartBody(t, "file", "constitution.pdf", "%PDF-1.4")
	req := httptest.NewRequest(http.MethodPost, "/v1/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(contentHintHeader, "book")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}
	if ingestor.lastHint != "book" {
		t.Fatalf("expected content hint to reach upload, got %q", ingestor.lastHint)
	}

	var docResp map[string]any
	if err := json.NewDecoder(res.Body).Decode(&docResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if docResp["file_id"] != "file-1" {
		t.Fatalf("unexpected response: %+v", docResp)
	}
}

func TestUploadDocumentMissingMultipartField(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{}, queryFake{})

	req := httptest.NewRequest(http.MethodPost, "/v1/documents", bytes.NewBufferString("plain-text"))
	req.Header.Set("Content-Type", "text/plain")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryLawMapsInvalidInputTo400(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{}, queryFake{
		err: domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("bad query")),
	})

	payload, _ := json.Marshal(map[string]any{"question": "what is theft"})
	req := httptest.NewRequest(http.MethodPost, "/v1/law/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryLawRejectsEmptyQuestion(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{}, queryFake{})

	payload, _ := json.Marshal(map[string]any{"question": "   "})
	req := httptest.NewRequest(http.MethodPost, "/v1/law/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
}

func TestQueryLawPassesCollections(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{}, queryFake{
		answer: &domain.Answer{Text: "sure", Found: true, Sources: []domain.RetrievedChunk{{ChunkID: "c1"}}},
	})

	payload, _ := json.Marshal(map[string]any{
		"question":    "what is theft",
		"collections": []string{"bns"},
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/law/query", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}

	var answer map[string]any
	if err := json.NewDecoder(res.Body).Decode(&answer); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if answer["found"] != true {
		t.Fatalf("unexpected answer: %+v", answer)
	}
}

func TestGetDocumentByIDReturns404ForNotFound(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{
		err: domain.WrapError(domain.ErrDocumentNotFound, "get", errors.New("id=missing")),
	}, queryFake{})

	req := httptest.NewRequest(http.MethodGet, "/v1/documents/missing", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if res.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.Code)
	}
}

func TestRequestIDHeaderIsEchoed(t *testing.T) {
	handler := newTestHandler(&ingestFake{}, readerFake{}, queryFake{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "req-42")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	if got := res.Header().Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected request id to be echoed, got %q", got)
	}
}
