package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

type uploadRepoFake struct {
	created *domain.Document
	err     error
}

func (f *uploadRepoFake) Create(_ context.Context, doc *domain.Document) error {
	if f.err != nil {
		return f.err
	}
	f.created = doc
	return nil
}

func (f *uploadRepoFake) GetByID(context.Context, string) (*domain.Document, error) {
	return f.created, nil
}

func (f *uploadRepoFake) UpdateStatus(context.Context, string, domain.IngestStatus, string) error {
	return nil
}

type storageFake struct {
	saved map[string][]byte
	err   error
}

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[key] = raw
	return nil
}

func (f *storageFake) Open(context.Context, string) (io.ReadCloser, error) {
	return nil, errors.New("not implemented")
}

func (f *storageFake) Delete(context.Context, string) error { return nil }

type queueFake struct {
	published []string
	err       error
}

func (f *queueFake) PublishDocumentIngested(_ context.Context, fileID string) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, fileID)
	return nil
}

func (f *queueFake) SubscribeDocumentIngested(context.Context, func(context.Context, string) error) error {
	return nil
}

func TestUploadStoresCreatesAndPublishes(t *testing.T) {
	repo := &uploadRepoFake{}
	storage := &storageFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, storage, queue)

	doc, err := uc.Upload(context.Background(), "Indian Penal Code.pdf", "application/pdf", "book", bytes.NewBufferString("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if doc.Status != domain.StatusUploaded {
		t.Fatalf("expected status uploaded, got %q", doc.Status)
	}
	if doc.ContentHint != domain.ContentTypeBook {
		t.Fatalf("expected content hint book, got %q", doc.ContentHint)
	}
	if !strings.HasPrefix(doc.StoragePath, doc.FileID+"_") {
		t.Fatalf("storage key must be namespaced by file id, got %q", doc.StoragePath)
	}
	if strings.Contains(doc.StoragePath, " ") {
		t.Fatalf("storage key must not contain spaces: %q", doc.StoragePath)
	}
	if _, ok := storage.saved[doc.StoragePath]; !ok {
		t.Fatalf("document bytes not saved under %q", doc.StoragePath)
	}
	if repo.created == nil || repo.created.FileID != doc.FileID {
		t.Fatalf("metadata row not created")
	}
	if len(queue.published) != 1 || queue.published[0] != doc.FileID {
		t.Fatalf("expected one published event for %q, got %v", doc.FileID, queue.published)
	}
}

func TestUploadUnknownHintFallsBackToAuto(t *testing.T) {
	uc := NewIngestDocumentUseCase(&uploadRepoFake{}, &storageFake{}, &queueFake{})

	doc, err := uc.Upload(context.Background(), "a.pdf", "application/pdf", "novel", bytes.NewBufferString("x"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if doc.ContentHint != domain.ContentTypeAuto {
		t.Fatalf("expected auto hint for unknown token, got %q", doc.ContentHint)
	}
}

func TestUploadStorageFailureDoesNotCreateMetadata(t *testing.T) {
	repo := &uploadRepoFake{}
	queue := &queueFake{}
	uc := NewIngestDocumentUseCase(repo, &storageFake{err: errors.New("disk full")}, queue)

	if _, err := uc.Upload(context.Background(), "a.pdf", "application/pdf", "", bytes.NewBufferString("x")); err == nil {
		t.Fatalf("expected error")
	}
	if repo.created != nil {
		t.Fatalf("metadata must not be created when storage save fails")
	}
	if len(queue.published) != 0 {
		t.Fatalf("event must not be published when storage save fails")
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := map[string]string{
		"plain.pdf":            "plain.pdf",
		"with space.pdf":       "with_space.pdf",
		"../../etc/passwd":     "passwd",
		"статья.pdf":           "______.pdf",
		"":                     "document.pdf",
		"mixed CASE-name_1.md": "mixed_CASE-name_1.md",
	}
	for in, want := range cases {
		if got := sanitizeFilename(in); got != want {
			t.Fatalf("sanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}
