// Package pdfdoc extracts plain text from stored PDF documents.
package pdfdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
	"github.com/knowlex-labs/rag-engine-sub001/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract reads the whole document. Pages that fail text extraction are
// skipped; an entirely unreadable document is an error.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.open(ctx, doc)
	if err != nil {
		return "", err
	}

	var pages []string
	for i := 1; i <= reader.NumPage(); i++ {
		text, ok := pageText(reader, i)
		if ok {
			pages = append(pages, text)
		}
	}
	if len(pages) == 0 {
		return "", fmt.Errorf("no extractable text in %s", doc.Filename)
	}
	return strings.Join(pages, "\n"), nil
}

// FirstPage reads only the opening page, for content-type detection.
func (e *Extractor) FirstPage(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.open(ctx, doc)
	if err != nil {
		return "", err
	}
	if reader.NumPage() == 0 {
		return "", nil
	}
	text, _ := pageText(reader, 1)
	return text, nil
}

func (e *Extractor) open(ctx context.Context, doc *domain.Document) (*pdf.Reader, error) {
	source, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer source.Close()

	raw, err := io.ReadAll(source)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", doc.Filename, err)
	}
	return reader, nil
}

func pageText(reader *pdf.Reader, pageNum int) (string, bool) {
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", false
	}
	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}
