package ports

import (
	"context"
	"io"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType, contentHint string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous graph ingestion.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, fileID string) (domain.IngestResult, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, fileID string) (*domain.Document, error)
}

// LegalQueryService is the inbound contract for scoped retrieval and
// answer synthesis over the legal knowledge graph.
type LegalQueryService interface {
	Search(ctx context.Context, question string, limit int, scopeTokens []string) ([]domain.RetrievedChunk, error)
	Answer(ctx context.Context, question string, limit int, scopeTokens []string) (*domain.Answer, error)
}
