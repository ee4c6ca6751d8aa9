package ports

import (
	"context"
	"io"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

// DocumentRepository persists and reads document metadata state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, fileID string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, fileID string, status domain.IngestStatus, errMessage string) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, fileID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}

// TextExtractor converts a stored source document into plain text.
// FirstPage reads only the opening page for content-type detection.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
	FirstPage(ctx context.Context, doc *domain.Document) (string, error)
}

// ContentDetector classifies first-page text and selects a chunking policy.
// Detection is pure; a non-auto hint always wins.
type ContentDetector interface {
	Detect(firstPage string, hint domain.ContentType) domain.ContentType
	PolicyFor(contentType domain.ContentType) domain.ChunkPolicy
}

// Chunker splits text into overlapping extraction units.
type Chunker interface {
	Split(text string, policy domain.ChunkPolicy) []string
}

// GraphExtractor runs one LLM extraction call over a chunk and returns the
// raw response text. Syntactic JSON validity is not guaranteed even when
// requested; callers must clean before parsing.
type GraphExtractor interface {
	ExtractGraph(ctx context.Context, chunkText string) (string, error)
}

// Embedder builds a vector for query text.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator creates the final user-facing answer from retrieved context.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, chunks []domain.RetrievedChunk) (string, error)
}

// GraphStore is the property-graph persistence and vector-search boundary.
// Node and edge upserts are no-op-safe on repeat invocation; the File
// completion marker is the idempotence source of truth.
type GraphStore interface {
	IsIngested(ctx context.Context, fileID string) (bool, error)
	UpsertNodes(ctx context.Context, nodes []domain.GraphNode) error
	UpsertEdges(ctx context.Context, edges []domain.GraphEdge) error
	MarkIngested(ctx context.Context, fileID string) error
	VectorSearch(ctx context.Context, queryVector []float32, limit int, collectionIDs []string) ([]domain.RetrievedChunk, error)
}
