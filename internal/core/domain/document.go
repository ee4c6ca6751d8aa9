package domain

import "time"

type IngestStatus string

const (
	StatusUploaded   IngestStatus = "uploaded"
	StatusProcessing IngestStatus = "processing"
	StatusIngested   IngestStatus = "ingested"
	StatusFailed     IngestStatus = "failed"
)

// ContentType is the detected (or caller-hinted) shape of a source document.
// It selects the chunking policy for graph extraction.
type ContentType string

const (
	ContentTypeAuto     ContentType = "auto"
	ContentTypeBook     ContentType = "book"
	ContentTypeChapter  ContentType = "chapter"
	ContentTypeDocument ContentType = "document"
)

// ParseContentType maps a caller-supplied token to a ContentType.
// Unknown tokens fall back to auto so detection still runs.
func ParseContentType(raw string) ContentType {
	switch ContentType(raw) {
	case ContentTypeBook, ContentTypeChapter, ContentTypeDocument:
		return ContentType(raw)
	default:
		return ContentTypeAuto
	}
}

// ChunkPolicy bounds the extraction chunks produced by the splitter.
// Sizes are in runes.
type ChunkPolicy struct {
	MaxChunkSize int
	Overlap      int
}

type Document struct {
	FileID      string       `json:"file_id"`
	Filename    string       `json:"filename"`
	MimeType    string       `json:"mime_type"`
	StoragePath string       `json:"storage_path"`
	ContentHint ContentType  `json:"content_hint,omitempty"`
	Status      IngestStatus `json:"status"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// IngestResult reports what an ingestion run did. AlreadyIngested
// distinguishes the idempotence short-circuit from a fresh run.
type IngestResult struct {
	FileID          string `json:"file_id"`
	AlreadyIngested bool   `json:"already_ingested"`
	NodesPersisted  int    `json:"nodes_persisted"`
	EdgesPersisted  int    `json:"edges_persisted"`
	ChunksTotal     int    `json:"chunks_total"`
	ChunksFailed    int    `json:"chunks_failed"`
}
