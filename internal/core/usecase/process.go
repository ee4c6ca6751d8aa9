package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
	"github.com/knowlex-labs/rag-engine-sub001/internal/core/ports"
)

// ProcessDocumentUseCase runs the ingestion pipeline for one document:
// idempotence check, parse, detect, chunked extraction, sanitize, persist,
// completion marker. Any pipeline-scope failure propagates before the
// marker is written, so a retry is treated as a fresh attempt.
type ProcessDocumentUseCase struct {
	repo        ports.DocumentRepository
	extractor   ports.TextExtractor
	detector    ports.ContentDetector
	coordinator *GraphExtractionCoordinator
	sanitizer   *GraphSanitizer
	graph       ports.GraphStore
	logger      *slog.Logger
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	detector ports.ContentDetector,
	coordinator *GraphExtractionCoordinator,
	sanitizer *GraphSanitizer,
	graph ports.GraphStore,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProcessDocumentUseCase{
		repo:        repo,
		extractor:   extractor,
		detector:    detector,
		coordinator: coordinator,
		sanitizer:   sanitizer,
		graph:       graph,
		logger:      logger,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, fileID string) (domain.IngestResult, error) {
	doc, err := uc.repo.GetByID(ctx, fileID)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("fetch document by id: %w", err)
	}

	// Idempotence gate: the completion marker, not metadata status, decides.
	ingested, err := uc.graph.IsIngested(ctx, fileID)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("check completion marker: %w", err)
	}
	if ingested {
		uc.logger.Info("document already ingested, skipping", "file_id", fileID)
		if err := uc.repo.UpdateStatus(ctx, fileID, domain.StatusIngested, ""); err != nil {
			return domain.IngestResult{}, fmt.Errorf("set status=ingested: %w", err)
		}
		return domain.IngestResult{FileID: fileID, AlreadyIngested: true}, nil
	}

	if err := uc.repo.UpdateStatus(ctx, fileID, domain.StatusProcessing, ""); err != nil {
		return domain.IngestResult{}, fmt.Errorf("set status=processing: %w", err)
	}

	result, err := uc.runPipeline(ctx, doc)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, fileID, domain.StatusFailed, err.Error()); failErr != nil {
			return domain.IngestResult{}, fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return domain.IngestResult{}, err
	}

	if err := uc.repo.UpdateStatus(ctx, fileID, domain.StatusIngested, ""); err != nil {
		return domain.IngestResult{}, fmt.Errorf("set status=ingested: %w", err)
	}
	return result, nil
}

func (uc *ProcessDocumentUseCase) runPipeline(ctx context.Context, doc *domain.Document) (domain.IngestResult, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return domain.IngestResult{}, fmt.Errorf("parse document: %w", err)
	}
	if text == "" {
		return domain.IngestResult{}, domain.WrapError(domain.ErrInvalidInput, "parse document", errors.New("empty extracted text"))
	}

	policy := uc.detectPolicy(ctx, doc)

	outcome, err := uc.coordinator.Extract(ctx, text, policy)
	if err != nil {
		return domain.IngestResult{}, err
	}

	nodes, edges := uc.sanitizer.Sanitize(outcome.Fragment, doc.FileID)

	if err := uc.graph.UpsertNodes(ctx, nodes); err != nil {
		return domain.IngestResult{}, fmt.Errorf("persist nodes: %w", err)
	}
	if err := uc.graph.UpsertEdges(ctx, edges); err != nil {
		return domain.IngestResult{}, fmt.Errorf("persist edges: %w", err)
	}
	if err := uc.graph.MarkIngested(ctx, doc.FileID); err != nil {
		return domain.IngestResult{}, fmt.Errorf("write completion marker: %w", err)
	}

	return domain.IngestResult{
		FileID:         doc.FileID,
		NodesPersisted: len(nodes),
		EdgesPersisted: len(edges),
		ChunksTotal:    outcome.ChunksTotal,
		ChunksFailed:   outcome.ChunksFailed,
	}, nil
}

// detectPolicy never blocks ingestion: first-page read failures fall back
// to the document policy.
func (uc *ProcessDocumentUseCase) detectPolicy(ctx context.Context, doc *domain.Document) domain.ChunkPolicy {
	firstPage, err := uc.extractor.FirstPage(ctx, doc)
	if err != nil {
		uc.logger.Warn("first page read failed, defaulting to document policy",
			"file_id", doc.FileID, "error", err)
		firstPage = ""
	}
	contentType := uc.detector.Detect(firstPage, doc.ContentHint)
	uc.logger.Info("content type selected", "file_id", doc.FileID, "content_type", contentType)
	return uc.detector.PolicyFor(contentType)
}
