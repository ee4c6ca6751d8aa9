package usecase

import (
	"context"
	"log/slog"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
	"github.com/knowlex-labs/rag-engine-sub001/internal/core/ports"
)

// noContentAnswer is returned when retrieval finds nothing usable. Retrieval
// never raises to the end user; it degrades to this outcome.
const noContentAnswer = "No relevant legal content found for your question."

// QueryUseCase routes a natural-language question through embedding, scoped
// vector search, and answer synthesis.
//
// Search returns raw scored results without threshold filtering so that
// diagnostic tooling always sees true scores. Answer applies the relevance
// threshold as consuming-layer policy.
type QueryUseCase struct {
	embedder     ports.Embedder
	graph        ports.GraphStore
	generator    ports.AnswerGenerator
	threshold    float64
	defaultLimit int
	logger       *slog.Logger
}

func NewQueryUseCase(
	embedder ports.Embedder,
	graph ports.GraphStore,
	generator ports.AnswerGenerator,
	relevanceThreshold float64,
	defaultLimit int,
	logger *slog.Logger,
) *QueryUseCase {
	if defaultLimit <= 0 {
		defaultLimit = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryUseCase{
		embedder:     embedder,
		graph:        graph,
		generator:    generator,
		threshold:    relevanceThreshold,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

// Search embeds the question and runs one vector-index query restricted to
// the resolved collection scope. Embedding or graph failures are absorbed
// into an empty result set; callers present "no content found", not errors.
func (uc *QueryUseCase) Search(ctx context.Context, question string, limit int, scopeTokens []string) ([]domain.RetrievedChunk, error) {
	if limit <= 0 {
		limit = uc.defaultLimit
	}

	collectionIDs := ResolveScope(scopeTokens)
	if len(collectionIDs) == 0 {
		return nil, nil
	}

	queryVector, err := uc.embedder.EmbedQuery(ctx, question)
	if err != nil {
		uc.logger.Error("query embedding failed", "error", err)
		return nil, nil
	}

	chunks, err := uc.graph.VectorSearch(ctx, queryVector, limit, collectionIDs)
	if err != nil {
		uc.logger.Error("vector search failed", "error", err)
		return nil, nil
	}
	return chunks, nil
}

// Answer synthesizes a response from retrieved chunks. Results whose best
// score falls below the relevance threshold are treated as "no sufficiently
// relevant content" rather than surfaced as a low-confidence answer.
func (uc *QueryUseCase) Answer(ctx context.Context, question string, limit int, scopeTokens []string) (*domain.Answer, error) {
	chunks, err := uc.Search(ctx, question, limit, scopeTokens)
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 || domain.MaxScore(chunks) < uc.threshold {
		uc.logger.Info("retrieval below relevance threshold",
			"chunks", len(chunks),
			"best_score", domain.MaxScore(chunks),
			"threshold", uc.threshold,
		)
		return &domain.Answer{Text: noContentAnswer, Found: false}, nil
	}

	text, err := uc.generator.GenerateAnswer(ctx, question, chunks)
	if err != nil {
		uc.logger.Error("answer generation failed", "error", err)
		return &domain.Answer{Text: noContentAnswer, Found: false, Sources: chunks, TotalChunks: len(chunks)}, nil
	}

	return &domain.Answer{
		Text:        text,
		Found:       true,
		Sources:     chunks,
		TotalChunks: len(chunks),
	}, nil
}
