package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
	"github.com/knowlex-labs/rag-engine-sub001/internal/core/ports"
)

const defaultExtractionConcurrency = 5

// GraphExtractionCoordinator fans chunk-level LLM extraction calls out under
// a fixed concurrency cap and folds the surviving fragments back together.
// One bad chunk never fails the document; a document where every chunk fails
// does.
type GraphExtractionCoordinator struct {
	chunker   ports.Chunker
	extractor ports.GraphExtractor
	logger    *slog.Logger
	limit     int
}

func NewGraphExtractionCoordinator(
	chunker ports.Chunker,
	extractor ports.GraphExtractor,
	logger *slog.Logger,
	concurrencyLimit int,
) *GraphExtractionCoordinator {
	if concurrencyLimit <= 0 {
		concurrencyLimit = defaultExtractionConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphExtractionCoordinator{
		chunker:   chunker,
		extractor: extractor,
		logger:    logger,
		limit:     concurrencyLimit,
	}
}

// ExtractionOutcome carries the combined fragment plus per-chunk accounting.
type ExtractionOutcome struct {
	Fragment     domain.GraphFragment
	ChunksTotal  int
	ChunksFailed int
}

// Extract splits the document text and runs one extraction call per chunk.
// Per-chunk failures (call error, unparseable JSON) are logged and dropped.
// Persistence-order guarantees are not needed downstream, so fragments are
// combined in chunk index order purely for determinism.
func (c *GraphExtractionCoordinator) Extract(ctx context.Context, text string, policy domain.ChunkPolicy) (ExtractionOutcome, error) {
	chunks := c.chunker.Split(text, policy)
	if len(chunks) == 0 {
		return ExtractionOutcome{}, nil
	}

	fragments := make([]*domain.GraphFragment, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)
	for i, chunk := range chunks {
		g.Go(func() error {
			fragment, err := c.extractChunk(gctx, chunk)
			if err != nil {
				c.logger.Warn("chunk extraction failed",
					"chunk_index", i,
					"chunk_chars", len(chunk),
					"error", err,
				)
				return nil
			}
			fragments[i] = &fragment
			return nil
		})
	}
	// Workers never return errors, so Wait only surfaces context teardown.
	if err := g.Wait(); err != nil {
		return ExtractionOutcome{}, fmt.Errorf("gather extraction tasks: %w", err)
	}

	outcome := ExtractionOutcome{ChunksTotal: len(chunks)}
	for _, fragment := range fragments {
		if fragment == nil {
			outcome.ChunksFailed++
			continue
		}
		outcome.Fragment.Nodes = append(outcome.Fragment.Nodes, fragment.Nodes...)
		outcome.Fragment.Edges = append(outcome.Fragment.Edges, fragment.Edges...)
	}

	if outcome.ChunksFailed == outcome.ChunksTotal {
		return ExtractionOutcome{}, domain.WrapError(
			domain.ErrExtractionFailed,
			"extract graph",
			fmt.Errorf("all %d chunks failed", outcome.ChunksTotal),
		)
	}

	c.logger.Info("graph extraction complete",
		"chunks_total", outcome.ChunksTotal,
		"chunks_failed", outcome.ChunksFailed,
		"nodes", len(outcome.Fragment.Nodes),
		"edges", len(outcome.Fragment.Edges),
	)
	return outcome, nil
}

func (c *GraphExtractionCoordinator) extractChunk(ctx context.Context, chunk string) (domain.GraphFragment, error) {
	raw, err := c.extractor.ExtractGraph(ctx, chunk)
	if err != nil {
		return domain.GraphFragment{}, fmt.Errorf("llm extraction call: %w", err)
	}

	var fragment domain.GraphFragment
	if err := json.Unmarshal([]byte(CleanGraphJSON(raw)), &fragment); err != nil {
		return domain.GraphFragment{}, fmt.Errorf("parse graph json: %w", err)
	}
	return fragment, nil
}

// CleanGraphJSON strips fenced code-block markers the LLM may wrap around a
// JSON response, optionally tagged "json".
func CleanGraphJSON(response string) string {
	response = strings.TrimSpace(response)
	if after, ok := strings.CutPrefix(response, "```json"); ok {
		response = after
	} else if after, ok := strings.CutPrefix(response, "```"); ok {
		response = after
	}
	response = strings.TrimSuffix(response, "```")
	return strings.TrimSpace(response)
}
