package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type chunkerFake struct {
	chunks []string
}

func (f chunkerFake) Split(string, domain.ChunkPolicy) []string {
	return f.chunks
}

type extractorFunc func(ctx context.Context, chunkText string) (string, error)

func (f extractorFunc) ExtractGraph(ctx context.Context, chunkText string) (string, error) {
	return f(ctx, chunkText)
}

func TestExtractCombinesFragmentsInChunkOrder(t *testing.T) {
	chunks := []string{"alpha", "beta", "gamma"}
	extractor := extractorFunc(func(_ context.Context, chunk string) (string, error) {
		return fmt.Sprintf(`{"nodes":[{"id":"%s","label":"Statute","text":"t"}],"edges":[]}`, chunk), nil
	})

	coord := NewGraphExtractionCoordinator(chunkerFake{chunks: chunks}, extractor, testLogger(), 2)
	outcome, err := coord.Extract(context.Background(), "doc", domain.ChunkPolicy{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if outcome.ChunksTotal != 3 || outcome.ChunksFailed != 0 {
		t.Fatalf("unexpected accounting: %+v", outcome)
	}
	if len(outcome.Fragment.Nodes) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(outcome.Fragment.Nodes))
	}
	for i, want := range chunks {
		if outcome.Fragment.Nodes[i].ID != want {
			t.Fatalf("node %d = %q, want %q", i, outcome.Fragment.Nodes[i].ID, want)
		}
	}
}

func TestExtractDropsFailedChunksButKeepsRest(t *testing.T) {
	extractor := extractorFunc(func(_ context.Context, chunk string) (string, error) {
		if chunk == "bad" {
			return "", errors.New("model unavailable")
		}
		if chunk == "garbled" {
			return "this is not json", nil
		}
		return `{"nodes":[{"id":"n1","label":"Case","text":"t"}],"edges":[]}`, nil
	})

	coord := NewGraphExtractionCoordinator(chunkerFake{chunks: []string{"ok", "bad", "garbled", "ok2"}}, extractor, testLogger(), 2)
	outcome, err := coord.Extract(context.Background(), "doc", domain.ChunkPolicy{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if outcome.ChunksFailed != 2 {
		t.Fatalf("expected 2 failed chunks, got %d", outcome.ChunksFailed)
	}
	if len(outcome.Fragment.Nodes) != 2 {
		t.Fatalf("expected 2 surviving nodes, got %d", len(outcome.Fragment.Nodes))
	}
}

func TestExtractFailsWhenEveryChunkFails(t *testing.T) {
	extractor := extractorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("down")
	})

	coord := NewGraphExtractionCoordinator(chunkerFake{chunks: []string{"a", "b"}}, extractor, testLogger(), 2)
	_, err := coord.Extract(context.Background(), "doc", domain.ChunkPolicy{})
	if err == nil {
		t.Fatalf("expected error when all chunks fail")
	}
	if !domain.IsKind(err, domain.ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestExtractRespectsConcurrencyLimit(t *testing.T) {
	const limit = 3

	var inFlight, peak int64
	var mu sync.Mutex
	extractor := extractorFunc(func(context.Context, string) (string, error) {
		current := atomic.AddInt64(&inFlight, 1)
		mu.Lock()
		if current > peak {
			peak = current
		}
		mu.Unlock()
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt64(&inFlight, -1)
		return `{"nodes":[],"edges":[]}`, nil
	})

	chunks := make([]string, 20)
	for i := range chunks {
		chunks[i] = fmt.Sprintf("chunk-%d", i)
	}

	coord := NewGraphExtractionCoordinator(chunkerFake{chunks: chunks}, extractor, testLogger(), limit)
	if _, err := coord.Extract(context.Background(), "doc", domain.ChunkPolicy{}); err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if peak > limit {
		t.Fatalf("observed %d concurrent extractions, limit is %d", peak, limit)
	}
}

func TestExtractEmptyTextYieldsNothing(t *testing.T) {
	coord := NewGraphExtractionCoordinator(chunkerFake{}, extractorFunc(func(context.Context, string) (string, error) {
		t.Fatalf("extractor must not be called for empty input")
		return "", nil
	}), testLogger(), 1)

	outcome, err := coord.Extract(context.Background(), "", domain.ChunkPolicy{})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if outcome.ChunksTotal != 0 || !outcome.Fragment.Empty() {
		t.Fatalf("expected empty outcome, got %+v", outcome)
	}
}

func TestCleanGraphJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"bare", `{"nodes":[]}`, `{"nodes":[]}`},
		{"json fence", "```json\n{\"nodes\":[]}\n```", `{"nodes":[]}`},
		{"plain fence", "```\n{\"nodes\":[]}\n```", `{"nodes":[]}`},
		{"leading whitespace", "  \n```json\n{}\n```  ", `{}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CleanGraphJSON(tc.in); got != tc.want {
				t.Fatalf("CleanGraphJSON(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
