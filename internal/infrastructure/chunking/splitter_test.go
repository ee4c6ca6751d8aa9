package chunking

import (
	"strings"
	"testing"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

func TestSplitEmptyTextYieldsNoChunks(t *testing.T) {
	s := NewSplitter()
	if chunks := s.Split("   \n  ", domain.ChunkPolicy{MaxChunkSize: 100, Overlap: 10}); chunks != nil {
		t.Fatalf("expected nil, got %v", chunks)
	}
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	s := NewSplitter()
	chunks := s.Split("Section 378 defines theft. Section 379 sets the punishment.", domain.ChunkPolicy{MaxChunkSize: 3000, Overlap: 200})
	if len(chunks) != 1 {
		t.Fatalf("expected one chunk, got %d: %v", len(chunks), chunks)
	}
}

func TestSplitRespectsMaxChunkSize(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The accused shall be produced before a magistrate without delay. ")
	}

	s := NewSplitter()
	policy := domain.ChunkPolicy{MaxChunkSize: 500, Overlap: 50}
	chunks := s.Split(b.String(), policy)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > policy.MaxChunkSize {
			t.Fatalf("chunk %d has %d runes, max is %d", i, n, policy.MaxChunkSize)
		}
	}
}

func TestSplitCarriesOverlapBetweenChunks(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 40; i++ {
		b.WriteString("Clause number provides an exception to the general rule. ")
	}

	s := NewSplitter()
	chunks := s.Split(b.String(), domain.ChunkPolicy{MaxChunkSize: 300, Overlap: 60})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1]
		if len(prevTail) > 60 {
			prevTail = prevTail[len(prevTail)-60:]
		}
		// The next chunk starts with sentences carried from the previous
		// one, so some tail content must reappear.
		if !strings.Contains(chunks[i], "exception to the general rule") {
			t.Fatalf("chunk %d lost overlap context: %q (prev tail %q)", i, chunks[i], prevTail)
		}
	}
}

func TestSplitBoundHoldsWithLongSentences(t *testing.T) {
	// Sentences just over half the chunk size: a carry of one full sentence
	// plus the next would land well past the bound.
	var b strings.Builder
	for _, prefix := range []string{"Alpha", "Bravo", "Charlie", "Delta"} {
		b.WriteString(prefix)
		b.WriteString(strings.Repeat(" clause", 39))
		b.WriteString(". ")
	}

	s := NewSplitter()
	policy := domain.ChunkPolicy{MaxChunkSize: 500, Overlap: 50}
	chunks := s.Split(b.String(), policy)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > policy.MaxChunkSize {
			t.Fatalf("chunk %d has %d runes, max is %d", i, n, policy.MaxChunkSize)
		}
		if i > 0 && chunks[i] == chunks[i-1] {
			t.Fatalf("chunk %d duplicates its predecessor: %q", i, chunks[i])
		}
	}
}

func TestSplitDropsCarryWhenOverlapWouldBreachBound(t *testing.T) {
	short := "The appeal was allowed in part."
	long := "The bench held that " + strings.TrimSpace(strings.Repeat("the provision ", 33)) + "."

	s := NewSplitter()
	policy := domain.ChunkPolicy{MaxChunkSize: 500, Overlap: 50}
	chunks := s.Split(short+" "+long, policy)
	if len(chunks) != 2 {
		t.Fatalf("expected two chunks, got %d: %v", len(chunks), chunks)
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > policy.MaxChunkSize {
			t.Fatalf("chunk %d has %d runes, max is %d", i, n, policy.MaxChunkSize)
		}
	}
	if !strings.HasPrefix(chunks[1], "The bench held") {
		t.Fatalf("second chunk should start the long sentence without a carry: %q", chunks[1])
	}
}

func TestSplitOversizedSentenceFallsBackToWindows(t *testing.T) {
	long := strings.Repeat("x", 1200)

	s := NewSplitter()
	policy := domain.ChunkPolicy{MaxChunkSize: 500, Overlap: 100}
	chunks := s.Split(long, policy)
	if len(chunks) < 3 {
		t.Fatalf("expected windowed chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if n := len([]rune(chunk)); n > policy.MaxChunkSize {
			t.Fatalf("window %d has %d runes, max is %d", i, n, policy.MaxChunkSize)
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	text := strings.Repeat("The court held that the rule applies. The exception is narrow. ", 30)

	s := NewSplitter()
	policy := domain.ChunkPolicy{MaxChunkSize: 400, Overlap: 80}
	first := s.Split(text, policy)
	second := s.Split(text, policy)

	if len(first) != len(second) {
		t.Fatalf("runs differ in chunk count: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitDefaultsApplyWhenPolicyUnset(t *testing.T) {
	s := NewSplitter()
	chunks := s.Split("One sentence.", domain.ChunkPolicy{})
	if len(chunks) != 1 || chunks[0] != "One sentence." {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
}
