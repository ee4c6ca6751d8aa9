package chunking

import (
	"strings"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

// Splitter produces overlapping, size-bounded chunks, breaking on sentence
// boundaries where feasible so entities spanning a boundary survive in the
// overlap window. Output is deterministic for a given text and policy.
type Splitter struct{}

func NewSplitter() *Splitter {
	return &Splitter{}
}

func (s *Splitter) Split(text string, policy domain.ChunkPolicy) []string {
	maxSize := policy.MaxChunkSize
	if maxSize <= 0 {
		maxSize = 3000
	}
	overlap := policy.Overlap
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxSize {
		overlap = maxSize / 4
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	sentences := splitSentences(text)

	var (
		out     []string
		current []string
		size    int
	)
	flush := func() {
		if size == 0 {
			return
		}
		chunk := strings.TrimSpace(strings.Join(current, " "))
		if chunk != "" {
			out = append(out, chunk)
		}
		// Carry trailing sentences into the next chunk, never past the
		// overlap budget. A trailing sentence longer than the budget is
		// simply not carried; the size bound outranks the overlap.
		var carry []string
		carried := 0
		for i := len(current) - 1; i >= 0; i-- {
			n := len([]rune(current[i]))
			if carried > 0 {
				n++ // joining space
			}
			if carried+n > overlap {
				break
			}
			carry = append([]string{current[i]}, carry...)
			carried += n
		}
		current = carry
		size = carried
	}

	for _, sentence := range sentences {
		runes := len([]rune(sentence))
		if runes > maxSize {
			// Oversized sentence: flush what we have and fall back to
			// fixed rune windows for this sentence alone.
			flush()
			current = nil
			size = 0
			out = append(out, windowSplit(sentence, maxSize, overlap)...)
			continue
		}
		need := runes
		if size > 0 {
			need++ // joining space
		}
		if size+need > maxSize {
			flush()
			// Drop the carry entirely when even the trimmed overlap would
			// push this sentence over the bound.
			if size > 0 && size+1+runes > maxSize {
				current = nil
				size = 0
			}
		}
		if size > 0 {
			size++
		}
		current = append(current, sentence)
		size += runes
	}
	if size > 0 {
		chunk := strings.TrimSpace(strings.Join(current, " "))
		if chunk != "" && (len(out) == 0 || !strings.HasSuffix(out[len(out)-1], chunk)) {
			out = append(out, chunk)
		}
	}
	return out
}

// splitSentences breaks text on terminal punctuation and blank lines.
// Intentionally simple: legal text is dense with abbreviations, and a wrong
// split only shifts a chunk boundary the overlap already protects.
func splitSentences(text string) []string {
	var sentences []string
	var b strings.Builder
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		b.WriteRune(r)
		boundary := false
		switch r {
		case '.', '!', '?':
			if i+1 >= len(runes) || runes[i+1] == ' ' || runes[i+1] == '\n' {
				boundary = true
			}
		case '\n':
			if i+1 < len(runes) && runes[i+1] == '\n' {
				boundary = true
			}
		}
		if boundary {
			sentence := strings.TrimSpace(b.String())
			if sentence != "" {
				sentences = append(sentences, sentence)
			}
			b.Reset()
		}
	}
	if tail := strings.TrimSpace(b.String()); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func windowSplit(text string, maxSize, overlap int) []string {
	runes := []rune(text)
	step := maxSize - overlap
	if step <= 0 {
		step = maxSize
	}

	out := make([]string, 0, len(runes)/step+1)
	for start := 0; start < len(runes); start += step {
		end := start + maxSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}
