// Package prompts holds the prompt templates shared by all LLM providers.
package prompts

import (
	"fmt"
	"strings"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

// GraphExtraction asks for a legal knowledge-graph fragment as strict JSON.
// The schema mirrors the sanitizer whitelists; anything else gets dropped
// downstream anyway.
func GraphExtraction(text string) string {
	return `You are a Legal Knowledge Graph builder. Extract logical relationships from this legal text as structured triplets.

# Schema
- Nodes: Case, Ruling, Statute, Section, LegalConcept, Condition, Judge, LegalSystem
- Relations:
  - (Case)-[:ESTABLISHED]->(LegalConcept/Ruling)
  - (Section)-[:DEFINES]->(LegalConcept)
  - (Section)-[:HAS_EXCEPTION]->(Condition)
  - (Judge)-[:SUPPORTS|CONTRADICTS]->(LegalConcept)
  - (LegalSystem)-[:ALLOWS|REJECTS]->(LegalConcept)

# Task
Analyze the text below. Return a single VALID JSON object with 'nodes' and 'edges'.
- Nodes have 'id' (unique), 'label', 'text'.
- Edges have 'source' (id), 'target' (id), 'relation' (uppercase).

# Text
` + text + `

# Output JSON:
`
}

// Answer constrains the model to the retrieved context only.
func Answer(question string, chunks []domain.RetrievedChunk) string {
	var contextBuilder strings.Builder
	for idx, chunk := range chunks {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] section=%s score=%.3f\n%s\n\n",
			idx+1,
			chunk.Section,
			chunk.Score,
			chunk.Text,
		))
	}

	return fmt.Sprintf(`You answer legal questions using ONLY the context below.
Never use general knowledge. If the context is unrelated to the question, say "Context not found."
Name the sections or articles your answer comes from.

Question:
%s

Context:
%s
`, question, contextBuilder.String())
}
