package domain

// RetrievedChunk is one scored result of a vector-index query.
type RetrievedChunk struct {
	ChunkID  string  `json:"chunk_id"`
	Text     string  `json:"text"`
	Section  string  `json:"section"`
	Score    float64 `json:"score"`
}

// MaxScore returns the best similarity score in a result set, or 0 when
// the set is empty.
func MaxScore(chunks []RetrievedChunk) float64 {
	best := 0.0
	for _, c := range chunks {
		if c.Score > best {
			best = c.Score
		}
	}
	return best
}

// Answer is the synthesized response to a legal question. Found is false
// when retrieval produced nothing or every result scored below the
// caller-configured relevance threshold.
type Answer struct {
	Text        string           `json:"text"`
	Found       bool             `json:"found"`
	Sources     []RetrievedChunk `json:"sources"`
	TotalChunks int              `json:"total_chunks"`
}
