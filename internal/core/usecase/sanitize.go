package usecase

import (
	"log/slog"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

// GraphSanitizer validates raw fragments against the fixed legal schema and
// rewrites chunk-local ids into file-namespaced global ids.
//
// Edges are not cross-checked against surviving nodes: an edge whose
// endpoint was dropped becomes a no-op at persistence time because the
// match-based upsert finds nothing to connect.
type GraphSanitizer struct {
	logger *slog.Logger
}

func NewGraphSanitizer(logger *slog.Logger) *GraphSanitizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphSanitizer{logger: logger}
}

// Sanitize is deterministic: identical input yields identical output,
// in input order.
func (s *GraphSanitizer) Sanitize(fragment domain.GraphFragment, fileID string) ([]domain.GraphNode, []domain.GraphEdge) {
	nodes := make([]domain.GraphNode, 0, len(fragment.Nodes))
	for _, raw := range fragment.Nodes {
		if raw.Label == "" || !domain.AllowedNodeLabels[raw.Label] {
			s.logger.Warn("dropping node with invalid label", "label", raw.Label, "local_id", raw.ID)
			continue
		}
		nodes = append(nodes, domain.GraphNode{
			GlobalID: domain.GlobalID(fileID, raw.ID),
			Label:    raw.Label,
			Text:     raw.Text,
			FileID:   fileID,
		})
	}

	edges := make([]domain.GraphEdge, 0, len(fragment.Edges))
	for _, raw := range fragment.Edges {
		relation := domain.NormalizeRelation(raw.Relation)
		if relation == "" || !domain.AllowedRelations[relation] {
			s.logger.Warn("dropping edge with invalid relation", "relation", raw.Relation)
			continue
		}
		edges = append(edges, domain.GraphEdge{
			SourceID: domain.GlobalID(fileID, raw.Source),
			TargetID: domain.GlobalID(fileID, raw.Target),
			Relation: relation,
		})
	}

	return nodes, edges
}
