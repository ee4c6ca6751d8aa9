package neo4jstore

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/knowlex-labs/rag-engine-sub001/internal/core/domain"
)

// Store implements ports.GraphStore. Labels and relation types are
// interpolated into Cypher, so both are re-validated against the domain
// whitelists here even though the sanitizer already filtered them.
type Store struct {
	driver    neo4j.DriverWithContext
	database  string
	indexName string
}

func NewStore(driver neo4j.DriverWithContext, database, vectorIndexName string) *Store {
	if vectorIndexName == "" {
		vectorIndexName = "legal_chunks_index"
	}
	return &Store{
		driver:    driver,
		database:  database,
		indexName: vectorIndexName,
	}
}

// IsIngested reports whether the File completion marker exists.
func (s *Store) IsIngested(ctx context.Context, fileID string) (bool, error) {
	session := s.readSession(ctx)
	defer session.Close(ctx)

	found, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `MATCH (f:File {id: $file_id}) RETURN f.id`, map[string]any{
			"file_id": fileID,
		})
		if err != nil {
			return false, err
		}
		return res.Next(ctx), res.Err()
	})
	if err != nil {
		return false, fmt.Errorf("query completion marker: %w", err)
	}
	return found.(bool), nil
}

// UpsertNodes merges each node by global id, overwriting text and file_id
// on match. Re-running with identical input is a no-op.
func (s *Store) UpsertNodes(ctx context.Context, nodes []domain.GraphNode) error {
	if len(nodes) == 0 {
		return nil
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, node := range nodes {
			if !domain.AllowedNodeLabels[node.Label] {
				return nil, fmt.Errorf("label %q not in whitelist", node.Label)
			}
			query := fmt.Sprintf(`MERGE (n:%s {id: $id}) SET n.text = $text, n.file_id = $file_id`, node.Label)
			if _, err := tx.Run(ctx, query, map[string]any{
				"id":      node.GlobalID,
				"text":    node.Text,
				"file_id": node.FileID,
			}); err != nil {
				return nil, fmt.Errorf("merge node %s: %w", node.GlobalID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("upsert nodes: %w", err)
	}
	return nil
}

// UpsertEdges matches both endpoints before merging the relationship, so an
// edge whose endpoint was never persisted silently becomes a no-op.
func (s *Store) UpsertEdges(ctx context.Context, edges []domain.GraphEdge) error {
	if len(edges) == 0 {
		return nil
	}

	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, edge := range edges {
			if !domain.AllowedRelations[edge.Relation] {
				return nil, fmt.Errorf("relation %q not in whitelist", edge.Relation)
			}
			query := fmt.Sprintf(
				`MATCH (s {id: $source_id}), (t {id: $target_id}) MERGE (s)-[r:%s]->(t)`,
				edge.Relation,
			)
			if _, err := tx.Run(ctx, query, map[string]any{
				"source_id": edge.SourceID,
				"target_id": edge.TargetID,
			}); err != nil {
				return nil, fmt.Errorf("merge edge %s-%s->%s: %w", edge.SourceID, edge.Relation, edge.TargetID, err)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("upsert edges: %w", err)
	}
	return nil
}

// MarkIngested writes the completion marker. Written only after every node
// and edge upsert succeeded; a failed run leaves no marker, so a retry is a
// fresh attempt.
func (s *Store) MarkIngested(ctx context.Context, fileID string) error {
	session := s.writeSession(ctx)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			`MERGE (f:File {id: $file_id}) SET f.ingested_at = timestamp()`,
			map[string]any{"file_id": fileID},
		)
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("mark ingested: %w", err)
	}
	return nil
}

// VectorSearch queries the chunk vector index for the nearest neighbors and
// post-filters to the requested collections. Results arrive ordered by
// descending similarity.
func (s *Store) VectorSearch(ctx context.Context, queryVector []float32, limit int, collectionIDs []string) ([]domain.RetrievedChunk, error) {
	if limit <= 0 || len(collectionIDs) == 0 {
		return nil, nil
	}

	vector := make([]any, len(queryVector))
	for i, v := range queryVector {
		vector[i] = float64(v)
	}
	collections := make([]any, len(collectionIDs))
	for i, id := range collectionIDs {
		collections[i] = id
	}

	session := s.readSession(ctx)
	defer session.Close(ctx)

	const query = `
CALL db.index.vector.queryNodes($index_name, $limit, $query_embedding)
YIELD node AS c, score
WHERE c.collection_id IN $collection_ids
RETURN c.text AS text, c.chunk_id AS chunk_id, c.section_title AS section, score
ORDER BY score DESC LIMIT $limit`

	records, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{
			"index_name":      s.indexName,
			"limit":           limit,
			"query_embedding": vector,
			"collection_ids":  collections,
		})
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	rows := records.([]*neo4j.Record)
	chunks := make([]domain.RetrievedChunk, 0, len(rows))
	for _, record := range rows {
		chunks = append(chunks, domain.RetrievedChunk{
			ChunkID: stringValue(record, "chunk_id"),
			Text:    stringValue(record, "text"),
			Section: stringValue(record, "section"),
			Score:   floatValue(record, "score"),
		})
	}
	return chunks, nil
}

func (s *Store) readSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeRead,
		DatabaseName: s.database,
	})
}

func (s *Store) writeSession(ctx context.Context) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{
		AccessMode:   neo4j.AccessModeWrite,
		DatabaseName: s.database,
	})
}

func stringValue(record *neo4j.Record, key string) string {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return ""
	}
	value, _ := raw.(string)
	return value
}

func floatValue(record *neo4j.Record, key string) float64 {
	raw, ok := record.Get(key)
	if !ok || raw == nil {
		return 0
	}
	value, _ := raw.(float64)
	return value
}
