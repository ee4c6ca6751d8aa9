package domain

import "strings"

// ExtractedNode is one node of a raw, untrusted graph fragment returned by
// the LLM for a single chunk. IDs are chunk-local and may collide across
// chunks and documents.
type ExtractedNode struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Text  string `json:"text"`
}

type ExtractedEdge struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Relation string `json:"relation"`
}

// GraphFragment is the {nodes, edges} structure one extraction call returns.
type GraphFragment struct {
	Nodes []ExtractedNode `json:"nodes"`
	Edges []ExtractedEdge `json:"edges"`
}

func (f GraphFragment) Empty() bool {
	return len(f.Nodes) == 0 && len(f.Edges) == 0
}

// GraphNode is a sanitized node ready for persistence. GlobalID is
// namespaced by file id so identical chunk-local ids from different
// documents never collide.
type GraphNode struct {
	GlobalID string
	Label    string
	Text     string
	FileID   string
}

type GraphEdge struct {
	SourceID string
	TargetID string
	Relation string
}

// Fixed extraction schema for legal documents. Nodes and edges outside
// these sets are dropped, never persisted.
var AllowedNodeLabels = map[string]bool{
	"Case":         true,
	"Ruling":       true,
	"Statute":      true,
	"Section":      true,
	"LegalConcept": true,
	"Condition":    true,
	"Judge":        true,
	"LegalSystem":  true,
}

var AllowedRelations = map[string]bool{
	"ESTABLISHED":   true,
	"DEFINES":       true,
	"HAS_EXCEPTION": true,
	"SUPPORTS":      true,
	"CONTRADICTS":   true,
	"ALLOWS":        true,
	"REJECTS":       true,
}

// NormalizeRelation upper-cases a relation and collapses spaces to
// underscores before whitelist validation.
func NormalizeRelation(relation string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(relation)), " ", "_")
}

// GlobalID namespaces a chunk-local id by file id. Equivalent entities
// from different files deliberately stay separate nodes.
func GlobalID(fileID, localID string) string {
	return fileID + "_" + localID
}
