// Package graph defines the Graph Port: the idempotent mutation surface the
// ontology translator writes through, and the property value model shared by
// every engine and the store.
package graph

import "context"

// Graph is an idempotent property-graph mutation API.
//
// Node and relationship creation return the existing id when the key (or the
// (start, end, type) triple) is already known. Property setters silently drop
// ignorable values (see IsIgnorable).
type Graph interface {
	CreateNode(key string) (int64, error)
	GetNode(key string) (int64, bool)

	CreateRelationship(start, end int64, relType string) (int64, error)
	GetRelationship(start, end int64, relType string) (int64, bool)
	// CreateRelationshipsPairwise links every unordered pair of distinct
	// nodes once, reusing an existing edge in either direction.
	CreateRelationshipsPairwise(nodes []int64, relType string) ([]int64, error)

	SetNodeProperty(node int64, name string, value any) error
	AddNodeProperty(node int64, name string, value any) error
	GetNodeProperty(node int64, name string) (any, bool, error)

	SetRelationshipProperty(rel int64, name string, value any) error
	AddRelationshipProperty(rel int64, name string, value any) error
	GetRelationshipProperty(rel int64, name string) (any, bool, error)

	// SetLabel replaces the node's label set with a single label.
	SetLabel(node int64, label string) error
	AddLabel(node int64, label string) error
	GetLabels(node int64) ([]string, error)

	// Shutdown flushes pending state and releases resources.
	Shutdown(ctx context.Context) error
}

// Pairs returns every unordered pair of distinct ids in first-seen order,
// after removing duplicates.
func Pairs(nodes []int64) [][2]int64 {
	seen := make(map[int64]bool, len(nodes))
	uniq := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	var pairs [][2]int64
	for i := 0; i < len(uniq); i++ {
		for j := i + 1; j < len(uniq); j++ {
			pairs = append(pairs, [2]int64{uniq[i], uniq[j]})
		}
	}
	return pairs
}
