package owlgraph

import (
	"testing"

	"github.com/c360studio/semstreams/vocabulary"
)

func TestPredicatesRegistered(t *testing.T) {
	predicates := []string{
		LoadOntology,
		LoadDocument,
		LoadEngine,
		LoadNodeCount,
		LoadEdgeCount,
		LoadReasoned,
		LoadStartedAt,
		LoadEndedAt,
		LoadElapsed,
	}

	for _, pred := range predicates {
		t.Run(pred, func(t *testing.T) {
			meta := vocabulary.GetPredicateMetadata(pred)
			if meta.Description == "" {
				t.Errorf("predicate %s not registered or missing description", pred)
			}
		})
	}
}

func TestRelationshipIRI(t *testing.T) {
	tests := []struct {
		rel  string
		want string
	}{
		{RelSubClassOf, "http://www.w3.org/2000/01/rdf-schema#subClassOf"},
		{RelSameAs, vocabulary.OwlSameAs},
		{RelEquivalentClass, vocabulary.OwlEquivalentClass},
		{RelType, "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"},
	}
	for _, tt := range tests {
		t.Run(tt.rel, func(t *testing.T) {
			got, ok := RelationshipIRI(tt.rel)
			if !ok || got != tt.want {
				t.Errorf("RelationshipIRI(%q) = %q, %v; want %q", tt.rel, got, ok, tt.want)
			}
		})
	}

	if _, ok := RelationshipIRI("hasUncle"); ok {
		t.Error("derived relationship types must not map to a standard IRI")
	}
}
