// Package owlgraph provides the graph vocabulary for ontology ingestion.
//
// It names the node labels, relationship types and property names the
// translator writes, maps relationship types back to standard OWL/RDFS IRIs
// for export, and registers the load-event predicates with the semstreams
// vocabulary registry.
//
// # Semstreams Integration
//
// Load-event predicates follow semstreams vocabulary patterns:
//   - Predicates use three-level dotted notation (owlgraph.load.*)
//   - Predicates are registered in init() using vocabulary.Register()
//   - IRI mappings use vocabulary.WithIRI() for RDF export compatibility
//
// Import this package to auto-register predicates:
//
//	import _ "github.com/c360studio/owlgraph/vocabulary/owlgraph"
package owlgraph
