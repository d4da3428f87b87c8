package owlgraph

import "github.com/c360studio/semstreams/vocabulary"

// Load-event predicates describe one ingestion run. A run is a prov:Activity
// that used the ontology documents and generated the graph.
const (
	// LoadOntology is the root ontology IRI of the run.
	LoadOntology = "owlgraph.load.ontology"

	// LoadDocument is one input document path.
	LoadDocument = "owlgraph.load.document"

	// LoadEngine is the graph engine used (batch or transactional).
	LoadEngine = "owlgraph.load.engine"

	// LoadNodeCount is the node count after the run.
	LoadNodeCount = "owlgraph.load.node_count"

	// LoadEdgeCount is the relationship count after the run.
	LoadEdgeCount = "owlgraph.load.edge_count"

	// LoadReasoned records whether inferred axioms were committed.
	LoadReasoned = "owlgraph.load.reasoned"

	// LoadStartedAt is the run start (RFC3339).
	LoadStartedAt = "owlgraph.load.started_at"

	// LoadEndedAt is the run end (RFC3339).
	LoadEndedAt = "owlgraph.load.ended_at"

	// LoadElapsed is the elapsed time of one phase in milliseconds.
	// The triple object is "<phase>=<ms>".
	LoadElapsed = "owlgraph.load.elapsed"
)

func init() {
	vocabulary.Register(LoadOntology,
		vocabulary.WithDescription("Root ontology IRI of the load run"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.ProvUsed))

	vocabulary.Register(LoadDocument,
		vocabulary.WithDescription("Ontology document read by the load run"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(vocabulary.DcSource))

	vocabulary.Register(LoadEngine,
		vocabulary.WithDescription("Graph engine used by the load run"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"engine"))

	vocabulary.Register(LoadNodeCount,
		vocabulary.WithDescription("Number of graph nodes after the load run"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"nodeCount"))

	vocabulary.Register(LoadEdgeCount,
		vocabulary.WithDescription("Number of graph relationships after the load run"),
		vocabulary.WithDataType("int"),
		vocabulary.WithIRI(Namespace+"edgeCount"))

	vocabulary.Register(LoadReasoned,
		vocabulary.WithDescription("Whether reasoner inferences were committed"),
		vocabulary.WithDataType("bool"),
		vocabulary.WithIRI(Namespace+"reasoned"))

	vocabulary.Register(LoadStartedAt,
		vocabulary.WithDescription("Load run start timestamp (RFC3339)"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(vocabulary.ProvStartedAtTime))

	vocabulary.Register(LoadEndedAt,
		vocabulary.WithDescription("Load run end timestamp (RFC3339)"),
		vocabulary.WithDataType("datetime"),
		vocabulary.WithIRI(vocabulary.ProvEndedAtTime))

	vocabulary.Register(LoadElapsed,
		vocabulary.WithDescription("Elapsed milliseconds of one load phase"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"elapsed"))
}
