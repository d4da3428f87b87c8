// Package reasoner integrates a description-logic reasoner with the load
// pipeline. The Adapter decides whether inferred axioms are safe to commit
// and writes them back into the ontology before translation.
package reasoner

import (
	"errors"

	"github.com/c360studio/owlgraph/owl"
)

// Reasoner errors.
var (
	// ErrDisposed is returned by queries on a disposed reasoner.
	ErrDisposed = errors.New("reasoner disposed")

	// ErrUnknownOntology is returned when the root ontology is not in the set.
	ErrUnknownOntology = errors.New("unknown root ontology")

	// ErrInvalidState is returned when an Adapter operation is called out of order.
	ErrInvalidState = errors.New("invalid reasoner adapter state")
)

// Reasoner answers classification queries over a set of ontologies.
type Reasoner interface {
	IsConsistent() (bool, error)
	// UnsatisfiableClasses returns the named classes, other than
	// owl:Nothing, that can have no instances.
	UnsatisfiableClasses() ([]owl.Class, error)
	// SuperClasses returns the superclasses of c. With direct set only the
	// most specific ones are returned.
	SuperClasses(c owl.Class, direct bool) ([]owl.Class, error)
	// EquivalentClasses returns the classes equivalent to c, excluding c.
	EquivalentClasses(c owl.Class) ([]owl.Class, error)
	// Flush makes the reasoner see axioms added or removed since it was built.
	Flush() error
	Dispose()
}

// Factory builds a reasoner over the given ontologies.
type Factory func(ontologies []*owl.Ontology) (Reasoner, error)

// Config selects what the Adapter commits.
type Config struct {
	// RemoveAxioms lists axiom kinds removed before reasoning because they
	// cause spurious unsatisfiability.
	RemoveAxioms []owl.AxiomKind

	AddDirectInferredEdges  bool
	RemoveUnnecessaryEdges  bool
	AddInferredEquivalences bool
}

// DefaultConfig returns the default adapter configuration.
func DefaultConfig() Config {
	return Config{
		RemoveAxioms: []owl.AxiomKind{
			owl.KindDisjointClasses,
			owl.KindDataPropertyDomain,
			owl.KindDataPropertyRange,
		},
		AddDirectInferredEdges:  true,
		RemoveUnnecessaryEdges:  true,
		AddInferredEquivalences: true,
	}
}
