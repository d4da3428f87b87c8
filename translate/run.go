package translate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/c360studio/owlgraph/owl"
)

// ErrNoOntology is returned when a source yields an axiom before any
// ontology enter event.
var ErrNoOntology = errors.New("axiom outside of an ontology")

// Run drives src to exhaustion through v, switching Context on every
// ontology enter event.
func Run(ctx context.Context, src owl.Source, v *Visitor) error {
	var (
		current Context
		entered bool
	)
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		if ev.IsEnter() {
			current, err = v.VisitOntology(ev.Ontology)
			if err != nil {
				return fmt.Errorf("ontology %s: %w", ev.Ontology.ID, err)
			}
			entered = true
			v.logger.Debug("Translating ontology", "ontology", ev.Ontology.ID, "axioms", ev.Ontology.Len())
			continue
		}
		if !entered {
			return ErrNoOntology
		}
		if err := v.Visit(current, ev.Axiom); err != nil {
			return fmt.Errorf("translate %s: %w", ev.Axiom, err)
		}
	}
}
