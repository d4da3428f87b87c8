package owl

import (
	"context"
	"io"
)

// Event is one item of an axiom stream. An event with a nil Axiom announces
// that the following axioms belong to Ontology.
type Event struct {
	Ontology *Ontology
	Axiom    Axiom
}

// IsEnter reports whether the event switches the current ontology.
func (e Event) IsEnter() bool { return e.Axiom == nil }

// Source yields axiom events. Next returns io.EOF when exhausted.
type Source interface {
	Next(ctx context.Context) (Event, error)
}

type walker struct {
	ontologies []*Ontology
	current    []Axiom
	oi, ai     int
	entered    bool
}

// Walk streams the given ontologies in order: one enter event per ontology
// followed by its axioms in insertion order. Axioms are snapshotted when the
// ontology is entered.
func Walk(ontologies ...*Ontology) Source {
	return &walker{ontologies: ontologies}
}

func (w *walker) Next(ctx context.Context) (Event, error) {
	if err := ctx.Err(); err != nil {
		return Event{}, err
	}
	for w.oi < len(w.ontologies) {
		o := w.ontologies[w.oi]
		if !w.entered {
			w.entered = true
			w.current = o.Axioms()
			w.ai = 0
			return Event{Ontology: o}, nil
		}
		if w.ai < len(w.current) {
			ax := w.current[w.ai]
			w.ai++
			return Event{Ontology: o, Axiom: ax}, nil
		}
		w.oi++
		w.entered = false
	}
	return Event{}, io.EOF
}
