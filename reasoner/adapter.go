// RemoveRedundantAxioms removes, across the closure, every asserted named
// SubClassOf(d, a) where a is an indirect but not a direct superclass of d.
// Classes equivalent to d are neither, so subclass cycles survive. It returns
// the number of axioms removed.
func (a *Adapter) RemoveRedundantAxioms() (int, error) {
	if a.state == StateDisposed || a.state == StateSkipped {
		return 0, fmt.Errorf("%w: remove redundant axioms in state %s", ErrInvalidState, a.state)
	}

	remove := make(map[*owl.Ontology][]owl.Axiom)
	asserted := a.assertedSupers()
	for _, c := range a.classes() {
		direct, err := a.reasoner.SuperClasses(c, true)
		if err != nil {
			return 0, fmt.Errorf("direct superclasses of %s: %w", c.IRI, err)
		}
		all, err := a.reasoner.SuperClasses(c, false)
		if err != nil {
			return 0, fmt.Errorf("superclasses of %s: %w", c.IRI, err)
		}
		for _, sc := range asserted[c.IRI] {
			if indirect(all, direct, sc.super) {
				remove[sc.ontology] = append(remove[sc.ontology], sc.axiom)
			}
		}
	}

package reasoner

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/c360studio/owlgraph/owl"
)

// State is the lifecycle position of an Adapter.
type State int

const (
	StateCreated State = iota
	StateAxiomsPruned
	StateReasoned
	StateSkipped
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateAxiomsPruned:
		return "axioms_pruned"
	case StateReasoned:
		return "reasoned"
	case StateSkipped:
		return "skipped"
	case StateDisposed:
		return "disposed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result counts the axioms an Adapter committed.
type Result struct {
	Pruned  int
	Added   int
	Removed int
}

// Adapter runs one reasoning pass over the imports closure of a root
// ontology and writes the inferences it is allowed to commit back into the
// ontologies.
type Adapter struct {
	set      *owl.Set
	root     *owl.Ontology
	closure  []*owl.Ontology
	reasoner Reasoner
	cfg      Config
	logger   *slog.Logger

	state  State
	ready  bool
	result Result
}

// NewAdapter prunes the configured axiom kinds from the closure of root and
// builds a reasoner over what remains.
func NewAdapter(set *owl.Set, root owl.IRI, factory Factory, cfg Config, logger *slog.Logger) (*Adapter, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rootOntology, ok := set.Get(root)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOntology, root)
	}

	a := &Adapter{
		set:     set,
		root:    rootOntology,
		closure: set.Closure(root),
		cfg:     cfg,
		logger:  logger,
		state:   StateCreated,
	}

	a.result.Pruned = a.prune()
	a.state = StateAxiomsPruned
	logger.Info("Pruned axioms before reasoning",
		"root", root, "ontologies", len(a.closure), "removed", a.result.Pruned)

	r, err := factory(a.closure)
	if err != nil {
		return nil, fmt.Errorf("create reasoner: %w", err)
	}
	a.reasoner = r
	return a, nil
}

func (a *Adapter) prune() int {
	removed := 0
	for _, o := range a.closure {
		for _, kind := range a.cfg.RemoveAxioms {
			removed += o.Remove(o.AxiomsOfKind(kind)...)
		}
	}
	return removed
}

// State returns the current lifecycle state.
func (a *Adapter) State() State { return a.state }

// Result returns the axiom counts committed so far.
func (a *Adapter) Result() Result { return a.result }

// ShouldReason reports whether inferences are safe to commit. It returns
// false, without error, when the ontologies are inconsistent or a named class
// is unsatisfiable; the adapter is then Skipped.
func (a *Adapter) ShouldReason() (bool, error) {
	if a.state != StateAxiomsPruned {
		return false, fmt.Errorf("%w: should reason in state %s", ErrInvalidState, a.state)
	}

	consistent, err := a.reasoner.IsConsistent()
	if err != nil {
		return false, fmt.Errorf("consistency check: %w", err)
	}
	if !consistent {
		a.logger.Warn("Ontology is inconsistent, skipping inference", "root", a.root.ID)
		a.state = StateSkipped
		return false, nil
	}

	unsat, err := a.reasoner.UnsatisfiableClasses()
	if err != nil {
		return false, fmt.Errorf("satisfiability check: %w", err)
	}
	if len(unsat) > 0 {
		a.logger.Warn("Ontology has unsatisfiable classes, skipping inference",
			"root", a.root.ID, "count", len(unsat), "example", unsat[0].IRI)
		a.state = StateSkipped
		return false, nil
	}

	a.ready = true
	return true, nil
}

// Reason asserts inferred equivalences and direct superclass edges into the
// root ontology and, when configured, removes asserted superclass edges the
// reasoner shows to be indirect. ShouldReason must have returned true.
func (a *Adapter) Reason(ctx context.Context) (Result, error) {
	if a.state != StateAxiomsPruned || !a.ready {
		return a.result, fmt.Errorf("%w: reason in state %s", ErrInvalidState, a.state)
	}

	var (
		add      []owl.Axiom
		remove   = make(map[*owl.Ontology][]owl.Axiom)
		asserted = a.assertedSupers()
	)
	for _, c := range a.classes() {
		if err := ctx.Err(); err != nil {
			return a.result, err
		}

		if a.cfg.AddInferredEquivalences {
			eq, err := a.reasoner.EquivalentClasses(c)
			if err != nil {
				return a.result, fmt.Errorf("equivalent classes of %s: %w", c.IRI, err)
			}
			add = append(add, equivalences(c, eq)...)
		}

		if !a.cfg.AddDirectInferredEdges {
			continue
		}
		direct, err := a.reasoner.SuperClasses(c, true)
		if err != nil {
			return a.result, fmt.Errorf("direct superclasses of %s: %w", c.IRI, err)
		}
		for _, s := range direct {
			if !s.IsThing() {
				add = append(add, owl.SubClassOf{Sub: c, Super: s})
			}
		}

		if !a.cfg.RemoveUnnecessaryEdges {
			continue
		}
		all, err := a.reasoner.SuperClasses(c, false)
		if err != nil {
			return a.result, fmt.Errorf("superclasses of %s: %w", c.IRI, err)
		}
		for _, sc := range asserted[c.IRI] {
			if indirect(all, direct, sc.super) {
				remove[sc.ontology] = append(remove[sc.ontology], sc.axiom)
			}
		}
	}

	a.result.Added += a.root.Add(add...)
	for o, axioms := range remove {
		a.result.Removed += o.Remove(axioms...)
	}
	if err := a.reasoner.Flush(); err != nil {
		return a.result, fmt.Errorf("flush reasoner: %w", err)
	}

	a.state = StateReasoned
	a.logger.Info("Committed inferred axioms",
		"root", a.root.ID, "added", a.result.Added, "removed", a.result.Removed)
	return a.result, nil
}

// RemoveRedundantAxioms removes, across the closure, every asserted named
// SubClassOf(d, a) where a is not a direct superclass of d. It returns the
// number of axioms removed.
func (a *Adapter) RemoveRedundantAxioms() (int, error) {
	if a.state == StateDisposed || a.state == StateSkipped {
		return 0, fmt.Errorf("%w: remove redundant axioms in state %s", ErrInvalidState, a.state)
	}

	remove := make(map[*owl.Ontology][]owl.Axiom)
	asserted := a.assertedSupers()
	for _, c := range a.classes() {
		direct, err := a.reasoner.SuperClasses(c, true)
		if err != nil {
			return 0, fmt.Errorf("direct superclasses of %s: %w", c.IRI, err)
		}
		eq, err := a.reasoner.EquivalentClasses(c)
		if err != nil {
			return 0, fmt.Errorf("equivalent classes of %s: %w", c.IRI, err)
		}
		for _, sc := range asserted[c.IRI] {
			if !slices.Contains(direct, sc.super) && !slices.Contains(eq, sc.super) {
				remove[sc.ontology] = append(remove[sc.ontology], sc.axiom)
			}
		}
	}

	removed := 0
	for o, axioms := range remove {
		removed += o.Remove(axioms...)
	}
	if err := a.reasoner.Flush(); err != nil {
		return removed, fmt.Errorf("flush reasoner: %w", err)
	}
	a.result.Removed += removed
	a.logger.Info("Removed redundant subclass axioms", "root", a.root.ID, "removed", removed)
	return removed, nil
}

// Dispose releases the reasoner. It is safe to call more than once.
func (a *Adapter) Dispose() {
	if a.state == StateDisposed {
		return
	}
	if a.reasoner != nil {
		a.reasoner.Dispose()
	}
	a.state = StateDisposed
}

// indirect reports whether super is among all but not among direct.
func indirect(all, direct []owl.Class, super owl.Class) bool {
	return slices.Contains(all, super) && !slices.Contains(direct, super)
}

// classes returns the named classes of the closure signature, excluding
// owl:Thing and owl:Nothing.
func (a *Adapter) classes() []owl.Class {
	var out []owl.Class
	for _, c := range a.set.ClosureClasses(a.root.ID) {
		if !c.IsThing() && !c.IsNothing() {
			out = append(out, c)
		}
	}
	return out
}

type assertedSuper struct {
	ontology *owl.Ontology
	axiom    owl.SubClassOf
	super    owl.Class
}

// assertedSupers indexes the named SubClassOf axioms of the closure by
// subclass.
func (a *Adapter) assertedSupers() map[owl.IRI][]assertedSuper {
	out := make(map[owl.IRI][]assertedSuper)
	for _, o := range a.closure {
		for _, ax := range o.AxiomsOfKind(owl.KindSubClassOf) {
			sc := ax.(owl.SubClassOf)
			sub, ok := sc.Sub.(owl.Class)
			if !ok {
				continue
			}
			if super, ok := sc.Super.(owl.Class); ok {
				out[sub.IRI] = append(out[sub.IRI], assertedSuper{ontology: o, axiom: sc, super: super})
			}
		}
	}
	return out
}

// equivalences returns one pairwise EquivalentClasses axiom per pair of the
// equivalence set of c.
func equivalences(c owl.Class, eq []owl.Class) []owl.Axiom {
	if len(eq) == 0 {
		return nil
	}
	set := append([]owl.Class{c}, eq...)
	var out []owl.Axiom
	for i := range set {
		for j := i + 1; j < len(set); j++ {
			out = append(out, owl.EquivalentClasses{Classes: []owl.ClassExpression{set[i], set[j]}})
		}
	}
	return out
}
