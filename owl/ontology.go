package owl

import (
	"fmt"
	"sort"
	"sync"
)

// Ontology is a mutable set of axioms identified by an IRI. Axioms keep their
// insertion order; adding an axiom that is already present is a no-op.
type Ontology struct {
	ID       IRI
	Version  IRI
	Imports  []IRI
	Prefixes map[string]string
	// Document is the file the ontology was decoded from, if any.
	Document string

	mu     sync.RWMutex
	axioms []Axiom
	index  map[string]int
	byKind map[AxiomKind][]int
	live   int
}

// NewOntology creates an empty ontology.
func NewOntology(id IRI) *Ontology {
	return &Ontology{
		ID:       id,
		Prefixes: make(map[string]string),
		index:    make(map[string]int),
		byKind:   make(map[AxiomKind][]int),
	}
}

// Add inserts axioms. It returns the number actually added.
func (o *Ontology) Add(axioms ...Axiom) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	added := 0
	for _, ax := range axioms {
		key := ax.String()
		if _, ok := o.index[key]; ok {
			continue
		}
		pos := len(o.axioms)
		o.axioms = append(o.axioms, ax)
		o.index[key] = pos
		o.byKind[ax.Kind()] = append(o.byKind[ax.Kind()], pos)
		o.live++
		added++
	}
	return added
}

// Remove deletes axioms. It returns the number actually removed.
func (o *Ontology) Remove(axioms ...Axiom) int {
	o.mu.Lock()
	defer o.mu.Unlock()

	removed := 0
	for _, ax := range axioms {
		key := ax.String()
		pos, ok := o.index[key]
		if !ok {
			continue
		}
		delete(o.index, key)
		o.axioms[pos] = nil
		o.live--
		removed++
	}
	return removed
}

// Contains reports whether an equal axiom is present.
func (o *Ontology) Contains(ax Axiom) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.index[ax.String()]
	return ok
}

// Len returns the number of axioms.
func (o *Ontology) Len() int {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.live
}

// Axioms returns a snapshot of the axioms in insertion order.
func (o *Ontology) Axioms() []Axiom {
	o.mu.RLock()
	defer o.mu.RUnlock()

	out := make([]Axiom, 0, o.live)
	for _, ax := range o.axioms {
		if ax != nil {
			out = append(out, ax)
		}
	}
	return out
}

// AxiomsOfKind returns a snapshot of the axioms of one kind in insertion order.
func (o *Ontology) AxiomsOfKind(kind AxiomKind) []Axiom {
	o.mu.RLock()
	defer o.mu.RUnlock()

	var out []Axiom
	for _, pos := range o.byKind[kind] {
		if ax := o.axioms[pos]; ax != nil {
			out = append(out, ax)
		}
	}
	return out
}

// IsSymmetric reports whether the ontology declares p symmetric.
func (o *Ontology) IsSymmetric(p ObjectProperty) bool {
	return o.hasCharacteristic(KindSymmetricObjectProperty, p)
}

// IsReflexive reports whether the ontology declares p reflexive.
func (o *Ontology) IsReflexive(p ObjectProperty) bool {
	return o.hasCharacteristic(KindReflexiveObjectProperty, p)
}

// IsTransitive reports whether the ontology declares p transitive.
func (o *Ontology) IsTransitive(p ObjectProperty) bool {
	return o.hasCharacteristic(KindTransitiveObjectProperty, p)
}

func (o *Ontology) hasCharacteristic(kind AxiomKind, p ObjectProperty) bool {
	for _, ax := range o.AxiomsOfKind(kind) {
		var subject ObjectPropertyExpression
		switch a := ax.(type) {
		case SymmetricObjectProperty:
			subject = a.Property
		case ReflexiveObjectProperty:
			subject = a.Property
		case TransitiveObjectProperty:
			subject = a.Property
		}
		if named, ok := subject.(ObjectProperty); ok && named.IRI == p.IRI {
			return true
		}
	}
	return false
}

// Classes returns the named classes in the ontology's signature, sorted.
func (o *Ontology) Classes() []Class {
	seen := make(map[IRI]bool)
	for _, ax := range o.Axioms() {
		for _, c := range NamedClasses(ax) {
			seen[c.IRI] = true
		}
	}
	return sortedClasses(seen)
}

func sortedClasses(seen map[IRI]bool) []Class {
	classes := make([]Class, 0, len(seen))
	for iri := range seen {
		classes = append(classes, Class{IRI: iri})
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i].IRI < classes[j].IRI })
	return classes
}

// Set is a collection of ontologies keyed by IRI.
type Set struct {
	mu         sync.RWMutex
	ontologies map[IRI]*Ontology
	order      []IRI
}

// NewSet creates a set holding the given ontologies.
func NewSet(ontologies ...*Ontology) *Set {
	s := &Set{ontologies: make(map[IRI]*Ontology)}
	for _, o := range ontologies {
		_ = s.Add(o)
	}
	return s
}

// Add registers an ontology. Adding two ontologies with the same IRI fails.
func (s *Set) Add(o *Ontology) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ontologies[o.ID]; ok {
		return fmt.Errorf("duplicate ontology: %s", o.ID)
	}
	s.ontologies[o.ID] = o
	s.order = append(s.order, o.ID)
	return nil
}

// Get returns the ontology with the given IRI.
func (s *Set) Get(id IRI) (*Ontology, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.ontologies[id]
	return o, ok
}

// Ontologies returns all ontologies in registration order.
func (s *Set) Ontologies() []*Ontology {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Ontology, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.ontologies[id])
	}
	return out
}

// Closure returns root followed by every ontology reachable through imports,
// breadth first. Imports missing from the set are skipped.
func (s *Set) Closure(root IRI) []*Ontology {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start, ok := s.ontologies[root]
	if !ok {
		return nil
	}
	visited := map[IRI]bool{root: true}
	queue := []*Ontology{start}
	var out []*Ontology
	for len(queue) > 0 {
		o := queue[0]
		queue = queue[1:]
		out = append(out, o)
		for _, imp := range o.Imports {
			if visited[imp] {
				continue
			}
			visited[imp] = true
			if next, ok := s.ontologies[imp]; ok {
				queue = append(queue, next)
			}
		}
	}
	return out
}

// ClosureClasses returns the named classes of the root's imports closure,
// sorted.
func (s *Set) ClosureClasses(root IRI) []Class {
	seen := make(map[IRI]bool)
	for _, o := range s.Closure(root) {
		for _, c := range o.Classes() {
			seen[c.IRI] = true
		}
	}
	return sortedClasses(seen)
}
