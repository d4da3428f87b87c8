package reasoner

import (
	"sort"
	"sync"

	"github.com/c360studio/owlgraph/owl"
)

// Structural is a told-structure reasoner. It classifies named classes from
// asserted axioms only: named subclass edges, named conjuncts of
// intersections, named equivalences and subclass cycles. It does no
// tableau reasoning.
//
// A class is unsatisfiable when it is subsumed by owl:Nothing or by two
// classes declared disjoint. The ontologies are inconsistent when an
// individual is asserted into an unsatisfiable class.
type Structural struct {
	ontologies []*owl.Ontology

	mu        sync.Mutex
	parent    map[owl.IRI]owl.IRI
	supers    map[owl.IRI]map[owl.IRI]bool
	members   map[owl.IRI][]owl.IRI
	disjoint  [][2]owl.IRI
	asserted  map[owl.IRI]bool
	ancestors map[owl.IRI]map[owl.IRI]bool
	disposed  bool
}

// NewStructural builds a Structural reasoner. It satisfies Factory.
func NewStructural(ontologies []*owl.Ontology) (Reasoner, error) {
	s := &Structural{ontologies: ontologies}
	s.build()
	return s, nil
}

func (s *Structural) IsConsistent() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false, ErrDisposed
	}
	unsat := s.unsatisfiable()
	for c := range s.asserted {
		if unsat[s.find(c)] {
			return false, nil
		}
	}
	return true, nil
}

func (s *Structural) UnsatisfiableClasses() ([]owl.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}
	var out []owl.IRI
	for rep := range s.unsatisfiable() {
		for _, m := range s.members[rep] {
			if m != owl.Nothing {
				out = append(out, m)
			}
		}
	}
	return classes(out), nil
}

func (s *Structural) SuperClasses(c owl.Class, direct bool) ([]owl.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}

	rep := s.find(c.IRI)
	thing := s.find(owl.Thing)
	if rep == thing {
		return nil, nil
	}

	candidates := s.withThing(rep)
	var reps []owl.IRI
	for a := range candidates {
		if !direct || s.isDirect(a, candidates) {
			reps = append(reps, a)
		}
	}

	var out []owl.IRI
	for _, r := range reps {
		out = append(out, s.membersOf(r)...)
	}
	return classes(out), nil
}

func (s *Structural) EquivalentClasses(c owl.Class) ([]owl.Class, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, ErrDisposed
	}
	var out []owl.IRI
	for _, m := range s.membersOf(s.find(c.IRI)) {
		if m != c.IRI {
			out = append(out, m)
		}
	}
	return classes(out), nil
}

func (s *Structural) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return ErrDisposed
	}
	s.build()
	return nil
}

func (s *Structural) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.parent, s.supers, s.members, s.ancestors = nil, nil, nil, nil
}

// build must be called with s.mu held or before s is shared.
func (s *Structural) build() {
	s.parent = make(map[owl.IRI]owl.IRI)
	s.supers = make(map[owl.IRI]map[owl.IRI]bool)
	s.members = make(map[owl.IRI][]owl.IRI)
	s.disjoint = nil
	s.asserted = make(map[owl.IRI]bool)
	s.ancestors = make(map[owl.IRI]map[owl.IRI]bool)

	edges := make(map[owl.IRI]map[owl.IRI]bool)
	addEdge := func(sub, super owl.IRI) {
		s.add(sub)
		s.add(super)
		if edges[sub] == nil {
			edges[sub] = make(map[owl.IRI]bool)
		}
		edges[sub][super] = true
	}
	s.add(owl.Thing)
	s.add(owl.Nothing)

	for _, o := range s.ontologies {
		for _, ax := range o.Axioms() {
			for _, c := range owl.NamedClasses(ax) {
				s.add(c.IRI)
			}
			switch a := ax.(type) {
			case owl.SubClassOf:
				sub, ok := a.Sub.(owl.Class)
				if !ok {
					continue
				}
				for _, super := range toldSupers(a.Super) {
					addEdge(sub.IRI, super)
				}
			case owl.EquivalentClasses:
				var named []owl.IRI
				for _, ce := range a.Classes {
					if c, ok := ce.(owl.Class); ok {
						named = append(named, c.IRI)
					}
				}
				for i := 1; i < len(named); i++ {
					s.union(named[0], named[i])
				}
				for _, ce := range a.Classes {
					if _, ok := ce.(owl.Class); ok {
						continue
					}
					for _, n := range named {
						for _, super := range toldSupers(ce) {
							addEdge(n, super)
						}
					}
				}
			case owl.DisjointClasses:
				var named []owl.IRI
				for _, ce := range a.Classes {
					if c, ok := ce.(owl.Class); ok {
						named = append(named, c.IRI)
					}
				}
				for i := range named {
					for j := i + 1; j < len(named); j++ {
						s.disjoint = append(s.disjoint, [2]owl.IRI{named[i], named[j]})
					}
				}
			case owl.ClassAssertion:
				if c, ok := a.Class.(owl.Class); ok {
					s.asserted[c.IRI] = true
				}
			}
		}
	}

	for _, scc := range cycles(edges) {
		for _, c := range scc[1:] {
			s.union(scc[0], c)
		}
	}

	for sub, supers := range edges {
		rs := s.find(sub)
		for super := range supers {
			rp := s.find(super)
			if rs == rp {
				continue
			}
			if s.supers[rs] == nil {
				s.supers[rs] = make(map[owl.IRI]bool)
			}
			s.supers[rs][rp] = true
		}
	}
	for c := range s.parent {
		r := s.find(c)
		s.members[r] = append(s.members[r], c)
	}
	for r := range s.members {
		sort.Slice(s.members[r], func(i, j int) bool { return s.members[r][i] < s.members[r][j] })
	}
}

// toldSupers returns the named classes a class expression is told to imply.
func toldSupers(ce owl.ClassExpression) []owl.IRI {
	switch e := ce.(type) {
	case owl.Class:
		return []owl.IRI{e.IRI}
	case owl.ObjectIntersectionOf:
		var out []owl.IRI
		for _, op := range e.Operands {
			out = append(out, toldSupers(op)...)
		}
		return out
	default:
		return nil
	}
}

func (s *Structural) add(c owl.IRI) {
	if _, ok := s.parent[c]; !ok {
		s.parent[c] = c
	}
}

func (s *Structural) find(c owl.IRI) owl.IRI {
	p, ok := s.parent[c]
	if !ok {
		return c
	}
	if p == c {
		return c
	}
	root := s.find(p)
	s.parent[c] = root
	return root
}

// union keeps the lexically smaller IRI as representative.
func (s *Structural) union(a, b owl.IRI) {
	s.add(a)
	s.add(b)
	ra, rb := s.find(a), s.find(b)
	if ra == rb {
		return
	}
	if rb < ra {
		ra, rb = rb, ra
	}
	s.parent[rb] = ra
}

func (s *Structural) membersOf(rep owl.IRI) []owl.IRI {
	if m, ok := s.members[rep]; ok {
		return m
	}
	return []owl.IRI{rep}
}

// ancestorsOf returns the representatives strictly above rep.
func (s *Structural) ancestorsOf(rep owl.IRI) map[owl.IRI]bool {
	if anc, ok := s.ancestors[rep]; ok {
		return anc
	}
	anc := make(map[owl.IRI]bool)
	stack := []owl.IRI{rep}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for p := range s.supers[n] {
			if p != rep && !anc[p] {
				anc[p] = true
				stack = append(stack, p)
			}
		}
	}
	s.ancestors[rep] = anc
	return anc
}

// withThing returns the ancestors of rep with owl:Thing added.
func (s *Structural) withThing(rep owl.IRI) map[owl.IRI]bool {
	anc := s.ancestorsOf(rep)
	out := make(map[owl.IRI]bool, len(anc)+1)
	for a := range anc {
		out[a] = true
	}
	out[s.find(owl.Thing)] = true
	return out
}

func (s *Structural) isDirect(a owl.IRI, candidates map[owl.IRI]bool) bool {
	thing := s.find(owl.Thing)
	for b := range candidates {
		if b == a || b == thing {
			continue
		}
		if a == thing || s.ancestorsOf(b)[a] {
			return false
		}
	}
	return true
}

func (s *Structural) unsatisfiable() map[owl.IRI]bool {
	nothing := s.find(owl.Nothing)
	out := make(map[owl.IRI]bool)
	for rep := range s.members {
		anc := s.ancestorsOf(rep)
		above := func(c owl.IRI) bool {
			r := s.find(c)
			return r == rep || anc[r]
		}
		if rep == nothing || anc[nothing] {
			out[rep] = true
			continue
		}
		for _, d := range s.disjoint {
			if above(d[0]) && above(d[1]) {
				out[rep] = true
				break
			}
		}
	}
	return out
}

// cycles returns the strongly connected components of size > 1.
func cycles(edges map[owl.IRI]map[owl.IRI]bool) [][]owl.IRI {
	var (
		index   = make(map[owl.IRI]int)
		low     = make(map[owl.IRI]int)
		onStack = make(map[owl.IRI]bool)
		stack   []owl.IRI
		next    int
		out     [][]owl.IRI
	)

	var connect func(v owl.IRI)
	connect = func(v owl.IRI) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for w := range edges[v] {
			if _, seen := index[w]; !seen {
				connect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] == index[v] {
			var scc []owl.IRI
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 {
				out = append(out, scc)
			}
		}
	}

	nodes := make([]owl.IRI, 0, len(edges))
	for v := range edges {
		nodes = append(nodes, v)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
	for _, v := range nodes {
		if _, seen := index[v]; !seen {
			connect(v)
		}
	}
	return out
}

func classes(iris []owl.IRI) []owl.Class {
	sort.Slice(iris, func(i, j int) bool { return iris[i] < iris[j] })
	out := make([]owl.Class, 0, len(iris))
	for i, iri := range iris {
		if i > 0 && iris[i-1] == iri {
			continue
		}
		out = append(out, owl.Class{IRI: iri})
	}
	return out
}
