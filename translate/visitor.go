// Package translate maps ontology axioms and class expressions onto Graph Port
// mutations.
package translate

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/owl"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

var anonymousNamespace = uuid.MustParse(vocab.AnonymousNamespace)

// Context is the ontology currently being visited. Every node and
// relationship created under a Context is stamped as defined by it.
type Context struct {
	Ontology     *owl.Ontology
	OntologyNode int64
}

// Stats counts translation outcomes.
type Stats struct {
	Ontologies  int64
	Axioms      int64
	NonEnglish  int64
	BadLiterals int64
}

// Visitor writes ontology constructs to a graph.
type Visitor struct {
	g        graph.Graph
	aliases  map[owl.IRI][]string
	prefixes map[string]string
	logger   *slog.Logger

	ontologies  atomic.Int64
	axioms      atomic.Int64
	nonEnglish  atomic.Int64
	badLiterals atomic.Int64
}

// Option configures a Visitor.
type Option func(*Visitor)

// WithMappedProperties registers alias property names: every literal written
// under one of the source property IRIs is also written under the alias.
func WithMappedProperties(mapped map[string][]string) Option {
	return func(v *Visitor) {
		for name, sources := range mapped {
			for _, src := range sources {
				iri := owl.IRI(src)
				if !slices.Contains(v.aliases[iri], name) {
					v.aliases[iri] = append(v.aliases[iri], name)
				}
			}
		}
		for iri := range v.aliases {
			slices.Sort(v.aliases[iri])
		}
	}
}

// WithCuries sets the prefixes used for the curie property. They take
// precedence over the prefixes declared by each ontology.
func WithCuries(prefixes map[string]string) Option {
	return func(v *Visitor) {
		for p, ns := range prefixes {
			v.prefixes[p] = ns
		}
	}
}

// WithLogger sets the visitor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Visitor) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// New creates a Visitor writing to g.
func New(g graph.Graph, opts ...Option) *Visitor {
	v := &Visitor{
		g:        g,
		aliases:  make(map[owl.IRI][]string),
		prefixes: make(map[string]string),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Stats returns the counters accumulated so far.
func (v *Visitor) Stats() Stats {
	return Stats{
		Ontologies:  v.ontologies.Load(),
		Axioms:      v.axioms.Load(),
		NonEnglish:  v.nonEnglish.Load(),
		BadLiterals: v.badLiterals.Load(),
	}
}

// VisitOntology creates the ontology node, and its version node when the
// ontology has a version IRI, and returns the Context for its axioms.
func (v *Visitor) VisitOntology(o *owl.Ontology) (Context, error) {
	v.ontologies.Add(1)
	id, err := v.g.CreateNode(o.ID.String())
	if err != nil {
		return Context{}, fmt.Errorf("create ontology node: %w", err)
	}
	c := Context{Ontology: o, OntologyNode: id}
	if err := v.g.AddLabel(id, vocab.LabelOntology); err != nil {
		return Context{}, err
	}
	if err := v.describe(c, id, o.ID); err != nil {
		return Context{}, err
	}

	if o.Version != "" {
		vn, err := v.g.CreateNode(o.Version.String())
		if err != nil {
			return Context{}, fmt.Errorf("create version node: %w", err)
		}
		if err := v.describe(c, vn, o.Version); err != nil {
			return Context{}, err
		}
		if _, err := v.relate(c, id, vn, vocab.RelVersionIRI); err != nil {
			return Context{}, err
		}
	}
	return c, nil
}

// Visit translates one axiom.
func (v *Visitor) Visit(c Context, ax owl.Axiom) error {
	v.axioms.Add(1)

	switch a := ax.(type) {
	case owl.Declaration:
		return v.declaration(c, a.Entity)

	case owl.SubClassOf:
		return v.linkClasses(c, a.Sub, a.Super, vocab.RelSubClassOf)

	case owl.EquivalentClasses:
		return v.pairwiseClasses(c, a.Classes, vocab.RelEquivalentClass)

	case owl.DisjointClasses:
		return v.pairwiseClasses(c, a.Classes, vocab.RelDisjointWith)

	case owl.SubObjectPropertyOf:
		sub, err := v.objectPropertyNode(c, a.Sub)
		if err != nil {
			return err
		}
		super, err := v.objectPropertyNode(c, a.Super)
		if err != nil {
			return err
		}
		_, err = v.relate(c, sub, super, vocab.RelSubPropertyOf)
		return err

	case owl.SubDataPropertyOf:
		return v.linkEntities(c, a.Sub.IRI, a.Super.IRI, vocab.RelSubPropertyOf)

	case owl.SubAnnotationPropertyOf:
		return v.linkEntities(c, a.Sub.IRI, a.Super.IRI, vocab.RelSubPropertyOf)

	case owl.EquivalentObjectProperties:
		ids := make([]int64, 0, len(a.Properties))
		for _, p := range a.Properties {
			id, err := v.objectPropertyNode(c, p)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return v.pairwise(c, ids, vocab.RelEquivalentProperty)

	case owl.EquivalentDataProperties:
		ids := make([]int64, 0, len(a.Properties))
		for _, p := range a.Properties {
			id, err := v.entityNode(c, p.IRI)
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return v.pairwise(c, ids, vocab.RelEquivalentProperty)

	case owl.SubPropertyChainOf:
		return v.propertyChain(c, a)

	case owl.ClassAssertion:
		ind, err := v.individualNode(c, a.Individual)
		if err != nil {
			return err
		}
		cls, err := v.ClassExpression(c, a.Class)
		if err != nil {
			return err
		}
		_, err = v.relate(c, ind, cls, vocab.RelType)
		return err

	case owl.ObjectPropertyAssertion:
		return v.objectAssertion(c, a.Property, a.Subject, a.Object, false)

	case owl.NegativeObjectPropertyAssertion:
		return v.objectAssertion(c, a.Property, a.Subject, a.Object, true)

	case owl.DataPropertyAssertion:
		return v.dataAssertion(c, a)

	case owl.AnnotationAssertion:
		return v.annotationAssertion(c, a)

	case owl.SameIndividual:
		return v.pairwiseIndividuals(c, a.Individuals, vocab.RelSameAs)

	case owl.DifferentIndividuals:
		return v.pairwiseIndividuals(c, a.Individuals, vocab.RelDifferentFrom)

	case owl.InverseObjectProperties,
		owl.SymmetricObjectProperty,
		owl.ReflexiveObjectProperty,
		owl.TransitiveObjectProperty,
		owl.FunctionalObjectProperty,
		owl.ObjectPropertyDomain,
		owl.ObjectPropertyRange,
		owl.DataPropertyDomain,
		owl.DataPropertyRange:
		// Characteristics are read from the ontology when property flags
		// are stamped; the rest has no graph shape.
		return nil

	default:
		return fmt.Errorf("unsupported axiom type %T", ax)
	}
}

func (v *Visitor) declaration(c Context, e owl.Entity) error {
	id, err := v.entityNode(c, e.EntityIRI())
	if err != nil {
		return err
	}

	switch ent := e.(type) {
	case owl.Class:
		err = v.g.AddLabel(id, vocab.LabelClass)
	case owl.NamedIndividual:
		err = v.g.AddLabel(id, vocab.LabelNamedIndividual)
	case owl.ObjectProperty:
		err = v.declareObjectProperty(c, id, ent)
	case owl.DataProperty:
		err = v.g.AddLabel(id, vocab.LabelDatatypeProperty)
	case owl.AnnotationProperty:
		err = v.g.AddLabel(id, vocab.LabelAnnotationProperty)
	case owl.Datatype:
		err = v.g.AddLabel(id, vocab.LabelDatatype)
	default:
		return fmt.Errorf("unsupported entity type %T", e)
	}
	if err != nil {
		return err
	}

	_, err = v.relate(c, id, c.OntologyNode, vocab.RelIsDefinedBy)
	return err
}

// declareObjectProperty stamps characteristic flags only when the
// ObjectProperty label is added for the first time.
func (v *Visitor) declareObjectProperty(c Context, id int64, p owl.ObjectProperty) error {
	labels, err := v.g.GetLabels(id)
	if err != nil {
		return err
	}
	if slices.Contains(labels, vocab.LabelObjectProperty) {
		return nil
	}
	if err := v.g.AddLabel(id, vocab.LabelObjectProperty); err != nil {
		return err
	}
	return v.setFlags(c, p, func(name string, value bool) error {
		return v.g.SetNodeProperty(id, name, value)
	})
}

func (v *Visitor) setFlags(c Context, p owl.ObjectProperty, set func(string, bool) error) error {
	flags := []struct {
		name  string
		value bool
	}{
		{vocab.PropIsSymmetric, c.Ontology.IsSymmetric(p)},
		{vocab.PropIsReflexive, c.Ontology.IsReflexive(p)},
		{vocab.PropIsTransitive, c.Ontology.IsTransitive(p)},
	}
	for _, f := range flags {
		if err := set(f.name, f.value); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) linkClasses(c Context, sub, super owl.ClassExpression, relType string) error {
	s, err := v.ClassExpression(c, sub)
	if err != nil {
		return err
	}
	o, err := v.ClassExpression(c, super)
	if err != nil {
		return err
	}
	_, err = v.relate(c, s, o, relType)
	return err
}

func (v *Visitor) linkEntities(c Context, sub, super owl.IRI, relType string) error {
	s, err := v.entityNode(c, sub)
	if err != nil {
		return err
	}
	o, err := v.entityNode(c, super)
	if err != nil {
		return err
	}
	_, err = v.relate(c, s, o, relType)
	return err
}

func (v *Visitor) pairwiseClasses(c Context, classes []owl.ClassExpression, relType string) error {
	ids := make([]int64, 0, len(classes))
	for _, ce := range classes {
		id, err := v.ClassExpression(c, ce)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return v.pairwise(c, ids, relType)
}

func (v *Visitor) pairwiseIndividuals(c Context, individuals []owl.Individual, relType string) error {
	ids := make([]int64, 0, len(individuals))
	for _, ind := range individuals {
		id, err := v.individualNode(c, ind)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	return v.pairwise(c, ids, relType)
}

func (v *Visitor) pairwise(c Context, ids []int64, relType string) error {
	rels, err := v.g.CreateRelationshipsPairwise(ids, relType)
	if err != nil {
		return fmt.Errorf("create %s relationships: %w", relType, err)
	}
	for _, r := range rels {
		if err := v.g.AddRelationshipProperty(r, vocab.PropDefinedBy, c.Ontology.ID.String()); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) propertyChain(c Context, a owl.SubPropertyChainOf) error {
	super, err := v.objectPropertyNode(c, a.Super)
	if err != nil {
		return err
	}
	for i, link := range a.Chain {
		id, err := v.objectPropertyNode(c, link)
		if err != nil {
			return err
		}
		r, err := v.relate(c, super, id, vocab.RelPropertyChainAxiom)
		if err != nil {
			return err
		}
		if err := v.g.SetRelationshipProperty(r, vocab.PropOrder, int64(i)); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) objectAssertion(c Context, pe owl.ObjectPropertyExpression, subject, object owl.Individual, negated bool) error {
	var p owl.ObjectProperty
	switch x := pe.(type) {
	case owl.ObjectProperty:
		p = x
	case owl.ObjectInverseOf:
		// P⁻(a, b) is P(b, a).
		p = x.Property
		subject, object = object, subject
	default:
		return fmt.Errorf("unsupported object property expression %T", pe)
	}

	s, err := v.individualNode(c, subject)
	if err != nil {
		return err
	}
	o, err := v.individualNode(c, object)
	if err != nil {
		return err
	}
	r, err := v.relate(c, s, o, p.IRI.LocalName())
	if err != nil {
		return err
	}
	if err := v.g.SetRelationshipProperty(r, vocab.PropIRI, p.IRI.String()); err != nil {
		return err
	}
	if err := v.g.SetRelationshipProperty(r, vocab.PropIsNegated, negated); err != nil {
		return err
	}
	return v.setFlags(c, p, func(name string, value bool) error {
		return v.g.SetRelationshipProperty(r, name, value)
	})
}

func (v *Visitor) dataAssertion(c Context, a owl.DataPropertyAssertion) error {
	value, ok := v.literal(a.Property.IRI, a.Value)
	if !ok {
		return nil
	}
	id, err := v.individualNode(c, a.Subject)
	if err != nil {
		return err
	}
	for _, name := range v.propertyNames(a.Property.IRI) {
		if err := v.g.SetNodeProperty(id, name, value); err != nil {
			return err
		}
	}
	return nil
}

func (v *Visitor) annotationAssertion(c Context, a owl.AnnotationAssertion) error {
	var (
		subject int64
		err     error
	)
	switch s := a.Subject.(type) {
	case owl.IRI:
		subject, err = v.entityNode(c, s)
	case owl.AnonymousIndividual:
		subject, err = v.individualNode(c, s)
	default:
		return fmt.Errorf("unsupported annotation subject %T", a.Subject)
	}
	if err != nil {
		return err
	}

	var object int64
	switch val := a.Value.(type) {
	case owl.Literal:
		value, ok := v.literal(a.Property.IRI, val)
		if !ok {
			return nil
		}
		for _, name := range v.propertyNames(a.Property.IRI) {
			if err := v.g.AddNodeProperty(subject, name, value); err != nil {
				return err
			}
		}
		return nil
	case owl.IRI:
		object, err = v.entityNode(c, val)
	case owl.AnonymousIndividual:
		object, err = v.individualNode(c, val)
	default:
		return fmt.Errorf("unsupported annotation value %T", a.Value)
	}
	if err != nil {
		return err
	}

	r, err := v.relate(c, subject, object, a.Property.IRI.LocalName())
	if err != nil {
		return err
	}
	if err := v.g.SetRelationshipProperty(r, vocab.PropIRI, a.Property.IRI.String()); err != nil {
		return err
	}
	return v.g.SetRelationshipProperty(r, vocab.PropIsAnnotation, true)
}

// literal applies the language filter and datatype conversion. ok is false
// when the value must be skipped.
func (v *Visitor) literal(property owl.IRI, l owl.Literal) (any, bool) {
	if !l.IsEnglish() {
		v.nonEnglish.Add(1)
		v.logger.Debug("Dropping non-English literal", "property", property, "lang", l.Lang)
		return nil, false
	}
	value, err := TypedValue(l)
	if err != nil {
		v.badLiterals.Add(1)
		v.logger.Warn("Skipping unparseable literal", "property", property, "error", err)
		return nil, false
	}
	return value, true
}

// propertyNames returns the property IRI followed by its aliases.
func (v *Visitor) propertyNames(iri owl.IRI) []string {
	return append([]string{iri.String()}, v.aliases[iri]...)
}

// ClassExpression returns the node for a class expression, building the
// anonymous structure of complex expressions.
func (v *Visitor) ClassExpression(c Context, ce owl.ClassExpression) (int64, error) {
	if cls, ok := ce.(owl.Class); ok {
		return v.entityNode(c, cls.IRI)
	}

	switch e := ce.(type) {
	case owl.ObjectIntersectionOf:
		return v.operands(c, ce, vocab.LabelIntersectionOf, e.Operands)
	case owl.ObjectUnionOf:
		return v.operands(c, ce, vocab.LabelUnionOf, e.Operands)
	case owl.ObjectComplementOf:
		return v.operands(c, ce, vocab.LabelComplementOf, []owl.ClassExpression{e.Operand})

	case owl.ObjectOneOf:
		id, err := v.anonymousNode(c, ce, vocab.LabelOneOf)
		if err != nil {
			return 0, err
		}
		for _, ind := range e.Individuals {
			o, err := v.individualNode(c, ind)
			if err != nil {
				return 0, err
			}
			if _, err := v.relate(c, id, o, vocab.RelOperand); err != nil {
				return 0, err
			}
		}
		return id, nil

	case owl.ObjectSomeValuesFrom:
		return v.objectRestriction(c, ce, vocab.LabelSomeValuesFrom, e.Property, e.Filler, -1)
	case owl.ObjectAllValuesFrom:
		return v.objectRestriction(c, ce, vocab.LabelAllValuesFrom, e.Property, e.Filler, -1)
	case owl.ObjectMinCardinality:
		return v.objectRestriction(c, ce, vocab.LabelMinCardinality, e.Property, e.Filler, e.Cardinality)
	case owl.ObjectMaxCardinality:
		return v.objectRestriction(c, ce, vocab.LabelMaxCardinality, e.Property, e.Filler, e.Cardinality)
	case owl.ObjectExactCardinality:
		return v.objectRestriction(c, ce, vocab.LabelCardinality, e.Property, e.Filler, e.Cardinality)

	case owl.ObjectHasValue:
		id, err := v.restrictionNode(c, ce, vocab.LabelHasValue, e.Property, -1)
		if err != nil {
			return 0, err
		}
		ind, err := v.individualNode(c, e.Value)
		if err != nil {
			return 0, err
		}
		_, err = v.relate(c, id, ind, vocab.RelClass)
		return id, err

	case owl.DataSomeValuesFrom:
		return v.dataRestriction(c, ce, vocab.LabelSomeValuesFrom, e.Property, e.Filler, -1)
	case owl.DataAllValuesFrom:
		return v.dataRestriction(c, ce, vocab.LabelAllValuesFrom, e.Property, e.Filler, -1)
	case owl.DataMinCardinality:
		return v.dataRestriction(c, ce, vocab.LabelMinCardinality, e.Property, e.Filler, e.Cardinality)
	case owl.DataMaxCardinality:
		return v.dataRestriction(c, ce, vocab.LabelMaxCardinality, e.Property, e.Filler, e.Cardinality)
	case owl.DataExactCardinality:
		return v.dataRestriction(c, ce, vocab.LabelCardinality, e.Property, e.Filler, e.Cardinality)

	default:
		return 0, fmt.Errorf("unsupported class expression %T", ce)
	}
}

func (v *Visitor) operands(c Context, ce owl.ClassExpression, label string, operands []owl.ClassExpression) (int64, error) {
	id, err := v.anonymousNode(c, ce, label)
	if err != nil {
		return 0, err
	}
	for _, op := range operands {
		o, err := v.ClassExpression(c, op)
		if err != nil {
			return 0, err
		}
		if _, err := v.relate(c, id, o, vocab.RelOperand); err != nil {
			return 0, err
		}
	}
	return id, nil
}

// restrictionNode creates a restriction node with its cardinality (when
// non-negative) and a property edge when the property is named.
func (v *Visitor) restrictionNode(c Context, ce owl.ClassExpression, label string, pe owl.ObjectPropertyExpression, cardinality int) (int64, error) {
	id, err := v.anonymousNode(c, ce, label)
	if err != nil {
		return 0, err
	}
	if cardinality >= 0 {
		if err := v.g.SetNodeProperty(id, vocab.PropCardinality, int64(cardinality)); err != nil {
			return 0, err
		}
	}
	if p, ok := pe.(owl.ObjectProperty); ok {
		pid, err := v.entityNode(c, p.IRI)
		if err != nil {
			return 0, err
		}
		if _, err := v.relate(c, id, pid, vocab.RelProperty); err != nil {
			return 0, err
		}
	}
	return id, nil
}

func (v *Visitor) objectRestriction(c Context, ce owl.ClassExpression, label string, pe owl.ObjectPropertyExpression, filler owl.ClassExpression, cardinality int) (int64, error) {
	id, err := v.restrictionNode(c, ce, label, pe, cardinality)
	if err != nil {
		return 0, err
	}
	if filler == nil {
		return id, nil
	}
	f, err := v.ClassExpression(c, filler)
	if err != nil {
		return 0, err
	}
	_, err = v.relate(c, id, f, vocab.RelClass)
	return id, err
}

func (v *Visitor) dataRestriction(c Context, ce owl.ClassExpression, label string, p owl.DataProperty, filler owl.DataRange, cardinality int) (int64, error) {
	id, err := v.anonymousNode(c, ce, label)
	if err != nil {
		return 0, err
	}
	if cardinality >= 0 {
		if err := v.g.SetNodeProperty(id, vocab.PropCardinality, int64(cardinality)); err != nil {
			return 0, err
		}
	}
	pid, err := v.entityNode(c, p.IRI)
	if err != nil {
		return 0, err
	}
	if _, err := v.relate(c, id, pid, vocab.RelProperty); err != nil {
		return 0, err
	}
	dt, ok := filler.(owl.Datatype)
	if !ok {
		return id, nil
	}
	f, err := v.entityNode(c, dt.IRI)
	if err != nil {
		return 0, err
	}
	_, err = v.relate(c, id, f, vocab.RelClass)
	return id, err
}

// AnonymousKey is the node key of an anonymous class expression. Structurally
// identical expressions share a key.
func AnonymousKey(ce owl.ClassExpression) string {
	return anonymousKey(ce)
}

// AnonymousIndividualKey is the node key of a blank-node individual. Node IDs
// are local to their document, so the key is scoped by the ontology IRI.
func AnonymousIndividualKey(ontology owl.IRI, nodeID string) string {
	return "_:" + uuid.NewSHA1(anonymousNamespace, []byte(ontology.String()+"|"+nodeID)).String()
}

func anonymousKey(s fmt.Stringer) string {
	return "_:" + uuid.NewSHA1(anonymousNamespace, []byte(s.String())).String()
}

func (v *Visitor) anonymousNode(c Context, ce owl.ClassExpression, label string) (int64, error) {
	id, err := v.g.CreateNode(AnonymousKey(ce))
	if err != nil {
		return 0, fmt.Errorf("create anonymous node: %w", err)
	}
	if err := v.g.AddLabel(id, vocab.LabelAnonymous); err != nil {
		return 0, err
	}
	if err := v.g.AddLabel(id, label); err != nil {
		return 0, err
	}
	if err := v.stamp(c, id); err != nil {
		return 0, err
	}
	return id, nil
}

// entityNode returns the node for a named entity with its naming properties.
func (v *Visitor) entityNode(c Context, iri owl.IRI) (int64, error) {
	id, err := v.g.CreateNode(iri.String())
	if err != nil {
		return 0, fmt.Errorf("create node %s: %w", iri, err)
	}
	if err := v.describe(c, id, iri); err != nil {
		return 0, err
	}
	return id, nil
}

func (v *Visitor) describe(c Context, id int64, iri owl.IRI) error {
	if err := v.g.SetNodeProperty(id, vocab.PropFragment, iri.Fragment()); err != nil {
		return err
	}
	if curie, ok := iri.Curie(v.curies(c)); ok {
		if err := v.g.SetNodeProperty(id, vocab.PropCurie, curie); err != nil {
			return err
		}
	}
	return v.stamp(c, id)
}

func (v *Visitor) curies(c Context) map[string]string {
	if len(c.Ontology.Prefixes) == 0 {
		return v.prefixes
	}
	merged := make(map[string]string, len(c.Ontology.Prefixes)+len(v.prefixes))
	for p, ns := range c.Ontology.Prefixes {
		merged[p] = ns
	}
	for p, ns := range v.prefixes {
		merged[p] = ns
	}
	return merged
}

func (v *Visitor) individualNode(c Context, ind owl.Individual) (int64, error) {
	switch i := ind.(type) {
	case owl.NamedIndividual:
		return v.entityNode(c, i.IRI)
	case owl.AnonymousIndividual:
		id, err := v.g.CreateNode(AnonymousIndividualKey(c.Ontology.ID, i.NodeID))
		if err != nil {
			return 0, fmt.Errorf("create anonymous individual: %w", err)
		}
		return id, v.stamp(c, id)
	default:
		return 0, fmt.Errorf("unsupported individual %T", ind)
	}
}

// objectPropertyNode returns the node of a named property, or an anonymous
// inverseOf node linked to the named property.
func (v *Visitor) objectPropertyNode(c Context, pe owl.ObjectPropertyExpression) (int64, error) {
	switch p := pe.(type) {
	case owl.ObjectProperty:
		return v.entityNode(c, p.IRI)
	case owl.ObjectInverseOf:
		id, err := v.g.CreateNode(anonymousKey(p))
		if err != nil {
			return 0, fmt.Errorf("create inverse property node: %w", err)
		}
		if err := v.g.AddLabel(id, vocab.LabelAnonymous); err != nil {
			return 0, err
		}
		if err := v.g.AddLabel(id, vocab.LabelInverseOf); err != nil {
			return 0, err
		}
		if err := v.stamp(c, id); err != nil {
			return 0, err
		}
		named, err := v.entityNode(c, p.Property.IRI)
		if err != nil {
			return 0, err
		}
		if _, err := v.relate(c, id, named, vocab.RelProperty); err != nil {
			return 0, err
		}
		return id, nil
	default:
		return 0, fmt.Errorf("unsupported object property expression %T", pe)
	}
}

// relate creates a relationship stamped with the defining ontology.
func (v *Visitor) relate(c Context, start, end int64, relType string) (int64, error) {
	r, err := v.g.CreateRelationship(start, end, relType)
	if err != nil {
		return 0, fmt.Errorf("create %s relationship: %w", relType, err)
	}
	if err := v.g.AddRelationshipProperty(r, vocab.PropDefinedBy, c.Ontology.ID.String()); err != nil {
		return 0, err
	}
	return r, nil
}

func (v *Visitor) stamp(c Context, node int64) error {
	return v.g.AddNodeProperty(node, vocab.PropDefinedBy, c.Ontology.ID.String())
}
