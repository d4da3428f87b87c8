package owl

import "strings"

// AxiomKind names an axiom variant. The values match OWL functional-syntax
// constructor names and are used in configuration (axioms to prune).
type AxiomKind string

const (
	KindDeclaration                     AxiomKind = "Declaration"
	KindSubClassOf                      AxiomKind = "SubClassOf"
	KindEquivalentClasses               AxiomKind = "EquivalentClasses"
	KindDisjointClasses                 AxiomKind = "DisjointClasses"
	KindSubObjectPropertyOf             AxiomKind = "SubObjectPropertyOf"
	KindSubDataPropertyOf               AxiomKind = "SubDataPropertyOf"
	KindSubAnnotationPropertyOf         AxiomKind = "SubAnnotationPropertyOf"
	KindEquivalentObjectProperties      AxiomKind = "EquivalentObjectProperties"
	KindEquivalentDataProperties        AxiomKind = "EquivalentDataProperties"
	KindSubPropertyChainOf              AxiomKind = "SubPropertyChainOf"
	KindInverseObjectProperties         AxiomKind = "InverseObjectProperties"
	KindSymmetricObjectProperty         AxiomKind = "SymmetricObjectProperty"
	KindReflexiveObjectProperty         AxiomKind = "ReflexiveObjectProperty"
	KindTransitiveObjectProperty        AxiomKind = "TransitiveObjectProperty"
	KindFunctionalObjectProperty        AxiomKind = "FunctionalObjectProperty"
	KindObjectPropertyDomain            AxiomKind = "ObjectPropertyDomain"
	KindObjectPropertyRange             AxiomKind = "ObjectPropertyRange"
	KindDataPropertyDomain              AxiomKind = "DataPropertyDomain"
	KindDataPropertyRange               AxiomKind = "DataPropertyRange"
	KindClassAssertion                  AxiomKind = "ClassAssertion"
	KindObjectPropertyAssertion         AxiomKind = "ObjectPropertyAssertion"
	KindNegativeObjectPropertyAssertion AxiomKind = "NegativeObjectPropertyAssertion"
	KindDataPropertyAssertion           AxiomKind = "DataPropertyAssertion"
	KindAnnotationAssertion             AxiomKind = "AnnotationAssertion"
	KindSameIndividual                  AxiomKind = "SameIndividual"
	KindDifferentIndividuals            AxiomKind = "DifferentIndividuals"
)

// Axiom is one ontology statement.
type Axiom interface {
	Kind() AxiomKind
	String() string
}

// Declaration declares an entity.
type Declaration struct{ Entity Entity }

// SubClassOf states Sub ⊑ Super.
type SubClassOf struct{ Sub, Super ClassExpression }

// EquivalentClasses states that all members denote the same set.
type EquivalentClasses struct{ Classes []ClassExpression }

// DisjointClasses states that members are pairwise disjoint.
type DisjointClasses struct{ Classes []ClassExpression }

// SubObjectPropertyOf states Sub ⊑ Super for object properties.
type SubObjectPropertyOf struct{ Sub, Super ObjectPropertyExpression }

// SubDataPropertyOf states Sub ⊑ Super for data properties.
type SubDataPropertyOf struct{ Sub, Super DataProperty }

// SubAnnotationPropertyOf states Sub ⊑ Super for annotation properties.
type SubAnnotationPropertyOf struct{ Sub, Super AnnotationProperty }

// EquivalentObjectProperties states that all members are equivalent.
type EquivalentObjectProperties struct{ Properties []ObjectPropertyExpression }

// EquivalentDataProperties states that all members are equivalent.
type EquivalentDataProperties struct{ Properties []DataProperty }

// SubPropertyChainOf states Chain[0] ∘ ... ∘ Chain[n-1] ⊑ Super.
type SubPropertyChainOf struct {
	Chain []ObjectPropertyExpression
	Super ObjectPropertyExpression
}

// InverseObjectProperties states First ≡ Second⁻.
type InverseObjectProperties struct{ First, Second ObjectPropertyExpression }

// SymmetricObjectProperty marks a property symmetric.
type SymmetricObjectProperty struct{ Property ObjectPropertyExpression }

// ReflexiveObjectProperty marks a property reflexive.
type ReflexiveObjectProperty struct{ Property ObjectPropertyExpression }

// TransitiveObjectProperty marks a property transitive.
type TransitiveObjectProperty struct{ Property ObjectPropertyExpression }

// FunctionalObjectProperty marks a property functional.
type FunctionalObjectProperty struct{ Property ObjectPropertyExpression }

// ObjectPropertyDomain states the domain of an object property.
type ObjectPropertyDomain struct {
	Property ObjectPropertyExpression
	Domain   ClassExpression
}

// ObjectPropertyRange states the range of an object property.
type ObjectPropertyRange struct {
	Property ObjectPropertyExpression
	Range    ClassExpression
}

// DataPropertyDomain states the domain of a data property.
type DataPropertyDomain struct {
	Property DataProperty
	Domain   ClassExpression
}

// DataPropertyRange states the range of a data property.
type DataPropertyRange struct {
	Property DataProperty
	Range    DataRange
}

// ClassAssertion states that Individual is an instance of Class.
type ClassAssertion struct {
	Class      ClassExpression
	Individual Individual
}

// ObjectPropertyAssertion states Property(Subject, Object).
type ObjectPropertyAssertion struct {
	Property ObjectPropertyExpression
	Subject  Individual
	Object   Individual
}

// NegativeObjectPropertyAssertion states ¬Property(Subject, Object).
type NegativeObjectPropertyAssertion struct {
	Property ObjectPropertyExpression
	Subject  Individual
	Object   Individual
}

// DataPropertyAssertion states Property(Subject, Value).
type DataPropertyAssertion struct {
	Property DataProperty
	Subject  Individual
	Value    Literal
}

// AnnotationAssertion annotates Subject with Value.
type AnnotationAssertion struct {
	Property AnnotationProperty
	Subject  AnnotationSubject
	Value    AnnotationValue
}

// SameIndividual states that all members denote the same individual.
type SameIndividual struct{ Individuals []Individual }

// DifferentIndividuals states that members are pairwise distinct.
type DifferentIndividuals struct{ Individuals []Individual }

func (Declaration) Kind() AxiomKind                     { return KindDeclaration }
func (SubClassOf) Kind() AxiomKind                      { return KindSubClassOf }
func (EquivalentClasses) Kind() AxiomKind               { return KindEquivalentClasses }
func (DisjointClasses) Kind() AxiomKind                 { return KindDisjointClasses }
func (SubObjectPropertyOf) Kind() AxiomKind             { return KindSubObjectPropertyOf }
func (SubDataPropertyOf) Kind() AxiomKind               { return KindSubDataPropertyOf }
func (SubAnnotationPropertyOf) Kind() AxiomKind         { return KindSubAnnotationPropertyOf }
func (EquivalentObjectProperties) Kind() AxiomKind      { return KindEquivalentObjectProperties }
func (EquivalentDataProperties) Kind() AxiomKind        { return KindEquivalentDataProperties }
func (SubPropertyChainOf) Kind() AxiomKind              { return KindSubPropertyChainOf }
func (InverseObjectProperties) Kind() AxiomKind         { return KindInverseObjectProperties }
func (SymmetricObjectProperty) Kind() AxiomKind         { return KindSymmetricObjectProperty }
func (ReflexiveObjectProperty) Kind() AxiomKind         { return KindReflexiveObjectProperty }
func (TransitiveObjectProperty) Kind() AxiomKind        { return KindTransitiveObjectProperty }
func (FunctionalObjectProperty) Kind() AxiomKind        { return KindFunctionalObjectProperty }
func (ObjectPropertyDomain) Kind() AxiomKind            { return KindObjectPropertyDomain }
func (ObjectPropertyRange) Kind() AxiomKind             { return KindObjectPropertyRange }
func (DataPropertyDomain) Kind() AxiomKind              { return KindDataPropertyDomain }
func (DataPropertyRange) Kind() AxiomKind               { return KindDataPropertyRange }
func (ClassAssertion) Kind() AxiomKind                  { return KindClassAssertion }
func (ObjectPropertyAssertion) Kind() AxiomKind         { return KindObjectPropertyAssertion }
func (NegativeObjectPropertyAssertion) Kind() AxiomKind { return KindNegativeObjectPropertyAssertion }
func (DataPropertyAssertion) Kind() AxiomKind           { return KindDataPropertyAssertion }
func (AnnotationAssertion) Kind() AxiomKind             { return KindAnnotationAssertion }
func (SameIndividual) Kind() AxiomKind                  { return KindSameIndividual }
func (DifferentIndividuals) Kind() AxiomKind            { return KindDifferentIndividuals }

func (a Declaration) String() string {
	return render(a.Kind(), string(a.Entity.EntityType())+"("+a.Entity.String()+")")
}
func (a SubClassOf) String() string        { return render(a.Kind(), a.Sub.String(), a.Super.String()) }
func (a EquivalentClasses) String() string { return render(a.Kind(), renderSet(a.Classes)) }
func (a DisjointClasses) String() string   { return render(a.Kind(), renderSet(a.Classes)) }
func (a SubObjectPropertyOf) String() string {
	return render(a.Kind(), a.Sub.String(), a.Super.String())
}
func (a SubDataPropertyOf) String() string {
	return render(a.Kind(), a.Sub.String(), a.Super.String())
}
func (a SubAnnotationPropertyOf) String() string {
	return render(a.Kind(), a.Sub.String(), a.Super.String())
}
func (a EquivalentObjectProperties) String() string {
	return render(a.Kind(), renderSet(a.Properties))
}
func (a EquivalentDataProperties) String() string {
	return render(a.Kind(), renderSet(a.Properties))
}

// String keeps the chain in order; order is meaningful for composition.
func (a SubPropertyChainOf) String() string {
	links := make([]string, 0, len(a.Chain))
	for _, p := range a.Chain {
		links = append(links, p.String())
	}
	return render(a.Kind(), "ObjectPropertyChain("+strings.Join(links, " ")+")", a.Super.String())
}

func (a InverseObjectProperties) String() string {
	return render(a.Kind(), a.First.String(), a.Second.String())
}
func (a SymmetricObjectProperty) String() string  { return render(a.Kind(), a.Property.String()) }
func (a ReflexiveObjectProperty) String() string  { return render(a.Kind(), a.Property.String()) }
func (a TransitiveObjectProperty) String() string { return render(a.Kind(), a.Property.String()) }
func (a FunctionalObjectProperty) String() string { return render(a.Kind(), a.Property.String()) }
func (a ObjectPropertyDomain) String() string {
	return render(a.Kind(), a.Property.String(), a.Domain.String())
}
func (a ObjectPropertyRange) String() string {
	return render(a.Kind(), a.Property.String(), a.Range.String())
}
func (a DataPropertyDomain) String() string {
	return render(a.Kind(), a.Property.String(), a.Domain.String())
}
func (a DataPropertyRange) String() string {
	return render(a.Kind(), a.Property.String(), a.Range.String())
}
func (a ClassAssertion) String() string {
	return render(a.Kind(), a.Class.String(), a.Individual.String())
}
func (a ObjectPropertyAssertion) String() string {
	return render(a.Kind(), a.Property.String(), a.Subject.String(), a.Object.String())
}
func (a NegativeObjectPropertyAssertion) String() string {
	return render(a.Kind(), a.Property.String(), a.Subject.String(), a.Object.String())
}
func (a DataPropertyAssertion) String() string {
	return render(a.Kind(), a.Property.String(), a.Subject.String(), a.Value.String())
}
func (a AnnotationAssertion) String() string {
	return render(a.Kind(), a.Property.String(), a.Subject.String(), a.Value.String())
}
func (a SameIndividual) String() string       { return render(a.Kind(), renderSet(a.Individuals)) }
func (a DifferentIndividuals) String() string { return render(a.Kind(), renderSet(a.Individuals)) }

func render(kind AxiomKind, args ...string) string {
	return string(kind) + "(" + strings.Join(args, " ") + ")"
}

// NamedClasses returns the named classes mentioned by an axiom, sorted and
// deduplicated.
func NamedClasses(ax Axiom) []Class {
	seen := make(map[IRI]bool)
	var add func(ce ClassExpression)
	add = func(ce ClassExpression) {
		switch e := ce.(type) {
		case nil:
		case Class:
			seen[e.IRI] = true
		case ObjectIntersectionOf:
			for _, op := range e.Operands {
				add(op)
			}
		case ObjectUnionOf:
			for _, op := range e.Operands {
				add(op)
			}
		case ObjectComplementOf:
			add(e.Operand)
		case ObjectSomeValuesFrom:
			add(e.Filler)
		case ObjectAllValuesFrom:
			add(e.Filler)
		case ObjectMinCardinality:
			add(e.Filler)
		case ObjectMaxCardinality:
			add(e.Filler)
		case ObjectExactCardinality:
			add(e.Filler)
		}
	}

	switch a := ax.(type) {
	case Declaration:
		if c, ok := a.Entity.(Class); ok {
			add(c)
		}
	case SubClassOf:
		add(a.Sub)
		add(a.Super)
	case EquivalentClasses:
		for _, c := range a.Classes {
			add(c)
		}
	case DisjointClasses:
		for _, c := range a.Classes {
			add(c)
		}
	case ClassAssertion:
		add(a.Class)
	case ObjectPropertyDomain:
		add(a.Domain)
	case ObjectPropertyRange:
		add(a.Range)
	case DataPropertyDomain:
		add(a.Domain)
	}

	return sortedClasses(seen)
}
