package owl

import (
	"sort"
	"strconv"
	"strings"
)

// ObjectIntersectionOf is the conjunction of its operands.
type ObjectIntersectionOf struct{ Operands []ClassExpression }

// ObjectUnionOf is the disjunction of its operands.
type ObjectUnionOf struct{ Operands []ClassExpression }

// ObjectComplementOf is the negation of its operand.
type ObjectComplementOf struct{ Operand ClassExpression }

// ObjectOneOf is an enumeration of individuals.
type ObjectOneOf struct{ Individuals []Individual }

// ObjectSomeValuesFrom is an existential restriction.
type ObjectSomeValuesFrom struct {
	Property ObjectPropertyExpression
	Filler   ClassExpression
}

// ObjectAllValuesFrom is a universal restriction.
type ObjectAllValuesFrom struct {
	Property ObjectPropertyExpression
	Filler   ClassExpression
}

// ObjectHasValue restricts a property to one individual.
type ObjectHasValue struct {
	Property ObjectPropertyExpression
	Value    Individual
}

// ObjectMinCardinality is a qualified minimum cardinality restriction.
// A nil Filler means owl:Thing.
type ObjectMinCardinality struct {
	Cardinality int
	Property    ObjectPropertyExpression
	Filler      ClassExpression
}

// ObjectMaxCardinality is a qualified maximum cardinality restriction.
type ObjectMaxCardinality struct {
	Cardinality int
	Property    ObjectPropertyExpression
	Filler      ClassExpression
}

// ObjectExactCardinality is a qualified exact cardinality restriction.
type ObjectExactCardinality struct {
	Cardinality int
	Property    ObjectPropertyExpression
	Filler      ClassExpression
}

// DataSomeValuesFrom is an existential data restriction.
type DataSomeValuesFrom struct {
	Property DataProperty
	Filler   DataRange
}

// DataAllValuesFrom is a universal data restriction.
type DataAllValuesFrom struct {
	Property DataProperty
	Filler   DataRange
}

// DataMinCardinality is a data minimum cardinality restriction.
// A nil Filler means rdfs:Literal.
type DataMinCardinality struct {
	Cardinality int
	Property    DataProperty
	Filler      DataRange
}

// DataMaxCardinality is a data maximum cardinality restriction.
type DataMaxCardinality struct {
	Cardinality int
	Property    DataProperty
	Filler      DataRange
}

// DataExactCardinality is a data exact cardinality restriction.
type DataExactCardinality struct {
	Cardinality int
	Property    DataProperty
	Filler      DataRange
}

func (ObjectIntersectionOf) classExpression()   {}
func (ObjectUnionOf) classExpression()          {}
func (ObjectComplementOf) classExpression()     {}
func (ObjectOneOf) classExpression()            {}
func (ObjectSomeValuesFrom) classExpression()   {}
func (ObjectAllValuesFrom) classExpression()    {}
func (ObjectHasValue) classExpression()         {}
func (ObjectMinCardinality) classExpression()   {}
func (ObjectMaxCardinality) classExpression()   {}
func (ObjectExactCardinality) classExpression() {}
func (DataSomeValuesFrom) classExpression()     {}
func (DataAllValuesFrom) classExpression()      {}
func (DataMinCardinality) classExpression()     {}
func (DataMaxCardinality) classExpression()     {}
func (DataExactCardinality) classExpression()   {}

func (e ObjectIntersectionOf) String() string {
	return "ObjectIntersectionOf(" + renderSet(e.Operands) + ")"
}

func (e ObjectUnionOf) String() string {
	return "ObjectUnionOf(" + renderSet(e.Operands) + ")"
}

func (e ObjectComplementOf) String() string {
	return "ObjectComplementOf(" + e.Operand.String() + ")"
}

func (e ObjectOneOf) String() string {
	return "ObjectOneOf(" + renderSet(e.Individuals) + ")"
}

func (e ObjectSomeValuesFrom) String() string {
	return "ObjectSomeValuesFrom(" + e.Property.String() + " " + e.Filler.String() + ")"
}

func (e ObjectAllValuesFrom) String() string {
	return "ObjectAllValuesFrom(" + e.Property.String() + " " + e.Filler.String() + ")"
}

func (e ObjectHasValue) String() string {
	return "ObjectHasValue(" + e.Property.String() + " " + e.Value.String() + ")"
}

func (e ObjectMinCardinality) String() string {
	return renderCardinality("ObjectMinCardinality", e.Cardinality, e.Property, e.Filler)
}

func (e ObjectMaxCardinality) String() string {
	return renderCardinality("ObjectMaxCardinality", e.Cardinality, e.Property, e.Filler)
}

func (e ObjectExactCardinality) String() string {
	return renderCardinality("ObjectExactCardinality", e.Cardinality, e.Property, e.Filler)
}

func (e DataSomeValuesFrom) String() string {
	return "DataSomeValuesFrom(" + e.Property.String() + " " + e.Filler.String() + ")"
}

func (e DataAllValuesFrom) String() string {
	return "DataAllValuesFrom(" + e.Property.String() + " " + e.Filler.String() + ")"
}

func (e DataMinCardinality) String() string {
	return renderCardinality("DataMinCardinality", e.Cardinality, e.Property, e.Filler)
}

func (e DataMaxCardinality) String() string {
	return renderCardinality("DataMaxCardinality", e.Cardinality, e.Property, e.Filler)
}

func (e DataExactCardinality) String() string {
	return renderCardinality("DataExactCardinality", e.Cardinality, e.Property, e.Filler)
}

// IsAnonymous reports whether the class expression has no IRI of its own.
func IsAnonymous(ce ClassExpression) bool {
	_, named := ce.(Class)
	return !named
}

// renderSet renders operands of set-valued constructs in sorted order so that
// operand order does not change identity.
func renderSet[T interface{ String() string }](items []T) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.String())
	}
	sort.Strings(parts)
	return strings.Join(parts, " ")
}

func renderCardinality(name string, n int, property, filler interface{ String() string }) string {
	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString("(")
	sb.WriteString(strconv.Itoa(n))
	sb.WriteString(" ")
	sb.WriteString(property.String())
	if filler != nil {
		sb.WriteString(" ")
		sb.WriteString(filler.String())
	}
	sb.WriteString(")")
	return sb.String()
}
