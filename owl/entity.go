package owl

import (
	"fmt"
	"strconv"
	"strings"
)

// EntityType names the kind of a declared entity.
type EntityType string

const (
	EntityClass              EntityType = "Class"
	EntityNamedIndividual    EntityType = "NamedIndividual"
	EntityObjectProperty     EntityType = "ObjectProperty"
	EntityDataProperty       EntityType = "DataProperty"
	EntityAnnotationProperty EntityType = "AnnotationProperty"
	EntityDatatype           EntityType = "Datatype"
)

// Entity is a named ontology entity.
type Entity interface {
	EntityIRI() IRI
	EntityType() EntityType
	String() string
}

// ClassExpression is a named class or an anonymous class description.
type ClassExpression interface {
	classExpression()
	String() string
}

// ObjectPropertyExpression is a named object property or an inverse.
type ObjectPropertyExpression interface {
	objectPropertyExpression()
	String() string
}

// Individual is a named or anonymous individual.
type Individual interface {
	individual()
	String() string
}

// DataRange is the filler of a data restriction.
type DataRange interface {
	dataRange()
	String() string
}

// AnnotationSubject is an IRI or an anonymous individual.
type AnnotationSubject interface {
	annotationSubject()
	String() string
}

// AnnotationValue is an IRI, an anonymous individual or a literal.
type AnnotationValue interface {
	annotationValue()
	String() string
}

// Class is a named class.
type Class struct{ IRI IRI }

// NamedIndividual is an individual identified by an IRI.
type NamedIndividual struct{ IRI IRI }

// AnonymousIndividual is a blank-node individual.
type AnonymousIndividual struct{ NodeID string }

// ObjectProperty is a named object property.
type ObjectProperty struct{ IRI IRI }

// DataProperty is a named data property.
type DataProperty struct{ IRI IRI }

// AnnotationProperty is a named annotation property.
type AnnotationProperty struct{ IRI IRI }

// Datatype is a named datatype.
type Datatype struct{ IRI IRI }

// ObjectInverseOf is the inverse of a named object property.
type ObjectInverseOf struct{ Property ObjectProperty }

func (c Class) EntityIRI() IRI         { return c.IRI }
func (c Class) EntityType() EntityType { return EntityClass }
func (c Class) String() string         { return c.IRI.render() }
func (c Class) IsThing() bool          { return c.IRI == Thing }
func (c Class) IsNothing() bool        { return c.IRI == Nothing }
func (c Class) classExpression()       {}

func (n NamedIndividual) EntityIRI() IRI         { return n.IRI }
func (n NamedIndividual) EntityType() EntityType { return EntityNamedIndividual }
func (n NamedIndividual) String() string         { return n.IRI.render() }
func (n NamedIndividual) individual()            {}

func (a AnonymousIndividual) String() string     { return a.NodeID }
func (a AnonymousIndividual) individual()        {}
func (a AnonymousIndividual) annotationSubject() {}
func (a AnonymousIndividual) annotationValue()   {}

func (p ObjectProperty) EntityIRI() IRI            { return p.IRI }
func (p ObjectProperty) EntityType() EntityType    { return EntityObjectProperty }
func (p ObjectProperty) String() string            { return p.IRI.render() }
func (p ObjectProperty) objectPropertyExpression() {}

func (p DataProperty) EntityIRI() IRI         { return p.IRI }
func (p DataProperty) EntityType() EntityType { return EntityDataProperty }
func (p DataProperty) String() string         { return p.IRI.render() }

func (p AnnotationProperty) EntityIRI() IRI         { return p.IRI }
func (p AnnotationProperty) EntityType() EntityType { return EntityAnnotationProperty }
func (p AnnotationProperty) String() string         { return p.IRI.render() }

func (d Datatype) EntityIRI() IRI         { return d.IRI }
func (d Datatype) EntityType() EntityType { return EntityDatatype }
func (d Datatype) String() string         { return d.IRI.render() }
func (d Datatype) dataRange()             {}

func (i ObjectInverseOf) String() string            { return "ObjectInverseOf(" + i.Property.String() + ")" }
func (i ObjectInverseOf) objectPropertyExpression() {}

// NewEntity builds the entity variant for an entity type.
func NewEntity(t EntityType, iri IRI) (Entity, error) {
	switch t {
	case EntityClass:
		return Class{IRI: iri}, nil
	case EntityNamedIndividual:
		return NamedIndividual{IRI: iri}, nil
	case EntityObjectProperty:
		return ObjectProperty{IRI: iri}, nil
	case EntityDataProperty:
		return DataProperty{IRI: iri}, nil
	case EntityAnnotationProperty:
		return AnnotationProperty{IRI: iri}, nil
	case EntityDatatype:
		return Datatype{IRI: iri}, nil
	default:
		return nil, fmt.Errorf("unknown entity type: %s", t)
	}
}

// Literal is a lexical value with an optional datatype and language tag.
type Literal struct {
	Lexical  string
	Datatype IRI
	Lang     string
}

func (l Literal) annotationValue() {}

func (l Literal) String() string {
	quoted := strconv.Quote(l.Lexical)
	if l.Lang != "" {
		return quoted + "@" + l.Lang
	}
	if l.Datatype != "" {
		return quoted + "^^" + l.Datatype.render()
	}
	return quoted
}

// IsEnglish reports whether the literal carries no language tag or an English one.
func (l Literal) IsEnglish() bool {
	if l.Lang == "" {
		return true
	}
	lang := strings.ToLower(l.Lang)
	return lang == "en" || strings.HasPrefix(lang, "en-")
}
