package owlgraph

import "github.com/c360studio/semstreams/vocabulary"

// Node labels.
const (
	LabelClass              = "Class"
	LabelNamedIndividual    = "NamedIndividual"
	LabelObjectProperty     = "ObjectProperty"
	LabelDatatypeProperty   = "DatatypeProperty"
	LabelAnnotationProperty = "AnnotationProperty"
	LabelDatatype           = "Datatype"
	LabelOntology           = "Ontology"

	// LabelAnonymous marks nodes built for anonymous class expressions.
	LabelAnonymous = "anonymous"

	LabelIntersectionOf = "intersectionOf"
	LabelUnionOf        = "unionOf"
	LabelComplementOf   = "complementOf"
	LabelOneOf          = "oneOf"
	LabelSomeValuesFrom = "someValuesFrom"
	LabelAllValuesFrom  = "allValuesFrom"
	LabelMinCardinality = "minCardinality"
	LabelMaxCardinality = "maxCardinality"
	LabelCardinality    = "cardinality"
	LabelHasValue       = "hasValue"
	LabelInverseOf      = "inverseOf"
)

// Relationship types.
const (
	RelSubClassOf         = "subClassOf"
	RelSubPropertyOf      = "subPropertyOf"
	RelType               = "type"
	RelSameAs             = "sameAs"
	RelDifferentFrom      = "differentFrom"
	RelEquivalentClass    = "equivalentClass"
	RelDisjointWith       = "disjointWith"
	RelEquivalentProperty = "equivalentProperty"
	RelOperand            = "operand"
	RelProperty           = "property"
	RelClass              = "class"
	RelPropertyChainAxiom = "propertyChainAxiom"
	RelIsDefinedBy        = "isDefinedBy"
	RelVersionIRI         = "versionIRI"
)

// Node and relationship property names.
const (
	PropIRI          = "iri"
	PropFragment     = "fragment"
	PropCurie        = "curie"
	PropDefinedBy    = "definedBy"
	PropIsSymmetric  = "isSymmetric"
	PropIsReflexive  = "isReflexive"
	PropIsTransitive = "isTransitive"
	PropIsNegated    = "isNegated"
	PropIsAnnotation = "isAnnotation"
	PropCardinality  = "cardinality"
	PropOrder        = "order"
	PropConvenience  = "convenience"
	PropOwlType      = "owlType"
	PropCategory     = "category"
)

// Namespace is the IRI namespace for owlgraph terms.
const Namespace = "https://c360studio.dev/ontology/owlgraph/"

// AnonymousNamespace seeds the name-based UUIDs of anonymous expression keys.
const AnonymousNamespace = "6f0b7a52-1f7e-5c1b-9d8e-2c7d0f3c9a41"

// Standard IRIs for relationship types and labels without a semstreams constant.
const (
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"

	RdfsSubClassOf      = RDFSNamespace + "subClassOf"
	RdfsSubPropertyOf   = RDFSNamespace + "subPropertyOf"
	RdfsIsDefinedBy     = RDFSNamespace + "isDefinedBy"
	RdfsDatatype        = RDFSNamespace + "Datatype"
	RdfType             = RDFNamespace + "type"
	OwlDifferentFrom    = OWLNamespace + "differentFrom"
	OwlDisjointWith     = OWLNamespace + "disjointWith"
	OwlPropertyChain    = OWLNamespace + "propertyChainAxiom"
	OwlVersionIRI       = OWLNamespace + "versionIRI"
	OwlOnProperty       = OWLNamespace + "onProperty"
	OwlOnClass          = OWLNamespace + "onClass"
	OwlClass            = OWLNamespace + "Class"
	OwlNamedIndividual  = OWLNamespace + "NamedIndividual"
	OwlObjectProperty   = OWLNamespace + "ObjectProperty"
	OwlDatatypeProperty = OWLNamespace + "DatatypeProperty"
	OwlAnnotationProp   = OWLNamespace + "AnnotationProperty"
	OwlOntology         = OWLNamespace + "Ontology"
)

// RelationshipIRI maps a relationship type to its standard IRI. Types the
// translator derives from property fragments have no mapping.
func RelationshipIRI(relType string) (string, bool) {
	switch relType {
	case RelSubClassOf:
		return RdfsSubClassOf, true
	case RelSubPropertyOf:
		return RdfsSubPropertyOf, true
	case RelType:
		return RdfType, true
	case RelSameAs:
		return vocabulary.OwlSameAs, true
	case RelDifferentFrom:
		return OwlDifferentFrom, true
	case RelEquivalentClass:
		return vocabulary.OwlEquivalentClass, true
	case RelDisjointWith:
		return OwlDisjointWith, true
	case RelEquivalentProperty:
		return vocabulary.OwlEquivalentProperty, true
	case RelPropertyChainAxiom:
		return OwlPropertyChain, true
	case RelIsDefinedBy:
		return RdfsIsDefinedBy, true
	case RelVersionIRI:
		return OwlVersionIRI, true
	case RelProperty:
		return OwlOnProperty, true
	case RelClass:
		return OwlOnClass, true
	case RelOperand:
		return Namespace + RelOperand, true
	default:
		return "", false
	}
}

// LabelIRI maps an entity label to its standard class IRI.
func LabelIRI(label string) (string, bool) {
	switch label {
	case LabelClass:
		return OwlClass, true
	case LabelNamedIndividual:
		return OwlNamedIndividual, true
	case LabelObjectProperty:
		return OwlObjectProperty, true
	case LabelDatatypeProperty:
		return OwlDatatypeProperty, true
	case LabelAnnotationProperty:
		return OwlAnnotationProp, true
	case LabelDatatype:
		return RdfsDatatype, true
	case LabelOntology:
		return OwlOntology, true
	default:
		return "", false
	}
}
