// Package export serializes a produced graph snapshot as RDF.
//
// Named nodes become IRIs and anonymous expression nodes become blank nodes.
// Labels with a standard class become rdf:type statements, literal properties
// stored under a property IRI become literal statements, and relationships
// become statements using their standard predicate or the property IRI they
// were translated from.
package export

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

// Format is an RDF serialization.
type Format string

const (
	// FormatTurtle is the Turtle serialization.
	FormatTurtle Format = "turtle"

	// FormatNTriples is the N-Triples serialization.
	FormatNTriples Format = "ntriples"
)

// ErrUnsupportedFormat is returned for an unknown Format.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// ParseFormat resolves a format name or common file extension.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(name, ".")) {
	case "turtle", "ttl":
		return FormatTurtle, nil
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}

// TermKind distinguishes RDF terms.
type TermKind int

const (
	TermIRI TermKind = iota
	TermBlank
	TermLiteral
)

// Term is an RDF term. Value holds the IRI, the blank node label without the
// "_:" prefix, or the literal's lexical form.
type Term struct {
	Kind     TermKind
	Value    string
	Datatype string
}

// IRI returns an IRI term.
func IRI(iri string) Term { return Term{Kind: TermIRI, Value: iri} }

// Literal returns the literal term for a scalar property value.
func Literal(v any) (Term, bool) {
	switch x := v.(type) {
	case string:
		return Term{Kind: TermLiteral, Value: x}, true
	case int64:
		return Term{Kind: TermLiteral, Value: strconv.FormatInt(x, 10), Datatype: xsdInteger}, true
	case float64:
		return Term{Kind: TermLiteral, Value: strconv.FormatFloat(x, 'E', -1, 64), Datatype: xsdDouble}, true
	case bool:
		return Term{Kind: TermLiteral, Value: strconv.FormatBool(x), Datatype: xsdBoolean}, true
	default:
		return Term{}, false
	}
}

// nodeTerm maps a node key to its subject term.
func nodeTerm(key string) Term {
	if label, ok := strings.CutPrefix(key, "_:"); ok {
		return Term{Kind: TermBlank, Value: label}
	}
	return IRI(key)
}

// Triple is one RDF statement.
type Triple struct {
	Subject   Term
	Predicate string
	Object    Term
}

const (
	xsdNamespace = "http://www.w3.org/2001/XMLSchema#"
	xsdInteger   = xsdNamespace + "integer"
	xsdDouble    = xsdNamespace + "double"
	xsdBoolean   = xsdNamespace + "boolean"

	owlRestriction = vocab.OWLNamespace + "Restriction"
)

// defaultPrefixes returns the namespace prefixes every Turtle export declares.
func defaultPrefixes() map[string]string {
	return map[string]string{
		"rdf":      vocab.RDFNamespace,
		"rdfs":     vocab.RDFSNamespace,
		"owl":      vocab.OWLNamespace,
		"xsd":      xsdNamespace,
		"owlgraph": vocab.Namespace,
	}
}

// typeIRI maps a node label to the class asserted for it, if any.
func typeIRI(label string) (string, bool) {
	if iri, ok := vocab.LabelIRI(label); ok {
		return iri, true
	}
	switch label {
	case vocab.LabelSomeValuesFrom, vocab.LabelAllValuesFrom, vocab.LabelHasValue,
		vocab.LabelMinCardinality, vocab.LabelMaxCardinality, vocab.LabelCardinality:
		return owlRestriction, true
	case vocab.LabelIntersectionOf, vocab.LabelUnionOf, vocab.LabelComplementOf, vocab.LabelOneOf:
		return vocab.OwlClass, true
	}
	return "", false
}

// flagProperties are graph-level node properties exported under the owlgraph
// namespace. Identity properties and mapped aliases are not exported.
var flagProperties = map[string]bool{
	vocab.PropIsSymmetric:  true,
	vocab.PropIsReflexive:  true,
	vocab.PropIsTransitive: true,
	vocab.PropCategory:     true,
	vocab.PropCardinality:  true,
}

// propertyIRI returns the predicate a node property is exported under.
func propertyIRI(name string) (string, bool) {
	if flagProperties[name] {
		return vocab.Namespace + name, true
	}
	if strings.Contains(name, "://") || strings.HasPrefix(name, "urn:") {
		return name, true
	}
	return "", false
}

// escapeString escapes special characters in strings for RDF serialization.
func escapeString(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	s = strings.ReplaceAll(s, "\r", "\\r")
	s = strings.ReplaceAll(s, "\t", "\\t")
	return s
}
