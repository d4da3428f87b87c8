// Package owl provides the ontology object model consumed by the graph loader.
//
// Entities, class expressions and axioms are closed sum types: every variant is
// a plain struct implementing a sealed marker interface, and consumers dispatch
// with exhaustive type switches. Each variant renders a canonical
// functional-syntax string via String(); structurally identical expressions
// render identically, which is what anonymous node identity is built on.
package owl

import "strings"

// IRI is an internationalized resource identifier.
type IRI string

// Well-known IRIs.
const (
	OWLNamespace  = "http://www.w3.org/2002/07/owl#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	Thing   IRI = OWLNamespace + "Thing"
	Nothing IRI = OWLNamespace + "Nothing"

	RDFSLabel   IRI = RDFSNamespace + "label"
	RDFSComment IRI = RDFSNamespace + "comment"
)

func (i IRI) String() string { return string(i) }

// Fragment returns the local name of the IRI: the text after the last '#',
// or after the last '/' when there is no '#'. It is empty when the IRI has
// neither separator or ends with one.
func (i IRI) Fragment() string {
	s := string(i)
	if idx := strings.LastIndex(s, "#"); idx >= 0 {
		return s[idx+1:]
	}
	if idx := strings.LastIndex(s, "/"); idx >= 0 {
		return s[idx+1:]
	}
	return ""
}

// LocalName returns Fragment, falling back to the full IRI.
func (i IRI) LocalName() string {
	if f := i.Fragment(); f != "" {
		return f
	}
	return string(i)
}

// Curie abbreviates the IRI with the longest matching namespace in prefixes
// (prefix -> namespace). It returns false when no namespace matches.
func (i IRI) Curie(prefixes map[string]string) (string, bool) {
	best, bestNS := "", ""
	for prefix, ns := range prefixes {
		if ns != "" && strings.HasPrefix(string(i), ns) && len(ns) > len(bestNS) {
			best, bestNS = prefix, ns
		}
	}
	if bestNS == "" {
		return "", false
	}
	return best + ":" + strings.TrimPrefix(string(i), bestNS), true
}

func (i IRI) annotationSubject() {}
func (i IRI) annotationValue()   {}

func (i IRI) render() string { return "<" + string(i) + ">" }
