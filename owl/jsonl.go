package owl

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrInvalidDocument is returned when a JSON-lines ontology document cannot
// be decoded.
var ErrInvalidDocument = errors.New("invalid ontology document")

// Document format: the first non-blank line is a header
//
//	{"ontology": "http://ex.org/o", "version": "...", "imports": ["..."], "prefixes": {"ex": "http://ex.org/"}}
//
// followed by one axiom per line, e.g.
//
//	{"type": "Declaration", "entity": "Class", "iri": "ex:Woman"}
//	{"type": "SubClassOf", "sub": "ex:Mother", "super": {"type": "ObjectIntersectionOf", "operands": ["ex:Woman", "ex:Parent"]}}
//	{"type": "DataPropertyAssertion", "property": "ex:age", "subject": "ex:John", "value": {"value": "51", "datatype": "xsd:integer"}}
//
// Class expressions are an IRI string or an object with "type" and the
// constructor's fields (operands, operand, individuals, property, filler,
// value, cardinality). Object property expressions are an IRI string or
// {"type": "ObjectInverseOf", "property": IRI}. Individuals starting with "_:"
// are anonymous. Literal values are a plain string or {"value", "datatype",
// "lang"}; annotation values may also be {"iri": IRI} or {"anonymous": ID}.
// IRIs may be written as CURIEs using the header prefixes.

type header struct {
	Ontology string            `json:"ontology"`
	Version  string            `json:"version"`
	Imports  []string          `json:"imports"`
	Prefixes map[string]string `json:"prefixes"`
}

type axiomLine struct {
	Type        string            `json:"type"`
	Entity      string            `json:"entity"`
	IRI         string            `json:"iri"`
	Sub         json.RawMessage   `json:"sub"`
	Super       json.RawMessage   `json:"super"`
	Classes     []json.RawMessage `json:"classes"`
	Properties  []json.RawMessage `json:"properties"`
	Property    json.RawMessage   `json:"property"`
	Chain       []json.RawMessage `json:"chain"`
	Class       json.RawMessage   `json:"class"`
	Individual  json.RawMessage   `json:"individual"`
	Individuals []json.RawMessage `json:"individuals"`
	Subject     json.RawMessage   `json:"subject"`
	Object      json.RawMessage   `json:"object"`
	Value       json.RawMessage   `json:"value"`
	Domain      json.RawMessage   `json:"domain"`
	Range       json.RawMessage   `json:"range"`
	First       json.RawMessage   `json:"first"`
	Second      json.RawMessage   `json:"second"`
}

type expressionObject struct {
	Type        string            `json:"type"`
	Operands    []json.RawMessage `json:"operands"`
	Operand     json.RawMessage   `json:"operand"`
	Individuals []json.RawMessage `json:"individuals"`
	Property    json.RawMessage   `json:"property"`
	Filler      json.RawMessage   `json:"filler"`
	Value       json.RawMessage   `json:"value"`
	Cardinality *int              `json:"cardinality"`
}

type literalObject struct {
	Value     *string `json:"value"`
	Datatype  string  `json:"datatype"`
	Lang      string  `json:"lang"`
	IRI       string  `json:"iri"`
	Anonymous string  `json:"anonymous"`
}

var defaultPrefixes = map[string]string{
	"owl":  OWLNamespace,
	"rdfs": RDFSNamespace,
	"xsd":  XSDNamespace,
	"rdf":  "http://www.w3.org/1999/02/22-rdf-syntax-ns#",
}

type decoder struct {
	prefixes map[string]string
}

// Decode reads one ontology document.
func Decode(r io.Reader) (*Ontology, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var (
		o    *Ontology
		d    *decoder
		line int
	)
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		if o == nil {
			var h header
			if err := json.Unmarshal(raw, &h); err != nil {
				return nil, fmt.Errorf("%w: line %d: header: %v", ErrInvalidDocument, line, err)
			}
			if h.Ontology == "" {
				return nil, fmt.Errorf("%w: line %d: header has no ontology IRI", ErrInvalidDocument, line)
			}
			d = &decoder{prefixes: make(map[string]string, len(defaultPrefixes)+len(h.Prefixes))}
			for k, v := range defaultPrefixes {
				d.prefixes[k] = v
			}
			for k, v := range h.Prefixes {
				d.prefixes[k] = v
			}
			o = NewOntology(d.iri(h.Ontology))
			o.Version = d.iri(h.Version)
			for _, imp := range h.Imports {
				o.Imports = append(o.Imports, d.iri(imp))
			}
			for k, v := range d.prefixes {
				o.Prefixes[k] = v
			}
			continue
		}

		var al axiomLine
		if err := json.Unmarshal(raw, &al); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDocument, line, err)
		}
		ax, err := d.axiom(al)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidDocument, line, err)
		}
		o.Add(ax)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if o == nil {
		return nil, fmt.Errorf("%w: empty document", ErrInvalidDocument)
	}
	return o, nil
}

// DecodeFile reads one ontology document from disk.
func DecodeFile(path string) (*Ontology, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ontology: %w", err)
	}
	defer f.Close()

	o, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	o.Document = path
	return o, nil
}

// LoadFiles decodes every file into one Set.
func LoadFiles(paths []string) (*Set, error) {
	set := NewSet()
	for _, p := range paths {
		o, err := DecodeFile(p)
		if err != nil {
			return nil, err
		}
		if err := set.Add(o); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	return set, nil
}

func (d *decoder) iri(s string) IRI {
	if s == "" || strings.Contains(s, "://") || strings.HasPrefix(s, "urn:") {
		return IRI(s)
	}
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return IRI(s)
	}
	if ns, ok := d.prefixes[prefix]; ok {
		return IRI(ns + local)
	}
	return IRI(s)
}

func (d *decoder) axiom(al axiomLine) (Axiom, error) {
	switch AxiomKind(al.Type) {
	case KindDeclaration:
		return NewDeclaration(EntityType(al.Entity), d.iri(al.IRI))
	case KindSubClassOf:
		sub, err := d.classExpression(al.Sub)
		if err != nil {
			return nil, fmt.Errorf("sub: %w", err)
		}
		super, err := d.classExpression(al.Super)
		if err != nil {
			return nil, fmt.Errorf("super: %w", err)
		}
		return SubClassOf{Sub: sub, Super: super}, nil
	case KindEquivalentClasses:
		classes, err := d.classExpressions(al.Classes)
		if err != nil {
			return nil, err
		}
		return EquivalentClasses{Classes: classes}, nil
	case KindDisjointClasses:
		classes, err := d.classExpressions(al.Classes)
		if err != nil {
			return nil, err
		}
		return DisjointClasses{Classes: classes}, nil
	case KindSubObjectPropertyOf:
		sub, err := d.objectProperty(al.Sub)
		if err != nil {
			return nil, fmt.Errorf("sub: %w", err)
		}
		super, err := d.objectProperty(al.Super)
		if err != nil {
			return nil, fmt.Errorf("super: %w", err)
		}
		return SubObjectPropertyOf{Sub: sub, Super: super}, nil
	case KindSubDataPropertyOf:
		sub, err := d.name(al.Sub)
		if err != nil {
			return nil, fmt.Errorf("sub: %w", err)
		}
		super, err := d.name(al.Super)
		if err != nil {
			return nil, fmt.Errorf("super: %w", err)
		}
		return SubDataPropertyOf{Sub: DataProperty{IRI: sub}, Super: DataProperty{IRI: super}}, nil
	case KindSubAnnotationPropertyOf:
		sub, err := d.name(al.Sub)
		if err != nil {
			return nil, fmt.Errorf("sub: %w", err)
		}
		super, err := d.name(al.Super)
		if err != nil {
			return nil, fmt.Errorf("super: %w", err)
		}
		return SubAnnotationPropertyOf{Sub: AnnotationProperty{IRI: sub}, Super: AnnotationProperty{IRI: super}}, nil
	case KindEquivalentObjectProperties:
		props := make([]ObjectPropertyExpression, 0, len(al.Properties))
		for _, raw := range al.Properties {
			p, err := d.objectProperty(raw)
			if err != nil {
				return nil, err
			}
			props = append(props, p)
		}
		return EquivalentObjectProperties{Properties: props}, nil
	case KindEquivalentDataProperties:
		props := make([]DataProperty, 0, len(al.Properties))
		for _, raw := range al.Properties {
			iri, err := d.name(raw)
			if err != nil {
				return nil, err
			}
			props = append(props, DataProperty{IRI: iri})
		}
		return EquivalentDataProperties{Properties: props}, nil
	case KindSubPropertyChainOf:
		chain := make([]ObjectPropertyExpression, 0, len(al.Chain))
		for _, raw := range al.Chain {
			p, err := d.objectProperty(raw)
			if err != nil {
				return nil, fmt.Errorf("chain: %w", err)
			}
			chain = append(chain, p)
		}
		super, err := d.objectProperty(al.Super)
		if err != nil {
			return nil, fmt.Errorf("super: %w", err)
		}
		return SubPropertyChainOf{Chain: chain, Super: super}, nil
	case KindInverseObjectProperties:
		first, err := d.objectProperty(al.First)
		if err != nil {
			return nil, fmt.Errorf("first: %w", err)
		}
		second, err := d.objectProperty(al.Second)
		if err != nil {
			return nil, fmt.Errorf("second: %w", err)
		}
		return InverseObjectProperties{First: first, Second: second}, nil
	case KindSymmetricObjectProperty, KindReflexiveObjectProperty, KindTransitiveObjectProperty, KindFunctionalObjectProperty:
		p, err := d.objectProperty(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		switch AxiomKind(al.Type) {
		case KindSymmetricObjectProperty:
			return SymmetricObjectProperty{Property: p}, nil
		case KindReflexiveObjectProperty:
			return ReflexiveObjectProperty{Property: p}, nil
		case KindTransitiveObjectProperty:
			return TransitiveObjectProperty{Property: p}, nil
		default:
			return FunctionalObjectProperty{Property: p}, nil
		}
	case KindObjectPropertyDomain:
		p, err := d.objectProperty(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		domain, err := d.classExpression(al.Domain)
		if err != nil {
			return nil, fmt.Errorf("domain: %w", err)
		}
		return ObjectPropertyDomain{Property: p, Domain: domain}, nil
	case KindObjectPropertyRange:
		p, err := d.objectProperty(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		rng, err := d.classExpression(al.Range)
		if err != nil {
			return nil, fmt.Errorf("range: %w", err)
		}
		return ObjectPropertyRange{Property: p, Range: rng}, nil
	case KindDataPropertyDomain:
		p, err := d.name(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		domain, err := d.classExpression(al.Domain)
		if err != nil {
			return nil, fmt.Errorf("domain: %w", err)
		}
		return DataPropertyDomain{Property: DataProperty{IRI: p}, Domain: domain}, nil
	case KindDataPropertyRange:
		p, err := d.name(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		dt, err := d.name(al.Range)
		if err != nil {
			return nil, fmt.Errorf("range: %w", err)
		}
		return DataPropertyRange{Property: DataProperty{IRI: p}, Range: Datatype{IRI: dt}}, nil
	case KindClassAssertion:
		class, err := d.classExpression(al.Class)
		if err != nil {
			return nil, fmt.Errorf("class: %w", err)
		}
		ind, err := d.individual(al.Individual)
		if err != nil {
			return nil, fmt.Errorf("individual: %w", err)
		}
		return ClassAssertion{Class: class, Individual: ind}, nil
	case KindObjectPropertyAssertion, KindNegativeObjectPropertyAssertion:
		p, err := d.objectProperty(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		subject, err := d.individual(al.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject: %w", err)
		}
		object, err := d.individual(al.Object)
		if err != nil {
			return nil, fmt.Errorf("object: %w", err)
		}
		if AxiomKind(al.Type) == KindNegativeObjectPropertyAssertion {
			return NegativeObjectPropertyAssertion{Property: p, Subject: subject, Object: object}, nil
		}
		return ObjectPropertyAssertion{Property: p, Subject: subject, Object: object}, nil
	case KindDataPropertyAssertion:
		p, err := d.name(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		subject, err := d.individual(al.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject: %w", err)
		}
		value, err := d.annotationValue(al.Value)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		lit, ok := value.(Literal)
		if !ok {
			return nil, fmt.Errorf("value: data property values must be literals")
		}
		return DataPropertyAssertion{Property: DataProperty{IRI: p}, Subject: subject, Value: lit}, nil
	case KindAnnotationAssertion:
		p, err := d.name(al.Property)
		if err != nil {
			return nil, fmt.Errorf("property: %w", err)
		}
		subject, err := d.annotationSubject(al.Subject)
		if err != nil {
			return nil, fmt.Errorf("subject: %w", err)
		}
		value, err := d.annotationValue(al.Value)
		if err != nil {
			return nil, fmt.Errorf("value: %w", err)
		}
		return AnnotationAssertion{Property: AnnotationProperty{IRI: p}, Subject: subject, Value: value}, nil
	case KindSameIndividual, KindDifferentIndividuals:
		inds := make([]Individual, 0, len(al.Individuals))
		for _, raw := range al.Individuals {
			ind, err := d.individual(raw)
			if err != nil {
				return nil, err
			}
			inds = append(inds, ind)
		}
		if AxiomKind(al.Type) == KindSameIndividual {
			return SameIndividual{Individuals: inds}, nil
		}
		return DifferentIndividuals{Individuals: inds}, nil
	default:
		return nil, fmt.Errorf("unknown axiom type %q", al.Type)
	}
}

// NewDeclaration builds a declaration axiom.
func NewDeclaration(t EntityType, iri IRI) (Declaration, error) {
	if iri == "" {
		return Declaration{}, fmt.Errorf("declaration without iri")
	}
	e, err := NewEntity(t, iri)
	if err != nil {
		return Declaration{}, err
	}
	return Declaration{Entity: e}, nil
}

func (d *decoder) name(raw json.RawMessage) (IRI, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", fmt.Errorf("expected IRI string: %w", err)
	}
	if s == "" {
		return "", fmt.Errorf("empty IRI")
	}
	return d.iri(s), nil
}

func (d *decoder) isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func (d *decoder) classExpressions(raws []json.RawMessage) ([]ClassExpression, error) {
	out := make([]ClassExpression, 0, len(raws))
	for _, raw := range raws {
		ce, err := d.classExpression(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, ce)
	}
	return out, nil
}

func (d *decoder) classExpression(raw json.RawMessage) (ClassExpression, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing class expression")
	}
	if d.isString(raw) {
		iri, err := d.name(raw)
		if err != nil {
			return nil, err
		}
		return Class{IRI: iri}, nil
	}

	var obj expressionObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}

	switch obj.Type {
	case "ObjectIntersectionOf", "ObjectUnionOf":
		ops, err := d.classExpressions(obj.Operands)
		if err != nil {
			return nil, err
		}
		if obj.Type == "ObjectIntersectionOf" {
			return ObjectIntersectionOf{Operands: ops}, nil
		}
		return ObjectUnionOf{Operands: ops}, nil
	case "ObjectComplementOf":
		op, err := d.classExpression(obj.Operand)
		if err != nil {
			return nil, err
		}
		return ObjectComplementOf{Operand: op}, nil
	case "ObjectOneOf":
		inds := make([]Individual, 0, len(obj.Individuals))
		for _, r := range obj.Individuals {
			ind, err := d.individual(r)
			if err != nil {
				return nil, err
			}
			inds = append(inds, ind)
		}
		return ObjectOneOf{Individuals: inds}, nil
	case "ObjectSomeValuesFrom", "ObjectAllValuesFrom":
		p, err := d.objectProperty(obj.Property)
		if err != nil {
			return nil, err
		}
		filler, err := d.classExpression(obj.Filler)
		if err != nil {
			return nil, err
		}
		if obj.Type == "ObjectSomeValuesFrom" {
			return ObjectSomeValuesFrom{Property: p, Filler: filler}, nil
		}
		return ObjectAllValuesFrom{Property: p, Filler: filler}, nil
	case "ObjectHasValue":
		p, err := d.objectProperty(obj.Property)
		if err != nil {
			return nil, err
		}
		ind, err := d.individual(obj.Value)
		if err != nil {
			return nil, err
		}
		return ObjectHasValue{Property: p, Value: ind}, nil
	case "ObjectMinCardinality", "ObjectMaxCardinality", "ObjectExactCardinality":
		if obj.Cardinality == nil || *obj.Cardinality < 0 {
			return nil, fmt.Errorf("%s requires a non-negative cardinality", obj.Type)
		}
		p, err := d.objectProperty(obj.Property)
		if err != nil {
			return nil, err
		}
		var filler ClassExpression
		if len(obj.Filler) > 0 {
			if filler, err = d.classExpression(obj.Filler); err != nil {
				return nil, err
			}
		}
		n := *obj.Cardinality
		switch obj.Type {
		case "ObjectMinCardinality":
			return ObjectMinCardinality{Cardinality: n, Property: p, Filler: filler}, nil
		case "ObjectMaxCardinality":
			return ObjectMaxCardinality{Cardinality: n, Property: p, Filler: filler}, nil
		default:
			return ObjectExactCardinality{Cardinality: n, Property: p, Filler: filler}, nil
		}
	case "DataSomeValuesFrom", "DataAllValuesFrom":
		p, err := d.name(obj.Property)
		if err != nil {
			return nil, err
		}
		dt, err := d.name(obj.Filler)
		if err != nil {
			return nil, err
		}
		if obj.Type == "DataSomeValuesFrom" {
			return DataSomeValuesFrom{Property: DataProperty{IRI: p}, Filler: Datatype{IRI: dt}}, nil
		}
		return DataAllValuesFrom{Property: DataProperty{IRI: p}, Filler: Datatype{IRI: dt}}, nil
	case "DataMinCardinality", "DataMaxCardinality", "DataExactCardinality":
		if obj.Cardinality == nil || *obj.Cardinality < 0 {
			return nil, fmt.Errorf("%s requires a non-negative cardinality", obj.Type)
		}
		p, err := d.name(obj.Property)
		if err != nil {
			return nil, err
		}
		var filler DataRange
		if len(obj.Filler) > 0 {
			dt, err := d.name(obj.Filler)
			if err != nil {
				return nil, err
			}
			filler = Datatype{IRI: dt}
		}
		n, prop := *obj.Cardinality, DataProperty{IRI: p}
		switch obj.Type {
		case "DataMinCardinality":
			return DataMinCardinality{Cardinality: n, Property: prop, Filler: filler}, nil
		case "DataMaxCardinality":
			return DataMaxCardinality{Cardinality: n, Property: prop, Filler: filler}, nil
		default:
			return DataExactCardinality{Cardinality: n, Property: prop, Filler: filler}, nil
		}
	default:
		return nil, fmt.Errorf("unknown class expression type %q", obj.Type)
	}
}

func (d *decoder) objectProperty(raw json.RawMessage) (ObjectPropertyExpression, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing object property")
	}
	if d.isString(raw) {
		iri, err := d.name(raw)
		if err != nil {
			return nil, err
		}
		return ObjectProperty{IRI: iri}, nil
	}
	var obj expressionObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	if obj.Type != "ObjectInverseOf" {
		return nil, fmt.Errorf("unknown object property expression type %q", obj.Type)
	}
	iri, err := d.name(obj.Property)
	if err != nil {
		return nil, err
	}
	return ObjectInverseOf{Property: ObjectProperty{IRI: iri}}, nil
}

func (d *decoder) individual(raw json.RawMessage) (Individual, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected individual string: %w", err)
	}
	if s == "" {
		return nil, fmt.Errorf("empty individual")
	}
	if strings.HasPrefix(s, "_:") {
		return AnonymousIndividual{NodeID: s}, nil
	}
	return NamedIndividual{IRI: d.iri(s)}, nil
}

func (d *decoder) annotationSubject(raw json.RawMessage) (AnnotationSubject, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected subject string: %w", err)
	}
	if s == "" {
		return nil, fmt.Errorf("empty subject")
	}
	if strings.HasPrefix(s, "_:") {
		return AnonymousIndividual{NodeID: s}, nil
	}
	return d.iri(s), nil
}

func (d *decoder) annotationValue(raw json.RawMessage) (AnnotationValue, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("missing value")
	}
	if d.isString(raw) {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, err
		}
		return Literal{Lexical: s}, nil
	}
	var obj literalObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	switch {
	case obj.IRI != "":
		return d.iri(obj.IRI), nil
	case obj.Anonymous != "":
		return AnonymousIndividual{NodeID: blankNode(obj.Anonymous)}, nil
	case obj.Value != nil:
		return Literal{Lexical: *obj.Value, Datatype: d.iri(obj.Datatype), Lang: obj.Lang}, nil
	default:
		return nil, fmt.Errorf("value object needs one of value, iri, anonymous")
	}
}

// blankNode prefixes a bare node ID with "_:".
func blankNode(id string) string {
	if strings.HasPrefix(id, "_:") {
		return id
	}
	return "_:" + id
}
