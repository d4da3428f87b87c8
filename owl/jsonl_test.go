package owl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const familyDoc = `{"ontology": "http://example.org/family", "version": "http://example.org/family/1.0", "imports": ["http://example.org/base"], "prefixes": {"ex": "http://example.org/family#"}}

{"type": "Declaration", "entity": "Class", "iri": "ex:Woman"}
{"type": "Declaration", "entity": "ObjectProperty", "iri": "ex:hasChild"}
{"type": "SubClassOf", "sub": "ex:Mother", "super": {"type": "ObjectIntersectionOf", "operands": ["ex:Woman", {"type": "ObjectSomeValuesFrom", "property": "ex:hasChild", "filler": "owl:Thing"}]}}
{"type": "EquivalentClasses", "classes": ["ex:Mother", {"type": "ObjectMinCardinality", "cardinality": 1, "property": {"type": "ObjectInverseOf", "property": "ex:hasParent"}}]}
{"type": "ClassAssertion", "class": "ex:Father", "individual": "ex:John"}
{"type": "DataPropertyAssertion", "property": "ex:hasAge", "subject": "ex:John", "value": {"value": "51", "datatype": "xsd:integer"}}
{"type": "AnnotationAssertion", "property": "rdfs:label", "subject": "ex:John", "value": {"value": "Jean", "lang": "fr"}}
{"type": "AnnotationAssertion", "property": "rdfs:seeAlso", "subject": "ex:John", "value": {"iri": "ex:Mary"}}
{"type": "SubPropertyChainOf", "chain": ["ex:hasFather", "ex:hasBrother"], "super": "ex:hasUncle"}
{"type": "SameIndividual", "individuals": ["ex:John", "_:b1"]}
`

func TestDecode(t *testing.T) {
	o, err := Decode(strings.NewReader(familyDoc))
	require.NoError(t, err)

	assert.Equal(t, IRI("http://example.org/family"), o.ID)
	assert.Equal(t, IRI("http://example.org/family/1.0"), o.Version)
	assert.Equal(t, []IRI{"http://example.org/base"}, o.Imports)
	assert.Equal(t, "http://example.org/family#", o.Prefixes["ex"])
	assert.Equal(t, 10, o.Len())

	decls := o.AxiomsOfKind(KindDeclaration)
	require.Len(t, decls, 2)
	assert.Equal(t, Declaration{Entity: cls("Woman")}, decls[0])
	assert.Equal(t, Declaration{Entity: ObjectProperty{IRI: ex + "hasChild"}}, decls[1])

	sub := o.AxiomsOfKind(KindSubClassOf)[0].(SubClassOf)
	inter, ok := sub.Super.(ObjectIntersectionOf)
	require.True(t, ok)
	require.Len(t, inter.Operands, 2)
	some := inter.Operands[1].(ObjectSomeValuesFrom)
	assert.Equal(t, Class{IRI: Thing}, some.Filler)

	eq := o.AxiomsOfKind(KindEquivalentClasses)[0].(EquivalentClasses)
	minCard := eq.Classes[1].(ObjectMinCardinality)
	assert.Equal(t, 1, minCard.Cardinality)
	assert.Nil(t, minCard.Filler)
	assert.Equal(t, ObjectInverseOf{Property: ObjectProperty{IRI: ex + "hasParent"}}, minCard.Property)

	dpa := o.AxiomsOfKind(KindDataPropertyAssertion)[0].(DataPropertyAssertion)
	assert.Equal(t, Literal{Lexical: "51", Datatype: XSDNamespace + "integer"}, dpa.Value)

	annotations := o.AxiomsOfKind(KindAnnotationAssertion)
	require.Len(t, annotations, 2)
	label := annotations[0].(AnnotationAssertion)
	assert.Equal(t, RDFSLabel, label.Property.IRI)
	assert.Equal(t, Literal{Lexical: "Jean", Lang: "fr"}, label.Value)
	assert.Equal(t, IRI(ex+"Mary"), annotations[1].(AnnotationAssertion).Value)

	chain := o.AxiomsOfKind(KindSubPropertyChainOf)[0].(SubPropertyChainOf)
	assert.Equal(t, ObjectProperty{IRI: ex + "hasFather"}, chain.Chain[0])
	assert.Equal(t, ObjectProperty{IRI: ex + "hasBrother"}, chain.Chain[1])

	same := o.AxiomsOfKind(KindSameIndividual)[0].(SameIndividual)
	assert.Equal(t, AnonymousIndividual{NodeID: "_:b1"}, same.Individuals[1])
}

func TestDecodeAnonymousAnnotationValue(t *testing.T) {
	doc := `{"ontology": "http://example.org/family", "prefixes": {"ex": "http://example.org/family#"}}
{"type": "AnnotationAssertion", "property": "rdfs:seeAlso", "subject": "_:b0", "value": {"anonymous": "b1"}}
{"type": "AnnotationAssertion", "property": "rdfs:seeAlso", "subject": "ex:John", "value": {"anonymous": "_:b0"}}
`
	o, err := Decode(strings.NewReader(doc))
	require.NoError(t, err)

	annotations := o.AxiomsOfKind(KindAnnotationAssertion)
	require.Len(t, annotations, 2)
	first := annotations[0].(AnnotationAssertion)
	assert.Equal(t, AnonymousIndividual{NodeID: "_:b0"}, first.Subject)
	assert.Equal(t, AnonymousIndividual{NodeID: "_:b1"}, first.Value)
	assert.Equal(t, AnonymousIndividual{NodeID: "_:b0"}, annotations[1].(AnnotationAssertion).Value)
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"header without ontology", `{"version": "x"}`},
		{"bad json", "{\"ontology\": \"http://ex.org\"}\n{nope"},
		{"unknown axiom", "{\"ontology\": \"http://ex.org\"}\n{\"type\": \"HasKey\"}"},
		{"unknown expression", "{\"ontology\": \"http://ex.org\"}\n{\"type\": \"SubClassOf\", \"sub\": \"ex:A\", \"super\": {\"type\": \"Foo\"}}"},
		{"missing cardinality", "{\"ontology\": \"http://ex.org\"}\n{\"type\": \"SubClassOf\", \"sub\": \"ex:A\", \"super\": {\"type\": \"ObjectMaxCardinality\", \"property\": \"ex:p\"}}"},
		{"iri as data value", "{\"ontology\": \"http://ex.org\"}\n{\"type\": \"DataPropertyAssertion\", \"property\": \"ex:p\", \"subject\": \"ex:a\", \"value\": {\"iri\": \"ex:b\"}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidDocument)
		})
	}
}

func TestLoadFilesAndResolvePaths(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested", "deep"), 0755))

	write := func(rel, id string) {
		doc := `{"ontology": "` + id + `"}` + "\n" + `{"type": "Declaration", "entity": "Class", "iri": "` + id + `#A"}` + "\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, rel), []byte(doc), 0644))
	}
	write("a.jsonl", "http://ex.org/a")
	write(filepath.Join("nested", "deep", "b.jsonl"), "http://ex.org/b")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	paths, err := ResolvePaths([]string{
		filepath.Join(dir, "**", "*.jsonl"),
		filepath.Join(dir, "a.jsonl"),
	})
	require.NoError(t, err)
	assert.Len(t, paths, 2)

	set, err := LoadFiles(paths)
	require.NoError(t, err)
	_, ok := set.Get("http://ex.org/b")
	assert.True(t, ok)
	assert.Len(t, set.Ontologies(), 2)

	_, err = ResolvePaths([]string{filepath.Join(dir, "missing.jsonl")})
	assert.Error(t, err)
	_, err = ResolvePaths([]string{dir})
	assert.Error(t, err)
}
