package owl

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ex = "http://example.org/family#"

func cls(name string) Class { return Class{IRI: IRI(ex + name)} }

func TestIRIFragment(t *testing.T) {
	tests := []struct {
		iri      IRI
		fragment string
		local    string
	}{
		{"http://example.org/family#Mother", "Mother", "Mother"},
		{"http://purl.obolibrary.org/obo/GO_0008150", "GO_0008150", "GO_0008150"},
		{"http://example.org/ns#", "", "http://example.org/ns#"},
		{"urn:isbn", "", "urn:isbn"},
	}
	for _, tt := range tests {
		t.Run(string(tt.iri), func(t *testing.T) {
			assert.Equal(t, tt.fragment, tt.iri.Fragment())
			assert.Equal(t, tt.local, tt.iri.LocalName())
		})
	}
}

func TestIRICurieLongestNamespace(t *testing.T) {
	prefixes := map[string]string{
		"obo": "http://purl.obolibrary.org/obo/",
		"go":  "http://purl.obolibrary.org/obo/GO_",
	}
	curie, ok := IRI("http://purl.obolibrary.org/obo/GO_0008150").Curie(prefixes)
	require.True(t, ok)
	assert.Equal(t, "go:0008150", curie)

	_, ok = IRI("http://other.org/x").Curie(prefixes)
	assert.False(t, ok)
}

func TestCanonicalStringIgnoresOperandOrder(t *testing.T) {
	a := ObjectIntersectionOf{Operands: []ClassExpression{cls("Woman"), cls("Parent")}}
	b := ObjectIntersectionOf{Operands: []ClassExpression{cls("Parent"), cls("Woman")}}
	assert.Equal(t, a.String(), b.String())

	u := ObjectUnionOf{Operands: []ClassExpression{cls("Woman"), cls("Parent")}}
	assert.NotEqual(t, a.String(), u.String())
}

func TestCardinalityRendering(t *testing.T) {
	p := ObjectProperty{IRI: ex + "hasChild"}
	unqualified := ObjectMinCardinality{Cardinality: 2, Property: p}
	qualified := ObjectMinCardinality{Cardinality: 2, Property: p, Filler: cls("Person")}

	assert.Equal(t, "ObjectMinCardinality(2 <"+ex+"hasChild>)", unqualified.String())
	assert.Equal(t, "ObjectMinCardinality(2 <"+ex+"hasChild> <"+ex+"Person>)", qualified.String())
}

func TestLiteralIsEnglish(t *testing.T) {
	assert.True(t, Literal{Lexical: "x"}.IsEnglish())
	assert.True(t, Literal{Lexical: "x", Lang: "en"}.IsEnglish())
	assert.True(t, Literal{Lexical: "x", Lang: "EN-gb"}.IsEnglish())
	assert.False(t, Literal{Lexical: "x", Lang: "fr"}.IsEnglish())
	assert.False(t, Literal{Lexical: "x", Lang: "eng"}.IsEnglish())
}

func TestOntologyAddRemove(t *testing.T) {
	o := NewOntology(ex)
	sub := SubClassOf{Sub: cls("Mother"), Super: cls("Woman")}

	assert.Equal(t, 1, o.Add(sub))
	assert.Equal(t, 0, o.Add(SubClassOf{Sub: cls("Mother"), Super: cls("Woman")}))
	assert.True(t, o.Contains(sub))
	assert.Equal(t, 1, o.Len())

	o.Add(DisjointClasses{Classes: []ClassExpression{cls("Woman"), cls("Man")}})
	assert.Len(t, o.AxiomsOfKind(KindDisjointClasses), 1)

	assert.Equal(t, 1, o.Remove(sub))
	assert.Equal(t, 0, o.Remove(sub))
	assert.False(t, o.Contains(sub))
	assert.Equal(t, 1, o.Len())
	assert.Empty(t, o.AxiomsOfKind(KindSubClassOf))

	o.Add(sub)
	axioms := o.Axioms()
	require.Len(t, axioms, 2)
	assert.Equal(t, KindSubClassOf, axioms[1].Kind())
}

func TestOntologyCharacteristics(t *testing.T) {
	o := NewOntology(ex)
	knows := ObjectProperty{IRI: ex + "knows"}
	ancestor := ObjectProperty{IRI: ex + "ancestorOf"}
	o.Add(SymmetricObjectProperty{Property: knows}, TransitiveObjectProperty{Property: ancestor})

	assert.True(t, o.IsSymmetric(knows))
	assert.False(t, o.IsTransitive(knows))
	assert.True(t, o.IsTransitive(ancestor))
	assert.False(t, o.IsReflexive(ancestor))
}

func TestNamedClasses(t *testing.T) {
	ax := SubClassOf{
		Sub: cls("Mother"),
		Super: ObjectIntersectionOf{Operands: []ClassExpression{
			cls("Woman"),
			ObjectSomeValuesFrom{Property: ObjectProperty{IRI: ex + "hasChild"}, Filler: cls("Person")},
		}},
	}
	got := NamedClasses(ax)
	assert.Equal(t, []Class{cls("Mother"), cls("Person"), cls("Woman")}, got)
}

func TestSetClosure(t *testing.T) {
	root := NewOntology("http://ex.org/root")
	root.Imports = []IRI{"http://ex.org/a", "http://ex.org/missing"}
	a := NewOntology("http://ex.org/a")
	a.Imports = []IRI{"http://ex.org/b", "http://ex.org/root"}
	b := NewOntology("http://ex.org/b")
	other := NewOntology("http://ex.org/other")

	set := NewSet(root, a, b, other)
	require.Error(t, set.Add(NewOntology("http://ex.org/a")))

	closure := set.Closure(root.ID)
	ids := make([]IRI, 0, len(closure))
	for _, o := range closure {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []IRI{root.ID, a.ID, b.ID}, ids)
	assert.Nil(t, set.Closure("http://ex.org/nope"))
}

func TestWalk(t *testing.T) {
	o1 := NewOntology("http://ex.org/one")
	o1.Add(Declaration{Entity: cls("A")}, Declaration{Entity: cls("B")})
	o2 := NewOntology("http://ex.org/two")
	o2.Add(Declaration{Entity: cls("C")})
	empty := NewOntology("http://ex.org/empty")

	src := Walk(o1, empty, o2)
	ctx := context.Background()

	var trace []string
	for {
		ev, err := src.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		if ev.IsEnter() {
			trace = append(trace, "enter "+string(ev.Ontology.ID))
			continue
		}
		trace = append(trace, ev.Axiom.String())
	}

	assert.Equal(t, []string{
		"enter http://ex.org/one",
		"Declaration(Class(<" + ex + "A>))",
		"Declaration(Class(<" + ex + "B>))",
		"enter http://ex.org/empty",
		"enter http://ex.org/two",
		"Declaration(Class(<" + ex + "C>))",
	}, trace)
}

func TestWalkCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Walk(NewOntology(ex)).Next(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
