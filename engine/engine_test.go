package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/identity"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

type factory func(t *testing.T, s *storage.Store, opts ...Option) Engine

var engines = map[string]factory{
	"batch": func(t *testing.T, s *storage.Store, opts ...Option) Engine {
		e, err := NewBatch(context.Background(), s, opts...)
		require.NoError(t, err)
		return e
	},
	"transactional": func(t *testing.T, s *storage.Store, opts ...Option) Engine {
		e, err := NewTransactional(context.Background(), s, opts...)
		require.NoError(t, err)
		return e
	},
}

func TestIdempotentCreation(t *testing.T) {
	for name, newEngine := range engines {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, openStore(t))

			a, err := e.CreateNode("http://example.org/A")
			require.NoError(t, err)
			again, err := e.CreateNode("http://example.org/A")
			require.NoError(t, err)
			assert.Equal(t, a, again)

			b, err := e.CreateNode("http://example.org/B")
			require.NoError(t, err)
			assert.NotEqual(t, a, b)

			r1, err := e.CreateRelationship(a, b, "subClassOf")
			require.NoError(t, err)
			r2, err := e.CreateRelationship(a, b, "subClassOf")
			require.NoError(t, err)
			assert.Equal(t, r1, r2)

			got, ok := e.GetRelationship(a, b, "subClassOf")
			assert.True(t, ok)
			assert.Equal(t, r1, got)
			_, ok = e.GetRelationship(b, a, "subClassOf")
			assert.False(t, ok)

			iri, ok, err := e.GetNodeProperty(a, vocab.PropIRI)
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "http://example.org/A", iri)

			require.NoError(t, e.Shutdown(context.Background()))
		})
	}
}

func TestPairwiseReusesReverseEdge(t *testing.T) {
	for name, newEngine := range engines {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, openStore(t))

			a, _ := e.CreateNode("a")
			b, _ := e.CreateNode("b")
			c, _ := e.CreateNode("c")

			ba, err := e.CreateRelationship(b, a, "sameAs")
			require.NoError(t, err)

			ids, err := e.CreateRelationshipsPairwise([]int64{a, b, c, a}, "sameAs")
			require.NoError(t, err)
			require.Len(t, ids, 3)
			assert.Equal(t, ba, ids[0])

			_, ok := e.GetRelationship(a, b, "sameAs")
			assert.False(t, ok, "reverse edge must be reused")
			_, ok = e.GetRelationship(a, c, "sameAs")
			assert.True(t, ok)
			_, ok = e.GetRelationship(b, c, "sameAs")
			assert.True(t, ok)

			again, err := e.CreateRelationshipsPairwise([]int64{c, b, a}, "sameAs")
			require.NoError(t, err)
			assert.ElementsMatch(t, ids, again)
		})
	}
}

func TestPropertyWrites(t *testing.T) {
	for name, newEngine := range engines {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, openStore(t))
			n, err := e.CreateNode("n")
			require.NoError(t, err)

			require.NoError(t, e.AddNodeProperty(n, "p", 1))
			require.NoError(t, e.AddNodeProperty(n, "p", 2))
			require.NoError(t, e.AddNodeProperty(n, "p", 2))
			v, _, err := e.GetNodeProperty(n, "p")
			require.NoError(t, err)
			assert.Equal(t, []int64{1, 2}, v)

			require.NoError(t, e.AddNodeProperty(n, "p", "x"))
			v, _, _ = e.GetNodeProperty(n, "p")
			assert.Equal(t, []string{"1", "2", "x"}, v)

			require.NoError(t, e.SetNodeProperty(n, "label", "the"))
			require.NoError(t, e.SetNodeProperty(n, "label", "   "))
			_, ok, err := e.GetNodeProperty(n, "label")
			require.NoError(t, err)
			assert.False(t, ok, "ignorable values must not be stored")
			assert.Zero(t, e.Skipped())

			require.NoError(t, e.SetNodeProperty(n, "bad", map[string]int{"x": 1}))
			_, ok, _ = e.GetNodeProperty(n, "bad")
			assert.False(t, ok)
			assert.Equal(t, int64(1), e.Skipped())

			err = e.SetNodeProperty(999, "p", "value")
			assert.ErrorIs(t, err, graph.ErrNodeNotFound)
		})
	}
}

func TestLabels(t *testing.T) {
	for name, newEngine := range engines {
		t.Run(name, func(t *testing.T) {
			e := newEngine(t, openStore(t))
			n, _ := e.CreateNode("n")

			require.NoError(t, e.AddLabel(n, "Class"))
			require.NoError(t, e.AddLabel(n, "NamedIndividual"))
			require.NoError(t, e.AddLabel(n, "Class"))
			labels, err := e.GetLabels(n)
			require.NoError(t, err)
			assert.Equal(t, []string{"Class", "NamedIndividual"}, labels)

			require.NoError(t, e.SetLabel(n, "Datatype"))
			labels, _ = e.GetLabels(n)
			assert.Equal(t, []string{"Datatype"}, labels)
		})
	}
}

func TestBatchRequiresEmptyStore(t *testing.T) {
	s := openStore(t)
	require.NoError(t, s.Update(context.Background(), func(tx *storage.Tx) error {
		_, _, err := tx.CreateNode("existing")
		return err
	}))

	_, err := NewBatch(context.Background(), s)
	assert.ErrorIs(t, err, ErrStoreNotEmpty)
}

func TestBatchShutdown(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	e, err := NewBatch(ctx, s,
		WithIndexedProperties("label"),
		WithExactProperties(vocab.PropIRI))
	require.NoError(t, err)

	a, _ := e.CreateNode("http://example.org/Heart")
	b, _ := e.CreateNode("http://example.org/Organ")
	require.NoError(t, e.SetNodeProperty(a, "label", "heart muscle"))
	_, err = e.CreateRelationship(a, b, "subClassOf")
	require.NoError(t, err)

	nodes, _, err := s.Counts(ctx)
	require.NoError(t, err)
	assert.Zero(t, nodes, "batch writes nothing before shutdown")

	require.NoError(t, e.Shutdown(ctx))
	require.NoError(t, e.Shutdown(ctx))

	_, err = e.CreateNode("late")
	assert.ErrorIs(t, err, ErrShutdown)

	require.NoError(t, s.View(ctx, func(tx *storage.Tx) error {
		id, ok, err := tx.NodeID("http://example.org/Heart")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, a, id)

		ids, err := tx.LookupExact(vocab.PropIRI, "http://example.org/Organ")
		require.NoError(t, err)
		assert.Equal(t, []int64{b}, ids)

		hits, err := tx.Search("muscle", 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, a, hits[0].NodeID)
		return nil
	}))
}

func TestTransactionalHydratesIdentity(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)

	first, err := NewTransactional(ctx, s)
	require.NoError(t, err)
	a, _ := first.CreateNode("a")
	b, _ := first.CreateNode("b")
	r, err := first.CreateRelationship(a, b, "type")
	require.NoError(t, err)
	require.NoError(t, first.Shutdown(ctx))

	second, err := NewTransactional(ctx, s)
	require.NoError(t, err)
	got, ok := second.GetNode("a")
	assert.True(t, ok)
	assert.Equal(t, a, got)

	again, err := second.CreateRelationship(a, b, "type")
	require.NoError(t, err)
	assert.Equal(t, r, again)

	c, err := second.CreateNode("c")
	require.NoError(t, err)
	assert.Greater(t, c, b)
}

func TestTransactionalDiskIdentity(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	spillDir := t.TempDir()
	e, err := NewTransactional(ctx, s, WithIdentity(identity.KindDisk, 1, spillDir))
	require.NoError(t, err)

	ids := make(map[string]int64)
	for _, key := range []string{"a", "b", "c", "d"} {
		id, err := e.CreateNode(key)
		require.NoError(t, err)
		ids[key] = id
	}
	for key, id := range ids {
		got, ok := e.GetNode(key)
		assert.True(t, ok)
		assert.Equal(t, id, got)
	}

	require.NoError(t, e.Shutdown(ctx))
	entries, err := os.ReadDir(spillDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "spill files are removed on Shutdown")
}

// populate issues the same mutations against any engine.
func populate(t *testing.T, e Engine) {
	t.Helper()
	keys := []string{"http://ex/Mother", "http://ex/Woman", "http://ex/Parent", "http://ex/John"}
	ids := make([]int64, len(keys))
	for i, k := range keys {
		id, err := e.CreateNode(k)
		require.NoError(t, err)
		ids[i] = id
		require.NoError(t, e.AddLabel(id, "Class"))
		require.NoError(t, e.AddNodeProperty(id, "definedBy", "http://ex/family"))
	}
	require.NoError(t, e.SetLabel(ids[3], "NamedIndividual"))
	_, err := e.CreateRelationship(ids[0], ids[1], "subClassOf")
	require.NoError(t, err)
	_, err = e.CreateRelationship(ids[0], ids[2], "subClassOf")
	require.NoError(t, err)
	_, err = e.CreateRelationshipsPairwise(ids[1:3], "equivalentClass")
	require.NoError(t, err)
	r, err := e.CreateRelationship(ids[3], ids[0], "type")
	require.NoError(t, err)
	require.NoError(t, e.AddRelationshipProperty(r, "definedBy", "http://ex/family"))
	require.NoError(t, e.AddNodeProperty(ids[3], "age", 51))
	require.NoError(t, e.AddNodeProperty(ids[3], "age", 52.5))
	require.NoError(t, e.Shutdown(context.Background()))
}

type snapshot struct {
	nodes map[string][]string
	props map[string]map[string]any
	rels  map[string]map[string]any
}

func dump(t *testing.T, s *storage.Store) snapshot {
	t.Helper()
	out := snapshot{
		nodes: make(map[string][]string),
		props: make(map[string]map[string]any),
		rels:  make(map[string]map[string]any),
	}
	keys := make(map[int64]string)
	require.NoError(t, s.View(context.Background(), func(tx *storage.Tx) error {
		if err := tx.ForEachNode(func(id int64, key string) error {
			keys[id] = key
			labels, err := tx.Labels(id)
			if err != nil {
				return err
			}
			out.nodes[key] = labels
			props, err := tx.NodeProperties(id)
			out.props[key] = props
			return err
		}); err != nil {
			return err
		}
		return tx.ForEachRelationship(func(r storage.Relationship) error {
			props, err := tx.RelationshipProperties(r.ID)
			out.rels[keys[r.Start]+"|"+keys[r.End]+"|"+r.Type] = props
			return err
		})
	}))
	return out
}

func TestEnginesProduceIdenticalGraphs(t *testing.T) {
	batchStore := openStore(t)
	populate(t, engines["batch"](t, batchStore))

	txStore := openStore(t)
	populate(t, engines["transactional"](t, txStore))

	want := dump(t, batchStore)
	got := dump(t, txStore)
	assert.Equal(t, want.nodes, got.nodes)
	assert.Equal(t, want.props, got.props)
	assert.Equal(t, want.rels, got.rels)
	assert.Equal(t, []string{"51", "52.5"}, got.props["http://ex/John"]["age"])
}
