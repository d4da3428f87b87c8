package postprocess

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/owlgraph/engine"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

const ex = "http://example.org/anatomy#"

type fixture struct {
	store *storage.Store
	g     *engine.Transactional
	t     *testing.T
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "graph.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	g, err := engine.NewTransactional(context.Background(), s)
	require.NoError(t, err)
	t.Cleanup(func() { g.Shutdown(context.Background()) })
	return &fixture{store: s, g: g, t: t}
}

func (f *fixture) node(key string, labels ...string) int64 {
	f.t.Helper()
	id, err := f.g.CreateNode(key)
	require.NoError(f.t, err)
	for _, l := range labels {
		require.NoError(f.t, f.g.AddLabel(id, l))
	}
	return id
}

func (f *fixture) edge(start, end int64, relType string) int64 {
	f.t.Helper()
	id, err := f.g.CreateRelationship(start, end, relType)
	require.NoError(f.t, err)
	return id
}

func TestMaterializeExistentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	heart := f.node(ex+"Heart", vocab.LabelClass)
	body := f.node(ex+"Body", vocab.LabelClass)
	partOf := f.node(ex+"partOf", vocab.LabelObjectProperty)
	require.NoError(t, f.g.SetNodeProperty(partOf, vocab.PropFragment, "partOf"))

	r := f.node("_:restriction", vocab.LabelAnonymous, vocab.LabelSomeValuesFrom)
	f.edge(r, partOf, vocab.RelProperty)
	f.edge(r, body, vocab.RelClass)
	f.edge(heart, r, vocab.RelSubClassOf)

	p := New(f.store, WithWorkers(2))
	created, err := p.MaterializeExistentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		id, ok, err := tx.RelationshipID(heart, body, "partOf")
		require.NoError(t, err)
		require.True(t, ok)
		props, err := tx.RelationshipProperties(id)
		require.NoError(t, err)
		assert.Equal(t, ex+"partOf", props[vocab.PropIRI])
		assert.Equal(t, true, props[vocab.PropConvenience])
		assert.Equal(t, vocab.RelSubClassOf, props[vocab.PropOwlType])
		return nil
	})
	require.NoError(t, err)

	again, err := p.MaterializeExistentials(ctx)
	require.NoError(t, err)
	assert.Zero(t, again, "re-running creates no new edges")
}

func TestMaterializeFallsBackToIRI(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	heart := f.node(ex+"Heart", vocab.LabelClass)
	body := f.node(ex+"Body", vocab.LabelClass)
	partOf := f.node(ex+"partOf", vocab.LabelObjectProperty)
	r := f.node("_:r", vocab.LabelSomeValuesFrom)
	f.edge(r, partOf, vocab.RelProperty)
	f.edge(r, body, vocab.RelClass)
	f.edge(heart, r, vocab.RelEquivalentClass)

	created, err := New(f.store).MaterializeExistentials(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		_, ok, err := tx.RelationshipID(heart, body, ex+"partOf")
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	})
	require.NoError(t, err)
}

// hierarchy builds Tissue <- Muscle <- Myocardium, Muscle == MuscleTissue,
// and an individual typed Myocardium.
func hierarchy(f *fixture) map[string]int64 {
	ids := map[string]int64{}
	for _, n := range []string{"Tissue", "Muscle", "Myocardium", "MuscleTissue", "Bone"} {
		ids[n] = f.node(ex+n, vocab.LabelClass)
	}
	ids["sample"] = f.node(ex+"sample", vocab.LabelNamedIndividual)
	f.edge(ids["Muscle"], ids["Tissue"], vocab.RelSubClassOf)
	f.edge(ids["Myocardium"], ids["Muscle"], vocab.RelSubClassOf)
	f.edge(ids["MuscleTissue"], ids["Muscle"], vocab.RelEquivalentClass)
	f.edge(ids["sample"], ids["Myocardium"], vocab.RelType)
	f.edge(ids["Bone"], ids["Tissue"], vocab.RelDisjointWith)
	return ids
}

func TestPropagateCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := hierarchy(f)

	p := New(f.store, WithWorkers(3), WithChunkSize(2), WithCommitEvery(2))
	counts, err := p.PropagateCategories(ctx, map[string]string{ex + "Muscle": "muscle"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"muscle": 4}, counts)

	check := func() {
		err := f.store.View(ctx, func(tx *storage.Tx) error {
			for _, n := range []string{"Muscle", "Myocardium", "MuscleTissue", "sample"} {
				v, ok, err := tx.NodeProperty(ids[n], vocab.PropCategory)
				require.NoError(t, err)
				require.True(t, ok, n)
				assert.Equal(t, "muscle", v, n)
				labels, err := tx.Labels(ids[n])
				require.NoError(t, err)
				assert.Contains(t, labels, "muscle", n)
			}
			for _, n := range []string{"Tissue", "Bone"} {
				_, ok, err := tx.NodeProperty(ids[n], vocab.PropCategory)
				require.NoError(t, err)
				assert.False(t, ok, n)
			}
			return nil
		})
		require.NoError(t, err)
	}
	check()

	_, err = p.PropagateCategories(ctx, map[string]string{ex + "Muscle": "muscle"})
	require.NoError(t, err)
	check()
}

func TestPropagateCategoriesSharedName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := hierarchy(f)

	counts, err := New(f.store).PropagateCategories(ctx, map[string]string{
		ex + "Muscle": "tissue",
		ex + "Tissue": "tissue",
		ex + "Bone":   "skeleton",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, counts["tissue"], "Tissue, Muscle, Myocardium, MuscleTissue, sample")
	assert.Equal(t, 1, counts["skeleton"])

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		v, _, err := tx.NodeProperty(ids["Bone"], vocab.PropCategory)
		require.NoError(t, err)
		assert.Equal(t, "skeleton", v)
		return nil
	})
	require.NoError(t, err)
}

func TestPropagateCategoriesMultipleCategories(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := hierarchy(f)

	_, err := New(f.store).PropagateCategories(ctx, map[string]string{
		ex + "Muscle": "muscle",
		ex + "Tissue": "tissue",
	})
	require.NoError(t, err)

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		v, _, err := tx.NodeProperty(ids["Myocardium"], vocab.PropCategory)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"muscle", "tissue"}, v)
		return nil
	})
	require.NoError(t, err)
}

func TestPropagateCategoriesIndexesCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := hierarchy(f)

	p := New(f.store,
		WithIndexedProperties("label", vocab.PropCategory),
		WithExactProperties(vocab.PropIRI, vocab.PropCategory))
	_, err := p.PropagateCategories(ctx, map[string]string{
		ex + "Muscle": "muscle",
		ex + "Tissue": "tissue",
	})
	require.NoError(t, err)

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		muscle, err := tx.LookupExact(vocab.PropCategory, "muscle")
		require.NoError(t, err)
		assert.ElementsMatch(t,
			[]int64{ids["Muscle"], ids["Myocardium"], ids["MuscleTissue"], ids["sample"]}, muscle)

		tissue, err := tx.LookupExact(vocab.PropCategory, "tissue")
		require.NoError(t, err)
		assert.Contains(t, tissue, ids["Myocardium"], "a second category keeps the first indexed")
		assert.Contains(t, tissue, ids["Tissue"])

		hits, err := tx.Search("muscle", 20)
		require.NoError(t, err)
		var found []int64
		for _, h := range hits {
			assert.Equal(t, vocab.PropCategory, h.Property)
			found = append(found, h.NodeID)
		}
		assert.ElementsMatch(t, muscle, found)
		return nil
	})
	require.NoError(t, err)
}

func TestPropagateCategoriesWithoutIndexing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	hierarchy(f)

	_, err := New(f.store).PropagateCategories(ctx, map[string]string{ex + "Muscle": "muscle"})
	require.NoError(t, err)

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		ids, err := tx.LookupExact(vocab.PropCategory, "muscle")
		require.NoError(t, err)
		assert.Empty(t, ids)
		return nil
	})
	require.NoError(t, err)
}

func TestPropagateCategoriesFailedTraversal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := hierarchy(f)
	skin := f.node(ex+"Skin", vocab.LabelClass)

	p := New(f.store, WithWorkers(2))
	p.walk = func(ctx context.Context, root int64) ([]int64, error) {
		if root == ids["Muscle"] {
			return nil, errors.New("snapshot unavailable")
		}
		return p.traverse(ctx, root)
	}

	counts, err := p.PropagateCategories(ctx, map[string]string{
		ex + "Muscle": "muscle",
		ex + "Skin":   "integument",
	})
	require.NoError(t, err, "a failed traversal is logged, not returned")
	assert.Equal(t, map[string]int{"muscle": 0, "integument": 1}, counts)

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		v, ok, err := tx.NodeProperty(skin, vocab.PropCategory)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "integument", v)

		for _, n := range []string{"Muscle", "Myocardium", "MuscleTissue", "sample"} {
			_, ok, err := tx.NodeProperty(ids[n], vocab.PropCategory)
			require.NoError(t, err)
			assert.False(t, ok, n)
			labels, err := tx.Labels(ids[n])
			require.NoError(t, err)
			assert.NotContains(t, labels, "muscle", n)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestPropagateCategoriesUnresolvedRoot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := hierarchy(f)

	_, err := New(f.store).PropagateCategories(ctx, map[string]string{
		ex + "Muscle":  "muscle",
		ex + "Missing": "missing",
	})
	require.ErrorIs(t, err, ErrUnresolvedCategoryRoot)
	assert.Contains(t, err.Error(), ex+"Missing")

	err = f.store.View(ctx, func(tx *storage.Tx) error {
		_, ok, err := tx.NodeProperty(ids["Muscle"], vocab.PropCategory)
		require.NoError(t, err)
		assert.False(t, ok, "nothing is written when a root is unresolved")
		return nil
	})
	require.NoError(t, err)
}

func TestPropagateCategoriesCancelled(t *testing.T) {
	f := newFixture(t)
	hierarchy(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(f.store).PropagateCategories(ctx, map[string]string{ex + "Muscle": "muscle"})
	assert.ErrorIs(t, err, context.Canceled)
}
