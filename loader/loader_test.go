package loader

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/owlgraph/config"
	"github.com/c360studio/owlgraph/engine"
	"github.com/c360studio/owlgraph/owl"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

const ex = "http://example.org/anatomy#"

const anatomyDoc = `{"ontology": "http://example.org/anatomy", "prefixes": {"ex": "http://example.org/anatomy#"}}
{"type": "Declaration", "entity": "Class", "iri": "ex:Heart"}
{"type": "Declaration", "entity": "Class", "iri": "ex:Organ"}
{"type": "Declaration", "entity": "Class", "iri": "ex:AnatomicalEntity"}
{"type": "Declaration", "entity": "Class", "iri": "ex:Body"}
{"type": "Declaration", "entity": "ObjectProperty", "iri": "ex:partOf"}
{"type": "SubClassOf", "sub": "ex:Heart", "super": "ex:Organ"}
{"type": "SubClassOf", "sub": "ex:Organ", "super": "ex:AnatomicalEntity"}
{"type": "SubClassOf", "sub": "ex:Heart", "super": "ex:AnatomicalEntity"}
{"type": "SubClassOf", "sub": "ex:Heart", "super": {"type": "ObjectSomeValuesFrom", "property": "ex:partOf", "filler": "ex:Body"}}
{"type": "AnnotationAssertion", "property": "rdfs:label", "subject": "ex:Heart", "value": "heart"}
{"type": "AnnotationAssertion", "property": "rdfs:label", "subject": "ex:Heart", "value": {"value": "coeur", "lang": "fr"}}
`

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	messages [][]byte
}

func (p *recordingPublisher) Publish(_ context.Context, subject string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	p.messages = append(p.messages, data)
	return nil
}

func writeDoc(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func testConfig(t *testing.T, reason bool) *config.Config {
	t.Helper()
	dir := t.TempDir()
	writeDoc(t, dir, "anatomy.jsonl", anatomyDoc)

	cfg := config.DefaultConfig()
	cfg.Graph.Location = filepath.Join(dir, "graph.db")
	cfg.Ontologies = []config.OntologyConfig{{
		Path:     filepath.Join(dir, "*.jsonl"),
		Reasoner: config.ReasonerConfig{Enabled: reason},
	}}
	cfg.MappedProperties = []config.MappedProperty{{Name: "label", Properties: []string{owl.RDFSNamespace + "label"}}}
	cfg.Categories = map[string]string{ex + "Organ": "organ"}
	cfg.MetricsFile = filepath.Join(dir, "owlgraph.prom")
	require.NoError(t, cfg.Validate())
	return cfg
}

func load(t *testing.T, cfg *config.Config, opts ...Option) (*LoadStats, error) {
	t.Helper()
	set, roots, docs, err := ReadOntologies(cfg.Ontologies)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	return New(cfg, opts...).Load(context.Background(), set, roots...)
}

func edgeExists(t *testing.T, s *storage.Store, from, to, relType string) bool {
	t.Helper()
	var exists bool
	err := s.View(context.Background(), func(tx *storage.Tx) error {
		a, ok, err := tx.NodeID(from)
		if err != nil || !ok {
			return err
		}
		b, ok, err := tx.NodeID(to)
		if err != nil || !ok {
			return err
		}
		_, exists, err = tx.RelationshipID(a, b, relType)
		return err
	})
	require.NoError(t, err)
	return exists
}

func TestLoadEndToEnd(t *testing.T) {
	cfg := testConfig(t, true)
	pub := &recordingPublisher{}

	stats, err := load(t, cfg, WithPublisher(pub))
	require.NoError(t, err)

	assert.True(t, stats.Reasoned)
	assert.Positive(t, stats.NodeCount)
	assert.Positive(t, stats.EdgeCount)
	assert.Equal(t, 1, stats.ShortcutEdges)
	assert.Equal(t, map[string]int{"organ": 2}, stats.Categories)
	assert.Equal(t, int64(1), stats.Translation.NonEnglish)
	for _, phase := range []string{PhaseReason, PhaseTranslate, PhaseFlush, PhaseExistentials, PhaseCategories} {
		assert.Contains(t, stats.ElapsedByPhase, phase)
	}

	s, err := storage.Open(cfg.Graph.Location)
	require.NoError(t, err)
	defer s.Close()

	assert.True(t, edgeExists(t, s, ex+"Heart", ex+"Organ", vocab.RelSubClassOf))
	assert.False(t, edgeExists(t, s, ex+"Heart", ex+"AnatomicalEntity", vocab.RelSubClassOf),
		"indirect asserted edge is removed before translation")
	assert.True(t, edgeExists(t, s, ex+"Heart", ex+"Body", "partOf"))

	err = s.View(context.Background(), func(tx *storage.Tx) error {
		hits, err := tx.Search("heart", 10)
		require.NoError(t, err)
		require.NotEmpty(t, hits)
		return nil
	})
	require.NoError(t, err)

	require.Len(t, pub.messages, 1)
	assert.Equal(t, "owlgraph.load.completed", pub.subjects[0])
	var event LoadEvent
	require.NoError(t, json.Unmarshal(pub.messages[0], &event))
	assert.Equal(t, LoadEntityID(stats.RunID), event.EntityID())
	assert.Equal(t, LoadEventType, event.Schema())
	predicates := make(map[string]bool)
	for _, tr := range event.Triples() {
		predicates[tr.Predicate] = true
	}
	assert.True(t, predicates[vocab.LoadNodeCount])
	assert.True(t, predicates[vocab.LoadOntology])
	assert.True(t, predicates[vocab.LoadDocument])
	assert.True(t, predicates[vocab.LoadElapsed])

	prom, err := os.ReadFile(cfg.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "owlgraph_graph_nodes")
	assert.Contains(t, string(prom), `owlgraph_loads_total{status="ok"} 1`)
}

func TestLoadWithoutReasoning(t *testing.T) {
	cfg := testConfig(t, false)

	stats, err := load(t, cfg)
	require.NoError(t, err)
	assert.False(t, stats.Reasoned)

	s, err := storage.Open(cfg.Graph.Location)
	require.NoError(t, err)
	defer s.Close()
	assert.True(t, edgeExists(t, s, ex+"Heart", ex+"AnatomicalEntity", vocab.RelSubClassOf))
}

func TestBatchReloadRequiresEmptyStore(t *testing.T) {
	cfg := testConfig(t, false)
	l := New(cfg)
	set, roots, _, err := ReadOntologies(cfg.Ontologies)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), set, roots...)
	require.NoError(t, err)

	_, err = l.Load(context.Background(), set, roots...)
	require.ErrorIs(t, err, engine.ErrStoreNotEmpty)
	assert.Equal(t, 1.0, testutil.ToFloat64(l.Metrics().Loads.WithLabelValues("error")))
}

func TestTransactionalReloadIsIdempotent(t *testing.T) {
	cfg := testConfig(t, false)
	first, err := load(t, cfg)
	require.NoError(t, err)

	cfg.Graph.Engine = "transactional"
	second, err := load(t, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.NodeCount, second.NodeCount)
	assert.Equal(t, first.EdgeCount, second.EdgeCount)
	assert.Zero(t, second.ShortcutEdges)
}

func TestUnresolvedCategoryRootFailsLoad(t *testing.T) {
	cfg := testConfig(t, false)
	cfg.Categories = map[string]string{ex + "Nowhere": "nowhere"}

	_, err := load(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ex+"Nowhere")
}

func TestReasonerConfig(t *testing.T) {
	off := false
	c := ReasonerConfig(config.ReasonerConfig{
		Enabled:                true,
		RemoveAxioms:           []string{"SubClassOf"},
		RemoveUnnecessaryEdges: &off,
	})
	assert.Equal(t, []owl.AxiomKind{owl.KindSubClassOf}, c.RemoveAxioms)
	assert.False(t, c.RemoveUnnecessaryEdges)
	assert.True(t, c.AddDirectInferredEdges)
	assert.True(t, c.AddInferredEquivalences)

	d := ReasonerConfig(config.ReasonerConfig{Enabled: true})
	assert.Contains(t, d.RemoveAxioms, owl.KindDisjointClasses)
}

func TestWatcherReloadsChangedDocument(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "anatomy.jsonl", anatomyDoc)
	writeDoc(t, dir, "notes.txt", "ignored")

	w, err := NewWatcher(WatcherConfig{
		Patterns:      []string{filepath.Join(dir, "*.jsonl")},
		DebounceDelay: 20 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloads := make(chan []string, 10)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(_ context.Context, changed []string) error {
			reloads <- changed
			return nil
		})
	}()

	edit := 0
	require.Eventually(t, func() bool {
		edit++
		content := anatomyDoc + strings.Repeat("\n", edit)
		if err := os.WriteFile(doc, []byte(content), 0644); err != nil {
			return false
		}
		select {
		case changed := <-reloads:
			return len(changed) == 1 && filepath.Base(changed[0]) == "anatomy.jsonl"
		case <-time.After(100 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcherSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	doc := writeDoc(t, dir, "anatomy.jsonl", anatomyDoc)

	w, err := NewWatcher(WatcherConfig{Patterns: []string{filepath.Join(dir, "**", "*.jsonl")}})
	require.NoError(t, err)
	defer w.watcher.Close()

	w.seedHashes()
	w.pending[doc] = 0
	assert.Empty(t, w.flushPending(), "rewriting identical content is not a change")

	require.NoError(t, os.WriteFile(doc, []byte(anatomyDoc+"\n"), 0644))
	w.pending[doc] = 0
	assert.Equal(t, []string{doc}, w.flushPending())

	assert.True(t, w.matches(filepath.Join(dir, "nested", "x.jsonl")))
	assert.False(t, w.matches(filepath.Join(dir, "x.txt")))
}
