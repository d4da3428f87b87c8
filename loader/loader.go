// Package loader runs one ontology load end to end: reasoning, translation
// into the graph store, post-load passes, metrics and the load event.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/owlgraph/config"
	"github.com/c360studio/owlgraph/engine"
	"github.com/c360studio/owlgraph/identity"
	"github.com/c360studio/owlgraph/owl"
	"github.com/c360studio/owlgraph/postprocess"
	"github.com/c360studio/owlgraph/reasoner"
	"github.com/c360studio/owlgraph/storage"
	"github.com/c360studio/owlgraph/translate"
)

// Load phases, as reported in LoadStats.ElapsedByPhase.
const (
	PhaseReason       = "reason"
	PhaseTranslate    = "translate"
	PhaseFlush        = "flush"
	PhaseExistentials = "existentials"
	PhaseCategories   = "categories"
)

// LoadStats summarizes one load.
type LoadStats struct {
	RunID          string
	NodeCount      int64
	EdgeCount      int64
	ElapsedByPhase map[string]time.Duration

	Reasoned      bool
	ShortcutEdges int
	Categories    map[string]int
	Translation   translate.Stats
	// SkippedValues counts property writes dropped as unsupported.
	SkippedValues int64
}

// Root is an ontology to reason over before translation. A nil Reasoner
// config means the ontology is translated as asserted.
type Root struct {
	IRI      owl.IRI
	Reasoner *reasoner.Config
}

// Loader loads ontology sets into the configured graph store.
type Loader struct {
	cfg       *config.Config
	factory   reasoner.Factory
	publisher Publisher
	metrics   *Metrics
	logger    *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithReasoner sets the reasoner factory. The default is the told-structure
// reasoner.
func WithReasoner(factory reasoner.Factory) Option {
	return func(l *Loader) {
		if factory != nil {
			l.factory = factory
		}
	}
}

// WithPublisher publishes a load event after every successful load.
func WithPublisher(p Publisher) Option {
	return func(l *Loader) { l.publisher = p }
}

// WithMetrics records load metrics into m instead of a private collector.
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) {
		if m != nil {
			l.metrics = m
		}
	}
}

// New creates a Loader for cfg.
func New(cfg *config.Config, opts ...Option) *Loader {
	l := &Loader{
		cfg:     cfg,
		factory: reasoner.NewStructural,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.metrics == nil {
		l.metrics = NewMetrics("owlgraph")
	}
	return l
}

// Metrics returns the collector the loader records into.
func (l *Loader) Metrics() *Metrics { return l.metrics }

// Load reasons over roots, translates every ontology of set into the graph
// store and runs the configured post-load passes.
func (l *Loader) Load(ctx context.Context, set *owl.Set, roots ...Root) (*LoadStats, error) {
	stats, err := l.load(ctx, set, roots)
	if err != nil {
		l.metrics.Loads.WithLabelValues("error").Inc()
		return nil, err
	}
	l.metrics.Loads.WithLabelValues("ok").Inc()
	l.metrics.observe(stats)

	if l.cfg.MetricsFile != "" {
		if err := l.metrics.WriteToTextfile(l.cfg.MetricsFile); err != nil {
			l.logger.Warn("Failed to write metrics file", "path", l.cfg.MetricsFile, "error", err)
		}
	}
	return stats, nil
}

func (l *Loader) load(ctx context.Context, set *owl.Set, roots []Root) (*LoadStats, error) {
	started := time.Now()
	stats := &LoadStats{
		RunID:          uuid.NewString(),
		ElapsedByPhase: make(map[string]time.Duration),
	}
	phase := func(name string, since time.Time) {
		stats.ElapsedByPhase[name] = time.Since(since)
	}
	logger := l.logger.With("run", stats.RunID)
	logger.Info("Starting load",
		"ontologies", len(set.Ontologies()), "engine", l.cfg.Graph.Engine, "location", l.cfg.Graph.Location)

	t := time.Now()
	for _, r := range roots {
		if r.Reasoner == nil {
			continue
		}
		reasoned, err := l.reason(ctx, set, r, logger)
		if err != nil {
			return nil, fmt.Errorf("reason over %s: %w", r.IRI, err)
		}
		stats.Reasoned = stats.Reasoned || reasoned
	}
	phase(PhaseReason, t)

	store, err := storage.Open(l.cfg.Graph.Location, storage.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer store.Close()

	g, err := l.engine(ctx, store, logger)
	if err != nil {
		return nil, err
	}

	t = time.Now()
	v := translate.New(g,
		translate.WithMappedProperties(l.cfg.Mapped()),
		translate.WithCuries(l.cfg.Curies),
		translate.WithLogger(logger))
	if err := translate.Run(ctx, owl.Walk(set.Ontologies()...), v); err != nil {
		if shutdownErr := g.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("Engine shutdown after failed translation", "error", shutdownErr)
		}
		return nil, err
	}
	stats.Translation = v.Stats()
	stats.SkippedValues = g.Skipped()
	phase(PhaseTranslate, t)

	t = time.Now()
	if err := g.Shutdown(ctx); err != nil {
		return nil, fmt.Errorf("shut down engine: %w", err)
	}
	phase(PhaseFlush, t)

	p := postprocess.New(store,
		postprocess.WithWorkers(l.cfg.Postprocess.Workers),
		postprocess.WithChunkSize(l.cfg.Postprocess.ChunkSize),
		postprocess.WithCommitEvery(l.cfg.Postprocess.CommitEvery),
		postprocess.WithIndexedProperties(l.cfg.Graph.IndexedNodeProperties...),
		postprocess.WithExactProperties(l.cfg.Graph.ExactNodeProperties...),
		postprocess.WithLogger(logger))

	if l.cfg.Postprocess.MaterializeExistentials {
		t = time.Now()
		stats.ShortcutEdges, err = p.MaterializeExistentials(ctx)
		if err != nil {
			return nil, err
		}
		phase(PhaseExistentials, t)
	}

	if len(l.cfg.Categories) > 0 {
		t = time.Now()
		stats.Categories, err = p.PropagateCategories(ctx, l.cfg.Categories)
		if err != nil {
			return nil, err
		}
		phase(PhaseCategories, t)
	}

	stats.NodeCount, stats.EdgeCount, err = store.Counts(ctx)
	if err != nil {
		return nil, err
	}

	logger.Info("Load complete",
		"nodes", stats.NodeCount,
		"edges", stats.EdgeCount,
		"axioms", stats.Translation.Axioms,
		"skipped_values", stats.SkippedValues,
		"elapsed", time.Since(started))

	if l.publisher != nil {
		if err := l.publish(ctx, set, roots, stats, started); err != nil {
			logger.Warn("Failed to publish load event", "subject", l.cfg.NATS.Subject, "error", err)
		}
	}
	return stats, nil
}

// reason runs one adapter pass. It reports whether inferences were committed.
func (l *Loader) reason(ctx context.Context, set *owl.Set, r Root, logger *slog.Logger) (bool, error) {
	a, err := reasoner.NewAdapter(set, r.IRI, l.factory, *r.Reasoner, logger)
	if err != nil {
		return false, err
	}
	defer a.Dispose()

	ok, err := a.ShouldReason()
	if err != nil {
		return false, err
	}
	if !ok {
		l.metrics.Reasoner.WithLabelValues("skipped").Inc()
		return false, nil
	}

	if _, err := a.Reason(ctx); err != nil {
		return false, err
	}
	if r.Reasoner.RemoveUnnecessaryEdges {
		if _, err := a.RemoveRedundantAxioms(); err != nil {
			return false, err
		}
	}
	l.metrics.Reasoner.WithLabelValues("reasoned").Inc()
	return true, nil
}

func (l *Loader) engine(ctx context.Context, store *storage.Store, logger *slog.Logger) (engine.Engine, error) {
	gc := l.cfg.Graph
	opts := []engine.Option{
		engine.WithIndexedProperties(gc.IndexedNodeProperties...),
		engine.WithExactProperties(gc.ExactNodeProperties...),
		engine.WithIdentity(identity.Kind(gc.Identity), gc.SpillThreshold, filepath.Dir(gc.Location)),
		engine.WithLogger(logger),
	}
	switch engine.Kind(gc.Engine) {
	case engine.KindTransactional:
		return engine.NewTransactional(ctx, store, opts...)
	case engine.KindBatch, "":
		return engine.NewBatch(ctx, store, opts...)
	default:
		return nil, fmt.Errorf("unknown engine %q", gc.Engine)
	}
}

// ReadOntologies decodes the documents named by entries into one Set. Every
// ontology read through an entry with reasoning enabled is returned as a Root.
// It also returns the resolved document paths.
func ReadOntologies(entries []config.OntologyConfig) (*owl.Set, []Root, []string, error) {
	set := owl.NewSet()
	var (
		roots []Root
		docs  []string
	)
	for _, e := range entries {
		paths, err := owl.ResolvePaths([]string{e.Path})
		if err != nil {
			return nil, nil, nil, err
		}
		var rc *reasoner.Config
		if e.Reasoner.Enabled {
			c := ReasonerConfig(e.Reasoner)
			rc = &c
		}
		for _, p := range paths {
			o, err := owl.DecodeFile(p)
			if err != nil {
				return nil, nil, nil, err
			}
			if err := set.Add(o); err != nil {
				return nil, nil, nil, fmt.Errorf("%s: %w", p, err)
			}
			docs = append(docs, p)
			if rc != nil {
				roots = append(roots, Root{IRI: o.ID, Reasoner: rc})
			}
		}
	}
	return set, roots, docs, nil
}

// ReasonerConfig converts a configured reasoner entry, filling unset fields
// from reasoner.DefaultConfig.
func ReasonerConfig(rc config.ReasonerConfig) reasoner.Config {
	c := reasoner.DefaultConfig()
	if len(rc.RemoveAxioms) > 0 {
		c.RemoveAxioms = nil
		for _, k := range rc.RemoveAxioms {
			c.RemoveAxioms = append(c.RemoveAxioms, owl.AxiomKind(k))
		}
	}
	if rc.AddDirectInferredEdges != nil {
		c.AddDirectInferredEdges = *rc.AddDirectInferredEdges
	}
	if rc.RemoveUnnecessaryEdges != nil {
		c.RemoveUnnecessaryEdges = *rc.RemoveUnnecessaryEdges
	}
	if rc.AddInferredEquivalences != nil {
		c.AddInferredEquivalences = *rc.AddInferredEquivalences
	}
	return c
}
