// Package postprocess runs the passes that follow a load: existential
// shortcut edges and category propagation.
package postprocess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

// ErrUnresolvedCategoryRoot is returned when a category root key names no node.
var ErrUnresolvedCategoryRoot = errors.New("unresolved category root")

const (
	DefaultChunkSize   = 1000
	DefaultCommitEvery = 100_000
)

// Postprocessor runs post-load passes against a store.
type Postprocessor struct {
	store       *storage.Store
	workers     int
	chunkSize   int
	commitEvery int
	indexed     map[string]bool
	exact       map[string]bool
	logger      *slog.Logger

	// walk collects the nodes reachable from a category root.
	walk func(ctx context.Context, root int64) ([]int64, error)
}

// Option configures a Postprocessor.
type Option func(*Postprocessor)

// WithWorkers sets the size of both worker pools.
func WithWorkers(n int) Option {
	return func(p *Postprocessor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithChunkSize sets the number of nodes tagged per write transaction.
func WithChunkSize(n int) Option {
	return func(p *Postprocessor) {
		if n > 0 {
			p.chunkSize = n
		}
	}
}

// WithCommitEvery sets how many nodes a traversal visits before it reopens
// its read snapshot.
func WithCommitEvery(n int) Option {
	return func(p *Postprocessor) {
		if n > 0 {
			p.commitEvery = n
		}
	}
}

// WithIndexedProperties names the node properties kept in the full-text
// index. Category tagging refreshes the entry when category is among them.
func WithIndexedProperties(names ...string) Option {
	return func(p *Postprocessor) {
		for _, n := range names {
			p.indexed[n] = true
		}
	}
}

// WithExactProperties names the node properties kept in the exact index.
func WithExactProperties(names ...string) Option {
	return func(p *Postprocessor) {
		for _, n := range names {
			p.exact[n] = true
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Postprocessor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a Postprocessor.
func New(store *storage.Store, opts ...Option) *Postprocessor {
	p := &Postprocessor{
		store:       store,
		workers:     runtime.GOMAXPROCS(0),
		chunkSize:   DefaultChunkSize,
		commitEvery: DefaultCommitEvery,
		indexed:     make(map[string]bool),
		exact:       make(map[string]bool),
		logger:      slog.Default(),
	}
	p.walk = p.traverse
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// MaterializeExistentials adds a shortcut edge subject --P--> F for every
// edge subject --rel--> R where R is a someValuesFrom restriction on P with
// filler F. Shortcut edges are named by P's fragment and marked convenience.
// It returns the number of edges created.
func (p *Postprocessor) MaterializeExistentials(ctx context.Context) (int, error) {
	start := time.Now()

	var restrictions []int64
	err := p.store.View(ctx, func(tx *storage.Tx) error {
		var err error
		restrictions, err = tx.NodesWithLabel(vocab.LabelSomeValuesFrom)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("find restrictions: %w", err)
	}

	created := 0
	for _, r := range restrictions {
		if err := ctx.Err(); err != nil {
			return created, err
		}
		err := p.store.Update(ctx, func(tx *storage.Tx) error {
			n, err := materialize(tx, r)
			created += n
			return err
		})
		if err != nil {
			return created, fmt.Errorf("materialize restriction %d: %w", r, err)
		}
	}

	p.logger.Info("Materialized existential restrictions",
		"restrictions", len(restrictions), "edges", created, "elapsed", time.Since(start))
	return created, nil
}

func materialize(tx *storage.Tx, restriction int64) (int, error) {
	props, err := tx.Outgoing(restriction, vocab.RelProperty)
	if err != nil || len(props) == 0 {
		return 0, err
	}
	fillers, err := tx.Outgoing(restriction, vocab.RelClass)
	if err != nil || len(fillers) == 0 {
		return 0, err
	}
	property, filler := props[0].End, fillers[0].End

	iri, _, err := tx.NodeProperty(property, vocab.PropIRI)
	if err != nil {
		return 0, err
	}
	name, ok, err := tx.NodeProperty(property, vocab.PropFragment)
	if err != nil {
		return 0, err
	}
	relType, isString := name.(string)
	if !ok || !isString {
		relType, _ = iri.(string)
	}
	if relType == "" {
		return 0, nil
	}

	incoming, err := tx.Incoming(restriction)
	if err != nil {
		return 0, err
	}
	created := 0
	for _, in := range incoming {
		id, isNew, err := tx.CreateRelationship(in.Start, filler, relType)
		if err != nil {
			return created, err
		}
		if !isNew {
			continue
		}
		created++
		if err := tx.SetRelationshipProperty(id, vocab.PropIRI, iri); err != nil {
			return created, err
		}
		if err := tx.SetRelationshipProperty(id, vocab.PropConvenience, true); err != nil {
			return created, err
		}
		if err := tx.SetRelationshipProperty(id, vocab.PropOwlType, in.Type); err != nil {
			return created, err
		}
	}
	return created, nil
}

// PropagateCategories tags every node reachable from each root with the
// root's category, as a repeatable category property and a label. Reachable
// means subClassOf or type edges followed backwards, and equivalentClass or
// sameAs edges in either direction. It returns the number of nodes tagged per
// category.
func (p *Postprocessor) PropagateCategories(ctx context.Context, categories map[string]string) (map[string]int, error) {
	start := time.Now()

	keys := make([]string, 0, len(categories))
	for k := range categories {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	roots := make([]int64, len(keys))
	err := p.store.View(ctx, func(tx *storage.Tx) error {
		var missing []string
		for i, k := range keys {
			id, ok, err := tx.NodeID(k)
			if err != nil {
				return err
			}
			if !ok {
				missing = append(missing, k)
				continue
			}
			roots[i] = id
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrUnresolvedCategoryRoot, strings.Join(missing, ", "))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Traversal stage.
	reached := make([][]int64, len(keys))
	traversals := newPool(p.workers)
	for i := range keys {
		err := traversals.Go(ctx, func() {
			nodes, err := p.walk(ctx, roots[i])
			if err != nil {
				p.logger.Error("Category traversal failed",
					"category", categories[keys[i]], "root", keys[i], "error", err)
				return
			}
			reached[i] = nodes
		})
		if err != nil {
			traversals.Wait()
			return nil, err
		}
	}
	traversals.Wait()

	merged := make(map[string]map[int64]bool)
	for i, k := range keys {
		name := categories[k]
		if merged[name] == nil {
			merged[name] = make(map[int64]bool)
		}
		for _, id := range reached[i] {
			merged[name][id] = true
		}
	}

	// Tagging stage.
	var (
		mu       sync.Mutex
		firstErr error
	)
	counts := make(map[string]int, len(merged))
	tagging := newPool(p.workers)
	for _, name := range sortedNames(merged) {
		ids := sortedIDs(merged[name])
		counts[name] = len(ids)
		for chunk, from := 0, 0; from < len(ids); chunk, from = chunk+1, from+p.chunkSize {
			part := ids[from:min(from+p.chunkSize, len(ids))]
			err := tagging.Go(ctx, func() {
				if err := p.tag(ctx, name, part); err != nil {
					p.logger.Error("Category tagging failed", "category", name, "chunk", chunk, "error", err)
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("tag category %s chunk %d: %w", name, chunk, err)
					}
					mu.Unlock()
					return
				}
				p.logger.Debug("Tagged category chunk", "category", name, "chunk", chunk, "nodes", len(part))
			})
			if err != nil {
				tagging.Wait()
				return nil, err
			}
		}
	}
	tagging.Wait()
	if firstErr != nil {
		return nil, firstErr
	}

	p.logger.Info("Propagated categories",
		"roots", len(keys), "categories", len(counts), "elapsed", time.Since(start))
	return counts, nil
}

// traverse walks depth first from root, visiting each node once. The read
// snapshot is reopened every commitEvery visited nodes.
func (p *Postprocessor) traverse(ctx context.Context, root int64) ([]int64, error) {
	snap, err := p.store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { snap.Release() }()

	visited := map[int64]bool{root: true}
	out := []int64{root}
	stack := []int64{root}
	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		next, err := neighbours(snap, n)
		if err != nil {
			return nil, err
		}
		for _, m := range next {
			if visited[m] {
				continue
			}
			visited[m] = true
			out = append(out, m)
			stack = append(stack, m)

			if len(out)%p.commitEvery == 0 {
				snap.Release()
				if snap, err = p.store.Snapshot(ctx); err != nil {
					return nil, err
				}
			}
		}
	}
	return out, nil
}

func neighbours(tx *storage.Tx, n int64) ([]int64, error) {
	in, err := tx.Incoming(n, vocab.RelSubClassOf, vocab.RelType, vocab.RelEquivalentClass, vocab.RelSameAs)
	if err != nil {
		return nil, err
	}
	out, err := tx.Outgoing(n, vocab.RelEquivalentClass, vocab.RelSameAs)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(in)+len(out))
	for _, r := range in {
		ids = append(ids, r.Start)
	}
	for _, r := range out {
		ids = append(ids, r.End)
	}
	return ids, nil
}

func (p *Postprocessor) tag(ctx context.Context, category string, ids []int64) error {
	return p.store.Update(ctx, func(tx *storage.Tx) error {
		for _, id := range ids {
			existing, _, err := tx.NodeProperty(id, vocab.PropCategory)
			if err != nil {
				return err
			}
			merged := graph.Merge(existing, category)
			if err := tx.SetNodeProperty(id, vocab.PropCategory, merged); err != nil {
				return err
			}
			if p.exact[vocab.PropCategory] {
				if err := tx.IndexExact(id, vocab.PropCategory, merged); err != nil {
					return err
				}
			}
			if p.indexed[vocab.PropCategory] {
				if err := tx.IndexFullText(id, vocab.PropCategory, merged); err != nil {
					return err
				}
			}
			if _, err := tx.AddLabel(id, category); err != nil {
				return err
			}
		}
		return nil
	})
}

func sortedNames(m map[string]map[int64]bool) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortedIDs(set map[int64]bool) []int64 {
	ids := make([]int64, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
