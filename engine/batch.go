package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/identity"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

type batchNode struct {
	key    string
	labels map[string]bool
	props  map[string]any
}

type batchRelationship struct {
	rel   storage.Relationship
	props map[string]any
}

// Batch is the bulk Graph Port engine. All state lives in memory under one
// coarse lock until Shutdown writes it to the store.
type Batch struct {
	mu      sync.Mutex
	store   *storage.Store
	nodeIDs identity.Map[string]
	relIDs  identity.Map[identity.Relationship]
	nodes   []*batchNode
	rels    []*batchRelationship
	indexed []string
	exact   []string
	logger  *slog.Logger
	skipped atomic.Int64
	done    bool
}

// NewBatch creates a batch engine over an empty store.
func NewBatch(ctx context.Context, store *storage.Store, opts ...Option) (*Batch, error) {
	o := buildOptions(opts)

	empty, err := store.IsEmpty(ctx)
	if err != nil {
		return nil, err
	}
	if !empty {
		return nil, fmt.Errorf("%w: %s", ErrStoreNotEmpty, store.Path())
	}

	nodeIDs, err := o.nodeMap()
	if err != nil {
		return nil, err
	}
	relIDs, err := o.relationshipMap()
	if err != nil {
		nodeIDs.Close()
		return nil, err
	}

	return &Batch{
		store:   store,
		nodeIDs: nodeIDs,
		relIDs:  relIDs,
		indexed: sortedCopy(o.indexed),
		exact:   sortedCopy(o.exact),
		logger:  o.logger,
	}, nil
}

func (b *Batch) Skipped() int64 { return b.skipped.Load() }

func (b *Batch) CreateNode(key string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return 0, ErrShutdown
	}

	return b.nodeIDs.GetOrCreate(key, func() (int64, error) {
		b.nodes = append(b.nodes, &batchNode{
			key:    key,
			labels: make(map[string]bool),
			props:  map[string]any{vocab.PropIRI: key},
		})
		return int64(len(b.nodes)), nil
	})
}

func (b *Batch) GetNode(key string) (int64, bool) {
	return b.nodeIDs.Get(key)
}

func (b *Batch) CreateRelationship(start, end int64, relType string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return 0, ErrShutdown
	}
	return b.createRelationship(start, end, relType)
}

// createRelationship must be called with b.mu held.
func (b *Batch) createRelationship(start, end int64, relType string) (int64, error) {
	if b.node(start) == nil {
		return 0, fmt.Errorf("%w: %d", graph.ErrNodeNotFound, start)
	}
	if b.node(end) == nil {
		return 0, fmt.Errorf("%w: %d", graph.ErrNodeNotFound, end)
	}
	key := identity.Relationship{Start: start, End: end, Type: relType}
	return b.relIDs.GetOrCreate(key, func() (int64, error) {
		id := int64(len(b.rels) + 1)
		b.rels = append(b.rels, &batchRelationship{
			rel:   storage.Relationship{ID: id, Start: start, End: end, Type: relType},
			props: make(map[string]any),
		})
		return id, nil
	})
}

func (b *Batch) GetRelationship(start, end int64, relType string) (int64, bool) {
	return b.relIDs.Get(identity.Relationship{Start: start, End: end, Type: relType})
}

func (b *Batch) CreateRelationshipsPairwise(nodes []int64, relType string) ([]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil, ErrShutdown
	}
	return pairwise(nodes, relType, b.GetRelationship, b.createRelationship)
}

func (b *Batch) SetNodeProperty(node int64, name string, value any) error {
	return b.writeNodeProperty(node, name, value, false)
}

func (b *Batch) AddNodeProperty(node int64, name string, value any) error {
	return b.writeNodeProperty(node, name, value, true)
}

func (b *Batch) writeNodeProperty(node int64, name string, value any, merge bool) error {
	v, ok := clean(b.logger, &b.skipped, name, value)
	if !ok {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return ErrShutdown
	}
	n := b.node(node)
	if n == nil {
		return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, node)
	}
	if merge {
		v = graph.Merge(n.props[name], v)
	}
	n.props[name] = v
	return nil
}

func (b *Batch) GetNodeProperty(node int64, name string) (any, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil, false, ErrShutdown
	}
	n := b.node(node)
	if n == nil {
		return nil, false, fmt.Errorf("%w: %d", graph.ErrNodeNotFound, node)
	}
	v, ok := n.props[name]
	return v, ok, nil
}

func (b *Batch) SetRelationshipProperty(rel int64, name string, value any) error {
	return b.writeRelationshipProperty(rel, name, value, false)
}

func (b *Batch) AddRelationshipProperty(rel int64, name string, value any) error {
	return b.writeRelationshipProperty(rel, name, value, true)
}

func (b *Batch) writeRelationshipProperty(rel int64, name string, value any, merge bool) error {
	v, ok := clean(b.logger, &b.skipped, name, value)
	if !ok {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return ErrShutdown
	}
	r := b.relationship(rel)
	if r == nil {
		return fmt.Errorf("%w: %d", graph.ErrRelationshipNotFound, rel)
	}
	if merge {
		v = graph.Merge(r.props[name], v)
	}
	r.props[name] = v
	return nil
}

func (b *Batch) GetRelationshipProperty(rel int64, name string) (any, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil, false, ErrShutdown
	}
	r := b.relationship(rel)
	if r == nil {
		return nil, false, fmt.Errorf("%w: %d", graph.ErrRelationshipNotFound, rel)
	}
	v, ok := r.props[name]
	return v, ok, nil
}

func (b *Batch) SetLabel(node int64, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return ErrShutdown
	}
	n := b.node(node)
	if n == nil {
		return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, node)
	}
	n.labels = map[string]bool{label: true}
	return nil
}

func (b *Batch) AddLabel(node int64, label string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return ErrShutdown
	}
	n := b.node(node)
	if n == nil {
		return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, node)
	}
	n.labels[label] = true
	return nil
}

func (b *Batch) GetLabels(node int64) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil, ErrShutdown
	}
	n := b.node(node)
	if n == nil {
		return nil, fmt.Errorf("%w: %d", graph.ErrNodeNotFound, node)
	}
	return sortedKeys(n.labels), nil
}

// Shutdown writes every node and relationship in ascending id order in one
// transaction, then builds the exact and full-text indexes in a second one.
// The store itself stays open.
func (b *Batch) Shutdown(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return nil
	}
	b.done = true

	defer func() {
		b.nodeIDs.Close()
		b.relIDs.Close()
	}()

	start := time.Now()
	err := b.store.Update(ctx, func(tx *storage.Tx) error {
		for i, n := range b.nodes {
			id := int64(i + 1)
			if err := tx.InsertNode(id, n.key); err != nil {
				return err
			}
			for _, label := range sortedKeys(n.labels) {
				if _, err := tx.AddLabel(id, label); err != nil {
					return err
				}
			}
			for _, name := range sortedKeys(n.props) {
				if err := tx.SetNodeProperty(id, name, n.props[name]); err != nil {
					return err
				}
			}
		}
		for _, r := range b.rels {
			if err := tx.InsertRelationship(r.rel); err != nil {
				return err
			}
			for _, name := range sortedKeys(r.props) {
				if err := tx.SetRelationshipProperty(r.rel.ID, name, r.props[name]); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}
	b.logger.Info("Flushed batch graph",
		"nodes", len(b.nodes), "relationships", len(b.rels), "elapsed", time.Since(start))

	if len(b.indexed) == 0 && len(b.exact) == 0 {
		return nil
	}

	start = time.Now()
	err = b.store.Update(ctx, func(tx *storage.Tx) error {
		for i, n := range b.nodes {
			id := int64(i + 1)
			if err := indexNode(tx, id, n.props, b.indexed, b.exact); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("index batch: %w", err)
	}
	b.logger.Info("Indexed batch graph", "nodes", len(b.nodes), "elapsed", time.Since(start))
	return nil
}

func (b *Batch) node(id int64) *batchNode {
	if id < 1 || id > int64(len(b.nodes)) {
		return nil
	}
	return b.nodes[id-1]
}

func (b *Batch) relationship(id int64) *batchRelationship {
	if id < 1 || id > int64(len(b.rels)) {
		return nil
	}
	return b.rels[id-1]
}

func indexNode(tx *storage.Tx, id int64, props map[string]any, indexed, exact []string) error {
	for _, name := range indexed {
		if v, ok := props[name]; ok {
			if err := tx.IndexFullText(id, name, v); err != nil {
				return err
			}
		}
	}
	for _, name := range exact {
		if v, ok := props[name]; ok {
			if err := tx.IndexExact(id, name, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedCopy(s []string) []string {
	out := append([]string(nil), s...)
	sort.Strings(out)
	return out
}
