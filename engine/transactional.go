package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/identity"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

// Transactional is the incremental Graph Port engine. Every mutation commits
// in its own store transaction, and indexed properties are refreshed in the
// same transaction as the write.
type Transactional struct {
	ctx     context.Context
	store   *storage.Store
	nodeIDs identity.Map[string]
	relIDs  identity.Map[identity.Relationship]
	indexed map[string]bool
	exact   map[string]bool
	logger  *slog.Logger
	skipped atomic.Int64
	done    atomic.Bool
}

// NewTransactional creates a transactional engine. Its identity maps are
// hydrated from the nodes and relationships already in the store. ctx bounds
// every store transaction the engine runs.
func NewTransactional(ctx context.Context, store *storage.Store, opts ...Option) (*Transactional, error) {
	o := buildOptions(opts)

	nodeIDs, err := o.nodeMap()
	if err != nil {
		return nil, err
	}
	relIDs, err := o.relationshipMap()
	if err != nil {
		nodeIDs.Close()
		return nil, err
	}

	err = store.View(ctx, func(tx *storage.Tx) error {
		if err := tx.ForEachNode(func(id int64, key string) error {
			return nodeIDs.Put(key, id)
		}); err != nil {
			return err
		}
		return tx.ForEachRelationship(func(r storage.Relationship) error {
			return relIDs.Put(identity.Relationship{Start: r.Start, End: r.End, Type: r.Type}, r.ID)
		})
	})
	if err != nil {
		nodeIDs.Close()
		relIDs.Close()
		return nil, fmt.Errorf("hydrate identity maps: %w", err)
	}
	o.logger.Debug("Hydrated identity maps", "nodes", nodeIDs.Len(), "relationships", relIDs.Len())

	return &Transactional{
		ctx:     ctx,
		store:   store,
		nodeIDs: nodeIDs,
		relIDs:  relIDs,
		indexed: set(o.indexed),
		exact:   set(o.exact),
		logger:  o.logger,
	}, nil
}

func (t *Transactional) Skipped() int64 { return t.skipped.Load() }

func (t *Transactional) update(fn func(tx *storage.Tx) error) error {
	if t.done.Load() {
		return ErrShutdown
	}
	return t.store.Update(t.ctx, fn)
}

func (t *Transactional) view(fn func(tx *storage.Tx) error) error {
	if t.done.Load() {
		return ErrShutdown
	}
	return t.store.View(t.ctx, fn)
}

func (t *Transactional) CreateNode(key string) (int64, error) {
	if t.done.Load() {
		return 0, ErrShutdown
	}
	return t.nodeIDs.GetOrCreate(key, func() (int64, error) {
		var id int64
		err := t.update(func(tx *storage.Tx) error {
			var err error
			if id, _, err = tx.CreateNode(key); err != nil {
				return err
			}
			if err := tx.SetNodeProperty(id, vocab.PropIRI, key); err != nil {
				return err
			}
			return t.reindex(tx, id, vocab.PropIRI, key)
		})
		return id, err
	})
}

func (t *Transactional) GetNode(key string) (int64, bool) {
	return t.nodeIDs.Get(key)
}

func (t *Transactional) CreateRelationship(start, end int64, relType string) (int64, error) {
	if t.done.Load() {
		return 0, ErrShutdown
	}
	key := identity.Relationship{Start: start, End: end, Type: relType}
	return t.relIDs.GetOrCreate(key, func() (int64, error) {
		var id int64
		err := t.update(func(tx *storage.Tx) error {
			if err := nodeExists(tx, start); err != nil {
				return err
			}
			if err := nodeExists(tx, end); err != nil {
				return err
			}
			var err error
			id, _, err = tx.CreateRelationship(start, end, relType)
			return err
		})
		return id, err
	})
}

func (t *Transactional) GetRelationship(start, end int64, relType string) (int64, bool) {
	return t.relIDs.Get(identity.Relationship{Start: start, End: end, Type: relType})
}

func (t *Transactional) CreateRelationshipsPairwise(nodes []int64, relType string) ([]int64, error) {
	if t.done.Load() {
		return nil, ErrShutdown
	}
	return pairwise(nodes, relType, t.GetRelationship, t.CreateRelationship)
}

func (t *Transactional) SetNodeProperty(node int64, name string, value any) error {
	return t.writeNodeProperty(node, name, value, false)
}

func (t *Transactional) AddNodeProperty(node int64, name string, value any) error {
	return t.writeNodeProperty(node, name, value, true)
}

func (t *Transactional) writeNodeProperty(node int64, name string, value any, merge bool) error {
	v, ok := clean(t.logger, &t.skipped, name, value)
	if !ok {
		return nil
	}
	return t.update(func(tx *storage.Tx) error {
		if err := nodeExists(tx, node); err != nil {
			return err
		}
		if merge {
			existing, _, err := tx.NodeProperty(node, name)
			if err != nil {
				return err
			}
			v = graph.Merge(existing, v)
		}
		if err := tx.SetNodeProperty(node, name, v); err != nil {
			return err
		}
		return t.reindex(tx, node, name, v)
	})
}

func (t *Transactional) GetNodeProperty(node int64, name string) (any, bool, error) {
	var (
		v  any
		ok bool
	)
	err := t.view(func(tx *storage.Tx) error {
		if err := nodeExists(tx, node); err != nil {
			return err
		}
		var err error
		v, ok, err = tx.NodeProperty(node, name)
		return err
	})
	return v, ok, err
}

func (t *Transactional) SetRelationshipProperty(rel int64, name string, value any) error {
	return t.writeRelationshipProperty(rel, name, value, false)
}

func (t *Transactional) AddRelationshipProperty(rel int64, name string, value any) error {
	return t.writeRelationshipProperty(rel, name, value, true)
}

func (t *Transactional) writeRelationshipProperty(rel int64, name string, value any, merge bool) error {
	v, ok := clean(t.logger, &t.skipped, name, value)
	if !ok {
		return nil
	}
	return t.update(func(tx *storage.Tx) error {
		if err := relationshipExists(tx, rel); err != nil {
			return err
		}
		if merge {
			existing, _, err := tx.RelationshipProperty(rel, name)
			if err != nil {
				return err
			}
			v = graph.Merge(existing, v)
		}
		return tx.SetRelationshipProperty(rel, name, v)
	})
}

func (t *Transactional) GetRelationshipProperty(rel int64, name string) (any, bool, error) {
	var (
		v  any
		ok bool
	)
	err := t.view(func(tx *storage.Tx) error {
		if err := relationshipExists(tx, rel); err != nil {
			return err
		}
		var err error
		v, ok, err = tx.RelationshipProperty(rel, name)
		return err
	})
	return v, ok, err
}

func (t *Transactional) SetLabel(node int64, label string) error {
	return t.update(func(tx *storage.Tx) error {
		if err := nodeExists(tx, node); err != nil {
			return err
		}
		return tx.SetLabel(node, label)
	})
}

func (t *Transactional) AddLabel(node int64, label string) error {
	return t.update(func(tx *storage.Tx) error {
		if err := nodeExists(tx, node); err != nil {
			return err
		}
		_, err := tx.AddLabel(node, label)
		return err
	})
}

func (t *Transactional) GetLabels(node int64) ([]string, error) {
	var labels []string
	err := t.view(func(tx *storage.Tx) error {
		if err := nodeExists(tx, node); err != nil {
			return err
		}
		var err error
		labels, err = tx.Labels(node)
		return err
	})
	return labels, err
}

// Shutdown releases the identity maps. Data is already committed and the
// store stays open.
func (t *Transactional) Shutdown(ctx context.Context) error {
	if !t.done.CompareAndSwap(false, true) {
		return nil
	}
	return errors.Join(t.nodeIDs.Close(), t.relIDs.Close())
}

func (t *Transactional) reindex(tx *storage.Tx, node int64, name string, value any) error {
	if t.indexed[name] {
		if err := tx.IndexFullText(node, name, value); err != nil {
			return err
		}
	}
	if t.exact[name] {
		if err := tx.IndexExact(node, name, value); err != nil {
			return err
		}
	}
	return nil
}

func nodeExists(tx *storage.Tx, id int64) error {
	if _, err := tx.NodeKey(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %d", graph.ErrNodeNotFound, id)
		}
		return err
	}
	return nil
}

func relationshipExists(tx *storage.Tx, id int64) error {
	if _, err := tx.Relationship(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %d", graph.ErrRelationshipNotFound, id)
		}
		return err
	}
	return nil
}
