// Package engine implements the Graph Port over the SQLite store in two
// performance tiers.
//
// Batch keeps the whole graph in memory under one lock and writes it, then
// indexes it, on Shutdown; it requires an empty store. Transactional commits
// every mutation in its own store transaction and keeps indexes current, so
// it can extend an existing graph.
package engine

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/identity"
)

// Engine errors.
var (
	// ErrStoreNotEmpty is returned by NewBatch when the store already holds nodes.
	ErrStoreNotEmpty = errors.New("batch engine requires an empty store")

	// ErrShutdown is returned by operations on an engine after Shutdown.
	ErrShutdown = errors.New("engine shut down")
)

// Kind selects an engine implementation.
type Kind string

const (
	KindBatch         Kind = "batch"
	KindTransactional Kind = "transactional"
)

// Engine is a Graph Port that also reports per-item data errors it skipped.
type Engine interface {
	graph.Graph
	// Skipped returns the number of property writes dropped because the
	// value was unsupported.
	Skipped() int64
}

type options struct {
	indexed        []string
	exact          []string
	identity       identity.Kind
	spillThreshold int
	spillDir       string
	logger         *slog.Logger
}

// Option configures an engine.
type Option func(*options)

// WithIndexedProperties sets the node properties copied to the full-text index.
func WithIndexedProperties(names ...string) Option {
	return func(o *options) { o.indexed = append(o.indexed, names...) }
}

// WithExactProperties sets the node properties copied to the exact index.
func WithExactProperties(names ...string) Option {
	return func(o *options) { o.exact = append(o.exact, names...) }
}

// WithIdentity selects the identity map implementation. threshold is the
// in-memory key budget of disk maps; dir holds their per-engine scratch files
// ("" uses the system temp dir), which are removed on Shutdown.
func WithIdentity(kind identity.Kind, threshold int, dir string) Option {
	return func(o *options) {
		o.identity = kind
		o.spillThreshold = threshold
		o.spillDir = dir
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{identity: identity.KindMemory, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) nodeMap() (identity.Map[string], error) {
	if o.identity != identity.KindDisk {
		return identity.NewMemory[string](), nil
	}
	m, err := identity.NewDisk[string](o.spillDir, o.spillThreshold, identity.StringKey, o.logger)
	if err != nil {
		return nil, fmt.Errorf("node identity map: %w", err)
	}
	return m, nil
}

func (o options) relationshipMap() (identity.Map[identity.Relationship], error) {
	if o.identity != identity.KindDisk {
		return identity.NewMemory[identity.Relationship](), nil
	}
	m, err := identity.NewDisk[identity.Relationship](o.spillDir, o.spillThreshold, identity.RelationshipKey, o.logger)
	if err != nil {
		return nil, fmt.Errorf("relationship identity map: %w", err)
	}
	return m, nil
}

func set(names []string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}
