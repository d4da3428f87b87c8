package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/c360studio/owlgraph/graph"
	"github.com/c360studio/owlgraph/storage"
	vocab "github.com/c360studio/owlgraph/vocabulary/owlgraph"
)

// Stats summarizes one export.
type Stats struct {
	Subjects int
	Triples  int
}

// Exporter writes a graph store as RDF.
type Exporter struct {
	store    *storage.Store
	prefixes map[string]string
	logger   *slog.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithPrefixes adds Turtle prefixes, typically the configured curies.
func WithPrefixes(prefixes map[string]string) Option {
	return func(e *Exporter) { e.prefixes = prefixes }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New creates an Exporter over store.
func New(store *storage.Store, opts ...Option) *Exporter {
	e := &Exporter{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

type node struct {
	id  int64
	key string
}

// Export writes every node of one read snapshot to w, in ascending node id
// order with the node's outgoing relationships in its subject block.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format) (Stats, error) {
	var stats Stats
	tw, err := NewWriter(w, format, e.prefixes)
	if err != nil {
		return stats, err
	}

	err = e.store.View(ctx, func(tx *storage.Tx) error {
		var nodes []node
		if err := tx.ForEachNode(func(id int64, key string) error {
			nodes = append(nodes, node{id: id, key: key})
			return nil
		}); err != nil {
			return err
		}
		terms := make(map[int64]Term, len(nodes))
		for _, n := range nodes {
			terms[n.id] = nodeTerm(n.key)
		}

		for _, n := range nodes {
			if err := ctx.Err(); err != nil {
				return err
			}
			triples, err := e.statements(tx, n.id, terms)
			if err != nil {
				return fmt.Errorf("node %s: %w", n.key, err)
			}
			if len(triples) == 0 {
				continue
			}
			if err := tw.WriteSubject(terms[n.id], triples); err != nil {
				return err
			}
			stats.Subjects++
			stats.Triples += len(triples)
		}
		return nil
	})
	if err != nil {
		return stats, err
	}
	if err := tw.Flush(); err != nil {
		return stats, err
	}

	e.logger.Info("Exported graph",
		"format", format,
		"subjects", stats.Subjects,
		"triples", stats.Triples)
	return stats, nil
}

// statements returns the triples whose subject is node: type assertions,
// literal properties, then outgoing relationships.
func (e *Exporter) statements(tx *storage.Tx, id int64, terms map[int64]Term) ([]Triple, error) {
	subject := terms[id]
	var out []Triple

	labels, err := tx.Labels(id)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, label := range labels {
		if iri, ok := typeIRI(label); ok && !seen[iri] {
			seen[iri] = true
			out = append(out, Triple{Subject: subject, Predicate: vocab.RdfType, Object: IRI(iri)})
		}
	}

	props, err := tx.NodeProperties(id)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		predicate, ok := propertyIRI(name)
		if !ok {
			continue
		}
		for _, v := range graph.Elements(props[name]) {
			lit, ok := Literal(v)
			if !ok {
				e.logger.Debug("Skipping unsupported property value", "property", name, "value", v)
				continue
			}
			out = append(out, Triple{Subject: subject, Predicate: predicate, Object: lit})
		}
	}

	rels, err := tx.Outgoing(id)
	if err != nil {
		return nil, err
	}
	for _, r := range rels {
		predicate, err := relationshipIRI(tx, r)
		if err != nil {
			return nil, err
		}
		out = append(out, Triple{Subject: subject, Predicate: predicate, Object: terms[r.End]})
	}
	return out, nil
}

// relationshipIRI returns the standard predicate of r, else the property IRI
// it was translated from, else an owlgraph term named by its type.
func relationshipIRI(tx *storage.Tx, r storage.Relationship) (string, error) {
	if iri, ok := vocab.RelationshipIRI(r.Type); ok {
		return iri, nil
	}
	v, ok, err := tx.RelationshipProperty(r.ID, vocab.PropIRI)
	if err != nil {
		return "", err
	}
	if s, isString := v.(string); ok && isString {
		return s, nil
	}
	return vocab.Namespace + r.Type, nil
}
