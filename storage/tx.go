package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/c360studio/owlgraph/graph"
)

// Relationship is a stored edge.
type Relationship struct {
	ID    int64
	Start int64
	End   int64
	Type  string
}

// Tx is a read snapshot or a write transaction.
type Tx struct {
	tx       *sql.Tx
	ctx      context.Context
	writable bool
	released bool
}

// Release ends a read snapshot. It is a no-op for write transactions, which
// the store commits or rolls back.
func (t *Tx) Release() {
	if t == nil || t.writable || t.released {
		return
	}
	t.released = true
	t.tx.Rollback()
}

func (t *Tx) checkWritable() error {
	if !t.writable {
		return ErrReadOnly
	}
	return nil
}

// CreateNode returns the id of the node with key, inserting it when absent.
// created reports whether a new node was inserted.
func (t *Tx) CreateNode(key string) (id int64, created bool, err error) {
	if err := t.checkWritable(); err != nil {
		return 0, false, err
	}
	if id, ok, err := t.NodeID(key); err != nil || ok {
		return id, false, err
	}
	res, err := t.tx.ExecContext(t.ctx, "INSERT INTO nodes (key) VALUES (?)", key)
	if err != nil {
		return 0, false, fmt.Errorf("insert node: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("node id: %w", err)
	}
	return id, true, nil
}

// InsertNode writes a node with a caller-assigned id.
func (t *Tx) InsertNode(id int64, key string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(t.ctx, "INSERT INTO nodes (id, key) VALUES (?, ?)", id, key); err != nil {
		return fmt.Errorf("insert node %d: %w", id, err)
	}
	return nil
}

// NodeID looks a node up by key.
func (t *Tx) NodeID(key string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(t.ctx, "SELECT id FROM nodes WHERE key = ?", key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query node: %w", err)
	}
	return id, true, nil
}

// NodeKey returns the key of a node.
func (t *Tx) NodeKey(id int64) (string, error) {
	var key string
	err := t.tx.QueryRowContext(t.ctx, "SELECT key FROM nodes WHERE id = ?", id).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query node key: %w", err)
	}
	return key, nil
}

// ForEachNode calls fn for every node in ascending id order.
func (t *Tx) ForEachNode(fn func(id int64, key string) error) error {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT id, key FROM nodes ORDER BY id")
	if err != nil {
		return fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id  int64
			key string
		)
		if err := rows.Scan(&id, &key); err != nil {
			return fmt.Errorf("scan node: %w", err)
		}
		if err := fn(id, key); err != nil {
			return err
		}
	}
	return rows.Err()
}

// AddLabel adds a label to a node.
func (t *Tx) AddLabel(node int64, label string) (added bool, err error) {
	if err := t.checkWritable(); err != nil {
		return false, err
	}
	res, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO node_labels (node_id, label) VALUES (?, ?) ON CONFLICT DO NOTHING", node, label)
	if err != nil {
		return false, fmt.Errorf("add label: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// SetLabel replaces a node's labels with one label.
func (t *Tx) SetLabel(node int64, label string) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM node_labels WHERE node_id = ?", node); err != nil {
		return fmt.Errorf("clear labels: %w", err)
	}
	_, err := t.AddLabel(node, label)
	return err
}

// Labels returns a node's labels, sorted.
func (t *Tx) Labels(node int64) ([]string, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT label FROM node_labels WHERE node_id = ? ORDER BY label", node)
	if err != nil {
		return nil, fmt.Errorf("query labels: %w", err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var label string
		if err := rows.Scan(&label); err != nil {
			return nil, fmt.Errorf("scan label: %w", err)
		}
		labels = append(labels, label)
	}
	return labels, rows.Err()
}

// NodesWithLabel returns the ids of nodes carrying label, ascending.
func (t *Tx) NodesWithLabel(label string) ([]int64, error) {
	return t.queryIDs("SELECT node_id FROM node_labels WHERE label = ? ORDER BY node_id", label)
}

// SetNodeProperty writes a normalized value, replacing any previous one.
func (t *Tx) SetNodeProperty(node int64, name string, value any) error {
	return t.setProperty("node_properties", "node_id", node, name, value)
}

// NodeProperty reads one node property.
func (t *Tx) NodeProperty(node int64, name string) (any, bool, error) {
	return t.property("node_properties", "node_id", node, name)
}

// NodeProperties reads every property of a node.
func (t *Tx) NodeProperties(node int64) (map[string]any, error) {
	return t.properties("node_properties", "node_id", node)
}

// CreateRelationship returns the id of the (start, end, type) relationship,
// inserting it when absent.
func (t *Tx) CreateRelationship(start, end int64, relType string) (id int64, created bool, err error) {
	if err := t.checkWritable(); err != nil {
		return 0, false, err
	}
	if id, ok, err := t.RelationshipID(start, end, relType); err != nil || ok {
		return id, false, err
	}
	res, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO relationships (start_id, end_id, type) VALUES (?, ?, ?)", start, end, relType)
	if err != nil {
		return 0, false, fmt.Errorf("insert relationship: %w", err)
	}
	id, err = res.LastInsertId()
	if err != nil {
		return 0, false, fmt.Errorf("relationship id: %w", err)
	}
	return id, true, nil
}

// InsertRelationship writes a relationship with a caller-assigned id.
func (t *Tx) InsertRelationship(r Relationship) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(t.ctx,
		"INSERT INTO relationships (id, start_id, end_id, type) VALUES (?, ?, ?, ?)", r.ID, r.Start, r.End, r.Type)
	if err != nil {
		return fmt.Errorf("insert relationship %d: %w", r.ID, err)
	}
	return nil
}

// RelationshipID looks a relationship up by endpoints and type.
func (t *Tx) RelationshipID(start, end int64, relType string) (int64, bool, error) {
	var id int64
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT id FROM relationships WHERE start_id = ? AND end_id = ? AND type = ?", start, end, relType).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query relationship: %w", err)
	}
	return id, true, nil
}

// Relationship reads a relationship by id.
func (t *Tx) Relationship(id int64) (Relationship, error) {
	r := Relationship{ID: id}
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT start_id, end_id, type FROM relationships WHERE id = ?", id).Scan(&r.Start, &r.End, &r.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return Relationship{}, ErrNotFound
	}
	if err != nil {
		return Relationship{}, fmt.Errorf("query relationship: %w", err)
	}
	return r, nil
}

// Outgoing returns relationships starting at node, optionally restricted to
// types, ordered by id.
func (t *Tx) Outgoing(node int64, types ...string) ([]Relationship, error) {
	return t.adjacent("start_id", node, types)
}

// Incoming returns relationships ending at node, optionally restricted to
// types, ordered by id.
func (t *Tx) Incoming(node int64, types ...string) ([]Relationship, error) {
	return t.adjacent("end_id", node, types)
}

func (t *Tx) adjacent(column string, node int64, types []string) ([]Relationship, error) {
	query := "SELECT id, start_id, end_id, type FROM relationships WHERE " + column + " = ?"
	args := []any{node}
	if len(types) > 0 {
		query += " AND type IN (?" + strings.Repeat(", ?", len(types)-1) + ")"
		for _, typ := range types {
			args = append(args, typ)
		}
	}
	query += " ORDER BY id"
	return t.queryRelationships(query, args...)
}

// ForEachRelationship calls fn for every relationship in ascending id order.
func (t *Tx) ForEachRelationship(fn func(r Relationship) error) error {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT id, start_id, end_id, type FROM relationships ORDER BY id")
	if err != nil {
		return fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.Start, &r.End, &r.Type); err != nil {
			return fmt.Errorf("scan relationship: %w", err)
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return rows.Err()
}

// SetRelationshipProperty writes a normalized value, replacing any previous one.
func (t *Tx) SetRelationshipProperty(rel int64, name string, value any) error {
	return t.setProperty("relationship_properties", "rel_id", rel, name, value)
}

// RelationshipProperty reads one relationship property.
func (t *Tx) RelationshipProperty(rel int64, name string) (any, bool, error) {
	return t.property("relationship_properties", "rel_id", rel, name)
}

// RelationshipProperties reads every property of a relationship.
func (t *Tx) RelationshipProperties(rel int64) (map[string]any, error) {
	return t.properties("relationship_properties", "rel_id", rel)
}

func (t *Tx) setProperty(table, owner string, id int64, name string, value any) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	kind, text, err := encodeValue(value)
	if err != nil {
		return err
	}
	_, err = t.tx.ExecContext(t.ctx,
		"INSERT INTO "+table+" ("+owner+", name, kind, value) VALUES (?, ?, ?, ?) "+
			"ON CONFLICT ("+owner+", name) DO UPDATE SET kind = excluded.kind, value = excluded.value",
		id, name, string(kind), text)
	if err != nil {
		return fmt.Errorf("set property %s: %w", name, err)
	}
	return nil
}

func (t *Tx) property(table, owner string, id int64, name string) (any, bool, error) {
	var kind, text string
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT kind, value FROM "+table+" WHERE "+owner+" = ? AND name = ?", id, name).Scan(&kind, &text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get property %s: %w", name, err)
	}
	v, err := decodeValue(graph.Kind(kind), text)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (t *Tx) properties(table, owner string, id int64) (map[string]any, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT name, kind, value FROM "+table+" WHERE "+owner+" = ?", id)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	props := make(map[string]any)
	for rows.Next() {
		var name, kind, text string
		if err := rows.Scan(&name, &kind, &text); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		v, err := decodeValue(graph.Kind(kind), text)
		if err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		props[name] = v
	}
	return props, rows.Err()
}

// PropertyNames returns the distinct node property names, sorted.
func (t *Tx) PropertyNames() ([]string, error) {
	rows, err := t.tx.QueryContext(t.ctx, "SELECT DISTINCT name FROM node_properties")
	if err != nil {
		return nil, fmt.Errorf("query property names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names, rows.Err()
}

func (t *Tx) queryIDs(query string, args ...any) ([]int64, error) {
	rows, err := t.tx.QueryContext(t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (t *Tx) queryRelationships(query string, args ...any) ([]Relationship, error) {
	rows, err := t.tx.QueryContext(t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query relationships: %w", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		if err := rows.Scan(&r.ID, &r.Start, &r.End, &r.Type); err != nil {
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}
