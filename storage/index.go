package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/c360studio/owlgraph/graph"
)

// ExactSuffix is appended to a property name to form its exact index name.
const ExactSuffix = "_exact"

// ExactIndexName returns the exact index name for a property.
func ExactIndexName(property string) string { return property + ExactSuffix }

// SearchHit is one full-text match.
type SearchHit struct {
	NodeID   int64
	Property string
	Text     string
}

// IndexExact replaces the exact index entries of (node, property) with the
// elements of value.
func (t *Tx) IndexExact(node int64, property string, value any) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	name := ExactIndexName(property)
	if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM exact_index WHERE node_id = ? AND name = ?", node, name); err != nil {
		return fmt.Errorf("clear exact index: %w", err)
	}
	for _, e := range graph.Elements(value) {
		_, err := t.tx.ExecContext(t.ctx,
			"INSERT INTO exact_index (name, value, node_id) VALUES (?, ?, ?) ON CONFLICT DO NOTHING",
			name, graph.FormatElement(e), node)
		if err != nil {
			return fmt.Errorf("insert exact index: %w", err)
		}
	}
	return nil
}

// LookupExact returns the nodes whose property has an element equal to value,
// ascending.
func (t *Tx) LookupExact(property, value string) ([]int64, error) {
	return t.queryIDs(
		"SELECT node_id FROM exact_index WHERE name = ? AND value = ? ORDER BY node_id",
		ExactIndexName(property), value)
}

// IndexFullText replaces the full-text document of (node, property) with the
// text of value.
func (t *Tx) IndexFullText(node int64, property string, value any) error {
	if err := t.checkWritable(); err != nil {
		return err
	}
	parts := make([]string, 0)
	for _, e := range graph.Elements(value) {
		parts = append(parts, graph.FormatElement(e))
	}
	text := strings.Join(parts, " ")

	var docID int64
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT id FROM fulltext_docs WHERE node_id = ? AND name = ?", node, property).Scan(&docID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		res, err := t.tx.ExecContext(t.ctx, "INSERT INTO fulltext_docs (node_id, name) VALUES (?, ?)", node, property)
		if err != nil {
			return fmt.Errorf("insert fulltext doc: %w", err)
		}
		if docID, err = res.LastInsertId(); err != nil {
			return fmt.Errorf("fulltext doc id: %w", err)
		}
	case err != nil:
		return fmt.Errorf("query fulltext doc: %w", err)
	default:
		if _, err := t.tx.ExecContext(t.ctx, "DELETE FROM fulltext WHERE rowid = ?", docID); err != nil {
			return fmt.Errorf("clear fulltext: %w", err)
		}
	}

	if _, err := t.tx.ExecContext(t.ctx, "INSERT INTO fulltext (rowid, text) VALUES (?, ?)", docID, text); err != nil {
		return fmt.Errorf("insert fulltext: %w", err)
	}
	return nil
}

// Search runs an FTS5 query over indexed properties, best matches first.
func (t *Tx) Search(query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := t.tx.QueryContext(t.ctx, `
SELECT d.node_id, d.name, f.text
FROM fulltext f
JOIN fulltext_docs d ON d.id = f.rowid
WHERE fulltext MATCH ?
ORDER BY rank, d.node_id
LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.NodeID, &h.Property, &h.Text); err != nil {
			return nil, fmt.Errorf("scan hit: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
