package storage

const schema = `
CREATE TABLE IF NOT EXISTS nodes (
    id INTEGER PRIMARY KEY,
    key TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS node_labels (
    node_id INTEGER NOT NULL,
    label TEXT NOT NULL,
    PRIMARY KEY (node_id, label)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_node_labels_label ON node_labels(label, node_id);

CREATE TABLE IF NOT EXISTS node_properties (
    node_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (node_id, name)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS relationships (
    id INTEGER PRIMARY KEY,
    start_id INTEGER NOT NULL,
    end_id INTEGER NOT NULL,
    type TEXT NOT NULL,
    UNIQUE (start_id, end_id, type)
);

CREATE INDEX IF NOT EXISTS idx_relationships_end ON relationships(end_id, type);
CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type);

CREATE TABLE IF NOT EXISTS relationship_properties (
    rel_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    kind TEXT NOT NULL,
    value TEXT NOT NULL,
    PRIMARY KEY (rel_id, name)
) WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS exact_index (
    name TEXT NOT NULL,
    value TEXT NOT NULL,
    node_id INTEGER NOT NULL,
    PRIMARY KEY (name, value, node_id)
) WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS idx_exact_index_node ON exact_index(node_id, name);

CREATE TABLE IF NOT EXISTS fulltext_docs (
    id INTEGER PRIMARY KEY,
    node_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    UNIQUE (node_id, name)
);

CREATE VIRTUAL TABLE IF NOT EXISTS fulltext USING fts5(text, tokenize = 'unicode61');
`
