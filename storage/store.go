// Package storage provides the persisted property-graph store on embedded
// SQLite: nodes with labels and properties, typed relationships, an exact
// index and a full-text index.
//
// Write transactions are serialized by the store (SQLite allows one writer);
// read snapshots run concurrently against the WAL.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"sync/atomic"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// Store is a SQLite-backed property graph.
type Store struct {
	db      *sql.DB
	path    string
	writeMu sync.Mutex
	closed  atomic.Bool
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open opens (creating if needed) the graph database at path.
func Open(path string, opts ...Option) (*Store, error) {
	dsn := url.URL{
		Scheme:   "file",
		Path:     path,
		RawQuery: "_pragma=journal_mode(wal)&_pragma=busy_timeout(10000)&_pragma=synchronous(normal)",
	}
	db, err := sql.Open("sqlite3", dsn.String())
	if err != nil {
		return nil, fmt.Errorf("open graph database: %w", err)
	}

	s := &Store{db: db, path: path, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate graph database: %w", err)
	}

	s.logger.Debug("Opened graph store", "path", path)
	return s, nil
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

// Update runs fn in a write transaction. Write transactions are serialized.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write transaction: %w", err)
	}
	tx := &Tx{tx: sqlTx, ctx: ctx, writable: true}
	if err := fn(tx); err != nil {
		sqlTx.Rollback()
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit write transaction: %w", err)
	}
	return nil
}

// View runs fn against a read snapshot.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	tx, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	defer tx.Release()
	return fn(tx)
}

// Snapshot opens a long-lived read transaction. The caller must Release it.
func (s *Store) Snapshot(ctx context.Context) (*Tx, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read transaction: %w", err)
	}
	return &Tx{tx: sqlTx, ctx: ctx}, nil
}

// IsEmpty reports whether the store holds no nodes.
func (s *Store) IsEmpty(ctx context.Context) (bool, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM nodes)").Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check empty store: %w", err)
	}
	return exists == 0, nil
}

// Counts returns the number of nodes and relationships.
func (s *Store) Counts(ctx context.Context) (nodes, relationships int64, err error) {
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes").Scan(&nodes); err != nil {
		return 0, 0, fmt.Errorf("count nodes: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relationships").Scan(&relationships); err != nil {
		return 0, 0, fmt.Errorf("count relationships: %w", err)
	}
	return nodes, relationships, nil
}
