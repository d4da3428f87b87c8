package identity

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"sync"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DefaultSpillThreshold is the number of keys kept in memory before a Disk
// map starts writing new keys to SQLite.
const DefaultSpillThreshold = 1_000_000

const diskSchema = `
CREATE TABLE IF NOT EXISTS identity (
    key TEXT PRIMARY KEY,
    id INTEGER NOT NULL
) WITHOUT ROWID;
`

// Disk is an identity map that keeps the first threshold keys in memory and
// spills the rest to a scratch SQLite database.
type Disk[K comparable] struct {
	mu        sync.Mutex
	hot       map[K]int64
	threshold int
	encode    func(K) string
	db        *sql.DB
	path      string
	spilled   int
	closed    bool
	logger    *slog.Logger
}

// NewDisk opens a disk-spilling map backed by a scratch SQLite file created
// in dir ("" uses the system temp dir). Every map gets its own file, which is
// removed on Close. encode must map distinct keys to distinct strings.
func NewDisk[K comparable](dir string, threshold int, encode func(K) string, logger *slog.Logger) (*Disk[K], error) {
	if logger == nil {
		logger = slog.Default()
	}
	if threshold <= 0 {
		threshold = DefaultSpillThreshold
	}

	f, err := os.CreateTemp(dir, "owlgraph-identity-*.db")
	if err != nil {
		return nil, fmt.Errorf("create spill file: %w", err)
	}
	path := f.Name()
	f.Close()

	dsn := url.URL{
		Scheme:   "file",
		Path:     path,
		RawQuery: "_pragma=journal_mode(off)&_pragma=synchronous(off)",
	}
	db, err := sql.Open("sqlite3", dsn.String())
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("open spill database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(diskSchema); err != nil {
		db.Close()
		os.Remove(path)
		return nil, fmt.Errorf("create spill schema: %w", err)
	}

	return &Disk[K]{
		hot:       make(map[K]int64),
		threshold: threshold,
		encode:    encode,
		db:        db,
		path:      path,
		logger:    logger,
	}, nil
}

func (d *Disk[K]) Get(key K) (int64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, false
	}
	id, ok, err := d.lookup(key)
	if err != nil {
		d.logger.Warn("Identity lookup failed", "path", d.path, "error", err)
		return 0, false
	}
	return id, ok
}

func (d *Disk[K]) GetOrCreate(key K, create func() (int64, error)) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0, ErrClosed
	}

	id, ok, err := d.lookup(key)
	if err != nil {
		return 0, err
	}
	if ok {
		return id, nil
	}

	id, err = create()
	if err != nil {
		return 0, err
	}
	if err := d.store(key, id); err != nil {
		return 0, err
	}
	return id, nil
}

func (d *Disk[K]) Put(key K, id int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrClosed
	}
	if _, ok := d.hot[key]; ok {
		d.hot[key] = id
		return nil
	}
	_, ok, err := d.lookup(key)
	if err != nil {
		return err
	}
	if ok {
		if _, err := d.db.Exec("UPDATE identity SET id = ? WHERE key = ?", id, d.encode(key)); err != nil {
			return fmt.Errorf("update spill row: %w", err)
		}
		return nil
	}
	return d.store(key, id)
}

func (d *Disk[K]) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.hot) + d.spilled
}

// Spilled returns the number of keys held on disk.
func (d *Disk[K]) Spilled() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.spilled
}

// Path returns the spill file.
func (d *Disk[K]) Path() string { return d.path }

func (d *Disk[K]) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.hot = nil

	err := d.db.Close()
	if rmErr := os.Remove(d.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
		err = errors.Join(err, rmErr)
	}
	return err
}

// lookup must be called with d.mu held.
func (d *Disk[K]) lookup(key K) (int64, bool, error) {
	if id, ok := d.hot[key]; ok {
		return id, true, nil
	}
	if d.spilled == 0 {
		return 0, false, nil
	}
	var id int64
	err := d.db.QueryRow("SELECT id FROM identity WHERE key = ?", d.encode(key)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("query spill table: %w", err)
	}
	return id, true, nil
}

// store must be called with d.mu held and key must not be present.
func (d *Disk[K]) store(key K, id int64) error {
	if len(d.hot) < d.threshold {
		d.hot[key] = id
		return nil
	}
	if d.spilled == 0 {
		d.logger.Info("Identity map spilling to disk", "path", d.path, "threshold", d.threshold)
	}
	if _, err := d.db.Exec("INSERT INTO identity (key, id) VALUES (?, ?)", d.encode(key), id); err != nil {
		return fmt.Errorf("insert spill row: %w", err)
	}
	d.spilled++
	return nil
}
