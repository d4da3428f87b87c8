package storage

import "errors"

// Common storage errors.
var (
	// ErrNotFound is returned when a node or relationship is not found.
	ErrNotFound = errors.New("entity not found")

	// ErrReadOnly is returned when a write is attempted through a snapshot.
	ErrReadOnly = errors.New("read-only transaction")

	// ErrClosed is returned by operations on a closed store.
	ErrClosed = errors.New("store closed")
)
