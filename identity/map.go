// Package identity provides identity maps: the bijection between external
// keys (IRIs, anonymous expression keys, relationship triples) and graph ids.
//
// Creation is at-most-once per key even under concurrent callers: GetOrCreate
// runs the create callback while holding the map's lock, so a second caller
// for the same key observes the first caller's id.
package identity

import (
	"errors"
	"strconv"
	"strings"
)

// ErrClosed is returned by operations on a closed map.
var ErrClosed = errors.New("identity map closed")

// Map is a key → id identity map.
type Map[K comparable] interface {
	// Get returns the id for key, if present.
	Get(key K) (int64, bool)
	// GetOrCreate returns the id for key, calling create exactly once when
	// the key is new.
	GetOrCreate(key K, create func() (int64, error)) (int64, error)
	// Put records an id for key, replacing any previous mapping. Used to
	// hydrate a map from an existing store.
	Put(key K, id int64) error
	// Len returns the number of keys.
	Len() int
	// Close releases resources held by the map.
	Close() error
}

// Relationship identifies an edge by its endpoints and type.
type Relationship struct {
	Start int64
	End   int64
	Type  string
}

// Reverse returns the same relationship with its endpoints swapped.
func (r Relationship) Reverse() Relationship {
	return Relationship{Start: r.End, End: r.Start, Type: r.Type}
}

// String encodes the relationship as "start|end|type".
func (r Relationship) String() string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(r.Start, 10))
	sb.WriteByte('|')
	sb.WriteString(strconv.FormatInt(r.End, 10))
	sb.WriteByte('|')
	sb.WriteString(r.Type)
	return sb.String()
}

// StringKey encodes string keys for disk maps.
func StringKey(s string) string { return s }

// RelationshipKey encodes relationship keys for disk maps.
func RelationshipKey(r Relationship) string { return r.String() }

// Kind selects an identity map implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindDisk   Kind = "disk"
)
