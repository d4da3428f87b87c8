package graph

import "errors"

// Common graph errors.
var (
	// ErrUnsupportedValue is returned for property values outside the value model.
	ErrUnsupportedValue = errors.New("unsupported property value")

	// ErrNodeNotFound is returned when a node id is unknown.
	ErrNodeNotFound = errors.New("node not found")

	// ErrRelationshipNotFound is returned when a relationship id is unknown.
	ErrRelationshipNotFound = errors.New("relationship not found")
)
