package engine

import (
	"log/slog"
	"sync/atomic"

	"github.com/c360studio/owlgraph/graph"
)

// pairwise links every unordered pair of nodes once. An existing edge in
// either direction is reused; otherwise a→b is created.
func pairwise(
	nodes []int64,
	relType string,
	get func(start, end int64, relType string) (int64, bool),
	create func(start, end int64, relType string) (int64, error),
) ([]int64, error) {
	pairs := graph.Pairs(nodes)
	ids := make([]int64, 0, len(pairs))
	for _, p := range pairs {
		if id, ok := get(p[0], p[1], relType); ok {
			ids = append(ids, id)
			continue
		}
		if id, ok := get(p[1], p[0], relType); ok {
			ids = append(ids, id)
			continue
		}
		id, err := create(p[0], p[1], relType)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// clean filters a property value before a write. ok is false when the value
// must be dropped: ignorable values silently, unsupported values with a
// warning and a skip count.
func clean(logger *slog.Logger, skipped *atomic.Int64, name string, value any) (any, bool) {
	v, ok, err := graph.Clean(value)
	if err != nil {
		skipped.Add(1)
		logger.Warn("Skipping property value", "property", name, "error", err)
		return nil, false
	}
	return v, ok
}
