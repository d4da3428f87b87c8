package storage

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/c360studio/owlgraph/graph"
)

// encodeValue stores a normalized property value as its element kind plus
// JSON text.
func encodeValue(v any) (graph.Kind, string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", "", fmt.Errorf("marshal property value: %w", err)
	}
	return graph.KindOf(v), string(data), nil
}

func decodeValue(kind graph.Kind, text string) (any, error) {
	array := strings.HasPrefix(text, "[")
	var (
		v   any
		err error
	)
	switch kind {
	case graph.KindBool:
		if array {
			var out []bool
			err = json.Unmarshal([]byte(text), &out)
			v = out
		} else {
			var out bool
			err = json.Unmarshal([]byte(text), &out)
			v = out
		}
	case graph.KindInt:
		if array {
			var out []int64
			err = json.Unmarshal([]byte(text), &out)
			v = out
		} else {
			var out int64
			err = json.Unmarshal([]byte(text), &out)
			v = out
		}
	case graph.KindFloat:
		if array {
			var out []float64
			err = json.Unmarshal([]byte(text), &out)
			v = out
		} else {
			var out float64
			err = json.Unmarshal([]byte(text), &out)
			v = out
		}
	case graph.KindString:
		if array {
			var out []string
			err = json.Unmarshal([]byte(text), &out)
			v = out
		} else {
			var out string
			err = json.Unmarshal([]byte(text), &out)
			v = out
		}
	default:
		return nil, fmt.Errorf("unknown value kind %q", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("unmarshal property value: %w", err)
	}
	return v, nil
}
