package graph

import "strings"

// stopWords is the Lucene English stop-word set.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "but": true, "by": true, "for": true, "if": true, "in": true,
	"into": true, "is": true, "it": true, "no": true, "not": true, "of": true,
	"on": true, "or": true, "such": true, "that": true, "the": true,
	"their": true, "then": true, "there": true, "these": true, "they": true,
	"this": true, "to": true, "was": true, "will": true, "with": true,
}

// IsIgnorable reports whether a string property value carries no information:
// empty, whitespace only, or a stop word.
func IsIgnorable(s string) bool {
	t := strings.TrimSpace(s)
	if t == "" {
		return true
	}
	return stopWords[strings.ToLower(t)]
}

// Clean normalizes v and strips ignorable strings. It returns false when
// nothing is left to store.
func Clean(v any) (any, bool, error) {
	n, err := Normalize(v)
	if err != nil {
		return nil, false, err
	}
	switch x := n.(type) {
	case string:
		if IsIgnorable(x) {
			return nil, false, nil
		}
	case []string:
		kept := make([]string, 0, len(x))
		for _, s := range x {
			if !IsIgnorable(s) {
				kept = append(kept, s)
			}
		}
		if len(kept) == 0 {
			return nil, false, nil
		}
		return kept, true, nil
	case []bool:
		if len(x) == 0 {
			return nil, false, nil
		}
	case []int64:
		if len(x) == 0 {
			return nil, false, nil
		}
	case []float64:
		if len(x) == 0 {
			return nil, false, nil
		}
	}
	return n, true, nil
}
