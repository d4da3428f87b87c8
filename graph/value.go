package graph

import (
	"fmt"
	"strconv"
)

// Kind is the element type of a property value.
type Kind string

const (
	KindBool   Kind = "bool"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
	KindString Kind = "string"
)

// Normalize converts v to one of bool, int64, float64, string or a slice of
// those. Other integer and float widths are widened.
func Normalize(v any) (any, error) {
	switch x := v.(type) {
	case bool, int64, float64, string, []bool, []int64, []float64, []string:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case float32:
		return float64(x), nil
	case []int:
		out := make([]int64, len(x))
		for i, n := range x {
			out[i] = int64(n)
		}
		return out, nil
	case []int32:
		out := make([]int64, len(x))
		for i, n := range x {
			out[i] = int64(n)
		}
		return out, nil
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedValue, v)
	}
}

// KindOf returns the element kind of a normalized value.
func KindOf(v any) Kind {
	switch v.(type) {
	case bool, []bool:
		return KindBool
	case int64, []int64:
		return KindInt
	case float64, []float64:
		return KindFloat
	default:
		return KindString
	}
}

// IsArray reports whether a normalized value is multi-valued.
func IsArray(v any) bool {
	switch v.(type) {
	case []bool, []int64, []float64, []string:
		return true
	default:
		return false
	}
}

// Elements flattens a normalized value into its elements.
func Elements(v any) []any {
	switch x := v.(type) {
	case nil:
		return nil
	case []bool:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []int64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []float64:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	case []string:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = e
		}
		return out
	default:
		return []any{x}
	}
}

// FormatElement renders a scalar in its canonical string form.
func FormatElement(e any) string {
	switch x := e.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

// Merge combines an existing property value with an incoming one.
//
// Values behave like sets: an incoming element already present is dropped.
// Same-kind values append, turning a scalar into a two-element array. When
// kinds differ every element is coerced to its string form and the result is
// a []string.
func Merge(existing, incoming any) any {
	if existing == nil {
		return incoming
	}

	ek, ik := KindOf(existing), KindOf(incoming)
	if ek != ik {
		var out []string
		seen := make(map[string]bool)
		for _, e := range append(Elements(existing), Elements(incoming)...) {
			s := FormatElement(e)
			if !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
		return out
	}

	elems := Elements(existing)
	seen := make(map[any]bool, len(elems))
	for _, e := range elems {
		seen[e] = true
	}
	added := false
	for _, e := range Elements(incoming) {
		if !seen[e] {
			seen[e] = true
			elems = append(elems, e)
			added = true
		}
	}
	if !added {
		return existing
	}
	return fromElements(ek, elems)
}

func fromElements(kind Kind, elems []any) any {
	switch kind {
	case KindBool:
		out := make([]bool, len(elems))
		for i, e := range elems {
			out[i] = e.(bool)
		}
		return out
	case KindInt:
		out := make([]int64, len(elems))
		for i, e := range elems {
			out[i] = e.(int64)
		}
		return out
	case KindFloat:
		out := make([]float64, len(elems))
		for i, e := range elems {
			out[i] = e.(float64)
		}
		return out
	default:
		out := make([]string, len(elems))
		for i, e := range elems {
			out[i] = e.(string)
		}
		return out
	}
}

// Equal reports whether two normalized values hold the same elements in the
// same order.
func Equal(a, b any) bool {
	if KindOf(a) != KindOf(b) || IsArray(a) != IsArray(b) {
		return false
	}
	ea, eb := Elements(a), Elements(b)
	if len(ea) != len(eb) {
		return false
	}
	for i := range ea {
		if ea[i] != eb[i] {
			return false
		}
	}
	return true
}
