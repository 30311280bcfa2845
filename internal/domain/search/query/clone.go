package query

import (
	"encoding/json"
	"reflect"
	"slices"
)

// AsMap converts a mapping with string keys into a detached map[string]any.
// Named map types and maps with non-interface values are accepted.
func AsMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return CloneMap(m), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	if rv.IsNil() {
		return map[string]any{}, true
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = Clone(iter.Value().Interface())
	}
	return out, true
}

// CloneMap returns a deep copy of m. A nil map stays nil.
func CloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = Clone(v)
	}
	return out
}

// Clone returns a copy of v that shares no mutable state with it.
// Nested mappings become map[string]any; scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case nil, string, bool, int, int64, float64, json.Number:
		return v
	case map[string]any:
		return CloneMap(t)
	case []any:
		if t == nil {
			return t
		}
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Clone(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case json.RawMessage:
		return slices.Clone(t)
	case []byte:
		return slices.Clone(t)
	}
	if m, ok := AsMap(v); ok {
		return m
	}
	return v
}
