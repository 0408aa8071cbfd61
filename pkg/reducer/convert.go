package reducer

import (
	"reflect"
	"time"
)

// Enveloper is implemented by rich values, such as message structs, that
// present themselves as a string-keyed mapping for merging.
type Enveloper interface {
	Envelope() map[string]any
}

// asMap normalizes any string-keyed map into map[string]any without mutating
// the original.
func asMap(v any) (map[string]any, bool) {
	if v == nil {
		return map[string]any{}, true
	}
	if e, ok := v.(Enveloper); ok {
		return e.Envelope(), true
	}
	if m, ok := v.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// asSlice normalizes any slice or array into []any without mutating the
// original.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return []any{}, true
	}
	if s, ok := v.([]any); ok {
		out := make([]any, len(s))
		copy(out, s)
		return out, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asFloat converts numeric values (including JSON float64) to float64.
func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// asStringSlice converts a value into []string if every element is a string.
func asStringSlice(v any) ([]string, bool) {
	if v == nil {
		return []string{}, true
	}
	if s, ok := v.([]string); ok {
		out := make([]string, len(s))
		copy(out, s)
		return out, true
	}
	items, ok := asSlice(v)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}

// stamp formats a clock reading the way timestamps are stored in state.
func stamp(now Clock) string {
	if now == nil {
		now = time.Now
	}
	return now().UTC().Format(time.RFC3339Nano)
}
