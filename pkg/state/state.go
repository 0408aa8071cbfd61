package state

import (
	"reflect"

	"github.com/aretw0/swarmstate/pkg/registry"
)

// State is a mapping from field name to value: the shared workflow state one
// orchestration step owns at a time.
//
// A State is never aliased across concurrent writers. Ownership transfers by
// value: every merge clones the base and returns a fresh object, so writers
// only ever hold partial-update maps, not references into the base.
type State map[string]any

// New creates a state at workflow start with every active field at its
// descriptor default. The version field is always present, even when the
// debugging group is disabled.
func New(reg *registry.Registry) State {
	s := make(State)
	for _, d := range reg.ActiveFields() {
		s[d.Name] = CloneValue(d.Default)
	}
	if _, ok := s[registry.VersionField]; !ok {
		s[registry.VersionField] = registry.CurrentSchemaVersion
	}
	return s
}

// Version returns the schema version recorded in the state, or "0.0.0" when
// the field is missing or malformed (pre-versioning snapshots).
func (s State) Version() string {
	if v, ok := s[registry.VersionField].(string); ok && v != "" {
		return v
	}
	return "0.0.0"
}

// Clone returns a deep copy. Mutating the copy never affects the original,
// regardless of nested maps or slices.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a field value. Scalars pass through; maps, slices
// and Message values are copied recursively.
func CloneValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = CloneValue(item)
		}
		return out
	case map[string]float64:
		out := make(map[string]float64, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, item := range val {
			out[k] = item
		}
		return out
	case map[string][]string:
		out := make(map[string][]string, len(val))
		for k, item := range val {
			out[k] = append([]string{}, item...)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneValue(item)
		}
		return out
	case []string:
		return append([]string{}, val...)
	case Message:
		return val.clone()
	case *Message:
		cloned := val.clone()
		return &cloned
	}

	// Uncommon container types land here (e.g. typed slices from writers).
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), reflect.ValueOf(CloneValue(iter.Value().Interface())))
		}
		return out.Interface()
	case reflect.Slice:
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out.Index(i).Set(reflect.ValueOf(CloneValue(rv.Index(i).Interface())))
		}
		return out.Interface()
	default:
		return v
	}
}
