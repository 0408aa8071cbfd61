package state

import (
	"reflect"
	"sort"
)

// Delta represents the changes between two states. It is designed to be
// serialized to JSON for partial updates on subscribers: clients merge
// Changed into their local copy and drop the Removed keys.
type Delta struct {
	// Changed contains added or modified keys with their new values.
	Changed map[string]any `json:"changed,omitempty"`

	// Removed lists keys present before but absent now, sorted.
	Removed []string `json:"removed,omitempty"`
}

// Empty reports whether the delta carries no changes.
func (d Delta) Empty() bool {
	return len(d.Changed) == 0 && len(d.Removed) == 0
}

// Diff calculates the difference between before and after. If before is nil,
// the delta carries the entire after state (initial load). Values in the
// delta are deep copies, so mutating after later does not corrupt it.
func Diff(before, after State) Delta {
	delta := Delta{Changed: map[string]any{}}

	for key, value := range after {
		if old, ok := before[key]; ok && reflect.DeepEqual(old, value) {
			continue
		}
		delta.Changed[key] = CloneValue(value)
	}

	for key := range before {
		if _, ok := after[key]; !ok {
			delta.Removed = append(delta.Removed, key)
		}
	}
	sort.Strings(delta.Removed)

	return delta
}
