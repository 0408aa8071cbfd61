// Package merge is the engine that combines concurrent state updates.
//
// Each field is dispatched to the reducer named by its registry descriptor.
// A malformed field never poisons a merge: the reducer's error is logged,
// the field keeps its current value, and the remaining fields still merge.
package merge
