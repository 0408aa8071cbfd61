// Package reducer implements the merge functions that reconcile concurrent
// proposals for the same state field into a single deterministic value.
//
// Each reducer is a pure, total function: it never mutates its inputs, never
// panics for well-typed input, and reports malformed input as an *Error
// instead of crashing. Reducers whose strategy is commutative and associative
// (set intersection/union, monotonic max, append) converge to the same value
// regardless of the order concurrent updates are applied in; last-write-wins
// and deep-merge do not, and callers needing determinism under true
// concurrency must impose a fixed application order themselves.
//
// Reducers are constructed with their tuning parameters (history capacity,
// list bounds, conflict strategy, clock) and bound to fields by the registry.
package reducer
