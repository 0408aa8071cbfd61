package reducer

import (
	"fmt"
	"time"
)

// Strategy identifies a merge strategy. Fields are bound to a strategy by the
// registry; dispatch happens on these tagged constants, never on function
// identity, so new strategies can be added without touching call sites.
type Strategy string

const (
	// LastWriteWins replaces the current value with the proposed one.
	// Default for unregistered fields.
	LastWriteWins Strategy = "last_write_wins"

	// AppendHistory keeps a per-key current value plus a bounded history
	// ring of previous values.
	AppendHistory Strategy = "append_history"

	// MonotonicProgress keeps the maximum of current and proposed per key,
	// clamped to [0,100], and recomputes the synthetic _overall mean.
	MonotonicProgress Strategy = "monotonic_progress"

	// PermissionMerge reconciles per-agent capability sets according to the
	// field's conflict strategy (intersection, union, or replace).
	PermissionMerge Strategy = "permission_merge"

	// AppendBounded appends proposed items and caps total length,
	// dropping the oldest entries.
	AppendBounded Strategy = "append_bounded"

	// Chronological appends entries, stamps missing timestamps with the
	// merge-time clock, and keeps the list sorted by timestamp.
	Chronological Strategy = "chronological"

	// DedupAppend appends only items not already present (content equality).
	DedupAppend Strategy = "dedup_append"

	// KeyedDedup appends mapping entries deduplicated on configured key
	// fields: a proposed entry matching an open existing entry on every key
	// updates it in place instead of appending.
	KeyedDedup Strategy = "keyed_dedup"

	// DeepMerge recursively merges nested mappings; proposed values win per
	// leaf key, arrays are replaced wholesale.
	DeepMerge Strategy = "deep_merge"
)

// ConflictStrategy governs how two concurrent proposals for a permission
// field are reconciled.
type ConflictStrategy string

const (
	// MostRestrictive keeps the intersection of capability sets. This is the
	// security-first default.
	MostRestrictive ConflictStrategy = "most_restrictive"

	// MostPermissive keeps the union of capability sets.
	MostPermissive ConflictStrategy = "most_permissive"

	// ReplaceWins lets the proposed set replace the current one.
	ReplaceWins ConflictStrategy = "last_write_wins"
)

// Func combines a current field value with a proposed update into a merged
// value. Implementations are pure: they never mutate their inputs and never
// panic for well-typed input. Malformed input yields an *Error.
type Func func(current, proposed any) (any, error)

// Clock supplies merge-time timestamps. Injectable for deterministic tests.
type Clock func() time.Time

// Error reports that a single field's merge failed due to malformed input.
// The merge engine isolates it to that field; unrelated fields still merge.
type Error struct {
	Strategy Strategy
	Reason   string
}

func (e *Error) Error() string {
	return fmt.Sprintf("reducer %s: %s", e.Strategy, e.Reason)
}

func errf(s Strategy, format string, args ...any) error {
	return &Error{Strategy: s, Reason: fmt.Sprintf(format, args...)}
}

// Replace returns the last-write-wins reducer.
func Replace() Func {
	return func(current, proposed any) (any, error) {
		return proposed, nil
	}
}
