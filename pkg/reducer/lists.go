package reducer

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// NewBoundedAppend returns the append-bounded-list reducer: proposed items
// are appended and the total length is capped at max, dropping the oldest.
// A max of zero or less means unbounded.
func NewBoundedAppend(max int) Func {
	return func(current, proposed any) (any, error) {
		base, ok := asSlice(current)
		if !ok {
			return nil, errf(AppendBounded, "current value is not a list (%T)", current)
		}
		update, ok := asSlice(proposed)
		if !ok {
			return nil, errf(AppendBounded, "proposed value is not a list (%T)", proposed)
		}

		merged := append(base, update...)
		if max > 0 && len(merged) > max {
			merged = merged[len(merged)-max:]
		}
		return merged, nil
	}
}

// NewChronological returns the chronological-merge reducer for lists of
// mapping entries. Proposed entries missing a "timestamp" are stamped with
// the merge-time clock value and entries missing an "id" receive a generated
// one. The merged list is stable-sorted by timestamp and capped at max,
// keeping the newest entries.
func NewChronological(max int, now Clock) Func {
	return func(current, proposed any) (any, error) {
		base, ok := asSlice(current)
		if !ok {
			return nil, errf(Chronological, "current value is not a list (%T)", current)
		}
		update, ok := asSlice(proposed)
		if !ok {
			return nil, errf(Chronological, "proposed value is not a list (%T)", proposed)
		}

		ts := stamp(now)
		for _, item := range update {
			entry, ok := asMap(item)
			if !ok {
				return nil, errf(Chronological, "proposed entry is not a mapping (%T)", item)
			}
			if _, ok := entry["timestamp"]; !ok {
				entry["timestamp"] = ts
			}
			if _, ok := entry["id"]; !ok {
				entry["id"] = uuid.NewString()
			}
			base = append(base, entry)
		}

		sort.SliceStable(base, func(i, j int) bool {
			return entryTimestamp(base[i]) < entryTimestamp(base[j])
		})

		if max > 0 && len(base) > max {
			base = base[len(base)-max:]
		}
		return base, nil
	}
}

func entryTimestamp(item any) string {
	entry, ok := asMap(item)
	if !ok {
		return ""
	}
	ts, _ := entry["timestamp"].(string)
	return ts
}

// NewDedupAppend returns the dedup-append reducer: proposed items are
// appended only when no content-equal item is already present. String items
// without a leading "[timestamp]" prefix are stamped at merge time, before
// the equality check, so the same error text arriving twice in one merge is
// still collapsed. The list is capped at max, dropping the oldest.
func NewDedupAppend(max int, now Clock) Func {
	return func(current, proposed any) (any, error) {
		base, ok := asSlice(current)
		if !ok {
			return nil, errf(DedupAppend, "current value is not a list (%T)", current)
		}
		update, ok := asSlice(proposed)
		if !ok {
			return nil, errf(DedupAppend, "proposed value is not a list (%T)", proposed)
		}

		ts := stamp(now)
		for _, item := range update {
			if s, isString := item.(string); isString && !strings.HasPrefix(s, "[") {
				item = fmt.Sprintf("[%s] %s", ts, s)
			}
			if !containsEqual(base, item) {
				base = append(base, item)
			}
		}

		if max > 0 && len(base) > max {
			base = base[len(base)-max:]
		}
		return base, nil
	}
}

// NewKeyedDedup returns the keyed-dedup reducer for lists of mapping entries
// such as help requests. A proposed entry matching an existing entry on every
// key field counts as a duplicate while that entry's status is still "open"
// (a missing status counts as open): the existing entry is updated with the
// proposed keys instead of appending. New entries are stamped with the
// merge-time timestamp and a default "open" status when missing. The merged
// list is ordered newest first and capped at max, dropping the oldest.
func NewKeyedDedup(max int, now Clock, keys ...string) Func {
	if len(keys) == 0 {
		return NewDedupAppend(max, now)
	}
	return func(current, proposed any) (any, error) {
		base, ok := asSlice(current)
		if !ok {
			return nil, errf(KeyedDedup, "current value is not a list (%T)", current)
		}
		update, ok := asSlice(proposed)
		if !ok {
			return nil, errf(KeyedDedup, "proposed value is not a list (%T)", proposed)
		}

		ts := stamp(now)
		for _, item := range update {
			entry, ok := asMap(item)
			if !ok {
				return nil, errf(KeyedDedup, "proposed entry is not a mapping (%T)", item)
			}

			if i := indexOpenMatch(base, entry, keys); i >= 0 {
				existing, _ := asMap(base[i])
				for k, v := range entry {
					existing[k] = v
				}
				base[i] = existing
				continue
			}

			if _, ok := entry["timestamp"]; !ok {
				entry["timestamp"] = ts
			}
			if _, ok := entry["status"]; !ok {
				entry["status"] = "open"
			}
			base = append(base, entry)
		}

		sort.SliceStable(base, func(i, j int) bool {
			return entryTimestamp(base[i]) > entryTimestamp(base[j])
		})

		if max > 0 && len(base) > max {
			base = base[:max]
		}
		return base, nil
	}
}

// indexOpenMatch finds an open entry matching candidate on every key field.
// An entry without a status is treated as open.
func indexOpenMatch(items []any, candidate map[string]any, keys []string) int {
	for i, item := range items {
		entry, ok := asMap(item)
		if !ok {
			continue
		}
		if status, ok := entry["status"].(string); ok && status != "open" {
			continue
		}
		match := true
		for _, k := range keys {
			if !reflect.DeepEqual(entry[k], candidate[k]) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func containsEqual(items []any, candidate any) bool {
	for _, item := range items {
		if reflect.DeepEqual(item, candidate) {
			return true
		}
	}
	return false
}
