package merge

import (
	"strings"
	"time"

	"github.com/aretw0/swarmstate/pkg/state"
)

// EnforceRetention applies each field's retention policy: entries older than
// the field's archive cutoff are dropped first, then list-valued fields that
// grew past MaxEntries are trimmed, oldest first. History-tracked and
// chronological reducers bound themselves during merge; this pass catches
// fields populated outside the engine, such as freshly deserialized states.
func (e *Engine) EnforceRetention(st state.State) {
	e.enforceRetention(st)
}

func (e *Engine) enforceRetention(st state.State) {
	for _, d := range e.reg.ActiveFields() {
		if d.Retention == nil {
			continue
		}
		v, ok := st[d.Name]
		if !ok {
			continue
		}

		if cutoff := d.Retention.ArchiveCutoff(e.now()); !cutoff.IsZero() {
			kept, dropped := dropBefore(v, cutoff)
			if dropped > 0 {
				st[d.Name] = kept
				v = kept
				e.log.Debug("retention archived stale entries",
					"field", d.Name, "dropped", dropped)
			}
		}

		max := d.Retention.MaxEntries
		if max <= 0 {
			continue
		}

		switch list := v.(type) {
		case []any:
			if len(list) > max {
				st[d.Name] = list[len(list)-max:]
				e.log.Debug("retention trimmed field",
					"field", d.Name, "dropped", len(list)-max)
			}
		case []string:
			if len(list) > max {
				st[d.Name] = list[len(list)-max:]
				e.log.Debug("retention trimmed field",
					"field", d.Name, "dropped", len(list)-max)
			}
		}
	}
}

// dropBefore removes list entries whose timestamp falls before the cutoff.
// Mapping entries carry a "timestamp" key; string entries carry the leading
// "[timestamp]" prefix stamped by the dedup reducer. Entries without a
// parseable timestamp are kept.
func dropBefore(v any, cutoff time.Time) (any, int) {
	switch list := v.(type) {
	case []any:
		kept := make([]any, 0, len(list))
		for _, item := range list {
			if ts, ok := mapEntryTime(item); ok && ts.Before(cutoff) {
				continue
			}
			kept = append(kept, item)
		}
		return kept, len(list) - len(kept)
	case []string:
		kept := make([]string, 0, len(list))
		for _, item := range list {
			if ts, ok := prefixTime(item); ok && ts.Before(cutoff) {
				continue
			}
			kept = append(kept, item)
		}
		return kept, len(list) - len(kept)
	default:
		return v, 0
	}
}

func mapEntryTime(item any) (time.Time, bool) {
	entry, ok := item.(map[string]any)
	if !ok {
		return time.Time{}, false
	}
	raw, _ := entry["timestamp"].(string)
	return parseStamp(raw)
}

func prefixTime(item string) (time.Time, bool) {
	if !strings.HasPrefix(item, "[") {
		return time.Time{}, false
	}
	end := strings.IndexByte(item, ']')
	if end < 0 {
		return time.Time{}, false
	}
	return parseStamp(item[1:end])
}

func parseStamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}
