package reducer

// History-tracked fields store one entry per key (agent id, tool name):
//
//	{current, history[≤K], update_count, last_updated}
//
// history is a ring: appending past capacity evicts the oldest entry.
// current always equals the most recent applied value.

// Entry field names inside a history-tracked value.
const (
	entryCurrent     = "current"
	entryHistory     = "history"
	entryUpdateCount = "update_count"
	entryLastUpdated = "last_updated"
)

// NewHistory returns the append-history reducer with capacity maxHistory.
// current and proposed are mappings from key (agent id, tool name) to the
// candidate output; merged values wrap each key in a history entry.
func NewHistory(maxHistory int, now Clock) Func {
	if maxHistory <= 0 {
		maxHistory = 10
	}
	return func(current, proposed any) (any, error) {
		base, ok := asMap(current)
		if !ok {
			return nil, errf(AppendHistory, "current value is not a mapping (%T)", current)
		}
		update, ok := asMap(proposed)
		if !ok {
			return nil, errf(AppendHistory, "proposed value is not a mapping (%T)", proposed)
		}

		ts := stamp(now)
		for key, output := range update {
			prev, exists := base[key]
			if !exists {
				base[key] = map[string]any{
					entryCurrent:     output,
					entryHistory:     []any{output},
					entryUpdateCount: 1,
					entryLastUpdated: ts,
				}
				continue
			}

			entry, ok := asMap(prev)
			if !ok {
				// Legacy plain value: promote it into an entry, keeping it
				// as the first history item.
				entry = map[string]any{
					entryCurrent:     prev,
					entryHistory:     []any{prev},
					entryUpdateCount: 1,
				}
			}

			history, _ := asSlice(entry[entryHistory])
			history = append(history, output)
			if len(history) > maxHistory {
				history = history[len(history)-maxHistory:]
			}

			count := 0
			if c, ok := asFloat(entry[entryUpdateCount]); ok {
				count = int(c)
			}

			entry[entryCurrent] = output
			entry[entryHistory] = history
			entry[entryUpdateCount] = count + 1
			entry[entryLastUpdated] = ts
			base[key] = entry
		}

		return base, nil
	}
}
