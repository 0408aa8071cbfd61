package reducer

import "sort"

// NewPermissions returns the permission-merge reducer for the given conflict
// strategy. current and proposed map agent ids to capability string sets.
//
// An explicitly empty proposed set always revokes the agent's capabilities,
// regardless of strategy. An empty intersection is an empty set, not an
// error. Merged sets are sorted so results are order-independent.
func NewPermissions(strategy ConflictStrategy) Func {
	return func(current, proposed any) (any, error) {
		base, ok := asMap(current)
		if !ok {
			return nil, errf(PermissionMerge, "current value is not a mapping (%T)", current)
		}
		update, ok := asMap(proposed)
		if !ok {
			return nil, errf(PermissionMerge, "proposed value is not a mapping (%T)", proposed)
		}

		merged := make(map[string][]string, len(base)+len(update))
		for agent, v := range base {
			caps, ok := asStringSlice(v)
			if !ok {
				return nil, errf(PermissionMerge, "capabilities for %q are not a string list", agent)
			}
			merged[agent] = caps
		}

		for agent, v := range update {
			caps, ok := asStringSlice(v)
			if !ok {
				return nil, errf(PermissionMerge, "proposed capabilities for %q are not a string list", agent)
			}

			existing, exists := merged[agent]
			switch {
			case !exists:
				merged[agent] = normalizeSet(caps)
			case len(caps) == 0:
				merged[agent] = []string{} // revoke all
			default:
				switch strategy {
				case MostPermissive:
					merged[agent] = union(existing, caps)
				case ReplaceWins:
					merged[agent] = normalizeSet(caps)
				default: // MostRestrictive
					merged[agent] = intersection(existing, caps)
				}
			}
		}

		return merged, nil
	}
}

func normalizeSet(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}

func union(a, b []string) []string {
	return normalizeSet(append(append([]string{}, a...), b...))
}

func intersection(a, b []string) []string {
	inB := make(map[string]struct{}, len(b))
	for _, item := range b {
		inB[item] = struct{}{}
	}
	out := make([]string, 0, len(a))
	for _, item := range a {
		if _, ok := inB[item]; ok {
			out = append(out, item)
		}
	}
	return normalizeSet(out)
}
