// Package migrations holds the built-in schema migration steps. They are
// registered explicitly through RegisterBuiltin so callers control which
// steps their migrator carries.
package migrations

import (
	"strings"
	"time"

	"github.com/aretw0/swarmstate/pkg/migrate"
	"github.com/aretw0/swarmstate/pkg/state"
)

// Field and event names introduced or touched by the 1.0.0 -> 1.1.0 step.
const (
	permissionHistoryField = "tool_permission_history"
	migrationAppliedKey    = "migration_applied"
	hopKey                 = "1_0_to_1_1"
)

// RegisterBuiltin adds the shipped migration steps to a builder. The clock
// controls the timestamps written into trace and history entries; pass nil
// for wall time.
func RegisterBuiltin(b *migrate.Builder, now func() time.Time) error {
	if now == nil {
		now = time.Now
	}
	if err := b.Register("1.0.0", "1.1.0", upgradeTo110(now)); err != nil {
		return err
	}
	return b.Register("1.1.0", "1.0.0", downgradeTo100(now))
}

// upgradeTo110 introduces permission-change tracking: a
// tool_permission_history list, role-based default permissions for agents
// that have none, a migration stamp in performance_metrics, and a trace
// entry.
func upgradeTo110(now func() time.Time) migrate.Transform {
	return func(st state.State) (state.State, error) {
		ts := now().UTC().Format(time.RFC3339)

		if _, ok := st[permissionHistoryField]; !ok {
			history := []any{}
			if perms := permissionMap(st["tool_permissions"]); len(perms) > 0 {
				history = append(history, map[string]any{
					"timestamp": ts,
					"event":     "migration_1_0_to_1_1",
					"changes": map[string]any{
						"added":    perms,
						"removed":  map[string]any{},
						"modified": map[string]any{},
					},
					"reason": "initial permissions from migration",
				})
			}
			st[permissionHistoryField] = history
		}

		perms := permissionMap(st["tool_permissions"])
		if len(perms) == 0 {
			for agent, role := range roleMap(st["agent_roles"]) {
				perms[agent] = defaultPermissions(role)
			}
		}
		st["tool_permissions"] = perms

		if metrics, ok := st["performance_metrics"].(map[string]any); ok {
			if _, stamped := metrics[migrationAppliedKey]; !stamped {
				metrics[migrationAppliedKey] = map[string]any{
					hopKey: map[string]any{
						"timestamp": ts,
						"changes_applied": []any{
							"added_tool_permission_history",
							"enhanced_tool_permissions_structure",
							"added_default_permissions",
						},
					},
				}
			}
		}

		appendTrace(st, map[string]any{
			"event":     "state_migration",
			"timestamp": ts,
			"details": map[string]any{
				"from_version": "1.0.0",
				"to_version":   "1.1.0",
			},
		})
		return st, nil
	}
}

// downgradeTo100 strips the permission-tracking additions. Permission history
// is dropped; the permissions themselves survive.
func downgradeTo100(now func() time.Time) migrate.Transform {
	return func(st state.State) (state.State, error) {
		delete(st, permissionHistoryField)

		if metrics, ok := st["performance_metrics"].(map[string]any); ok {
			if applied, ok := metrics[migrationAppliedKey].(map[string]any); ok {
				delete(applied, hopKey)
				if len(applied) == 0 {
					delete(metrics, migrationAppliedKey)
				}
			}
		}

		appendTrace(st, map[string]any{
			"event":     "state_reverse_migration",
			"timestamp": now().UTC().Format(time.RFC3339),
			"details": map[string]any{
				"from_version": "1.1.0",
				"to_version":   "1.0.0",
			},
		})
		return st, nil
	}
}

// defaultPermissions grants every agent basic tools plus role-specific ones.
func defaultPermissions(role string) []string {
	perms := []string{"basic_tools"}
	switch {
	case contains(role, "developer"):
		perms = append(perms, "code_writer", "file_manager", "git_tools")
	case contains(role, "qa"), contains(role, "test"):
		perms = append(perms, "test_runner", "bug_tracker")
	case contains(role, "devops"):
		perms = append(perms, "deployment_tools", "monitoring_tools")
	}
	return perms
}

func permissionMap(v any) map[string][]string {
	out := map[string][]string{}
	switch m := v.(type) {
	case map[string][]string:
		for agent, tools := range m {
			out[agent] = append([]string(nil), tools...)
		}
	case map[string]any:
		for agent, tools := range m {
			switch list := tools.(type) {
			case []string:
				out[agent] = append([]string(nil), list...)
			case []any:
				strs := make([]string, 0, len(list))
				for _, item := range list {
					if s, ok := item.(string); ok {
						strs = append(strs, s)
					}
				}
				out[agent] = strs
			}
		}
	}
	return out
}

func roleMap(v any) map[string]string {
	out := map[string]string{}
	switch m := v.(type) {
	case map[string]string:
		for agent, role := range m {
			out[agent] = role
		}
	case map[string]any:
		for agent, role := range m {
			if s, ok := role.(string); ok {
				out[agent] = s
			}
		}
	}
	return out
}

func appendTrace(st state.State, entry map[string]any) {
	trace, ok := st["execution_trace"].([]any)
	if !ok {
		return
	}
	st["execution_trace"] = append(trace, entry)
}

func contains(role, substr string) bool {
	return strings.Contains(strings.ToLower(role), substr)
}
