package merge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return New(registry.Default(), WithClock(fixedClock))
}

func TestMerge_ProgressNeverRegresses(t *testing.T) {
	e := newEngine(t)
	st := state.New(registry.Default())

	st = e.Merge(st, map[string]any{"task_progress": map[string]any{"t1": 30}})
	st = e.Merge(st, map[string]any{"task_progress": map[string]any{"t1": 55}})
	st = e.Merge(st, map[string]any{"task_progress": map[string]any{"t1": 40}})

	progress, ok := st["task_progress"].(map[string]float64)
	require.True(t, ok, "task_progress should be a float map, got %T", st["task_progress"])
	assert.Equal(t, 55.0, progress["t1"])
	assert.Equal(t, 55.0, progress["_overall"])
}

func TestMerge_PartialFailureIsolation(t *testing.T) {
	e := newEngine(t)
	st := state.New(registry.Default())
	st = e.Merge(st, map[string]any{"task_progress": map[string]any{"t1": 30}})

	// task_progress update is malformed; current_task is fine.
	out := e.Merge(st, map[string]any{
		"task_progress": "not a map",
		"current_task":  "review",
	})

	progress := out["task_progress"].(map[string]float64)
	assert.Equal(t, 30.0, progress["t1"], "failed reducer keeps current value")
	assert.Equal(t, "review", out["current_task"], "other fields still merge")
}

func TestMerge_UnregisteredFieldLastWriteWins(t *testing.T) {
	e := newEngine(t)

	out := e.Merge(state.State{"custom": "old"}, map[string]any{"custom": "new"})
	assert.Equal(t, "new", out["custom"])
}

func TestMerge_BaseNeverMutated(t *testing.T) {
	e := newEngine(t)
	base := state.State{
		"error_log":    []string{"first"},
		"current_task": "a",
	}

	out := e.Merge(base, map[string]any{
		"error_log":    []string{"second"},
		"current_task": "b",
	})

	assert.Equal(t, []string{"first"}, base["error_log"])
	assert.Equal(t, "a", base["current_task"])
	assert.NotEqual(t, base["current_task"], out["current_task"])
}

func TestMerge_MessagesStampedAndOrdered(t *testing.T) {
	e := newEngine(t)
	st := state.New(registry.Default())

	out := e.Merge(st, map[string]any{
		"messages": []any{map[string]any{"content": "hello"}},
	})

	msgs, ok := out["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1)
	msg := msgs[0].(map[string]any)
	assert.NotEmpty(t, msg["id"])
	assert.Equal(t, "2026-03-14T09:26:53Z", msg["timestamp"])
}

func TestMerge_MessageStructsPassThrough(t *testing.T) {
	e := newEngine(t)
	st := state.New(registry.Default())

	out := e.Merge(st, map[string]any{
		"messages": []any{state.Message{
			Type:    "status",
			Content: "deploy finished",
		}},
	})

	msgs, ok := out["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 1, "a rich message must merge, not be skipped")
	msg := msgs[0].(map[string]any)
	assert.Equal(t, "status", msg["type"])
	assert.Equal(t, "deploy finished", msg["content"])
	assert.Equal(t, "2026-03-14T09:26:53Z", msg["timestamp"])
	assert.NotEmpty(t, msg["id"])
}

func TestMerge_HelpRequestRepeatUpdatesInPlace(t *testing.T) {
	e := newEngine(t)
	st := state.New(registry.Default())

	st = e.Merge(st, map[string]any{
		"help_requests": []any{map[string]any{
			"topic": "deploy", "requesting_agent": "alice", "details": "v1",
		}},
	})
	st = e.Merge(st, map[string]any{
		"help_requests": []any{map[string]any{
			"topic": "deploy", "requesting_agent": "alice", "details": "v2",
		}},
	})

	reqs, ok := st["help_requests"].([]any)
	require.True(t, ok)
	require.Len(t, reqs, 1, "re-requesting the same topic updates the open entry")
	entry := reqs[0].(map[string]any)
	assert.Equal(t, "v2", entry["details"])
	assert.Equal(t, "open", entry["status"])
	assert.Equal(t, "2026-03-14T09:26:53Z", entry["timestamp"])
}

func TestMerge_PermissionsMostRestrictive(t *testing.T) {
	e := newEngine(t)
	st := state.State{
		"tool_permissions": map[string][]string{"dev": {"git", "docker", "npm"}},
	}

	out := e.Merge(st, map[string]any{
		"tool_permissions": map[string][]string{"dev": {"git", "docker"}},
	})

	perms := out["tool_permissions"].(map[string][]string)
	assert.Equal(t, []string{"docker", "git"}, perms["dev"])
}

func TestApplyReducer_PreviewsSingleField(t *testing.T) {
	e := newEngine(t)

	out, err := e.ApplyReducer("task_progress",
		map[string]any{"t1": 80}, map[string]any{"t1": 70})
	require.NoError(t, err)
	assert.Equal(t, 80.0, out.(map[string]float64)["t1"])
}

func TestApplyReducer_UnknownFieldReplaces(t *testing.T) {
	e := newEngine(t)

	out, err := e.ApplyReducer("made_up", "old", "new")
	require.NoError(t, err)
	assert.Equal(t, "new", out)
}

func TestApplyReducer_DoesNotMutateInputs(t *testing.T) {
	e := newEngine(t)
	current := map[string]any{"t1": 10}

	_, err := e.ApplyReducer("task_progress", current, map[string]any{"t2": 20})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"t1": 10}, current)
}
