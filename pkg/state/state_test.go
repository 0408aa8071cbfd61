package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

func TestNew_Defaults(t *testing.T) {
	s := state.New(registry.Default())

	assert.Equal(t, registry.CurrentSchemaVersion, s.Version())
	assert.Equal(t, true, s["should_continue"])
	assert.Equal(t, "sequential", s["workflow_pattern"])
	assert.Equal(t, map[string]any{}, s["task_progress"])

	// Defaults are copies: mutating one state's default cannot leak into
	// the next state built from the same registry.
	s["task_progress"].(map[string]any)["t1"] = 10.0
	fresh := state.New(registry.Default())
	assert.Empty(t, fresh["task_progress"])
}

func TestNew_VersionAlwaysPresent(t *testing.T) {
	reg := registry.Default()
	reg.SetGroupEnabled(registry.GroupDebugging, false)

	s := state.New(reg)
	assert.Equal(t, registry.CurrentSchemaVersion, s.Version())
}

func TestVersion_Fallback(t *testing.T) {
	assert.Equal(t, "0.0.0", state.State{}.Version())
	assert.Equal(t, "0.0.0", state.State{"state_version": 7}.Version())
}

func TestClone_IsDeep(t *testing.T) {
	original := state.State{
		"nested": map[string]any{"inner": []any{1, 2}},
		"perms":  map[string][]string{"a": {"git"}},
		"trace":  []any{map[string]any{"event": "start"}},
	}

	copied := original.Clone()
	copied["nested"].(map[string]any)["inner"].([]any)[0] = 99
	copied["perms"].(map[string][]string)["a"][0] = "docker"
	copied["trace"].([]any)[0].(map[string]any)["event"] = "mutated"

	assert.Equal(t, 1, original["nested"].(map[string]any)["inner"].([]any)[0])
	assert.Equal(t, "git", original["perms"].(map[string][]string)["a"][0])
	assert.Equal(t, "start", original["trace"].([]any)[0].(map[string]any)["event"])
}

func TestSerialize_RoundTripEnvelope(t *testing.T) {
	s := state.New(registry.Default())
	s["messages"] = []any{
		state.Message{
			Type:     "human",
			Content:  "start the build",
			Metadata: map[string]any{"agent": "operator"},
		},
	}
	s["task_progress"] = map[string]any{"t1": 42.0}

	data, err := state.Serialize(s)
	require.NoError(t, err)

	loaded, err := state.Deserialize(data)
	require.NoError(t, err)

	msgs := loaded["messages"].([]any)
	require.Len(t, msgs, 1)

	msg, ok := msgs[0].(state.Message)
	require.True(t, ok, "envelope must be reconstructed as a Message")
	assert.Equal(t, "human", msg.Type)
	assert.Equal(t, "start the build", msg.Content)
	assert.Equal(t, "operator", msg.Metadata["agent"])

	assert.Equal(t, registry.CurrentSchemaVersion, loaded.Version())
	assert.Equal(t, 42.0, loaded["task_progress"].(map[string]any)["t1"])
}

func TestDeserialize_RequiresVersion(t *testing.T) {
	_, err := state.Deserialize([]byte(`{"current_task": "x"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "state_version")

	_, err = state.Deserialize([]byte(`not json`))
	assert.Error(t, err)
}
