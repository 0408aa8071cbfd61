package registry_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/schema"
)

func TestDefault_DescribeKnownField(t *testing.T) {
	reg := registry.Default()

	d, err := reg.Describe("task_progress")
	require.NoError(t, err)

	assert.Equal(t, reducer.MonotonicProgress, d.Strategy)
	assert.Equal(t, registry.GroupTaskManagement, d.Group)
	assert.True(t, d.Required)
}

func TestDefault_UnknownField(t *testing.T) {
	reg := registry.Default()

	_, err := reg.Describe("no_such_field")
	require.ErrorIs(t, err, registry.ErrFieldNotFound)
}

func TestNew_RejectsDuplicates(t *testing.T) {
	descriptors := []registry.Descriptor{
		{Name: "f", Type: schema.String()},
		{Name: "f", Type: schema.String()},
	}
	_, err := registry.New(descriptors, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNew_RejectsUnknownRule(t *testing.T) {
	descriptors := []registry.Descriptor{
		{Name: "f", Type: schema.String(), Rules: []string{"no_such_rule"}},
	}
	_, err := registry.New(descriptors, nil)
	require.Error(t, err)
}

func TestActiveFields_GroupToggle(t *testing.T) {
	reg := registry.Default()

	countFields := func() map[string]bool {
		names := make(map[string]bool)
		for _, d := range reg.ActiveFields() {
			names[d.Name] = true
		}
		return names
	}

	before := countFields()
	assert.True(t, before["short_term_memory"])

	// Disabling a group removes its fields from the active set without
	// touching stored data.
	reg.SetGroupEnabled(registry.GroupMemoryLayers, false)
	after := countFields()
	assert.False(t, after["short_term_memory"])
	assert.False(t, after["private_memory"])
	assert.True(t, after["task_progress"], "other groups unaffected")

	reg.SetGroupEnabled(registry.GroupMemoryLayers, true)
	assert.True(t, countFields()["short_term_memory"])
}

func TestActiveFields_IndividualFlag(t *testing.T) {
	reg := registry.Default()

	reg.SetFlag("enable_private_memory", false)
	for _, d := range reg.ActiveFields() {
		assert.NotEqual(t, "private_memory", d.Name)
	}
}

func TestValidateValue_ReportsAllViolations(t *testing.T) {
	reg := registry.Default()

	errs := reg.ValidateValue("task_progress", map[string]any{
		"t1": 150.0,
		"t2": -3.0,
		"t3": 50.0,
	})
	assert.Len(t, errs, 2, "every violation reported, not just the first")
}

func TestValidateValue_Unregistered(t *testing.T) {
	reg := registry.Default()

	errs := reg.ValidateValue("mystery", 1)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], registry.ErrFieldNotFound)
}

func TestValidateState_StrictEnumMembership(t *testing.T) {
	reg := registry.Default()

	state := minimalValidState()

	// Every enumerated pattern is accepted.
	for pattern := range registry.ValidWorkflowPatterns {
		state["workflow_pattern"] = pattern
		assert.NoError(t, reg.ValidateState(state, true), pattern)
	}

	// Anything else is rejected.
	state["workflow_pattern"] = "round_robin"
	err := reg.ValidateState(state, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workflow pattern")
}

func TestValidateState_StrictProgressRange(t *testing.T) {
	reg := registry.Default()

	state := minimalValidState()
	state["task_progress"] = map[string]any{"t1": 150.0}

	err := reg.ValidateState(state, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 100")
}

func TestValidateState_StrictPermissionShape(t *testing.T) {
	reg := registry.Default()

	state := minimalValidState()
	state["tool_permissions"] = map[string]any{"agent1": "not_a_list"}

	err := reg.ValidateState(state, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list of strings")
}

func TestValidateState_LenientShapeOnly(t *testing.T) {
	reg := registry.Default()

	state := minimalValidState()
	// Value-level garbage passes lenient validation...
	state["task_progress"] = map[string]any{"t1": 999.0}
	assert.NoError(t, reg.ValidateState(state, false))

	// ...but a wrong container shape does not.
	state["subtasks"] = "not a list"
	err := reg.ValidateState(state, false)
	require.Error(t, err)
}

func TestValidateState_LenientCollectsAll(t *testing.T) {
	reg := registry.Default()

	state := minimalValidState()
	delete(state, "task_progress")
	delete(state, "agent_outputs")

	err := reg.ValidateState(state, false)
	require.Error(t, err)
	assert.Len(t, schema.ValidationErrors(err), 2)
}

func TestReducerFor_Dispatch(t *testing.T) {
	reg := registry.Default()

	d, err := reg.Describe("tool_permissions")
	require.NoError(t, err)

	merge := registry.ReducerFor(d, nil)
	merged, err := merge(
		map[string]any{"a": []string{"git", "npm"}},
		map[string]any{"a": []string{"git"}},
	)
	require.NoError(t, err)
	assert.Equal(t, []string{"git"}, merged.(map[string][]string)["a"])
}

// minimalValidState returns a state that passes strict validation against the
// default registry.
func minimalValidState() map[string]any {
	state := map[string]any{}
	for _, d := range registry.Default().ActiveFields() {
		state[d.Name] = d.Default
	}
	return state
}
