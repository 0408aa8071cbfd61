package state_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/swarmstate/pkg/state"
)

func TestDiff_InitialLoad(t *testing.T) {
	after := state.State{"current_task": "a", "should_continue": true}

	delta := state.Diff(nil, after)

	assert.Equal(t, "a", delta.Changed["current_task"])
	assert.Equal(t, true, delta.Changed["should_continue"])
	assert.Empty(t, delta.Removed)
}

func TestDiff_ChangedAndRemoved(t *testing.T) {
	before := state.State{
		"current_task": "a",
		"next_agent":   "coder",
		"resume_point": "step-3",
	}
	after := state.State{
		"current_task": "b",
		"next_agent":   "coder",
	}

	delta := state.Diff(before, after)

	assert.Equal(t, map[string]any{"current_task": "b"}, delta.Changed)
	assert.Equal(t, []string{"resume_point"}, delta.Removed)
}

func TestDiff_NoChanges(t *testing.T) {
	st := state.State{"current_task": "a", "task_progress": map[string]float64{"t1": 10}}

	delta := state.Diff(st, st.Clone())

	assert.True(t, delta.Empty())
}

func TestDiff_ValuesAreCopies(t *testing.T) {
	after := state.State{"task_progress": map[string]float64{"t1": 10}}

	delta := state.Diff(nil, after)
	after["task_progress"].(map[string]float64)["t1"] = 99

	assert.Equal(t, 10.0, delta.Changed["task_progress"].(map[string]float64)["t1"])
}
