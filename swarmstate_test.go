package swarmstate_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate"
	"github.com/aretw0/swarmstate/pkg/migrate"
	"github.com/aretw0/swarmstate/pkg/reducer"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestEngine_MergeStates(t *testing.T) {
	eng, err := swarmstate.New(swarmstate.WithClock(fixedClock))
	require.NoError(t, err)

	st := eng.NewState()
	st = eng.MergeStates(st, map[string]any{
		"current_task":  "build",
		"task_progress": map[string]any{"build": 40},
	})
	st = eng.MergeStates(st, map[string]any{
		"task_progress": map[string]any{"build": 25},
	})

	assert.Equal(t, "build", st["current_task"])
	progress := st["task_progress"].(map[string]float64)
	assert.Equal(t, 40.0, progress["build"])
}

func TestEngine_ValidateState(t *testing.T) {
	eng, err := swarmstate.New()
	require.NoError(t, err)

	st := eng.NewState()
	require.NoError(t, eng.ValidateState(st, true))

	st["workflow_pattern"] = "freestyle"
	assert.Error(t, eng.ValidateState(st, true))
}

func TestEngine_AutoMigrateAndRestore(t *testing.T) {
	eng, err := swarmstate.New(swarmstate.WithClock(fixedClock))
	require.NoError(t, err)

	st := eng.NewState()
	st[registry.VersionField] = "1.0.0"

	migrated, report, err := eng.AutoMigrateState(st)
	require.NoError(t, err)
	assert.Equal(t, migrate.StatusMigrated, report.Status)
	assert.Equal(t, registry.CurrentSchemaVersion, migrated.Version())

	require.NotNil(t, report.Backup)
	restored := eng.RestoreBackup(*report.Backup)
	assert.Equal(t, "1.0.0", restored.Version())
}

func TestEngine_CustomMigration(t *testing.T) {
	eng, err := swarmstate.New(swarmstate.WithMigrations(func(b *migrate.Builder) error {
		return b.Register("1.1.0", "1.2.0", func(st state.State) (state.State, error) {
			st["current_task"] = "post upgrade"
			return st, nil
		})
	}))
	require.NoError(t, err)

	out, err := eng.MigrateState(eng.NewState(), "1.2.0")
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", out.Version())
	assert.Equal(t, "post upgrade", out["current_task"])
}

func TestEngine_ReducerInfo(t *testing.T) {
	eng, err := swarmstate.New()
	require.NoError(t, err)

	info, err := eng.ReducerInfo("task_progress")
	require.NoError(t, err)
	assert.Equal(t, reducer.MonotonicProgress, info.Strategy)

	_, err = eng.ReducerInfo("no_such_field")
	assert.ErrorIs(t, err, registry.ErrFieldNotFound)
}

func ExampleEngine_MergeStates() {
	eng, err := swarmstate.New()
	if err != nil {
		panic(err)
	}

	st := eng.NewState()
	st = eng.MergeStates(st, map[string]any{
		"task_progress": map[string]any{"build": 60},
	})
	st = eng.MergeStates(st, map[string]any{
		"task_progress": map[string]any{"build": 45},
	})

	progress := st["task_progress"].(map[string]float64)
	fmt.Println(progress["build"])
	// Output: 60
}
