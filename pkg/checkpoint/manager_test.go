package checkpoint_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/adapters/memory"
	"github.com/aretw0/swarmstate/pkg/checkpoint"
	"github.com/aretw0/swarmstate/pkg/merge"
	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/registry"
)

func newManager(t *testing.T, opts ...checkpoint.Option) *checkpoint.Manager {
	t.Helper()
	fields := registry.Default()
	return checkpoint.NewManager(memory.NewStore(), merge.New(fields), fields, opts...)
}

func TestManager_LoadMissing(t *testing.T) {
	m := newManager(t)

	_, err := m.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ports.ErrCheckpointNotFound)
}

func TestManager_LoadOrNew(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	st, err := m.LoadOrNew(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, registry.CurrentSchemaVersion, st.Version())

	// The ID is reserved: a plain Load now succeeds.
	loaded, err := m.Load(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, registry.CurrentSchemaVersion, loaded.Version())
}

func TestManager_UpdateMergesAndPersists(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.Update(ctx, "cp", map[string]any{
		"task_progress": map[string]any{"t1": 50},
	})
	require.NoError(t, err)

	merged, err := m.Update(ctx, "cp", map[string]any{
		"task_progress": map[string]any{"t1": 20},
	})
	require.NoError(t, err)

	progress := merged["task_progress"].(map[string]float64)
	assert.Equal(t, 50.0, progress["t1"], "persisted progress must not regress")
}

func TestManager_ConcurrentUpdatesSerialize(t *testing.T) {
	m := newManager(t, checkpoint.WithLocker(memory.NewLocker()))
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := m.Update(ctx, "shared", map[string]any{
				"error_log": []string{fmt.Sprintf("agent %d reporting", n)},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	st, err := m.Load(ctx, "shared")
	require.NoError(t, err)
	log := st["error_log"].([]any)
	assert.Len(t, log, writers, "every concurrent update must land exactly once")
}

func TestManager_DeleteThenLoad(t *testing.T) {
	m := newManager(t)
	ctx := context.Background()

	_, err := m.LoadOrNew(ctx, "gone")
	require.NoError(t, err)
	require.NoError(t, m.Delete(ctx, "gone"))

	_, err = m.Load(ctx, "gone")
	assert.ErrorIs(t, err, ports.ErrCheckpointNotFound)
}
