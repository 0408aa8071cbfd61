package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

// RunCheckpointStoreContract runs a suite of tests verifying that a
// CheckpointStore implementation adheres to the interface contract.
func RunCheckpointStoreContract(t *testing.T, store CheckpointStore) {
	ctx := context.Background()
	id := "contract-checkpoint-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		st := state.State{
			registry.VersionField: registry.CurrentSchemaVersion,
			"current_task":        "review",
			"messages": []any{
				state.Message{Type: "human", Content: "hello"},
			},
		}

		err := store.Save(ctx, id, st)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, registry.CurrentSchemaVersion, loaded.Version())
		assert.Equal(t, "review", loaded["current_task"])

		// Message envelopes must survive persistence.
		msgs, ok := loaded["messages"].([]any)
		require.True(t, ok, "messages should round-trip as a list")
		require.Len(t, msgs, 1)
		msg, ok := msgs[0].(state.Message)
		require.True(t, ok, "message should be reconstructed, got %T", msgs[0])
		assert.Equal(t, "hello", msg.Content)
	})

	t.Run("Saved copy is isolated", func(t *testing.T) {
		st := state.State{
			registry.VersionField: registry.CurrentSchemaVersion,
			"current_task":        "original",
		}
		require.NoError(t, store.Save(ctx, id, st))

		st["current_task"] = "mutated after save"

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "original", loaded["current_task"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, ErrCheckpointNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		st := state.State{registry.VersionField: registry.CurrentSchemaVersion}
		require.NoError(t, store.Save(ctx, id, st))

		err := store.Delete(ctx, id)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, ErrCheckpointNotFound, "Load after Delete should return ErrCheckpointNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := id + "-1"
		id2 := id + "-2"
		st := state.State{registry.VersionField: registry.CurrentSchemaVersion}
		_ = store.Save(ctx, id1, st)
		_ = store.Save(ctx, id2, st)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		checkpoints, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, checkpoints, id1)
		assert.Contains(t, checkpoints, id2)
	})
}
