package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/adapters/file"
	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

func TestFileStore_Contract(t *testing.T) {
	store := file.New(t.TempDir())
	ports.RunCheckpointStoreContract(t, store)
}

func TestFileStore_SaveCreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "checkpoints")
	store := file.New(base)

	st := state.State{registry.VersionField: registry.CurrentSchemaVersion}
	require.NoError(t, store.Save(context.Background(), "cp1", st))

	_, err := os.Stat(filepath.Join(base, "cp1.json"))
	assert.NoError(t, err)
}

func TestFileStore_NoTempFilesLeftBehind(t *testing.T) {
	base := t.TempDir()
	store := file.New(base)
	ctx := context.Background()

	st := state.State{registry.VersionField: registry.CurrentSchemaVersion}
	require.NoError(t, store.Save(ctx, "cp1", st))
	require.NoError(t, store.Save(ctx, "cp1", st))

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "cp1.json", entries[0].Name())
}

func TestFileStore_RejectsEmptyID(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", state.State{}))
	_, err := store.Load(ctx, "")
	assert.Error(t, err)
	assert.Error(t, store.Delete(ctx, ""))
}
