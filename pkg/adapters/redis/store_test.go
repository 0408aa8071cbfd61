package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/swarmstate/pkg/adapters/redis"
	"github.com/aretw0/swarmstate/pkg/ports"
	"github.com/aretw0/swarmstate/pkg/registry"
	"github.com/aretw0/swarmstate/pkg/state"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func minimalState() state.State {
	return state.State{registry.VersionField: registry.CurrentSchemaVersion}
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newTestClient(t)
	store := redis.NewFromClient(client)
	ports.RunCheckpointStoreContract(t, store)
}

func TestRedisStore_TTLExpiration(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "cp-ttl", minimalState()))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "cp-ttl")

	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "cp-ttl")
	assert.ErrorIs(t, err, ports.ErrCheckpointNotFound)

	// Index pruning uses wall time, so wait past the TTL before listing.
	time.Sleep(1200 * time.Millisecond)

	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newTestClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "my-checkpoint", minimalState()))

	assert.True(t, mr.Exists("custom:app:my-checkpoint"))
	assert.True(t, mr.Exists("custom:app:index"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "my-checkpoint")
}

func TestRedisLocker_MutualExclusion(t *testing.T) {
	_, client := newTestClient(t)
	locker := redis.NewLocker(client, "")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "cp1", time.Minute)
	require.NoError(t, err)

	// Second acquisition must block until cancellation.
	blocked, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(blocked, "cp1", time.Minute)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	require.NoError(t, unlock(ctx))

	unlock2, err := locker.Lock(ctx, "cp1", time.Minute)
	require.NoError(t, err)
	require.NoError(t, unlock2(ctx))
}
