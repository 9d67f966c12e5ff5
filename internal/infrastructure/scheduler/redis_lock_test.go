package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisLock(client, nil), mr
}

func TestRedisLockExclusive(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	ok, err := lock.TryLock(ctx, "rebuild", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.TryLock(ctx, "rebuild", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Unlock(ctx, "rebuild"))
	assert.False(t, mr.Exists(lockPrefix+"rebuild"))

	ok, err = lock.TryLock(ctx, "rebuild", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockExpires(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	ok, err := lock.TryLock(ctx, "rebuild", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = lock.TryLock(ctx, "rebuild", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockUnlockForeignOwner(t *testing.T) {
	lock, mr := newTestLock(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(lockPrefix+"rebuild", "other-host:1"))

	require.NoError(t, lock.Unlock(ctx, "rebuild"))
	got, err := mr.Get(lockPrefix + "rebuild")
	require.NoError(t, err)
	assert.Equal(t, "other-host:1", got)
}
