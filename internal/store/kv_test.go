package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupKV(t *testing.T) (*miniredis.Miniredis, *RedisKV) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, NewRedisKV(client)
}

func TestRedisKV_GetMiss(t *testing.T) {
	_, kv := setupKV(t)

	_, err := kv.Get(context.Background(), "tree:missing")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_SetGet(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "tree:user1", `{"roots":[]}`, time.Minute))

	val, err := kv.Get(ctx, "tree:user1")
	require.NoError(t, err)
	assert.Equal(t, `{"roots":[]}`, val)
}

func TestRedisKV_SetWithTTLExpires(t *testing.T) {
	mr, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "assess:user1", "cached", time.Minute))
	mr.FastForward(2 * time.Minute)

	_, err := kv.Get(ctx, "assess:user1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_Delete(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "tree:user1", "a", 0))
	require.NoError(t, kv.Set(ctx, "assess:user1", "b", 0))
	require.NoError(t, kv.Delete(ctx, "tree:user1", "assess:user1"))

	_, err := kv.Get(ctx, "tree:user1")
	assert.ErrorIs(t, err, ErrMiss)
}

func TestRedisKV_ScanKeys(t *testing.T) {
	_, kv := setupKV(t)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "tree:user1", "a", 0))
	require.NoError(t, kv.Set(ctx, "tree:user2", "b", 0))
	require.NoError(t, kv.Set(ctx, "assess:user1", "c", 0))

	keys, err := kv.ScanKeys(ctx, "tree:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
}
