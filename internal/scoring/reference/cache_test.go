package reference

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCache_SetGet(t *testing.T) {
	mr, client := newMiniredisClient(t)
	cache := NewCache(client, "", time.Hour)
	ctx := context.Background()

	_, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)

	snap := syntheticTables(t).Snapshot()
	require.NoError(t, cache.Set(ctx, snap))

	assert.True(t, mr.Exists(DefaultCacheKey))
	assert.Equal(t, time.Hour, mr.TTL(DefaultCacheKey))

	got, found, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.True(t, found)
	if diff := cmp.Diff(snap, got); diff != "" {
		t.Errorf("cached snapshot mismatch (-want +got):\n%s", diff)
	}

	mr.FastForward(2 * time.Hour)
	_, found, err = cache.Get(ctx)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCache_Invalidate(t *testing.T) {
	mr, client := newMiniredisClient(t)
	cache := NewCache(client, "custom:key", time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, Snapshot{}))
	assert.True(t, mr.Exists("custom:key"))

	require.NoError(t, cache.Invalidate(ctx))
	assert.False(t, mr.Exists("custom:key"))
}

func TestCache_CorruptValue(t *testing.T) {
	mr, client := newMiniredisClient(t)
	require.NoError(t, mr.Set(DefaultCacheKey, "{not json"))

	_, found, err := NewCache(client, "", time.Minute).Get(context.Background())
	assert.False(t, found)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode cached snapshot")
}

func TestCache_RedisErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewCache(client, "k", time.Minute)
	ctx := context.Background()

	mock.ExpectGet("k").SetErr(errors.New("connection refused"))
	_, found, err := cache.Get(ctx)
	assert.False(t, found)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	data, err := json.Marshal(Snapshot{})
	require.NoError(t, err)
	mock.ExpectSet("k", data, time.Minute).SetErr(errors.New("READONLY"))
	err = cache.Set(ctx, Snapshot{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "READONLY")

	assert.NoError(t, mock.ExpectationsWereMet())
}
