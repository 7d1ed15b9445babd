package storage

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis creates a miniredis server and a RedisStore pointing at it
func setupTestRedis(t *testing.T, ttl time.Duration) (*RedisStore, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })

	return NewRedisStore(client, ttl), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := setupTestRedis(t, 0)
	runStoreContract(t, store)
}

func TestRedisStore_StoresRawValueUnderKey(t *testing.T) {
	store, mr := setupTestRedis(t, 0)

	err := store.Set(context.Background(), CartKey, "[]")
	require.NoError(t, err)

	stored, err := mr.Get(CartKey)
	require.NoError(t, err)
	assert.Equal(t, "[]", stored)
	assert.Zero(t, mr.TTL(CartKey), "no TTL configured")
}

func TestRedisStore_WithTTL(t *testing.T) {
	store, mr := setupTestRedis(t, time.Hour)

	require.NoError(t, store.Set(context.Background(), ShippingKey, "{}"))
	assert.Equal(t, time.Hour, mr.TTL(ShippingKey))

	mr.FastForward(2 * time.Hour)
	_, err := store.Get(context.Background(), ShippingKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_ServerDown(t *testing.T) {
	store, mr := setupTestRedis(t, 0)
	mr.Close()

	_, err := store.Get(context.Background(), CartKey)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "redis get failed")
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := ConnectRedis(ctx, addr, "", 0, 0)
	assert.ErrorContains(t, err, "redis ping failed")
}
