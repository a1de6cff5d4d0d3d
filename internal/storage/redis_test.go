package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisStore_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, snapshotKey)
	store := NewRedisStore(client)

	snap, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, snap, "empty key signals a fresh store")

	require.NoError(t, store.Save(sampleSnapshot()))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Len(t, loaded.Businesses, 3)
	assert.Equal(t, int64(7), loaded.Stock(2, 1))

	client.Del(ctx, snapshotKey)
}
