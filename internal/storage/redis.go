package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bizcontrol/internal/retail"
)

const snapshotKey = "bizcontrol:snapshot"

// RedisStore keeps the snapshot under a single key. The engine is the only
// writer, so a plain SET is enough; the value is the same JSON document
// the file store writes.
type RedisStore struct {
	client  *redis.Client
	timeout time.Duration
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, timeout: 5 * time.Second}
}

func (r *RedisStore) Load() (*retail.Snapshot, error) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	data, err := r.client.Get(ctx, snapshotKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading snapshot from redis: %w", err)
	}
	return decodeSnapshot(data)
}

func (r *RedisStore) Save(s *retail.Snapshot) error {
	data, err := encodeSnapshot(s)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, snapshotKey, data, 0).Err(); err != nil {
		return fmt.Errorf("writing snapshot to redis: %w", err)
	}
	return nil
}
