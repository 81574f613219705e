package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bookpulse-lab/bookpulse/internal/storage"
	"github.com/redis/go-redis/v9"
)

// checkpointKey is the well-known cache key holding the aggregation
// checkpoint. Entries are written without TTL so the value survives until
// explicitly overwritten.
const checkpointKey = "bookpulse:last_processed_timestamp"

// CheckpointCache implements storage.CheckpointCache on Redis. Redis is
// shared across processes, so the checkpoint survives restarts.
type CheckpointCache struct {
	client *redis.Client
}

// NewCheckpointCache creates a checkpoint cache on the given Redis client.
func NewCheckpointCache(client *redis.Client) *CheckpointCache {
	return &CheckpointCache{client: client}
}

// Connect opens a Redis client and verifies connectivity.
func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	slog.Info("[Redis] Connected", "addr", addr, "db", db)
	return client, nil
}

// Get returns the stored checkpoint, or storage.ErrNotFound when the key is
// absent.
func (c *CheckpointCache) Get(ctx context.Context) (time.Time, error) {
	raw, err := c.client.Get(ctx, checkpointKey).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, storage.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored checkpoint %q: %w", raw, err)
	}
	return ts.UTC(), nil
}

// Set overwrites the checkpoint. No TTL.
func (c *CheckpointCache) Set(ctx context.Context, t time.Time) error {
	if err := c.client.Set(ctx, checkpointKey, t.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("failed to write checkpoint: %w", err)
	}
	return nil
}
