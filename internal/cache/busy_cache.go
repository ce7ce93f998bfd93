package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"daveenci/internal/entities"
	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "availability:busy:"

// BusyCache stores merged busy sets keyed by their query window.
type BusyCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewBusyCache(rdb *redis.Client, ttl time.Duration) *BusyCache {
	return &BusyCache{rdb: rdb, ttl: ttl, prefix: defaultPrefix}
}

// NewClient opens a Redis client and checks it with a short ping.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (c *BusyCache) key(start, end time.Time) string {
	return Key(c.prefix, start, end)
}

// Key is the cache key for the window [start, end], independent of the
// zones the bounds were given in.
func Key(prefix string, start, end time.Time) string {
	return prefix + start.UTC().Format(time.RFC3339Nano) + "/" + end.UTC().Format(time.RFC3339Nano)
}

// Get returns ok=false on a miss.
func (c *BusyCache) Get(ctx context.Context, start, end time.Time) ([]entities.BusySlot, bool, error) {
	b, err := c.rdb.Get(ctx, c.key(start, end)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("error reading busy cache: %w", err)
	}
	var slots []entities.BusySlot
	if err := json.Unmarshal(b, &slots); err != nil {
		return nil, false, fmt.Errorf("error decoding busy cache entry: %w", err)
	}
	return slots, true, nil
}

func (c *BusyCache) Set(ctx context.Context, start, end time.Time, slots []entities.BusySlot) error {
	b, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, c.key(start, end), b, c.ttl).Err(); err != nil {
		return fmt.Errorf("error writing busy cache: %w", err)
	}
	return nil
}

// Invalidate drops every cached window. Called after a booking commits so
// the new consultation shows up on the next read.
func (c *BusyCache) Invalidate(ctx context.Context) error {
	iter := c.rdb.Scan(ctx, 0, c.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("error scanning busy cache: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
