package availability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// GridCache stores computed grids by local date. Every invalidation bumps
// the date's version; Set only stores a grid built at the current version,
// so a grid read before a commit is never written back after it.
type GridCache interface {
	Get(ctx context.Context, date string) (*Grid, bool, error)
	Version(ctx context.Context, date string) (int64, error)
	Set(ctx context.Context, date string, version int64, grid *Grid) error
	Invalidate(ctx context.Context, dates ...string) error
}

type nopCache struct{}

// NopCache disables grid caching.
func NopCache() GridCache { return nopCache{} }

func (nopCache) Get(context.Context, string) (*Grid, bool, error) { return nil, false, nil }
func (nopCache) Version(context.Context, string) (int64, error)   { return 0, nil }
func (nopCache) Set(context.Context, string, int64, *Grid) error  { return nil }
func (nopCache) Invalidate(context.Context, ...string) error      { return nil }

// RedisGridCache keeps JSON encoded grids in Redis under
// "availability:grid:<zone>:<date>" and their versions under
// "availability:version:<zone>:<date>".
type RedisGridCache struct {
	client *redis.Client
	ttl    time.Duration
	zone   string
}

func NewRedisGridCache(client *redis.Client, zone string, ttl time.Duration) *RedisGridCache {
	return &RedisGridCache{client: client, ttl: ttl, zone: zone}
}

func (c *RedisGridCache) key(date string) string {
	return fmt.Sprintf("availability:grid:%s:%s", c.zone, date)
}

func (c *RedisGridCache) versionKey(date string) string {
	return fmt.Sprintf("availability:version:%s:%s", c.zone, date)
}

func (c *RedisGridCache) version(ctx context.Context, cmd redis.Cmdable, date string) (int64, error) {
	v, err := cmd.Get(ctx, c.versionKey(date)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

func (c *RedisGridCache) Version(ctx context.Context, date string) (int64, error) {
	v, err := c.version(ctx, c.client, date)
	if err != nil {
		return 0, fmt.Errorf("get grid version: %w", err)
	}
	return v, nil
}

func (c *RedisGridCache) Get(ctx context.Context, date string) (*Grid, bool, error) {
	data, err := c.client.Get(ctx, c.key(date)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cached grid: %w", err)
	}

	var grid Grid
	if err := json.Unmarshal(data, &grid); err != nil {
		return nil, false, fmt.Errorf("decode cached grid: %w", err)
	}
	return &grid, true, nil
}

// Set stores grid unless the date was invalidated after version was read.
func (c *RedisGridCache) Set(ctx context.Context, date string, version int64, grid *Grid) error {
	data, err := json.Marshal(grid)
	if err != nil {
		return fmt.Errorf("encode grid: %w", err)
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.version(ctx, tx, date)
		if err != nil {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.key(date), data, c.ttl)
			return nil
		})
		return err
	}, c.versionKey(date))
	if errors.Is(err, redis.TxFailedErr) {
		// Invalidated while writing.
		return nil
	}
	return err
}

func (c *RedisGridCache) Invalidate(ctx context.Context, dates ...string) error {
	if len(dates) == 0 {
		return nil
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, d := range dates {
			pipe.Incr(ctx, c.versionKey(d))
			pipe.Del(ctx, c.key(d))
		}
		return nil
	})
	return err
}
