// Package kvstore implements repository.KVCache: a Redis-backed adapter for
// production and an in-memory fake for local development and tests.
package kvstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis adapts a go-redis client to repository.KVCache.
type Redis struct {
	c *redis.Client
}

// NewRedis connects to addr with the given DB index. Connection is lazy;
// go-redis dials on first command.
func NewRedis(addr string, db int) *Redis {
	return &Redis{c: redis.NewClient(&redis.Options{Addr: addr, DB: db})}
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.c.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, key).Err()
}

func (r *Redis) Incr(ctx context.Context, key string) (int64, error) {
	return r.c.Incr(ctx, key).Result()
}

func (r *Redis) ScanPrefix(ctx context.Context, prefix string) ([]string, error) {
	var out []string
	iter := r.c.Scan(ctx, 0, prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Redis) ListPush(ctx context.Context, key string, value []byte, maxLen int) error {
	pipe := r.c.TxPipeline()
	pipe.LPush(ctx, key, value)
	if maxLen > 0 {
		pipe.LTrim(ctx, key, 0, int64(maxLen-1))
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) ListRange(ctx context.Context, key string) ([][]byte, error) {
	vals, err := r.c.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		out[i] = []byte(v)
	}
	return out, nil
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.c.Close()
}
