package store

import (
	"context"
	"errors"
	"github.com/redis/go-redis/v9"
)

const redisPrefix = "storefront:"

// Redis keeps each collection as a plain string value with no TTL.
type Redis struct{ RDB *redis.Client }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := r.RDB.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *Redis) Put(ctx context.Context, key string, value []byte) error {
	return r.RDB.Set(ctx, redisPrefix+key, value, 0).Err()
}

func (r *Redis) Close() error { return r.RDB.Close() }
