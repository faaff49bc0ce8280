package redisx

import (
	"context"
	"fmt"
	"github.com/redis/go-redis/v9"
	"time"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// Dedup remembers processed event ids for TTLDedup.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

// FirstSeen atomically marks id as processed and reports whether this call was
// the first to do so.
func (d *Dedup) FirstSeen(ctx context.Context, id string) (bool, error) {
	key := fmt.Sprintf(KeyDedup, d.Service, id)
	return d.RDB.SetNX(ctx, key, "1", TTLDedup).Result()
}

// Forget drops the marker so a failed event can be retried.
func (d *Dedup) Forget(ctx context.Context, id string) error {
	return d.RDB.Del(ctx, fmt.Sprintf(KeyDedup, d.Service, id)).Err()
}
