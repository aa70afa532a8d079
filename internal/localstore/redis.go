package localstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores one hash per browser. Every write slides the hash's expiry.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	return &Redis{rdb: rdb, ttl: ttl}
}

func browserKey(browser string) string {
	return "browser:" + browser
}

func (r *Redis) Get(ctx context.Context, browser, key string) (string, bool, error) {
	v, err := r.rdb.HGet(ctx, browserKey(browser), key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, browser, key, value string) error {
	k := browserKey(browser)
	pipe := r.rdb.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	if r.ttl > 0 {
		pipe.Expire(ctx, k, r.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (r *Redis) Delete(ctx context.Context, browser, key string) error {
	return r.rdb.HDel(ctx, browserKey(browser), key).Err()
}
