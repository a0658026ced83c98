package memory

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisListStore backs ListStore with Redis list commands.
type RedisListStore struct {
	rdb *redis.Client
}

var _ ListStore = &RedisListStore{}

func NewRedisListStore(rdb *redis.Client) *RedisListStore {
	return &RedisListStore{rdb: rdb}
}

func (r *RedisListStore) Append(ctx context.Context, key string, value string) error {
	return r.rdb.RPush(ctx, key, value).Err()
}

func (r *RedisListStore) Range(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.rdb.LRange(ctx, key, start, stop).Result()
}

func (r *RedisListStore) Trim(ctx context.Context, key string, start, stop int64) error {
	return r.rdb.LTrim(ctx, key, start, stop).Err()
}

func (r *RedisListStore) Size(ctx context.Context, key string) (int64, error) {
	return r.rdb.LLen(ctx, key).Result()
}

func (r *RedisListStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return r.rdb.Expire(ctx, key, ttl).Err()
}
