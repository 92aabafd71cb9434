package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "embiggen:expand"

type redisStore struct {
	rdb    redis.Cmdable
	prefix string
}

// NewRedisStore shares expansion results between processes.
func NewRedisStore(rdb redis.Cmdable, prefix string) IStore {
	prefix = strings.Trim(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{rdb: rdb, prefix: prefix}
}

func (s *redisStore) String() string {
	return "redis"
}

func (s *redisStore) key(k string) string {
	return s.prefix + ":" + k
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return s.rdb.Set(ctx, s.key(key), value, ttl).Err()
}
