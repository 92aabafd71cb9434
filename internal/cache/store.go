package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	TypeNone  = ""
	TypeLRU   = "lru"
	TypeRedis = "redis"
)

// IStore is the key value backend of the expansion cache.
type IStore interface {
	String() string
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Options struct {
	Type  string
	Size  int
	Redis RedisOptions
}

// MakeStore builds the configured store, a nil store means caching is disabled.
func MakeStore(opt Options) (IStore, error) {
	switch strings.ToLower(strings.TrimSpace(opt.Type)) {
	case TypeNone:
		return nil, nil
	case TypeLRU:
		return NewLRUStore(opt.Size)
	case TypeRedis:
		if strings.TrimSpace(opt.Redis.Addr) == "" {
			return nil, fmt.Errorf("redis cache requires addr")
		}
		client := redis.NewClient(&redis.Options{
			Addr:     opt.Redis.Addr,
			Password: opt.Redis.Password,
			DB:       opt.Redis.DB,
		})
		return NewRedisStore(client, opt.Redis.Prefix), nil
	default:
		return nil, fmt.Errorf("cache type:%s not found", opt.Type)
	}
}
