package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultLRUSize = 10000

type lruEntry struct {
	value  string
	expire time.Time
}

type lruStore struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *lruEntry]
	now   func() time.Time
}

// NewLRUStore creates an in-process store holding at most size keys.
func NewLRUStore(size int) (IStore, error) {
	if size <= 0 {
		size = defaultLRUSize
	}
	c, err := lru.New[string, *lruEntry](size)
	if err != nil {
		return nil, fmt.Errorf("init lru failed: %w", err)
	}
	return &lruStore{cache: c, now: time.Now}, nil
}

func (s *lruStore) String() string {
	return "lru"
}

func (s *lruStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ent, ok := s.cache.Get(key)
	if !ok || ent == nil {
		return "", false, nil
	}
	if !ent.expire.IsZero() && !s.now().Before(ent.expire) {
		s.cache.Remove(key)
		return "", false, nil
	}
	return ent.value, true, nil
}

func (s *lruStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	ent := &lruEntry{value: value}
	if ttl > 0 {
		ent.expire = s.now().Add(ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Add(key, ent)
	return nil
}
