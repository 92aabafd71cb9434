package expander

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/embiggen/internal/cache"
	"go.uber.org/zap"
)

const defaultCacheTTL = 24 * time.Hour

// TryEnableExpanderCache adds a caching layer on top of in when a store is supplied.
// Only successful strict expansions are cached.
func TryEnableExpanderCache(in IExpander, store cache.IStore, ttl time.Duration) IExpander {
	if in == nil || store == nil {
		return in
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &cacheExpander{next: in, store: store, ttl: ttl}
}

type cacheExpander struct {
	next  IExpander
	store cache.IStore
	ttl   time.Duration
}

func (c *cacheExpander) Config() Config {
	return c.next.Config()
}

func (c *cacheExpander) Shortened(u *url.URL) bool {
	return c.next.Shortened(u)
}

func (c *cacheExpander) Expand(ctx context.Context, u *url.URL, opts ...RequestOption) *url.URL {
	if u == nil {
		return nil
	}
	expanded, err := c.ExpandStrict(ctx, u, opts...)
	return Fold(u, expanded, err)
}

func (c *cacheExpander) ExpandStrict(ctx context.Context, u *url.URL, opts ...RequestOption) (*url.URL, error) {
	if u == nil || !c.next.Shortened(u) {
		return c.next.ExpandStrict(ctx, u, opts...)
	}
	key := buildCacheKey(u, EffectiveRedirects(c.next.Config(), opts...))
	logger := logutil.GetLogger(ctx).With(zap.String("cache", c.store.String()), zap.String("key", key))

	v, ok, err := c.store.Get(ctx, key)
	if err != nil {
		logger.Error("read expand cache failed", zap.Error(err))
	}
	if ok {
		if cached, err := url.Parse(v); err == nil {
			logger.Debug("expand cache hit")
			return cached, nil
		}
	}

	expanded, err := c.next.ExpandStrict(ctx, u, opts...)
	if err != nil {
		return nil, err
	}
	if err := c.store.Set(ctx, key, expanded.String(), c.ttl); err != nil {
		logger.Error("write expand cache failed", zap.Error(err))
	}
	return expanded, nil
}

func buildCacheKey(u *url.URL, redirects int) string {
	return fmt.Sprintf("%d|%s", redirects, u.String())
}
