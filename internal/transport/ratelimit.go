package transport

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/xxxsen/embiggen/internal/shortener"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL      = 15 * time.Minute
	limiterCleanupEvery = 2 * time.Minute
)

type limiterEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type rateLimitClient struct {
	next  IHeadClient
	rps   rate.Limit
	burst int

	mu          sync.Mutex
	entries     map[string]*limiterEntry
	lastCleanup time.Time
	now         func() time.Time
}

// WithRateLimit throttles requests per target host. A non-positive qps disables throttling.
func WithRateLimit(next IHeadClient, qps float64, burst int) IHeadClient {
	if next == nil || qps <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitClient{
		next:    next,
		rps:     rate.Limit(qps),
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (c *rateLimitClient) String() string {
	return fmt.Sprintf("ratelimit(%s)", c.next.String())
}

func (c *rateLimitClient) Head(ctx context.Context, u *url.URL) (*Response, error) {
	if u != nil {
		if err := c.limiter(shortener.NormalizeHost(u.Hostname())).Wait(ctx); err != nil {
			return nil, err
		}
	}
	return c.next.Head(ctx, u)
}

func (c *rateLimitClient) limiter(host string) *rate.Limiter {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastCleanup) >= limiterCleanupEvery {
		c.cleanup(now)
		c.lastCleanup = now
	}
	if ent, ok := c.entries[host]; ok {
		ent.lastSeen = now
		return ent.lim
	}
	lim := rate.NewLimiter(c.rps, c.burst)
	c.entries[host] = &limiterEntry{lim: lim, lastSeen: now}
	return lim
}

func (c *rateLimitClient) cleanup(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for k, ent := range c.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(c.entries, k)
		}
	}
}
