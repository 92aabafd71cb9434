package expander

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/embiggen/internal/shortener"
	"github.com/xxxsen/embiggen/internal/transport"
	"go.uber.org/zap"
)

const (
	DefaultRedirects = 5
	DefaultTimeout   = 10 * time.Second
)

// Config is snapshotted by New and never changes afterwards.
type Config struct {
	Redirects  int
	Timeout    time.Duration
	Shorteners shortener.ISet
}

func DefaultConfig() Config {
	return Config{
		Redirects:  DefaultRedirects,
		Timeout:    DefaultTimeout,
		Shorteners: shortener.Builtin(),
	}
}

// IExpander resolves shortened URIs to their destination.
type IExpander interface {
	Config() Config
	Shortened(u *url.URL) bool
	// ExpandStrict returns every failure to the caller.
	ExpandStrict(ctx context.Context, u *url.URL, opts ...RequestOption) (*url.URL, error)
	// Expand never fails, see Fold.
	Expand(ctx context.Context, u *url.URL, opts ...RequestOption) *url.URL
}

type Option func(*Expander)

func WithConfig(cfg Config) Option {
	return func(e *Expander) {
		e.cfg = cfg
	}
}

func WithHeadClient(c transport.IHeadClient) Option {
	return func(e *Expander) {
		e.client = c
	}
}

type Expander struct {
	cfg    Config
	client transport.IHeadClient
}

func New(opts ...Option) *Expander {
	e := &Expander{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(e)
	}
	if e.cfg.Redirects < 0 {
		e.cfg.Redirects = 0
	}
	if e.cfg.Timeout <= 0 {
		e.cfg.Timeout = DefaultTimeout
	}
	if e.cfg.Shorteners == nil {
		e.cfg.Shorteners = shortener.Builtin()
	}
	if e.client == nil {
		e.client = transport.New()
	}
	return e
}

func (e *Expander) Config() Config {
	return e.cfg
}

func (e *Expander) Shortened(u *url.URL) bool {
	if shortener.IsAll(e.cfg.Shorteners) {
		return true
	}
	if u == nil {
		return false
	}
	return e.cfg.Shorteners.Match(u.Hostname())
}

func (e *Expander) Expand(ctx context.Context, u *url.URL, opts ...RequestOption) *url.URL {
	if u == nil {
		return nil
	}
	expanded, err := e.ExpandStrict(ctx, u, opts...)
	if err != nil {
		logutil.GetLogger(ctx).Debug("expand failed, fallback",
			zap.String("uri", u.String()),
			zap.String("kind", KindOf(err).String()),
			zap.Error(err),
		)
	}
	return Fold(u, expanded, err)
}

func (e *Expander) ExpandStrict(ctx context.Context, u *url.URL, opts ...RequestOption) (*url.URL, error) {
	if u == nil {
		return nil, fmt.Errorf("nil url")
	}
	o := applyRequestOptions(e.cfg, opts)
	all := shortener.IsAll(e.cfg.Shorteners)
	logger := logutil.GetLogger(ctx).With(zap.String("origin", u.String()))

	cur := u
	for remaining := o.redirects; ; remaining-- {
		if !e.Shortened(cur) {
			return cur, nil
		}
		if remaining <= 0 {
			return nil, &TooManyRedirectsError{URI: cur}
		}
		location, err := e.headLocation(ctx, cur, o.timeout)
		if err != nil {
			logger.Error("head request failed", zap.String("uri", cur.String()), zap.Error(err))
			return nil, err
		}
		logger.Debug("head request done",
			zap.String("uri", cur.String()),
			zap.Int("remaining_redirects", remaining),
			zap.String("location", location),
		)
		if location == "" {
			if all {
				return cur, nil
			}
			return nil, &BadShortenedURIError{URI: cur}
		}
		next, err := cur.Parse(location)
		if err != nil {
			return nil, err
		}
		cur = next
	}
}

func (e *Expander) headLocation(ctx context.Context, u *url.URL, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	resp, err := e.client.Head(ctx, u)
	if err != nil {
		return "", err
	}
	if !resp.IsRedirect() {
		return "", nil
	}
	return resp.Location, nil
}
