package transport

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultUserAgent = "embiggen/1.0 (+https://github.com/xxxsen/embiggen)"

// Response carries the only response fields redirect resolution consumes.
type Response struct {
	StatusCode int
	Location   string
}

// IsRedirect reports whether the status belongs to the 3xx class.
func (r *Response) IsRedirect() bool {
	return r != nil && r.StatusCode >= 300 && r.StatusCode < 400
}

// IHeadClient performs a single HEAD request without following redirects.
type IHeadClient interface {
	String() string
	Head(ctx context.Context, u *url.URL) (*Response, error)
}

// Option configures the HEAD client.
type Option func(*options)

type options struct {
	userAgent   string
	dialTimeout time.Duration
	tlsConfig   *tls.Config
	rt          http.RoundTripper
}

func WithUserAgent(ua string) Option {
	return func(o *options) {
		o.userAgent = ua
	}
}

func WithDialTimeout(d time.Duration) Option {
	return func(o *options) {
		o.dialTimeout = d
	}
}

// WithTLSConfig overrides the TLS settings used for https targets.
func WithTLSConfig(c *tls.Config) Option {
	return func(o *options) {
		o.tlsConfig = c
	}
}

// WithRoundTripper replaces the whole transport, tls and dial options are ignored.
func WithRoundTripper(rt http.RoundTripper) Option {
	return func(o *options) {
		o.rt = rt
	}
}

type httpHeadClient struct {
	client    *http.Client
	userAgent string
}

// New creates a HEAD client for http and https targets.
func New(opts ...Option) IHeadClient {
	o := &options{
		userAgent:   defaultUserAgent,
		dialTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(o)
	}
	if strings.TrimSpace(o.userAgent) == "" {
		o.userAgent = defaultUserAgent
	}
	rt := o.rt
	if rt == nil {
		tlsConfig := o.tlsConfig
		if tlsConfig == nil {
			tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		rt = &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   o.dialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSClientConfig:     tlsConfig,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableCompression:  true,
		}
	}
	client := &http.Client{
		Transport: rt,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &httpHeadClient{client: client, userAgent: o.userAgent}
}

func (c *httpHeadClient) String() string {
	return "http-head"
}

func (c *httpHeadClient) Head(ctx context.Context, u *url.URL) (*Response, error) {
	if u == nil {
		return nil, fmt.Errorf("nil url")
	}
	switch u.Scheme {
	case "http", "https":
	default:
		return nil, fmt.Errorf("unsupported url scheme:%s", u.Scheme)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, unwrapURLError(err)
	}
	defer resp.Body.Close()

	logutil.GetLogger(ctx).Debug("head request finished",
		zap.String("uri", u.String()),
		zap.Int("status", resp.StatusCode),
	)
	return &Response{
		StatusCode: resp.StatusCode,
		Location:   resp.Header.Get("Location"),
	}, nil
}

// unwrapURLError drops the *url.Error envelope so callers see the network error itself.
func unwrapURLError(err error) error {
	if ue, ok := err.(*url.Error); ok && ue.Err != nil {
		return ue.Err
	}
	return err
}
