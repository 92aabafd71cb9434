package expander

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// URI binds one address to an expander.
type URI struct {
	u *url.URL
	e IExpander
}

// Parse wraps raw with the default expander.
func Parse(raw string) (*URI, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse uri %q: %w", raw, err)
	}
	return Wrap(u), nil
}

// Wrap binds u to the default expander.
func Wrap(u *url.URL) *URI {
	return WrapWith(Default(), u)
}

func WrapWith(e IExpander, u *url.URL) *URI {
	return &URI{u: u, e: e}
}

// URL returns the wrapped address, not the expanded one.
func (u *URI) URL() *url.URL {
	return u.u
}

func (u *URI) String() string {
	return u.u.String()
}

func (u *URI) Shortened() bool {
	return u.e.Shortened(u.u)
}

func (u *URI) Expand(ctx context.Context, opts ...RequestOption) *url.URL {
	return u.e.Expand(ctx, u.u, opts...)
}

func (u *URI) ExpandStrict(ctx context.Context, opts ...RequestOption) (*url.URL, error) {
	return u.e.ExpandStrict(ctx, u.u, opts...)
}
