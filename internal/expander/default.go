package expander

import (
	"context"
	"net/url"
	"sync/atomic"
)

var defaultExpander atomic.Value

func init() {
	SetDefault(New())
}

// SetDefault replaces the process wide expander used by the package level helpers.
func SetDefault(e IExpander) {
	if e == nil {
		return
	}
	defaultExpander.Store(holder{e: e})
}

// holder keeps the stored concrete type stable for atomic.Value.
type holder struct {
	e IExpander
}

func Default() IExpander {
	return defaultExpander.Load().(holder).e
}

func Shortened(u *url.URL) bool {
	return Default().Shortened(u)
}

func Expand(ctx context.Context, u *url.URL, opts ...RequestOption) *url.URL {
	return Default().Expand(ctx, u, opts...)
}

func ExpandStrict(ctx context.Context, u *url.URL, opts ...RequestOption) (*url.URL, error) {
	return Default().ExpandStrict(ctx, u, opts...)
}
