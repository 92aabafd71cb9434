package server

import (
	"github.com/xxxsen/embiggen/internal/expander"
)

// Option configures the HTTP server.
type Option func(*options)

type options struct {
	bind        string
	e           expander.IExpander
	concurrency int
}

// WithBind configures the bind address.
func WithBind(bind string) Option {
	return func(o *options) {
		o.bind = bind
	}
}

func WithExpander(e expander.IExpander) Option {
	return func(o *options) {
		o.e = e
	}
}

// WithConcurrency bounds the parallel expansions of one batch request.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
