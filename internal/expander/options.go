package expander

import "time"

// RequestOption overrides configuration defaults for a single expansion.
type RequestOption func(*requestOptions)

type requestOptions struct {
	redirects    int
	hasRedirects bool
	timeout      time.Duration
}

// WithRedirects sets the remaining hop budget. Negative values are treated as zero.
func WithRedirects(n int) RequestOption {
	return func(o *requestOptions) {
		if n < 0 {
			n = 0
		}
		o.redirects = n
		o.hasRedirects = true
	}
}

// WithTimeout sets the per request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) RequestOption {
	return func(o *requestOptions) {
		if d > 0 {
			o.timeout = d
		}
	}
}

func applyRequestOptions(cfg Config, opts []RequestOption) requestOptions {
	o := requestOptions{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if !o.hasRedirects {
		o.redirects = cfg.Redirects
		o.hasRedirects = true
	}
	if o.timeout <= 0 {
		o.timeout = cfg.Timeout
	}
	return o
}

// EffectiveRedirects returns the budget an expansion with opts starts with.
func EffectiveRedirects(cfg Config, opts ...RequestOption) int {
	return applyRequestOptions(cfg, opts).redirects
}
