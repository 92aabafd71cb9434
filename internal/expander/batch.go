package expander

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"
)

const defaultConcurrency = 8

// Result is the outcome of one entry of ExpandAll.
type Result struct {
	Original *url.URL
	Expanded *url.URL
	Kind     Kind
	Err      error
}

// ExpandAll expands uris with at most concurrency requests in flight.
// Results keep the input order. In lenient mode Expanded is always set and Err is nil.
func ExpandAll(ctx context.Context, e IExpander, uris []*url.URL, concurrency int, strict bool, opts ...RequestOption) []Result {
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	results := make([]Result, len(uris))
	var eg errgroup.Group
	eg.SetLimit(concurrency)
	for i, u := range uris {
		i, u := i, u
		eg.Go(func() error {
			expanded, err := e.ExpandStrict(ctx, u, opts...)
			res := Result{Original: u, Kind: KindOf(err)}
			if strict {
				res.Expanded = expanded
				res.Err = err
			} else {
				res.Expanded = Fold(u, expanded, err)
			}
			results[i] = res
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
