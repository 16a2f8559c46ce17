package lambdaapi

import (
	"context"
	"time"
)

// OnReceiveFunc is called after normalization succeeds, before route
// matching. Use it to enrich the context with logging fields or trace
// spans; the returned context is used for the rest of the dispatch.
type OnReceiveFunc func(ctx context.Context, req *Request) context.Context

// OnMatchFunc is called once a route has been resolved, just before the
// chain executes.
type OnMatchFunc func(ctx context.Context, req *Request, pattern string)

// OnNotFoundFunc is called when the path matches no route, or the path
// matches but the method does not.
type OnNotFoundFunc func(ctx context.Context, req *Request, err error)

// OnSuccessFunc is called after a dispatch settles with a reply.
type OnSuccessFunc func(ctx context.Context, req *Request, status int, d time.Duration)

// OnFailureFunc is called when a dispatch settles through the fallback
// path: the error chain failed or exhausted, or the deadline expired.
type OnFailureFunc func(ctx context.Context, req *Request, err error, d time.Duration)

// hooks holds all configured hook functions. Hooks are fire-and-forget
// observers: they must not block, and nothing they do feeds back into
// the pipeline.
type hooks struct {
	onReceive  []OnReceiveFunc
	onMatch    []OnMatchFunc
	onNotFound []OnNotFoundFunc
	onSuccess  []OnSuccessFunc
	onFailure  []OnFailureFunc
}

// WithOnReceive adds a hook called after normalization. Multiple hooks
// are called in order, with the context chaining through each.
func WithOnReceive(fn OnReceiveFunc) Option {
	return func(a *API) {
		a.hooks.onReceive = append(a.hooks.onReceive, fn)
	}
}

// WithOnMatch adds a hook called after route resolution.
func WithOnMatch(fn OnMatchFunc) Option {
	return func(a *API) {
		a.hooks.onMatch = append(a.hooks.onMatch, fn)
	}
}

// WithOnNotFound adds a hook called on unmatched dispatches.
func WithOnNotFound(fn OnNotFoundFunc) Option {
	return func(a *API) {
		a.hooks.onNotFound = append(a.hooks.onNotFound, fn)
	}
}

// WithOnSuccess adds a hook called after a dispatch settles with a reply.
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(a *API) {
		a.hooks.onSuccess = append(a.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called when a dispatch falls back to the
// fixed error reply.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(a *API) {
		a.hooks.onFailure = append(a.hooks.onFailure, fn)
	}
}
