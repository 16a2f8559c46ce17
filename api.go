package lambdaapi

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// API dispatches normalized gateway events to registered routes.
//
// Usage:
//  1. Create an API with New
//  2. Register middleware with Use / UseOn and error handlers with
//     UseError / UseErrorOn
//  3. Register routes with Get, Post, and the other verb methods
//  4. Dispatch raw events with Dispatch
//
// The route table seals on the first Dispatch: registration methods
// return ErrSealed afterwards, and the sealed table is safe for
// concurrent dispatches. Each dispatch is fully isolated; the only
// shared state is the read-only route table.
type API struct {
	registry *registry
	hooks    hooks

	log        *zap.Logger
	debug      bool
	base       string
	format     Format
	compressor Compressor
	mime       MIMELookup
	status     StatusDescriber

	sealed atomic.Bool
}

// RouteInfo describes one registered route, for table inspection.
type RouteInfo struct {
	Method  string
	Pattern string
}

// New creates an API with the given options.
//
// Example:
//
//	app := lambdaapi.New(
//	    lambdaapi.WithLogger(log),
//	    lambdaapi.WithCompression(lambdaapi.GzipCompressor{}),
//	)
func New(opts ...Option) *API {
	a := &API{
		registry: newRegistry(),
		log:      zap.NewNop(),
		mime:     DefaultMIME(),
		status:   DefaultStatusDescriber(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Get registers a GET route.
func (a *API) Get(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodGet, pattern, h, mw)
}

// Post registers a POST route.
func (a *API) Post(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodPost, pattern, h, mw)
}

// Put registers a PUT route.
func (a *API) Put(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodPut, pattern, h, mw)
}

// Patch registers a PATCH route.
func (a *API) Patch(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodPatch, pattern, h, mw)
}

// Delete registers a DELETE route.
func (a *API) Delete(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodDelete, pattern, h, mw)
}

// Head registers a HEAD route. Without one, HEAD requests fall through
// to the GET route for the same path.
func (a *API) Head(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodHead, pattern, h, mw)
}

// Options registers an OPTIONS route.
func (a *API) Options(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(http.MethodOptions, pattern, h, mw)
}

// Any registers a route matching every method once the path matches.
func (a *API) Any(pattern string, h HandlerFunc, mw ...Middleware) error {
	return a.route(methodAny, pattern, h, mw)
}

func (a *API) route(method, pattern string, h HandlerFunc, mw []Middleware) error {
	if a.sealed.Load() {
		return ErrSealed
	}
	full := joinPath(a.base, pattern)
	if err := a.registry.addRoute(method, full, h, mw); err != nil {
		return err
	}
	a.log.Debug("route registered",
		zap.String("method", strings.ToUpper(method)),
		zap.String("pattern", full),
	)
	return nil
}

// Use registers global middleware, run for every dispatch in
// registration order before any scoped or route middleware.
func (a *API) Use(mw ...Middleware) error {
	if a.sealed.Load() {
		return ErrSealed
	}
	a.registry.addGlobal(mw...)
	return nil
}

// UseOn registers middleware scoped to a path prefix. Scoped middleware
// runs after global middleware, outer prefixes before inner ones.
func (a *API) UseOn(prefix string, mw ...Middleware) error {
	if a.sealed.Load() {
		return ErrSealed
	}
	a.registry.addScoped(joinPath(a.base, prefix), mw...)
	return nil
}

// UseError registers a global error handler. Error handlers form a
// parallel chain consulted only after a unit has failed.
func (a *API) UseError(eh ...ErrorHandler) error {
	if a.sealed.Load() {
		return ErrSealed
	}
	a.registry.addErrGlobal(eh...)
	return nil
}

// UseErrorOn registers an error handler scoped to a path prefix.
func (a *API) UseErrorOn(prefix string, eh ...ErrorHandler) error {
	if a.sealed.Load() {
		return ErrSealed
	}
	a.registry.addErrScoped(joinPath(a.base, prefix), eh...)
	return nil
}

// Routes returns the registered route table in registration order.
func (a *API) Routes() []RouteInfo {
	out := make([]RouteInfo, 0, len(a.registry.routes))
	for _, rt := range a.registry.routes {
		out = append(out, RouteInfo{Method: rt.Method, Pattern: rt.Pattern})
	}
	return out
}

// Dispatch normalizes a raw gateway event, runs the matched chain, and
// returns the reply serialized in the event's wire format.
//
// Every dispatch against a recognized event shape produces exactly one
// well-formed reply; handler failures never escape as errors. The only
// error returns are events whose shape cannot be fingerprinted at all,
// since there is no wire format to phrase a reply in.
//
// The context's deadline bounds the dispatch: on expiry the fixed
// internal-failure reply is returned, no further unit starts, and the
// in-flight unit's eventual completion is ignored.
func (a *API) Dispatch(ctx context.Context, raw []byte) ([]byte, error) {
	if a.sealed.CompareAndSwap(false, true) {
		a.log.Debug("route table sealed", zap.Int("routes", len(a.registry.routes)))
	}
	start := time.Now()

	req, err := normalize(raw, a.format)
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) && ferr.Format != FormatUnknown {
			// Known shape, malformed payload: reply 400 in that shape
			// without running any user code.
			res := newResponse()
			_ = res.Error(http.StatusBadRequest, http.StatusText(http.StatusBadRequest))
			return denormalize(res, ferr.Format, false, a.status)
		}
		return nil, err
	}

	ctx = a.callOnReceive(ctx, req)

	rt, params, merr := a.registry.match(req.Method, req.Path)
	if merr != nil {
		a.callOnNotFound(ctx, req, merr)
		res := newResponse()
		if errors.Is(merr, ErrMethodNotAllowed) {
			_ = res.Error(http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed))
		} else {
			_ = res.Error(http.StatusNotFound, http.StatusText(http.StatusNotFound))
		}
		return denormalize(res, req.Format, req.albMultiValue, a.status)
	}
	req.Params = params
	a.callOnMatch(ctx, req, rt.Pattern)

	res := a.newResponse()
	p := newPipeline(
		req,
		res,
		a.registry.resolveChain(rt, req.Path),
		rt.handler,
		a.registry.resolveErrorChain(req.Path),
		a.debug,
	)

	switch state := a.runPipeline(ctx, p); state {
	case stateAbandoned:
		// The shared response may still be mutated by the abandoned
		// unit; the reply is built from a fresh one.
		res = a.fallbackResponse(ctx.Err())
		a.callOnFailure(ctx, req, ctx.Err(), time.Since(start))
	case stateErrored:
		res = a.fallbackResponse(p.err)
		a.callOnFailure(ctx, req, p.err, time.Since(start))
	default:
		a.compress(req, res)
		a.callOnSuccess(ctx, req, settledStatus(res), time.Since(start))
	}

	return denormalize(res, req.Format, req.albMultiValue, a.status)
}

// runPipeline runs the pipeline under the context's deadline. Without a
// deadline it runs inline; with one, expiry abandons the dispatch while
// the in-flight unit finishes on its own.
func (a *API) runPipeline(ctx context.Context, p *pipeline) pipelineState {
	if ctx.Done() == nil {
		return p.run(ctx)
	}
	done := make(chan pipelineState, 1)
	go func() {
		done <- p.run(ctx)
	}()
	select {
	case state := <-done:
		return state
	case <-ctx.Done():
		p.abandon()
		return stateAbandoned
	}
}

// newResponse builds a response wired to the API's collaborators.
func (a *API) newResponse() *Response {
	res := newResponse()
	res.mime = a.mime
	return res
}

// fallbackResponse is the fixed internal-failure reply used when the
// error chain fails or exhausts, or the deadline expires.
func (a *API) fallbackResponse(err error) *Response {
	res := newResponse()
	msg := http.StatusText(http.StatusInternalServerError)
	if a.debug && err != nil {
		msg = err.Error()
	}
	_ = res.Error(http.StatusInternalServerError, msg)
	return res
}

// compress applies the configured compressor to non-binary reply
// bodies. Compressed output is binary, so it rides the transport
// encoding.
func (a *API) compress(req *Request, res *Response) {
	if a.compressor == nil || res.isBase64 || len(res.body) == 0 {
		return
	}
	encoded, name, err := a.compressor.Compress(res.body, req.acceptedEncodings())
	if err != nil {
		a.log.Warn("compression failed", zap.Error(err))
		return
	}
	if name == "" {
		return
	}
	res.body = encoded
	res.isBase64 = true
	res.header.Set("Content-Encoding", name)
}

func (a *API) callOnReceive(ctx context.Context, req *Request) context.Context {
	for _, fn := range a.hooks.onReceive {
		ctx = fn(ctx, req)
	}
	return ctx
}

func (a *API) callOnMatch(ctx context.Context, req *Request, pattern string) {
	for _, fn := range a.hooks.onMatch {
		fn(ctx, req, pattern)
	}
}

func (a *API) callOnNotFound(ctx context.Context, req *Request, err error) {
	for _, fn := range a.hooks.onNotFound {
		fn(ctx, req, err)
	}
}

func (a *API) callOnSuccess(ctx context.Context, req *Request, status int, d time.Duration) {
	for _, fn := range a.hooks.onSuccess {
		fn(ctx, req, status, d)
	}
}

func (a *API) callOnFailure(ctx context.Context, req *Request, err error, d time.Duration) {
	for _, fn := range a.hooks.onFailure {
		fn(ctx, req, err, d)
	}
}

func settledStatus(res *Response) int {
	if res.status == 0 {
		return http.StatusOK
	}
	return res.status
}

func trimSlashes(p string) string {
	return strings.Trim(p, "/")
}

// joinPath joins a base prefix and a pattern into one normalized path.
func joinPath(base, p string) string {
	segs := append(splitPath(base), splitPath(p)...)
	return "/" + strings.Join(segs, "/")
}
