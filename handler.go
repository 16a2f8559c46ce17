package lambdaapi

import "context"

// Next advances the active chain to its next unit. Calling it a second
// time within the same unit returns ErrNextCalledTwice without
// re-executing any downstream unit.
//
// A middleware that returns without calling Next short-circuits the
// chain: no further unit runs, and the response produced so far (or the
// implicit empty success) becomes the reply.
type Next func() error

// HandlerFunc is the terminal unit of a route chain.
//
// A handler may produce its reply either by calling a response send
// method (res.JSON, res.Send, ...) or by returning a non-nil value,
// which is sent as an implicit success body: strings and byte slices
// are sent as-is, anything else is JSON-encoded.
//
// Example:
//
//	app.Get("/users/:id", func(ctx context.Context, req *lambdaapi.Request, res *lambdaapi.Response) (any, error) {
//	    u, err := store.Get(ctx, req.Params["id"])
//	    if err != nil {
//	        return nil, lambdaapi.NewHTTPError(404, "user not found")
//	    }
//	    return u, nil
//	})
type HandlerFunc func(ctx context.Context, req *Request, res *Response) (any, error)

// Middleware runs before the route handler. It may mutate the response,
// short-circuit by sending a terminal reply, or call next to advance.
//
// Example:
//
//	app.Use(func(ctx context.Context, req *lambdaapi.Request, res *lambdaapi.Response, next lambdaapi.Next) error {
//	    res.Header("X-Request-Id", req.ID)
//	    return next()
//	})
type Middleware func(ctx context.Context, req *Request, res *Response, next Next) error

// ErrorHandler is a unit of the error chain, consulted only after a
// normal unit has failed. It receives the signaled error and may send a
// terminal reply, or call next to defer to the next error handler.
//
// If every error handler defers (or fails), the dispatcher falls back to
// the fixed internal-failure reply.
//
// Example:
//
//	app.UseError(func(ctx context.Context, err error, req *lambdaapi.Request, res *lambdaapi.Response, next lambdaapi.Next) error {
//	    var herr *lambdaapi.HTTPError
//	    if errors.As(err, &herr) {
//	        return res.Error(herr.Status, herr.Msg)
//	    }
//	    return next()
//	})
type ErrorHandler func(ctx context.Context, err error, req *Request, res *Response, next Next) error
