package lambdaapi

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
)

// pipelineState tracks one dispatch through its lifecycle. Asynchronous
// suspension of a unit is opaque here: a blocked unit simply holds
// stateRunning, which preserves the one-unit-at-a-time guarantee.
type pipelineState int32

const (
	statePending pipelineState = iota
	stateRunning
	stateErrored
	stateTerminated
	stateExhausted
	stateAbandoned
)

// pipeline drives a single dispatch: the normal chain first, and on a
// signaled failure the error chain from its start. Units execute
// strictly sequentially; the continuation is a cursor advance guarded
// against double invocation.
type pipeline struct {
	req      *Request
	res      *Response
	chain    []Middleware
	handler  HandlerFunc
	errChain []ErrorHandler
	debug    bool

	// err holds the signaled error while the error chain is active.
	err error

	state   atomic.Int32
	aborted atomic.Bool
}

func newPipeline(req *Request, res *Response, chain []Middleware, h HandlerFunc, errChain []ErrorHandler, debug bool) *pipeline {
	p := &pipeline{
		req:      req,
		res:      res,
		chain:    chain,
		handler:  h,
		errChain: errChain,
		debug:    debug,
	}
	p.state.Store(int32(statePending))
	return p
}

// abandon marks the dispatch as past its deadline. The in-flight unit is
// not interrupted, but no further unit will start and its eventual
// completion is ignored.
func (p *pipeline) abandon() {
	p.aborted.Store(true)
	p.state.Store(int32(stateAbandoned))
}

func (p *pipeline) expired(ctx context.Context) bool {
	if p.aborted.Load() {
		return true
	}
	if ctx.Err() != nil {
		p.aborted.Store(true)
		return true
	}
	return false
}

// run settles the dispatch and returns its final state.
func (p *pipeline) run(ctx context.Context) pipelineState {
	p.state.Store(int32(stateRunning))

	err := p.execNormal(ctx, 0)
	if p.expired(ctx) {
		p.state.Store(int32(stateAbandoned))
		return stateAbandoned
	}

	if err == nil {
		if p.res.terminated {
			p.state.Store(int32(stateTerminated))
			return stateTerminated
		}
		// Chain ran out without a terminal send: implicit empty success.
		p.state.Store(int32(stateExhausted))
		return stateExhausted
	}

	// A unit that commits a reply and then fails keeps the committed
	// reply; there is nothing left for the error chain to send.
	if p.res.terminated {
		p.state.Store(int32(stateTerminated))
		return stateTerminated
	}

	p.err = err
	p.state.Store(int32(stateErrored))

	if len(p.errChain) == 0 {
		p.defaultErrorReply()
		p.state.Store(int32(stateTerminated))
		return stateTerminated
	}

	errChainErr := p.execError(ctx, 0)
	if p.expired(ctx) {
		p.state.Store(int32(stateAbandoned))
		return stateAbandoned
	}
	if errChainErr != nil || !p.res.terminated {
		// The error chain failed or exhausted without a terminal send;
		// the caller substitutes the fixed internal-failure reply.
		return stateErrored
	}
	p.state.Store(int32(stateTerminated))
	return stateTerminated
}

// execNormal runs the normal chain from unit i. The terminal handler
// sits past the last middleware.
func (p *pipeline) execNormal(ctx context.Context, i int) error {
	if p.expired(ctx) {
		return nil
	}
	if i < len(p.chain) {
		advanced := false
		next := Next(func() error {
			if advanced {
				return ErrNextCalledTwice
			}
			advanced = true
			return p.execNormal(ctx, i+1)
		})
		return p.callMiddleware(p.chain[i], ctx, next)
	}
	return p.callHandler(ctx)
}

// execError runs the error chain from unit i.
func (p *pipeline) execError(ctx context.Context, i int) error {
	if p.expired(ctx) || i >= len(p.errChain) {
		return nil
	}
	advanced := false
	next := Next(func() error {
		if advanced {
			return ErrNextCalledTwice
		}
		advanced = true
		return p.execError(ctx, i+1)
	})
	return p.callErrorHandler(p.errChain[i], ctx, next)
}

func (p *pipeline) callMiddleware(mw Middleware, ctx context.Context, next Next) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{val: r}
		}
	}()
	return mw(ctx, p.req, p.res, next)
}

func (p *pipeline) callErrorHandler(eh ErrorHandler, ctx context.Context, next Next) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{val: r}
		}
	}()
	return eh(ctx, p.err, p.req, p.res, next)
}

func (p *pipeline) callHandler(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{val: r}
		}
	}()
	v, err := p.handler(ctx, p.req, p.res)
	if err != nil {
		return err
	}
	if v == nil || p.res.terminated {
		return nil
	}
	// Returned value without an explicit send: implicit success body.
	switch b := v.(type) {
	case string:
		return p.res.SendString(b)
	case []byte:
		return p.res.Send(b)
	default:
		return p.res.JSON(v)
	}
}

// defaultErrorReply is the built-in responder used when no error
// handlers are registered: HTTPError statuses pass through, everything
// else becomes a 500 with detail hidden unless debug mode is on.
func (p *pipeline) defaultErrorReply() {
	var herr *HTTPError
	if errors.As(p.err, &herr) {
		msg := herr.Msg
		if msg == "" {
			msg = http.StatusText(herr.Status)
		}
		_ = p.res.Error(herr.Status, msg)
		return
	}
	msg := http.StatusText(http.StatusInternalServerError)
	if p.debug {
		msg = p.err.Error()
	}
	_ = p.res.Error(http.StatusInternalServerError, msg)
}
