package lambdaapi

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LoggingHooks wires a zap logger into the dispatch lifecycle: one log
// line per settled dispatch, a warning per unmatched one. Logging is
// fire-and-forget and never influences the reply.
//
// Example:
//
//	log, _ := zap.NewProduction()
//	app := lambdaapi.New(
//	    lambdaapi.WithLogger(log),
//	    lambdaapi.LoggingHooks(log),
//	)
func LoggingHooks(log *zap.Logger) Option {
	return func(a *API) {
		if log == nil {
			return
		}
		a.hooks.onSuccess = append(a.hooks.onSuccess, func(_ context.Context, req *Request, status int, d time.Duration) {
			log.Info("dispatch settled",
				zap.String("request_id", req.ID),
				zap.String("format", req.Format.String()),
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Int("status", status),
				zap.Duration("duration", d),
			)
		})
		a.hooks.onFailure = append(a.hooks.onFailure, func(_ context.Context, req *Request, err error, d time.Duration) {
			log.Error("dispatch failed",
				zap.String("request_id", req.ID),
				zap.String("format", req.Format.String()),
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Error(err),
				zap.Duration("duration", d),
			)
		})
		a.hooks.onNotFound = append(a.hooks.onNotFound, func(_ context.Context, req *Request, err error) {
			log.Warn("no route",
				zap.String("request_id", req.ID),
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Error(err),
			)
		})
	}
}
