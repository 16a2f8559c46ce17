package lambdaapi

import "go.uber.org/zap"

// Option configures an API at construction time.
type Option func(*API)

// WithLogger sets the structured logger. The default is a no-op logger;
// logging never feeds errors back into the pipeline.
func WithLogger(log *zap.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithDebug enables verbose error bodies: fallback replies carry the
// underlying error text instead of the generic reason phrase. Leave it
// off in production so internal detail never leaks into replies.
func WithDebug() Option {
	return func(a *API) {
		a.debug = true
	}
}

// WithBase mounts every registered route and scoped middleware under a
// path prefix, matching a gateway stage or custom base path.
//
// Example:
//
//	app := lambdaapi.New(lambdaapi.WithBase("/v1"))
//	app.Get("/users/:id", getUser) // matches /v1/users/:id
func WithBase(prefix string) Option {
	return func(a *API) {
		a.base = "/" + trimSlashes(prefix)
	}
}

// WithFormat pins the source wire format, skipping structural
// fingerprinting of inbound events.
func WithFormat(f Format) Option {
	return func(a *API) {
		a.format = f
	}
}

// WithCompression sets the compressor consulted for non-binary reply
// bodies. No compressor is configured by default.
func WithCompression(c Compressor) Option {
	return func(a *API) {
		a.compressor = c
	}
}

// WithMIME replaces the MIME lookup collaborator.
func WithMIME(m MIMELookup) Option {
	return func(a *API) {
		if m != nil {
			a.mime = m
		}
	}
}

// WithStatusDescriber replaces the status-code description collaborator
// used for reply shapes that carry a reason phrase.
func WithStatusDescriber(s StatusDescriber) Option {
	return func(a *API) {
		if s != nil {
			a.status = s
		}
	}
}
