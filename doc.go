// Package lambdaapi is a request-dispatch engine for stateless
// function handlers behind HTTP gateways. It normalizes an inbound
// gateway event, resolves it against a registered route table, runs an
// ordered middleware/handler chain with explicit short-circuit and
// error semantics, and serializes the reply back into the wire shape
// the gateway expects.
//
// # Quick Start
//
// Register routes on an API and hand raw events to Dispatch:
//
//	app := lambdaapi.New()
//
//	app.Get("/hello", func(ctx context.Context, req *lambdaapi.Request, res *lambdaapi.Response) (any, error) {
//	    return map[string]string{"msg": "hi"}, nil
//	})
//
//	// Inside the function entry point
//	reply, err := app.Dispatch(ctx, rawEvent)
//
// # Design
//
// The package separates concerns into three layers:
//
//   - Normalizers: fingerprint the raw event's wire format (API Gateway
//     REST, API Gateway HTTP payload 2.0, or ALB target group) and
//     convert between it and one canonical request/response model
//   - Router: a path trie with parameter and wildcard capture plus
//     method dispatch, and a registry that composes middleware chains
//   - Pipeline: executes the composed chain one unit at a time with an
//     explicit continuation cursor
//
// # Routing
//
// Patterns are segmented: literals, ":name" single-segment captures,
// and a trailing "*" capturing the remaining path (bound under "*").
// Literal segments win over captures at the same depth, the wildcard
// only applies when nothing more specific matches, and identical
// registrations resolve first-registered-wins. A path that exists under
// another method yields a 405 reply, distinct from the 404 for an
// unknown path.
//
// # Middleware and Error Handling
//
// Chains compose in a fixed order: global middleware, then middleware
// scoped to a covering path prefix (outer before inner), then route
// middleware, then the handler. Units advance the chain by calling
// next; a second call within the same unit is rejected without
// re-running anything downstream. Returning without calling next
// short-circuits the chain.
//
// A returned error or a panic abandons the rest of the normal chain and
// starts the error chain from its beginning. Error handlers may send
// the reply or defer with next; if the whole error chain fails or
// exhausts, the dispatcher falls back to a fixed 500 reply. A dispatch
// against a recognized event shape therefore always settles with
// exactly one well-formed reply.
//
// # Normalization
//
// The wire format is detected by cheap structural fingerprints over the
// raw JSON (no full decode), or pinned with WithFormat. The canonical
// request unifies header casing, single- and multi-value query blocks,
// and transport-encoded bodies (base64 is decoded eagerly); body
// parsing by content type is lazy and memoized for the dispatch. On the
// way out, binary bodies are re-encoded and headers are flattened to
// whatever the source format can represent, joining multi-values with
// commas where single strings are required and keeping cookies as
// arrays where the format supports them.
//
// # Deadlines
//
// Dispatch honors the context deadline: on expiry the fixed 500 reply
// is returned immediately, no further unit starts, and the in-flight
// unit's eventual completion is ignored.
//
// # Observability
//
// Lifecycle hooks (WithOnReceive, WithOnMatch, WithOnNotFound,
// WithOnSuccess, WithOnFailure) observe dispatches without coupling the
// core to a logging or metrics system. LoggingHooks and MetricsHooks
// provide ready-made zap and Prometheus bundles.
//
// # Thread Safety
//
// The route table seals on the first Dispatch; registration methods
// return ErrSealed afterwards. Sealed, the API is safe for concurrent
// dispatches: each dispatch owns its request, response, and chain copy.
package lambdaapi
