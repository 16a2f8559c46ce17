package lambdaapi

import "strings"

// Route is one registered method+pattern with its handler and
// route-specific middleware. Routes are immutable once registered; the
// registry is built during cold start and read-only after sealing.
type Route struct {
	Method  string
	Pattern string

	paramNames []string
	middleware []Middleware
	handler    HandlerFunc
}

// scopedMiddleware is middleware bound to a path prefix.
type scopedMiddleware struct {
	prefix string
	mw     Middleware
}

// scopedErrorHandler is an error handler bound to a path prefix.
type scopedErrorHandler struct {
	prefix string
	eh     ErrorHandler
}

// registry owns the route tree and the middleware registrations at
// every scope. It is written only before sealing and read concurrently
// afterwards; resolved chains are copies and never share backing
// storage with the registry.
type registry struct {
	root   *trieNode
	routes []*Route

	global    []Middleware
	scoped    []scopedMiddleware
	errGlobal []ErrorHandler
	errScoped []scopedErrorHandler
}

func newRegistry() *registry {
	return &registry{root: newTrieNode()}
}

// addRoute compiles and registers a route. Registration errors leave
// the registry untouched.
func (r *registry) addRoute(method, pattern string, h HandlerFunc, mw []Middleware) error {
	if h == nil {
		return &ConfigError{Pattern: pattern, Reason: "nil handler"}
	}
	rt := &Route{
		Method:     strings.ToUpper(method),
		Pattern:    pattern,
		paramNames: parseParamNames(pattern),
		middleware: append([]Middleware(nil), mw...),
		handler:    h,
	}
	if err := r.root.insert(rt.Method, pattern, rt); err != nil {
		return err
	}
	r.routes = append(r.routes, rt)
	return nil
}

func (r *registry) addGlobal(mw ...Middleware) {
	r.global = append(r.global, mw...)
}

func (r *registry) addScoped(prefix string, mw ...Middleware) {
	for _, m := range mw {
		r.scoped = append(r.scoped, scopedMiddleware{prefix: prefix, mw: m})
	}
}

func (r *registry) addErrGlobal(eh ...ErrorHandler) {
	r.errGlobal = append(r.errGlobal, eh...)
}

func (r *registry) addErrScoped(prefix string, eh ...ErrorHandler) {
	for _, e := range eh {
		r.errScoped = append(r.errScoped, scopedErrorHandler{prefix: prefix, eh: e})
	}
}

// match resolves method+path through the route tree.
func (r *registry) match(method, path string) (*Route, map[string]string, error) {
	return r.root.match(method, path)
}

// prefixMatches reports whether path falls under prefix at a segment
// boundary, so "/user" does not claim "/users".
func prefixMatches(prefix, path string) bool {
	if prefix == "" || prefix == "/" {
		return true
	}
	prefix = "/" + strings.Trim(prefix, "/")
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// resolveChain composes the normal chain for a matched route: global
// middleware in registration order, then prefix-scoped middleware whose
// prefix covers the path (outer prefixes before inner, registration
// order within equal depth), then route middleware, then the handler.
// The returned slice is freshly allocated on every call.
func (r *registry) resolveChain(rt *Route, path string) []Middleware {
	chain := make([]Middleware, 0, len(r.global)+len(r.scoped)+len(rt.middleware))
	chain = append(chain, r.global...)
	chain = append(chain, matchScoped(r.scoped, path)...)
	chain = append(chain, rt.middleware...)
	return chain
}

// resolveErrorChain composes the error chain for a path: global error
// handlers first, then prefix-scoped ones, ordered like resolveChain.
func (r *registry) resolveErrorChain(path string) []ErrorHandler {
	chain := make([]ErrorHandler, 0, len(r.errGlobal)+len(r.errScoped))
	chain = append(chain, r.errGlobal...)
	for _, s := range stableByDepth(r.errScoped, func(s scopedErrorHandler) string { return s.prefix }) {
		if prefixMatches(s.prefix, path) {
			chain = append(chain, s.eh)
		}
	}
	return chain
}

func matchScoped(scoped []scopedMiddleware, path string) []Middleware {
	var out []Middleware
	for _, s := range stableByDepth(scoped, func(s scopedMiddleware) string { return s.prefix }) {
		if prefixMatches(s.prefix, path) {
			out = append(out, s.mw)
		}
	}
	return out
}

// stableByDepth orders scoped registrations outer-to-inner (fewer path
// segments first) while preserving registration order within one depth.
func stableByDepth[T any](in []T, prefix func(T) string) []T {
	out := append([]T(nil), in...)
	// Insertion sort keeps the original order for equal depths and the
	// slices here are tiny.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && len(splitPath(prefix(out[j]))) < len(splitPath(prefix(out[j-1]))); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
