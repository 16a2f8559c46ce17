package lambdaapi

import (
	"context"
	"errors"
	"testing"
)

// tagMiddleware records its tag when invoked and passes control on.
func tagMiddleware(tag string, log *[]string) Middleware {
	return func(ctx context.Context, req *Request, res *Response, next Next) error {
		*log = append(*log, tag)
		return next()
	}
}

func tagErrorHandler(tag string, log *[]string) ErrorHandler {
	return func(ctx context.Context, err error, req *Request, res *Response, next Next) error {
		*log = append(*log, tag)
		return next()
	}
}

func runChain(t *testing.T, chain []Middleware) {
	t.Helper()
	var exec func(i int) error
	exec = func(i int) error {
		if i >= len(chain) {
			return nil
		}
		return chain[i](context.Background(), nil, nil, func() error { return exec(i + 1) })
	}
	if err := exec(0); err != nil {
		t.Fatalf("unexpected chain error: %v", err)
	}
}

func TestRegistry_ResolveChain(t *testing.T) {
	t.Run("global then scoped then route middleware", func(t *testing.T) {
		var log []string
		r := newRegistry()
		r.addGlobal(tagMiddleware("global", &log))
		r.addScoped("/api", tagMiddleware("scoped", &log))
		err := r.addRoute("GET", "/api/users", noopHandler, []Middleware{tagMiddleware("route", &log)})
		if err != nil {
			t.Fatalf("addRoute: %v", err)
		}

		rt, _, err := r.match("GET", "/api/users")
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		runChain(t, r.resolveChain(rt, "/api/users"))

		want := []string{"global", "scoped", "route"}
		assertOrder(t, log, want)
	})

	t.Run("scoped middleware runs outer prefixes before inner", func(t *testing.T) {
		var log []string
		r := newRegistry()
		// Registered inner-first to prove depth ordering, not
		// registration order, decides.
		r.addScoped("/api/users", tagMiddleware("inner", &log))
		r.addScoped("/api", tagMiddleware("outer", &log))
		if err := r.addRoute("GET", "/api/users/:id", noopHandler, nil); err != nil {
			t.Fatalf("addRoute: %v", err)
		}

		rt, _, err := r.match("GET", "/api/users/1")
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		runChain(t, r.resolveChain(rt, "/api/users/1"))

		assertOrder(t, log, []string{"outer", "inner"})
	})

	t.Run("equal-depth scopes keep registration order", func(t *testing.T) {
		var log []string
		r := newRegistry()
		r.addScoped("/api", tagMiddleware("first", &log))
		r.addScoped("/api", tagMiddleware("second", &log))
		if err := r.addRoute("GET", "/api/users", noopHandler, nil); err != nil {
			t.Fatalf("addRoute: %v", err)
		}

		rt, _, err := r.match("GET", "/api/users")
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		runChain(t, r.resolveChain(rt, "/api/users"))

		assertOrder(t, log, []string{"first", "second"})
	})

	t.Run("non-covering prefixes are excluded", func(t *testing.T) {
		var log []string
		r := newRegistry()
		r.addScoped("/admin", tagMiddleware("admin", &log))
		if err := r.addRoute("GET", "/api/users", noopHandler, nil); err != nil {
			t.Fatalf("addRoute: %v", err)
		}

		rt, _, err := r.match("GET", "/api/users")
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		runChain(t, r.resolveChain(rt, "/api/users"))

		if len(log) != 0 {
			t.Errorf("log = %v, want no scoped middleware", log)
		}
	})

	t.Run("resolved chains never share backing storage", func(t *testing.T) {
		r := newRegistry()
		r.addGlobal(tagMiddleware("global", &[]string{}))
		if err := r.addRoute("GET", "/a", noopHandler, nil); err != nil {
			t.Fatalf("addRoute: %v", err)
		}

		rt, _, err := r.match("GET", "/a")
		if err != nil {
			t.Fatalf("match: %v", err)
		}
		first := r.resolveChain(rt, "/a")
		first[0] = nil
		second := r.resolveChain(rt, "/a")
		if second[0] == nil {
			t.Error("mutating a resolved chain leaked into the registry")
		}
	})
}

func TestRegistry_ResolveErrorChain(t *testing.T) {
	var log []string
	r := newRegistry()
	r.addErrScoped("/api", tagErrorHandler("scoped", &log))
	r.addErrGlobal(tagErrorHandler("global", &log))

	chain := r.resolveErrorChain("/api/users")
	if len(chain) != 2 {
		t.Fatalf("chain length = %d, want 2", len(chain))
	}
	for _, eh := range chain {
		_ = eh(context.Background(), errors.New("boom"), nil, nil, func() error { return nil })
	}
	assertOrder(t, log, []string{"global", "scoped"})

	if got := len(r.resolveErrorChain("/other")); got != 1 {
		t.Errorf("non-covering path chain length = %d, want only the global handler", got)
	}
}

func TestRegistry_AddRouteRejectsNilHandler(t *testing.T) {
	r := newRegistry()
	err := r.addRoute("GET", "/users", nil, nil)

	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want ConfigError", err)
	}
	if len(r.routes) != 0 {
		t.Error("failed registration mutated the route table")
	}
}

func TestPrefixMatches(t *testing.T) {
	cases := []struct {
		prefix string
		path   string
		want   bool
	}{
		{"/", "/anything", true},
		{"", "/anything", true},
		{"/user", "/user", true},
		{"/user", "/user/1", true},
		{"/user", "/users", false},
		{"/api/v1", "/api/v1/users", true},
		{"/api/v1", "/api/v2/users", false},
	}
	for _, tc := range cases {
		if got := prefixMatches(tc.prefix, tc.path); got != tc.want {
			t.Errorf("prefixMatches(%q, %q) = %v, want %v", tc.prefix, tc.path, got, tc.want)
		}
	}
}

func assertOrder(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
}
