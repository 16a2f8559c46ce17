package lambdaapi

import (
	"net/http"
	"strings"
)

// methodAny is the method key used by Any registrations. It matches any
// request method once path matching has succeeded.
const methodAny = "*"

// trieNode is one path segment of the compiled route tree.
//
// Invariants: literal children are keyed uniquely; a node has at most
// one parameter child and at most one wildcard child. The wildcard
// child is terminal and captures the remaining path.
type trieNode struct {
	children map[string]*trieNode
	param    *trieNode
	wildcard *trieNode
	routes   map[string]*Route
}

func newTrieNode() *trieNode {
	return &trieNode{
		children: make(map[string]*trieNode),
		routes:   make(map[string]*Route),
	}
}

// splitPath segments a path, dropping empty segments produced by
// leading, trailing, or doubled slashes.
func splitPath(p string) []string {
	parts := strings.Split(p, "/")
	segs := make([]string, 0, len(parts))
	for _, s := range parts {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// parseParamNames extracts the ordered parameter names of a pattern.
// The wildcard remainder is named "*".
func parseParamNames(pattern string) []string {
	var names []string
	for _, seg := range splitPath(pattern) {
		switch {
		case seg == "*":
			names = append(names, "*")
		case strings.HasPrefix(seg, ":"):
			names = append(names, seg[1:])
		}
	}
	return names
}

// insert registers a route under method+pattern. Registering the same
// method and pattern twice keeps the first route.
func (n *trieNode) insert(method, pattern string, rt *Route) error {
	segs := splitPath(pattern)
	cur := n
	for i, seg := range segs {
		switch {
		case seg == "*":
			if i != len(segs)-1 {
				return &ConfigError{Pattern: pattern, Reason: "wildcard must be the final segment"}
			}
			if cur.wildcard == nil {
				cur.wildcard = newTrieNode()
			}
			cur = cur.wildcard
		case strings.HasPrefix(seg, ":"):
			if len(seg) == 1 {
				return &ConfigError{Pattern: pattern, Reason: "parameter segment missing a name"}
			}
			if cur.param == nil {
				cur.param = newTrieNode()
			}
			cur = cur.param
		default:
			child, ok := cur.children[seg]
			if !ok {
				child = newTrieNode()
				cur.children[seg] = child
			}
			cur = child
		}
	}
	if _, exists := cur.routes[method]; exists {
		// First-registered wins; later duplicates are ignored so that
		// registration order keeps tie-break semantics deterministic.
		return nil
	}
	cur.routes[method] = rt
	return nil
}

// lookup walks the tree one segment at a time, collecting positional
// captures. Literal children win over the parameter child at the same
// depth; the wildcard is consulted only after deeper exploration fails,
// so the most specific route wins.
func (n *trieNode) lookup(segs []string, captures []string) (*trieNode, []string) {
	if len(segs) == 0 {
		if len(n.routes) > 0 {
			return n, captures
		}
		return nil, nil
	}
	if child, ok := n.children[segs[0]]; ok {
		if m, caps := child.lookup(segs[1:], captures); m != nil {
			return m, caps
		}
	}
	if n.param != nil {
		if m, caps := n.param.lookup(segs[1:], append(captures, segs[0])); m != nil {
			return m, caps
		}
	}
	if n.wildcard != nil && len(n.wildcard.routes) > 0 {
		return n.wildcard, append(captures, strings.Join(segs, "/"))
	}
	return nil, nil
}

// match resolves method+path to a registered route and its bound path
// parameters. A path that exists under a different method yields
// ErrMethodNotAllowed, distinct from ErrNotFound.
func (n *trieNode) match(method, path string) (*Route, map[string]string, error) {
	node, captures := n.lookup(splitPath(path), nil)
	if node == nil {
		return nil, nil, ErrNotFound
	}

	rt, ok := node.routes[strings.ToUpper(method)]
	if !ok && strings.EqualFold(method, http.MethodHead) {
		// HEAD falls through to GET, mirroring gateway behavior.
		rt, ok = node.routes[http.MethodGet]
	}
	if !ok {
		rt, ok = node.routes[methodAny]
	}
	if !ok {
		return nil, nil, ErrMethodNotAllowed
	}

	params := make(map[string]string, len(rt.paramNames))
	for i, name := range rt.paramNames {
		if i < len(captures) {
			params[name] = captures[i]
		}
	}
	return rt, params, nil
}
