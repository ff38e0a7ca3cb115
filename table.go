package funcrest

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNotFound is matched by *NotFoundError.
var ErrNotFound = errors.New("not found")

// NotFoundError is returned when no route matches a method and path.
type NotFoundError struct {
	Method string
	Path   string

	// Allowed lists the methods registered for routes that match Path
	// under a different method.
	Allowed []string
}

func (e *NotFoundError) Error() string {
	if len(e.Allowed) > 0 {
		return fmt.Sprintf("no route for %s %s (allowed: %s)", e.Method, e.Path, strings.Join(e.Allowed, ", "))
	}
	return fmt.Sprintf("no route for %s %s", e.Method, e.Path)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// Route is a registered (method, pattern) binding.
type Route struct {
	// Method is the upper-cased HTTP method.
	Method string

	// Pattern is the normalized path pattern.
	Pattern string

	handler  Handler
	schema   *Schema
	loadJSON bool
	pattern  *pattern
}

// CatchAll reports whether the route is the designated catch-all. Catch-all
// handlers always receive empty Params.
func (r *Route) CatchAll() bool { return r.pattern.catchAll }

// HasSchema reports whether requests are validated before the handler runs.
func (r *Route) HasSchema() bool { return r.schema != nil }

// RouteOption configures a route at registration.
type RouteOption func(*routeConfig)

type routeConfig struct {
	schema   any
	loadJSON bool
}

// WithSchema validates the {body, query} document of every request against
// the given JSON Schema before the handler runs. See CompileSchema for the
// accepted forms.
//
// Example:
//
//	r.MustRegister("POST", "/users", createUser, funcrest.WithSchema(`{
//	    "type": "object",
//	    "properties": {"body": {"required": ["email"]}}
//	}`))
func WithSchema(schema any) RouteOption {
	return func(c *routeConfig) {
		c.schema = schema
	}
}

// WithoutJSON skips body decoding and query coercion for the route.
// Request.JSON stays nil. It cannot be combined with WithSchema.
func WithoutJSON() RouteOption {
	return func(c *routeConfig) {
		c.loadJSON = false
	}
}

// table holds routes in registration order.
type table struct {
	routes []*Route
}

func (t *table) add(r *Route) {
	t.routes = append(t.routes, r)
}

// match finds the most specific route for method and path. On no match it
// returns a *NotFoundError.
func (t *table) match(method, path string) (*Route, Params, error) {
	parts := splitPath(path)

	var (
		best       *Route
		bestParams Params
		allowed    []string
	)
	for _, rt := range t.routes {
		params, ok := rt.pattern.match(parts)
		if !ok {
			continue
		}
		if rt.Method != method {
			allowed = append(allowed, rt.Method)
			continue
		}
		if best == nil || rt.pattern.moreSpecific(best.pattern) {
			best, bestParams = rt, params
		}
	}

	if best == nil {
		return nil, nil, &NotFoundError{Method: method, Path: path, Allowed: sortMethods(allowed)}
	}
	if best.pattern.catchAll {
		bestParams = Params{}
	}
	return best, bestParams, nil
}

// methods returns the methods of every route matching path.
func (t *table) methods(path string) []string {
	parts := splitPath(path)
	var out []string
	for _, rt := range t.routes {
		if _, ok := rt.pattern.match(parts); ok {
			out = append(out, rt.Method)
		}
	}
	return sortMethods(out)
}

// sortMethods upper-cases, dedupes and sorts methods case-insensitively.
func sortMethods(methods []string) []string {
	if len(methods) == 0 {
		return nil
	}
	out := make([]string, 0, len(methods))
	for _, m := range methods {
		out = append(out, strings.ToUpper(m))
	}
	slices.Sort(out)
	return slices.Compact(out)
}
