package funcrest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Messages returned to callers on failure paths. Details are only logged.
const (
	badRequestMessage      = "Bad request, maybe not using function triggers?"
	validationErrorMessage = "Validation Error"
	internalErrorMessage   = "Internal server error"
)

// defaultHeaders are applied to OPTIONS responses.
var defaultHeaders = map[string]string{
	"Access-Control-Allow-Headers": "*",
	"Access-Control-Allow-Origin":  "*",
	"Content-Type":                 "application/json",
}

// DefaultHeaders returns a copy of the headers applied to OPTIONS responses.
func DefaultHeaders() map[string]string {
	return maps.Clone(defaultHeaders)
}

// Router resolves inbound requests to registered handlers and wraps their
// results in a Wire response.
//
// Usage:
//  1. Create a router with New
//  2. Register handlers with Register or MustRegister
//  3. Serve invocations with Dispatch or DispatchRaw
//
// Router is safe for concurrent use after configuration. Do not call
// Register after calling Dispatch.
type Router struct {
	table     table
	hooks     hooks
	logger    *slog.Logger
	reporter  ErrorReporter
	reraise   bool
	headers   map[string]string
	metadata  MetadataSource
	prefixes  []string
	inspector Inspector
	shape     Discriminator
}

// New creates a Router with the given options.
//
// By default the router logs with slog.Default, reads trigger metadata from
// function.json, strips /api/ and /api/v<n>/ prefixes from request paths,
// and reports handler errors by logging them.
//
// Example:
//
//	r := funcrest.New(
//	    funcrest.WithLogger(logger),
//	    funcrest.WithOnFailure(func(ctx context.Context, method, pattern string, err error, d time.Duration) {
//	        metrics.Incr("funcrest.failure", "route:"+pattern)
//	    }),
//	)
func New(opts ...Option) *Router {
	r := &Router{
		logger:    slog.Default(),
		metadata:  FileMetadata(),
		inspector: JSONInspector(),
		shape:     RequestShape(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.reporter == nil && !r.reraise {
		r.reporter = r.logError
	}
	return r
}

// Register binds a handler to a method and path pattern.
//
// Patterns start with a slash and may contain placeholders spanning whole
// segments: <name> or <string:name> match one segment, <int:name> matches
// one all-digit segment that fits in an int, <path:name> matches one or
// more segments. A "*" anywhere becomes <path:path>; "*" or "/*" alone
// registers the catch-all, which matches any path no other route claims and
// never receives params.
// An empty pattern means "/".
//
// Example:
//
//	r.Register("GET", "/users/<int:id>", getUser)
//	r.Register("PUT", "*", fallback)
func (r *Router) Register(method, path string, h Handler, opts ...RouteOption) (*Route, error) {
	if method == "" {
		return nil, errors.New("register: method is required")
	}
	if h == nil {
		return nil, errors.New("register: handler is required")
	}

	normalized, err := normalizePattern(path)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", method, err)
	}
	p, err := parsePattern(normalized)
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", method, err)
	}

	cfg := routeConfig{loadJSON: true}
	for _, opt := range opts {
		opt(&cfg)
	}

	rt := &Route{
		Method:   strings.ToUpper(method),
		Pattern:  normalized,
		handler:  h,
		loadJSON: cfg.loadJSON,
		pattern:  p,
	}
	if cfg.schema != nil {
		if !cfg.loadJSON {
			return nil, fmt.Errorf("register %s %s: a schema requires JSON loading", rt.Method, normalized)
		}
		if rt.schema, err = CompileSchema(cfg.schema); err != nil {
			return nil, fmt.Errorf("register %s %s: %w", rt.Method, normalized, err)
		}
	}

	r.table.add(rt)
	return rt, nil
}

// MustRegister is like Register but panics on a configuration error.
func (r *Router) MustRegister(method, path string, h Handler, opts ...RouteOption) *Route {
	rt, err := r.Register(method, path, h, opts...)
	if err != nil {
		panic(err)
	}
	return rt
}

// Routes returns the registered routes in registration order.
func (r *Router) Routes() []*Route {
	return append([]*Route(nil), r.table.routes...)
}

// Methods returns the upper-cased, sorted methods registered for routes
// matching path.
func (r *Router) Methods(path string) []string {
	return r.table.methods(path)
}

// Dispatch serves one invocation.
//
// The processing flow:
//  1. Refresh fc.Bindings from the metadata source (skipped when fc is nil)
//  2. Derive the match path and detect proxy delivery
//  3. Answer OPTIONS from the registered methods
//  4. Resolve the route, or answer 404
//  5. Decode the body, coerce the query and validate against the schema
//  6. Call the handler and normalize its result
//
// Dispatch returns an error only when the response cannot be produced: the
// handler broke the result contract, or it failed while the router was
// built WithReraise. Every other outcome, including handler errors with a
// reporter configured, is a Wire response.
func (r *Router) Dispatch(ctx context.Context, req *Request, fc *FunctionContext) (Wire, error) {
	if req == nil {
		return r.badRequest(ctx), nil
	}
	if fc == nil {
		fc = &FunctionContext{Bindings: Bindings{}}
	} else {
		fc.Bindings = r.loadBindings(ctx, fc)
	}
	req.Context = fc

	method := req.Method()
	path := r.matchPath(req.URL)

	req.ProxyRoute = nil
	if _, ok := req.PathParams[restOfPathKey]; ok {
		route := fc.Bindings.Route()
		if route == "" {
			route = path
		}
		req.ProxyRoute = &route
	}

	if method == http.MethodOptions {
		return r.emit(r.options(path, fc.Bindings)), nil
	}

	rt, params, err := r.table.match(method, path)
	if err != nil {
		r.logger.WarnContext(ctx, "route not found",
			"method", method, "path", path, "status", http.StatusNotFound, "error", err)
		r.callOnNotFound(ctx, method, path)
		return r.emit(NewResponse(err.Error(), http.StatusNotFound, nil)), nil
	}
	if req.ProxyRoute != nil {
		req.PathParams = params.asStrings()
	}

	r.callOnDispatch(ctx, method, rt.Pattern)

	start := time.Now()
	resp, err := r.invoke(ctx, rt, req, params)
	duration := time.Since(start)

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		r.logger.WarnContext(ctx, "request failed validation",
			"method", method, "route", rt.Pattern, "status", http.StatusBadRequest, "error", verr.Error())
		r.callOnValidationError(ctx, method, rt.Pattern, verr)
		return r.emit(NewResponse(validationErrorMessage, http.StatusBadRequest, nil)), nil
	case err != nil:
		r.callOnFailure(ctx, method, rt.Pattern, err, duration)
		if errors.Is(err, ErrInvalidHandlerContract) || r.reporter == nil {
			return Wire{}, err
		}
		r.reporter(ctx, method, err)
		return r.emit(NewResponse(internalErrorMessage, http.StatusInternalServerError, nil)), nil
	}

	w := r.emit(resp)
	r.callOnSuccess(ctx, method, rt.Pattern, w.StatusCode, duration)
	return w, nil
}

// invoke runs the pre-handler pipeline and the handler.
func (r *Router) invoke(ctx context.Context, rt *Route, req *Request, params Params) (*Response, error) {
	if rt.loadJSON {
		parsed, err := parseJSON(req)
		if err != nil {
			return nil, err
		}
		req.JSON = parsed
		if rt.schema != nil {
			if err := rt.schema.Validate(parsed.document()); err != nil {
				return nil, err
			}
		}
	}

	result, err := rt.handler(ctx, req, params)
	if err != nil {
		return nil, err
	}
	return toResponse(result)
}

// options synthesizes the answer to an OPTIONS request.
func (r *Router) options(path string, b Bindings) *Response {
	methods := r.table.methods(path)
	if len(methods) == 0 {
		methods = sortMethods(b.Methods())
	}

	allowed := make([]string, 0, len(methods))
	for _, m := range methods {
		if m != http.MethodOptions && m != http.MethodHead {
			allowed = append(allowed, m)
		}
	}
	allow := strings.Join(allowed, ",")

	headers := DefaultHeaders()
	maps.Copy(headers, r.headers)
	headers["Access-Control-Allow-Methods"] = allow
	return NewResponse(map[string]any{"allow": allow}, http.StatusOK, headers)
}

// emit merges the router headers under the response headers and renders it.
// resp may be shared between invocations and is never modified.
func (r *Router) emit(resp *Response) Wire {
	if len(r.headers) == 0 {
		return resp.Wire()
	}
	headers := maps.Clone(r.headers)
	maps.Copy(headers, resp.Headers)
	out := *resp
	out.Headers = headers
	return out.Wire()
}

func (r *Router) badRequest(ctx context.Context) Wire {
	r.logger.ErrorContext(ctx, badRequestMessage, "status", http.StatusInternalServerError)
	return r.emit(NewResponse(badRequestMessage, http.StatusInternalServerError, nil))
}

// loadBindings reads trigger metadata. Failures are logged and yield empty
// bindings; they never abort the invocation.
func (r *Router) loadBindings(ctx context.Context, fc *FunctionContext) Bindings {
	if r.metadata == nil {
		return Bindings{}
	}
	b, err := r.metadata.Load(ctx, fc)
	if err != nil {
		r.logger.InfoContext(ctx, "trigger metadata unavailable",
			"function", fc.FunctionName, "error", err)
		return Bindings{}
	}
	if b == nil {
		return Bindings{}
	}
	return b
}

// matchPath returns the path component of rawURL with any API prefix
// removed, or "/" when nothing remains.
func (r *Router) matchPath(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.EscapedPath()
	} else if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}

	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return stripAPIPrefix(path, r.prefixes)
}

func (r *Router) logError(ctx context.Context, method string, err error) {
	r.logger.ErrorContext(ctx, "handler failed",
		"method", method, "status", http.StatusInternalServerError, "error", err)
}

// asStrings converts params to the string form of Request.PathParams.
func (p Params) asStrings() map[string]string {
	out := make(map[string]string, len(p))
	for k := range p {
		out[k] = p.String(k)
	}
	return out
}
