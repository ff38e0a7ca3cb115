// Package funcrest routes HTTP trigger invocations of serverless functions to
// handlers registered by method and path.
//
// A function app receives each HTTP request as a single invocation: a method,
// a URL, headers, query and path parameters, and a raw body. funcrest matches
// the invocation against registered path patterns, decodes the body and query
// string, optionally validates them against a JSON Schema, calls the handler,
// and wraps whatever the handler returned into a uniform Wire response.
//
// # Quick Start
//
//	r := funcrest.New()
//
//	r.MustRegister("GET", "/users/<int:id>", func(ctx context.Context, req *funcrest.Request, p funcrest.Params) (any, error) {
//	    id, _ := p.Int("id")
//	    return map[string]any{"id": id}, nil
//	})
//
//	// In the function entry point
//	wire, err := r.Dispatch(ctx, req, funcrest.NewFunctionContext("users", dir))
//
// # Path Patterns
//
// Patterns start with a slash. A segment is either literal text, matched
// case-sensitively, or a placeholder spanning the whole segment:
//
//   - <name> or <string:name>: one segment, captured as a string
//   - <int:name>: one all-digit segment, captured as an int; values that
//     overflow int do not match
//   - <path:name>: one or more segments, captured as a slash-joined string
//
// A "*" is shorthand for <path:path>. The pattern "*" (or "/*") is the
// catch-all: it matches any path that no other route claims and its handler
// always receives empty Params.
//
// When several routes match, the most specific wins. Segments are compared
// left to right; a literal beats an int placeholder, which beats a string
// placeholder, which beats a path placeholder.
//
// Request paths have a leading /api/ or /api/v<n>/ removed before matching.
// Use WithAPIPrefixes to change which prefixes are removed.
//
// # Request Pipeline
//
// Before the handler runs, the body is decoded as JSON (an empty body decodes
// to an empty object) and each query parameter is coerced by a best-effort
// heuristic, see CoerceQuery. Both are attached to the request:
//
//	req.JSON.Body   // decoded body
//	req.JSON.Query  // coerced query parameters
//
// Routes registered WithSchema validate the document {"body": ..., "query":
// ...} against a JSON Schema with format assertions enabled. A failure is
// answered with 400 and the generic message "Validation Error"; the details
// are only logged.
//
// # Handler Results
//
// A Handler may return:
//   - a *Response, used as is
//   - a Tuple of (body, status, headers) with missing elements defaulted
//   - any other value, used as the body with status 200
//
// The Wire body is a JSON document: maps, slices and structs are encoded, and
// a string body is encoded as a JSON string. An empty map or slice renders as
// an empty body.
//
//	return map[string]any{"foo": "bar"}, nil   // body {"foo": "bar"}
//	return funcrest.Tuple{"not found", 404}, nil // body "not found"
//
// A Tuple with more than three elements is a ContractError, which Dispatch
// always returns instead of a response.
//
// # Typed Handlers
//
// RegisterFunc and Typed decode the raw body into a Go type before calling
// the handler. If the type implements Validate() error, a failure is
// answered with 400 like a schema violation:
//
//	funcrest.RegisterFunc(r, "POST", "/items", func(ctx context.Context, req *funcrest.Request, in NewItem) (funcrest.Tuple, error) {
//	    return funcrest.Tuple{store.Insert(in), http.StatusCreated}, nil
//	})
//
// # OPTIONS
//
// OPTIONS requests never reach a handler. The router answers 200 with the
// methods registered for the path (or declared in the trigger bindings),
// minus OPTIONS and HEAD, in the "allow" body field and the
// Access-Control-Allow-Methods header.
//
// # Proxy Delivery
//
// When the platform routes a request through a catch-all trigger it supplies
// an opaque restOfPath path parameter. The router detects it, records the
// declared route in Request.ProxyRoute, and replaces Request.PathParams with
// the parameters it extracted itself.
//
// # Trigger Metadata
//
// At the start of every invocation FunctionContext.Bindings is replaced with
// the first inbound httpTrigger binding from function.json in the function
// directory. Any failure leaves the bindings empty. Use WithMetadataSource to
// read bindings from elsewhere.
//
// # Error Handling
//
//   - Unrecognized invocation: 500, fixed message
//   - No matching route: 404, with the matcher's diagnostic
//   - Schema validation failure: 400, "Validation Error"
//   - Handler error: passed to the ErrorReporter, then 500
//   - Handler error WithReraise: returned from Dispatch
//   - ContractError: always returned from Dispatch
//
// # Hooks
//
// Hooks provide observability without coupling to specific logging or
// metrics systems:
//
//	r := funcrest.New(
//	    funcrest.WithOnSuccess(func(ctx context.Context, method, pattern string, status int, d time.Duration) {
//	        metrics.Timing("funcrest.success", d, "route:"+pattern)
//	    }),
//	    funcrest.WithOnNotFound(func(ctx context.Context, method, path string) {
//	        metrics.Incr("funcrest.not_found")
//	    }),
//	)
//
// The promhooks package provides Prometheus collectors wired through hooks.
//
// # Thread Safety
//
// Router is safe for concurrent use after configuration is complete. Do not
// call Register after calling Dispatch. A Request belongs to one invocation.
package funcrest
