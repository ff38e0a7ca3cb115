package funcrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedInvocation is returned by DecodeRequest when the raw bytes do
// not decode into a request.
var ErrMalformedInvocation = errors.New("malformed invocation")

// invocation is the JSON form of an inbound HTTP trigger request.
type invocation struct {
	Method          string            `json:"method"`
	URL             string            `json:"url"`
	Headers         map[string]string `json:"headers"`
	QueryParameters map[string]string `json:"queryParameters"`
	PathParameters  map[string]string `json:"pathParameters"`
	RawBody         string            `json:"rawBody"`
}

// DecodeRequest decodes the JSON form of an HTTP trigger request:
//
//	{"method": "GET", "url": "/api/users/1", "headers": {...},
//	 "queryParameters": {...}, "pathParameters": {...}, "rawBody": "..."}
func DecodeRequest(raw []byte) (*Request, error) {
	var inv invocation
	if err := json.Unmarshal(raw, &inv); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedInvocation, err)
	}
	return NewRequest(inv.Method, inv.URL,
		WithRequestHeaders(inv.Headers),
		WithQuery(inv.QueryParameters),
		WithPathParams(inv.PathParameters),
		WithBody(inv.RawBody),
	), nil
}

// DispatchRaw checks that raw has the configured request shape, decodes it
// and dispatches it. Invocations of any other shape get a 500 with a fixed
// message, on the assumption that the platform is misconfigured.
//
// Example:
//
//	func handle(ctx context.Context, raw json.RawMessage) (funcrest.Wire, error) {
//	    return router.DispatchRaw(ctx, raw, funcrest.NewFunctionContext("users", "/home/site/wwwroot/users"))
//	}
func (r *Router) DispatchRaw(ctx context.Context, raw []byte, fc *FunctionContext) (Wire, error) {
	view, err := r.inspector.Inspect(raw)
	if err != nil || !r.shape.Match(view) {
		return r.badRequest(ctx), nil
	}
	req, err := DecodeRequest(raw)
	if err != nil {
		return r.badRequest(ctx), nil
	}
	return r.Dispatch(ctx, req, fc)
}
