package funcrest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// restOfPathKey is the path parameter the platform fills in when a request
// is delivered through a generic catch-all trigger.
const restOfPathKey = "restOfPath"

// ErrBodyType is returned when a request body is set from a value that is
// neither a string nor a byte slice.
var ErrBodyType = errors.New("invalid body type")

// BodyTypeError reports the offending type passed to Request.SetBody.
type BodyTypeError struct {
	Type string
}

func (e *BodyTypeError) Error() string {
	return fmt.Sprintf("body is expected to be either of string or []byte, got %s", e.Type)
}

func (e *BodyTypeError) Is(target error) bool { return target == ErrBodyType }

// ParsedJSON is the decoded body and coerced query parameters attached to a
// request by the pre-handler pipeline. It is also the document validated
// against a route's schema.
type ParsedJSON struct {
	Body  any            `json:"body"`
	Query map[string]any `json:"query"`
}

func (p *ParsedJSON) document() map[string]any {
	return map[string]any{"body": p.Body, "query": p.Query}
}

// Request is a single inbound invocation in the canonical shape the router
// understands. Platform adapters translate their native request into a
// Request before calling Router.Dispatch.
//
// A Request is owned by one invocation and must not be shared.
type Request struct {
	method     string
	URL        string
	Headers    map[string]string
	Query      map[string]string
	PathParams map[string]string

	// JSON is populated by the pre-handler pipeline before the handler runs.
	// It is nil for routes registered WithoutJSON and for OPTIONS requests.
	JSON *ParsedJSON

	// Context is the function context of the current invocation.
	Context *FunctionContext

	// ProxyRoute is set when the platform delivered this request through a
	// catch-all trigger. It holds the declared route template, or the
	// request path when no template is declared.
	ProxyRoute *string

	body []byte
}

// RequestOption configures a Request built with NewRequest.
type RequestOption func(*Request)

// WithRequestHeaders sets the request headers.
func WithRequestHeaders(h map[string]string) RequestOption {
	return func(r *Request) {
		if h != nil {
			r.Headers = h
		}
	}
}

// WithQuery sets the raw query parameters.
func WithQuery(q map[string]string) RequestOption {
	return func(r *Request) {
		if q != nil {
			r.Query = q
		}
	}
}

// WithPathParams sets the path parameters supplied by the platform.
func WithPathParams(p map[string]string) RequestOption {
	return func(r *Request) {
		if p != nil {
			r.PathParams = p
		}
	}
}

// WithBody sets the raw body. Text is stored as UTF-8.
func WithBody[B string | []byte](b B) RequestOption {
	return func(r *Request) {
		r.body = []byte(b)
	}
}

// NewRequest creates a Request. Map fields that are not supplied default to
// fresh empty maps and the body defaults to empty.
//
// Example:
//
//	req := funcrest.NewRequest("GET", "https://app.example.net/api/users/42",
//	    funcrest.WithQuery(map[string]string{"expand": "true"}),
//	)
func NewRequest(method, url string, opts ...RequestOption) *Request {
	r := &Request{
		method:     method,
		URL:        url,
		Headers:    make(map[string]string),
		Query:      make(map[string]string),
		PathParams: make(map[string]string),
		body:       []byte{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Method returns the upper-cased HTTP method.
func (r *Request) Method() string { return strings.ToUpper(r.method) }

// SetMethod replaces the HTTP method.
func (r *Request) SetMethod(m string) { r.method = m }

// Body returns the raw body. It is never nil.
func (r *Request) Body() []byte { return r.body }

// SetBody replaces the raw body. Strings are stored as UTF-8; any type other
// than string or []byte fails with a *BodyTypeError.
func (r *Request) SetBody(v any) error {
	switch b := v.(type) {
	case string:
		r.body = []byte(b)
	case []byte:
		r.body = append([]byte(nil), b...)
	default:
		return &BodyTypeError{Type: fmt.Sprintf("%T", v)}
	}
	return nil
}

// DecodeJSON unmarshals the raw body into v.
func (r *Request) DecodeJSON(v any) error {
	if err := json.Unmarshal(r.body, v); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// GetJSON decodes the raw body as a generic JSON value.
func (r *Request) GetJSON() (any, error) {
	var v any
	if err := r.DecodeJSON(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsProxy reports whether the request arrived through a catch-all trigger.
func (r *Request) IsProxy() bool { return r.ProxyRoute != nil }

// Bindings is the trigger metadata of a function: the first inbound HTTP
// trigger binding declared in its function.json.
type Bindings map[string]any

// Route returns the declared route template, or "" when none is declared.
func (b Bindings) Route() string {
	s, _ := b["route"].(string)
	return s
}

// Methods returns the declared HTTP methods.
func (b Bindings) Methods() []string {
	switch v := b["methods"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, m := range v {
			if s, ok := m.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// FunctionContext identifies the function being invoked.
type FunctionContext struct {
	InvocationID      string
	FunctionName      string
	FunctionDirectory string

	// Bindings is replaced at the start of every invocation with the
	// trigger metadata read from the function directory.
	Bindings Bindings
}

// NewFunctionContext creates a FunctionContext with a random invocation ID
// and empty bindings.
func NewFunctionContext(functionName, functionDirectory string) *FunctionContext {
	return &FunctionContext{
		InvocationID:      uuid.NewString(),
		FunctionName:      functionName,
		FunctionDirectory: functionDirectory,
		Bindings:          make(Bindings),
	}
}
