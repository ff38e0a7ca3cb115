package funcrest

import (
	"context"
	"encoding/json"
	"fmt"
)

// validatable is implemented by typed request bodies that check themselves.
// Compatible with github.com/go-ozzo/ozzo-validation/v4.
type validatable interface {
	Validate() error
}

// Func serves a route with a typed request body.
//
// The type parameters are: T for the decoded body, R for the result. R is
// treated like any Handler result, so it may be a Tuple or *Response.
//
// Example:
//
//	type CreateItem struct {
//	    store ItemStore
//	}
//
//	func (f *CreateItem) Call(ctx context.Context, req *funcrest.Request, in NewItem) (funcrest.Tuple, error) {
//	    it, err := f.store.Insert(ctx, in)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return funcrest.Tuple{it, http.StatusCreated}, nil
//	}
type Func[T, R any] interface {
	Call(ctx context.Context, req *Request, in T) (R, error)
}

// FuncFunc is a function adapter for Func.
type FuncFunc[T, R any] func(ctx context.Context, req *Request, in T) (R, error)

// Call implements the Func interface.
func (f FuncFunc[T, R]) Call(ctx context.Context, req *Request, in T) (R, error) {
	return f(ctx, req, in)
}

// Typed adapts f to a Handler. The raw body is decoded into T; an empty
// body leaves T at its zero value. If T (or *T) implements Validate() error,
// a failure is answered like a schema violation.
//
// This is a package-level function (not a method) due to Go generics
// limitations: methods cannot have type parameters independent of the
// receiver.
//
// Example:
//
//	r.MustRegister("POST", "/items", funcrest.Typed[NewItem, funcrest.Tuple](&CreateItem{store: s}))
func Typed[T, R any](f Func[T, R]) Handler {
	return func(ctx context.Context, req *Request, _ Params) (any, error) {
		var in T
		if len(req.Body()) > 0 {
			if err := json.Unmarshal(req.Body(), &in); err != nil {
				return nil, fmt.Errorf("decode %T body: %w", in, err)
			}
		}

		if err := validate(&in); err != nil {
			return nil, &ValidationError{
				SchemaPath:   []string{"Validate"},
				InstancePath: "/body",
				Message:      err.Error(),
			}
		}

		return f.Call(ctx, req, in)
	}
}

// RegisterFunc registers a typed function for a method and path pattern.
//
// Example:
//
//	funcrest.RegisterFunc(r, "PUT", "/items/<int:id>", func(ctx context.Context, req *funcrest.Request, in Item) (Item, error) {
//	    return in, nil
//	})
func RegisterFunc[T, R any](r *Router, method, path string, fn func(ctx context.Context, req *Request, in T) (R, error), opts ...RouteOption) (*Route, error) {
	return r.Register(method, path, Typed[T, R](FuncFunc[T, R](fn)), opts...)
}

func validate[T any](in *T) error {
	if v, ok := any(*in).(validatable); ok {
		return v.Validate()
	}
	if v, ok := any(in).(validatable); ok {
		return v.Validate()
	}
	return nil
}
