package funcrest

import (
	"context"
	"time"
)

// OnDispatchFunc is called after a route matched and just before the
// pre-handler pipeline runs.
type OnDispatchFunc func(ctx context.Context, method, pattern string)

// OnSuccessFunc is called after the handler returned a result.
type OnSuccessFunc func(ctx context.Context, method, pattern string, status int, duration time.Duration)

// OnFailureFunc is called after the handler returned an error or broke the
// result contract. It runs whether or not an ErrorReporter is configured.
type OnFailureFunc func(ctx context.Context, method, pattern string, err error, duration time.Duration)

// OnNotFoundFunc is called when no route matches the request.
type OnNotFoundFunc func(ctx context.Context, method, path string)

// OnValidationErrorFunc is called when the request fails schema validation.
type OnValidationErrorFunc func(ctx context.Context, method, pattern string, err error)

// ErrorReporter receives handler errors before the router answers with a
// 500. Use it for logging and telemetry.
type ErrorReporter func(ctx context.Context, method string, err error)

// hooks holds all configured hook functions.
type hooks struct {
	onDispatch        []OnDispatchFunc
	onSuccess         []OnSuccessFunc
	onFailure         []OnFailureFunc
	onNotFound        []OnNotFoundFunc
	onValidationError []OnValidationErrorFunc
}

// WithOnDispatch adds a hook called once a route has matched.
// Multiple hooks are called in order.
//
// Example:
//
//	funcrest.WithOnDispatch(func(ctx context.Context, method, pattern string) {
//	    logger.InfoContext(ctx, "dispatching", "method", method, "route", pattern)
//	})
func WithOnDispatch(fn OnDispatchFunc) Option {
	return func(r *Router) {
		r.hooks.onDispatch = append(r.hooks.onDispatch, fn)
	}
}

// WithOnSuccess adds a hook called after the handler returns a result.
// Multiple hooks are called in order.
//
// Example:
//
//	funcrest.WithOnSuccess(func(ctx context.Context, method, pattern string, status int, d time.Duration) {
//	    metrics.Timing("funcrest.success", d, "route:"+pattern)
//	})
func WithOnSuccess(fn OnSuccessFunc) Option {
	return func(r *Router) {
		r.hooks.onSuccess = append(r.hooks.onSuccess, fn)
	}
}

// WithOnFailure adds a hook called after the handler fails.
// Multiple hooks are called in order.
func WithOnFailure(fn OnFailureFunc) Option {
	return func(r *Router) {
		r.hooks.onFailure = append(r.hooks.onFailure, fn)
	}
}

// WithOnNotFound adds a hook called when no route matches.
// Multiple hooks are called in order.
func WithOnNotFound(fn OnNotFoundFunc) Option {
	return func(r *Router) {
		r.hooks.onNotFound = append(r.hooks.onNotFound, fn)
	}
}

// WithOnValidationError adds a hook called when schema validation fails.
// Multiple hooks are called in order.
//
// Example:
//
//	funcrest.WithOnValidationError(func(ctx context.Context, method, pattern string, err error) {
//	    var verr *funcrest.ValidationError
//	    if errors.As(err, &verr) {
//	        audit.Record(ctx, pattern, verr.InstancePath)
//	    }
//	})
func WithOnValidationError(fn OnValidationErrorFunc) Option {
	return func(r *Router) {
		r.hooks.onValidationError = append(r.hooks.onValidationError, fn)
	}
}

func (r *Router) callOnDispatch(ctx context.Context, method, pattern string) {
	for _, fn := range r.hooks.onDispatch {
		fn(ctx, method, pattern)
	}
}

func (r *Router) callOnSuccess(ctx context.Context, method, pattern string, status int, duration time.Duration) {
	for _, fn := range r.hooks.onSuccess {
		fn(ctx, method, pattern, status, duration)
	}
}

func (r *Router) callOnFailure(ctx context.Context, method, pattern string, err error, duration time.Duration) {
	for _, fn := range r.hooks.onFailure {
		fn(ctx, method, pattern, err, duration)
	}
}

func (r *Router) callOnNotFound(ctx context.Context, method, path string) {
	for _, fn := range r.hooks.onNotFound {
		fn(ctx, method, path)
	}
}

func (r *Router) callOnValidationError(ctx context.Context, method, pattern string, err error) {
	for _, fn := range r.hooks.onValidationError {
		fn(ctx, method, pattern, err)
	}
}
