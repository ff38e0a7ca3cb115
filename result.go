package funcrest

import (
	"context"
	"errors"
	"fmt"
)

// ErrInvalidHandlerContract is matched by *ContractError.
var ErrInvalidHandlerContract = errors.New("invalid handler contract")

// ContractError reports a handler result the router cannot interpret. It is
// a programming error in the handler and is always returned from Dispatch,
// never turned into a response.
type ContractError struct {
	Reason string
}

func (e *ContractError) Error() string { return "handler contract: " + e.Reason }

func (e *ContractError) Is(target error) bool { return target == ErrInvalidHandlerContract }

// Handler serves one route. params holds the captured placeholders; it is
// always empty for the catch-all route.
//
// The returned value may be:
//   - a *Response or Response, used as is
//   - a Tuple of (body, status, headers), missing elements defaulted
//   - anything else, used as the body with status 200
type Handler func(ctx context.Context, req *Request, params Params) (any, error)

// Tuple is an ordered (body, status, headers) result. Status must be an int
// and headers a map[string]string; trailing elements may be omitted and nil
// elements take their defaults. More than three elements is a contract
// violation.
//
// Example:
//
//	return funcrest.Tuple{"not found", http.StatusNotFound}, nil
type Tuple []any

// toResponse normalizes a handler result.
func toResponse(v any) (*Response, error) {
	switch t := v.(type) {
	case *Response:
		if t == nil {
			return NewResponse(nil, 0, nil), nil
		}
		return t, nil
	case Response:
		return &t, nil
	case Tuple:
		return t.response()
	default:
		return NewResponse(v, 0, nil), nil
	}
}

func (t Tuple) response() (*Response, error) {
	if len(t) > 3 {
		return nil, &ContractError{Reason: fmt.Sprintf("response tuple has %d items, at most 3 allowed", len(t))}
	}

	var (
		body    any
		status  int
		headers map[string]string
	)
	if len(t) > 0 {
		body = t[0]
	}
	if len(t) > 1 && t[1] != nil {
		s, ok := t[1].(int)
		if !ok {
			return nil, &ContractError{Reason: fmt.Sprintf("tuple status must be int, got %T", t[1])}
		}
		status = s
	}
	if len(t) > 2 && t[2] != nil {
		h, ok := t[2].(map[string]string)
		if !ok {
			return nil, &ContractError{Reason: fmt.Sprintf("tuple headers must be map[string]string, got %T", t[2])}
		}
		headers = h
	}
	return NewResponse(body, status, headers), nil
}
