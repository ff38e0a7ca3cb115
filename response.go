package funcrest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"time"
)

// Wire is the response shape handed back to the platform. Body is always a
// JSON document in string form.
type Wire struct {
	Body       string            `json:"body"`
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
}

// Response is the normalized result of a handler.
//
// Strings and byte slices are kept as the raw body. Any other value is
// structured: it is kept as is for later encoding and also encoded eagerly
// into the raw body.
type Response struct {
	// StatusCode defaults to 200 when zero.
	StatusCode int

	// Headers defaults to an empty map when nil.
	Headers map[string]string

	body       []byte
	structured any
	hasValue   bool
}

// NewResponse creates a Response.
//
// Example:
//
//	return funcrest.NewResponse(map[string]any{"id": id}, http.StatusCreated, nil), nil
func NewResponse(body any, statusCode int, headers map[string]string) *Response {
	r := &Response{StatusCode: statusCode, Headers: headers}
	switch b := body.(type) {
	case nil:
		r.body = []byte{}
	case string:
		r.body = []byte(b)
	case []byte:
		r.body = b
	default:
		r.structured = b
		r.hasValue = true
		r.body = encodeJSON(b)
	}
	return r
}

// Body returns the raw body bytes.
func (r *Response) Body() []byte { return r.body }

// Structured returns the structured body and whether one was recorded.
func (r *Response) Structured() (any, bool) { return r.structured, r.hasValue }

// Wire renders the response for the platform. The body is JSON-encoded
// exactly once: a structured body is encoded from its value, a raw body is
// read as text and encoded as a JSON string. An empty raw body, and an empty
// map, slice or array, render as an empty wire body.
func (r *Response) Wire() Wire {
	w := Wire{
		StatusCode: r.StatusCode,
		Headers:    maps.Clone(r.Headers),
	}
	if w.StatusCode == 0 {
		w.StatusCode = http.StatusOK
	}
	if w.Headers == nil {
		w.Headers = make(map[string]string)
	}

	switch {
	case r.hasValue:
		if !isEmptyContainer(r.structured) {
			w.Body = string(encodeJSON(r.structured))
		}
	case len(r.body) > 0:
		w.Body = string(encodeJSON(string(r.body)))
	}
	return w
}

func isEmptyContainer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array:
		return rv.Len() == 0
	}
	return false
}

// encodeJSON encodes v with ": " and ", " separators. Values the encoder
// cannot represent are replaced by their string conversion.
func encodeJSON(v any) []byte {
	b, err := marshal(v)
	if err != nil {
		b, err = marshal(jsonSafe(reflect.ValueOf(v)))
		if err != nil {
			b, _ = marshal(fmt.Sprint(v))
		}
	}
	return spaceSeparators(b)
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

var (
	marshalerType = reflect.TypeFor[json.Marshaler]()
	timeType      = reflect.TypeFor[time.Time]()
)

// jsonSafe rebuilds v so that every leaf is encodable. Times become RFC 3339
// strings, everything else the encoder rejects becomes fmt.Sprint output.
func jsonSafe(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}

	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339Nano)
	}
	if v.Type().Implements(marshalerType) {
		if v.Kind() == reflect.Pointer && v.IsNil() {
			return nil
		}
		if b, err := marshal(v.Interface()); err == nil {
			return json.RawMessage(b)
		}
		return fmt.Sprint(v.Interface())
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return jsonSafe(v.Elem())
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			k := iter.Key()
			key := fmt.Sprint(k.Interface())
			if k.Kind() == reflect.String {
				key = k.String()
			}
			out[key] = jsonSafe(iter.Value())
		}
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return v.Interface()
		}
		return jsonSafeList(v)
	case reflect.Array:
		return jsonSafeList(v)
	case reflect.Struct:
		if b, err := marshal(v.Interface()); err == nil {
			return json.RawMessage(b)
		}
		return fmt.Sprint(v.Interface())
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return v.Interface()
	case reflect.Chan, reflect.Func, reflect.Complex64, reflect.Complex128, reflect.UnsafePointer:
		return fmt.Sprint(v.Interface())
	default:
		return v.Interface()
	}
}

func jsonSafeList(v reflect.Value) []any {
	out := make([]any, v.Len())
	for i := range out {
		out[i] = jsonSafe(v.Index(i))
	}
	return out
}

// spaceSeparators inserts a space after every ':' and ',' outside of string
// literals in compact JSON.
func spaceSeparators(compact []byte) []byte {
	out := make([]byte, 0, len(compact)+len(compact)/4)
	inString, escaped := false, false
	for _, c := range compact {
		out = append(out, c)
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && (c == ':' || c == ','):
			out = append(out, ' ')
		}
	}
	return out
}
