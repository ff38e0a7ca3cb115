package funcrest

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// CoerceQuery infers types for raw query parameter values.
//
// This is a best-effort heuristic, not a typed schema. Each value is first
// read as a JSON literal, which recovers numbers, booleans, null, objects,
// arrays and quoted strings. A value that is not JSON is split on commas:
// with more than one segment it becomes a list whose segments are cast to
// float64 where possible and kept as strings otherwise, so "1,a" yields
// []any{1.0, "a"}. Anything else stays the original string.
//
// Edge values follow strict JSON and decimal parsing:
//   - NaN, Infinity and -Infinity are not JSON literals and stay strings.
//   - List segments in hexadecimal ("0x1p-2") stay strings.
//   - List segments "inf" and "nan" still cast to float64.
func CoerceQuery(query map[string]string) map[string]any {
	out := make(map[string]any, len(query))
	for k, v := range query {
		out[k] = coerceValue(v)
	}
	return out
}

func coerceValue(value string) any {
	if gjson.Valid(value) {
		return gjson.Parse(value).Value()
	}

	segments := strings.Split(value, ",")
	if len(segments) == 1 {
		return value
	}

	list := make([]any, len(segments))
	for i, s := range segments {
		list[i] = floatCast(s)
	}
	return list
}

func floatCast(s string) any {
	t := strings.TrimSpace(s)
	if isHex(t) {
		return s
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return s
	}
	return f
}

func isHex(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// parseJSON builds the {body, query} document for a request. An empty body
// decodes to an empty object.
func parseJSON(req *Request) (*ParsedJSON, error) {
	var body any = map[string]any{}
	if len(req.Body()) > 0 {
		v, err := req.GetJSON()
		if err != nil {
			return nil, err
		}
		body = v
	}
	return &ParsedJSON{
		Body:  body,
		Query: CoerceQuery(req.Query),
	}, nil
}
