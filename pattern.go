package funcrest

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrInvalidPattern is returned by Register for malformed path patterns.
var ErrInvalidPattern = errors.New("invalid path pattern")

// catchAllPattern is what "*" and "/*" normalize to. A route registered with
// it never receives path parameters.
const catchAllPattern = "/<path:path>"

type segmentKind int

// Ordered from least to most specific.
const (
	segmentPath segmentKind = iota
	segmentString
	segmentInt
	segmentLiteral
)

type segment struct {
	kind segmentKind
	// text is the literal value, or the placeholder name.
	text string
}

// pattern is a parsed route path.
type pattern struct {
	raw      string
	segments []segment
	catchAll bool
}

// normalizePattern rewrites wildcards into greedy placeholders.
func normalizePattern(p string) (string, error) {
	switch {
	case p == "":
		p = "/"
	case p == "*":
		p = "/*"
	}
	p = strings.ReplaceAll(p, "*", "<path:path>")
	if !strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %q must start with a slash", ErrInvalidPattern, p)
	}
	return p, nil
}

// parsePattern parses a normalized pattern. Placeholders take the form
// <name> or <type:name> where type is string, int or path and must span a
// whole segment.
func parsePattern(raw string) (*pattern, error) {
	p := &pattern{raw: raw, catchAll: raw == catchAllPattern}
	seen := make(map[string]bool)

	for _, part := range strings.Split(raw, "/") {
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, "<") || !strings.HasSuffix(part, ">") {
			if strings.ContainsAny(part, "<>") {
				return nil, fmt.Errorf("%w: %q: placeholder must span a whole segment", ErrInvalidPattern, raw)
			}
			p.segments = append(p.segments, segment{kind: segmentLiteral, text: part})
			continue
		}

		inner := part[1 : len(part)-1]
		typ, name, found := strings.Cut(inner, ":")
		if !found {
			typ, name = "string", inner
		}
		if !validName(name) {
			return nil, fmt.Errorf("%w: %q: bad placeholder name %q", ErrInvalidPattern, raw, name)
		}
		if seen[name] {
			return nil, fmt.Errorf("%w: %q: duplicate placeholder %q", ErrInvalidPattern, raw, name)
		}
		seen[name] = true

		var kind segmentKind
		switch typ {
		case "string":
			kind = segmentString
		case "int":
			kind = segmentInt
		case "path":
			kind = segmentPath
		default:
			return nil, fmt.Errorf("%w: %q: unknown placeholder type %q", ErrInvalidPattern, raw, typ)
		}
		p.segments = append(p.segments, segment{kind: kind, text: name})
	}
	return p, nil
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// splitPath splits a request path into unescaped segments. Empty segments,
// including the one a trailing slash produces, are dropped.
func splitPath(path string) []string {
	var parts []string
	for _, p := range strings.Split(path, "/") {
		if p == "" {
			continue
		}
		if u, err := url.PathUnescape(p); err == nil {
			p = u
		}
		parts = append(parts, p)
	}
	return parts
}

// match reports whether the pattern matches the path segments and returns
// the captured placeholder values.
func (p *pattern) match(parts []string) (Params, bool) {
	params := make(Params)
	if !matchSegments(p.segments, parts, params) {
		return nil, false
	}
	return params, true
}

func matchSegments(segs []segment, parts []string, params Params) bool {
	if len(segs) == 0 {
		return len(parts) == 0
	}
	if len(parts) == 0 {
		return false
	}

	s, rest := segs[0], segs[1:]
	switch s.kind {
	case segmentLiteral:
		return parts[0] == s.text && matchSegments(rest, parts[1:], params)
	case segmentString:
		params[s.text] = parts[0]
		return matchSegments(rest, parts[1:], params)
	case segmentInt:
		if !isDigits(parts[0]) {
			return false
		}
		// Values that overflow int do not match.
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return false
		}
		params[s.text] = n
		return matchSegments(rest, parts[1:], params)
	default:
		// Greedy placeholders take the shortest run that lets the rest match.
		for n := 1; n <= len(parts); n++ {
			params[s.text] = strings.Join(parts[:n], "/")
			if matchSegments(rest, parts[n:], params) {
				return true
			}
		}
		delete(params, s.text)
		return false
	}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return s != ""
}

// moreSpecific reports whether p should win over q when both match a path.
// Segments are compared in order: literal beats int beats string beats
// path. The catch-all loses to everything.
func (p *pattern) moreSpecific(q *pattern) bool {
	if p.catchAll != q.catchAll {
		return q.catchAll
	}
	for i := 0; i < len(p.segments) && i < len(q.segments); i++ {
		if a, b := p.segments[i].kind, q.segments[i].kind; a != b {
			return a > b
		}
	}
	return len(p.segments) > len(q.segments)
}

// Params holds placeholder values captured from the request path. int
// placeholders are stored as int, all others as string.
type Params map[string]any

// String returns the named parameter as a string.
func (p Params) String(name string) string {
	switch v := p[name].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	}
	return ""
}

// Int returns the named parameter as an int and whether it was an int
// placeholder.
func (p Params) Int(name string) (int, bool) {
	v, ok := p[name].(int)
	return v, ok
}
