package funcrest

import (
	"log/slog"
	"maps"
	"regexp"
	"strings"
)

// Option configures a Router.
type Option func(*Router)

// apiPrefix matches the /api/ and /api/v<n>/ prefixes the platform puts in
// front of function routes.
var apiPrefix = regexp.MustCompile(`(?i)^/api(/v\d+)?(/|$)`)

// WithLogger sets the logger. The default is slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithErrorReporter sets the function that receives handler errors before
// the router answers with a 500. The default logs the error.
//
// Example:
//
//	funcrest.WithErrorReporter(func(ctx context.Context, method string, err error) {
//	    sentry.CaptureException(err)
//	})
func WithErrorReporter(fn ErrorReporter) Option {
	return func(r *Router) {
		r.reporter = fn
		r.reraise = fn == nil
	}
}

// WithReraise removes the error reporter: a handler error is returned from
// Dispatch instead of being answered with a 500. Use it where the platform
// itself must observe the failure, or when debugging locally.
func WithReraise() Option {
	return WithErrorReporter(nil)
}

// WithHeaders sets headers merged into every response. Headers set by the
// handler take precedence.
func WithHeaders(h map[string]string) Option {
	return func(r *Router) {
		r.headers = maps.Clone(h)
	}
}

// WithMetadataSource sets where trigger bindings are read from at the start
// of each invocation. The default is FileMetadata. A nil source leaves the
// bindings empty.
func WithMetadataSource(src MetadataSource) Option {
	return func(r *Router) {
		r.metadata = src
	}
}

// WithAPIPrefixes replaces the default /api/ and /api/v<n>/ prefix
// stripping with a fixed list of path prefixes, compared case-insensitively.
// The longest matching prefix is removed.
//
// Example:
//
//	funcrest.WithAPIPrefixes("/api/v2", "/internal")
func WithAPIPrefixes(prefixes ...string) Option {
	return func(r *Router) {
		r.prefixes = make([]string, 0, len(prefixes))
		for _, p := range prefixes {
			if p = strings.TrimSuffix(p, "/"); p != "" {
				r.prefixes = append(r.prefixes, p)
			}
		}
	}
}

// WithInspector sets the Inspector DispatchRaw uses on raw invocations.
func WithInspector(i Inspector) Option {
	return func(r *Router) {
		r.inspector = i
	}
}

// WithRequestShape sets the Discriminator DispatchRaw uses to recognize a
// request. The default is RequestShape.
func WithRequestShape(d Discriminator) Option {
	return func(r *Router) {
		r.shape = d
	}
}

// stripAPIPrefix removes the longest configured prefix from path, or the
// default API prefix when none are configured.
func stripAPIPrefix(path string, prefixes []string) string {
	if prefixes == nil {
		if loc := apiPrefix.FindStringIndex(path); loc != nil {
			return "/" + path[loc[1]:]
		}
		return path
	}

	best := ""
	lower := strings.ToLower(path)
	for _, p := range prefixes {
		lp := strings.ToLower(p)
		if len(lp) <= len(best) {
			continue
		}
		if lower == lp || strings.HasPrefix(lower, lp+"/") {
			best = lp
		}
	}
	if best == "" {
		return path
	}
	return "/" + strings.TrimPrefix(path[len(best):], "/")
}
