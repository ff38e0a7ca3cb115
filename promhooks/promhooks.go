// Package promhooks records funcrest dispatch outcomes as Prometheus
// metrics.
//
// Usage:
//
//	m, err := promhooks.New(prometheus.DefaultRegisterer)
//	if err != nil {
//	    return err
//	}
//	r := funcrest.New(m.Options()...)
package promhooks

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/bjaus/funcrest"
)

// UnmatchedRoute is the route label used for requests no route matched.
const UnmatchedRoute = "<unmatched>"

var defaultBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Option configures Metrics.
type Option func(*config)

type config struct {
	namespace string
	buckets   []float64
}

// WithNamespace sets the metric namespace. The default is "funcrest".
func WithNamespace(ns string) Option {
	return func(c *config) {
		c.namespace = ns
	}
}

// WithBuckets sets the duration histogram buckets, in seconds.
func WithBuckets(b []float64) Option {
	return func(c *config) {
		if len(b) > 0 {
			c.buckets = b
		}
	}
}

// Metrics holds the collectors fed by the router hooks.
type Metrics struct {
	requests    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	validations *prometheus.CounterVec
	notFound    *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer, opts ...Option) (*Metrics, error) {
	cfg := config{namespace: "funcrest", buckets: defaultBuckets}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "requests_total",
				Help:      "Total number of dispatched requests",
			},
			[]string{"method", "route", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of handler execution in seconds",
				Buckets:   cfg.buckets,
			},
			[]string{"method", "route"},
		),
		validations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "validation_errors_total",
				Help:      "Total number of requests rejected by schema validation",
			},
			[]string{"method", "route"},
		),
		notFound: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.namespace,
				Name:      "not_found_total",
				Help:      "Total number of requests no route matched",
			},
			[]string{"method"},
		),
	}

	for _, c := range []prometheus.Collector{m.requests, m.duration, m.validations, m.notFound} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register funcrest metrics: %w", err)
		}
	}
	return m, nil
}

// Options returns the router options that feed m.
func (m *Metrics) Options() []funcrest.Option {
	return []funcrest.Option{
		funcrest.WithOnSuccess(m.onSuccess),
		funcrest.WithOnFailure(m.onFailure),
		funcrest.WithOnValidationError(m.onValidationError),
		funcrest.WithOnNotFound(m.onNotFound),
	}
}

func (m *Metrics) onSuccess(_ context.Context, method, pattern string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(method, pattern).Observe(d.Seconds())
}

func (m *Metrics) onFailure(_ context.Context, method, pattern string, _ error, d time.Duration) {
	m.requests.WithLabelValues(method, pattern, strconv.Itoa(http.StatusInternalServerError)).Inc()
	m.duration.WithLabelValues(method, pattern).Observe(d.Seconds())
}

func (m *Metrics) onValidationError(_ context.Context, method, pattern string, _ error) {
	m.requests.WithLabelValues(method, pattern, strconv.Itoa(http.StatusBadRequest)).Inc()
	m.validations.WithLabelValues(method, pattern).Inc()
}

func (m *Metrics) onNotFound(_ context.Context, method, _ string) {
	m.requests.WithLabelValues(method, UnmatchedRoute, strconv.Itoa(http.StatusNotFound)).Inc()
	m.notFound.WithLabelValues(method).Inc()
}
