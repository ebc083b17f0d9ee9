package tracing

import (
	"time"

	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// SpanKind represents the role of a span in a trace.
type SpanKind int

const (
	SpanKindInternal SpanKind = iota
	SpanKindServer
	SpanKindClient
	SpanKindProducer
	SpanKindConsumer
)

// Option configures a Tracer.
type Option func(*tracerConfig)

type tracerConfig struct {
	version    string
	provider   oteltrace.TracerProvider
	propagator propagation.TextMapPropagator
}

// WithVersion sets the instrumentation scope version.
// Ignored by FromTracer, which receives an already scoped tracer.
func WithVersion(version string) Option {
	return func(c *tracerConfig) {
		c.version = version
	}
}

// WithTracerProvider sets the provider the tracer is obtained from.
// Defaults to the global OpenTelemetry provider. Ignored by FromTracer.
func WithTracerProvider(provider oteltrace.TracerProvider) Option {
	return func(c *tracerConfig) {
		c.provider = provider
	}
}

// WithPropagator sets the codec used by Encode and Decode.
// Defaults to DefaultPropagator.
func WithPropagator(propagator propagation.TextMapPropagator) Option {
	return func(c *tracerConfig) {
		c.propagator = propagator
	}
}

func newTracerConfig(opts []Option) *tracerConfig {
	cfg := &tracerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.propagator == nil {
		cfg.propagator = DefaultPropagator()
	}
	return cfg
}

// SpanOption configures span creation.
type SpanOption interface {
	apply(*spanConfig)
}

type spanConfig struct {
	kind       SpanKind
	attributes []Field
	links      []oteltrace.Link
}

type spanOptionFunc func(*spanConfig)

func (f spanOptionFunc) apply(c *spanConfig) {
	f(c)
}

// WithSpanKind sets the span kind.
func WithSpanKind(kind SpanKind) SpanOption {
	return spanOptionFunc(func(c *spanConfig) {
		c.kind = kind
	})
}

// WithAttributes sets initial attributes on the span.
func WithAttributes(fields ...Field) SpanOption {
	return spanOptionFunc(func(c *spanConfig) {
		c.attributes = append(c.attributes, fields...)
	})
}

// WithLinks links the new span to other spans without making them parents.
// Spans with an invalid context are skipped.
func WithLinks(spans ...*Span) SpanOption {
	return spanOptionFunc(func(c *spanConfig) {
		for _, span := range spans {
			if span == nil {
				continue
			}
			sc := span.SpanContext()
			if !sc.IsValid() {
				continue
			}
			c.links = append(c.links, oteltrace.Link{SpanContext: sc})
		}
	})
}

func newSpanConfig(opts []SpanOption) *spanConfig {
	cfg := &spanConfig{kind: SpanKindInternal}
	for _, opt := range opts {
		opt.apply(cfg)
	}
	return cfg
}

// startOptions translates the configuration into OpenTelemetry start options.
// A zero start time leaves the timestamp to the recording engine.
func (c *spanConfig) startOptions(start time.Time) []oteltrace.SpanStartOption {
	opts := make([]oteltrace.SpanStartOption, 0, 4)
	opts = append(opts, oteltrace.WithSpanKind(convertSpanKind(c.kind)))

	if !start.IsZero() {
		opts = append(opts, oteltrace.WithTimestamp(start))
	}

	if attrs := convertFieldsToAttributes(c.attributes); attrs != nil {
		opts = append(opts, oteltrace.WithAttributes(attrs...))
	}

	if len(c.links) > 0 {
		opts = append(opts, oteltrace.WithLinks(c.links...))
	}

	return opts
}
