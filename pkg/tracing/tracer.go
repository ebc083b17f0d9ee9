package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Tracer is bound to one instrumentation scope and is the only factory for
// root spans. It is safe for concurrent use.
type Tracer struct {
	tracer     oteltrace.Tracer
	propagator propagation.TextMapPropagator
}

// New creates a Tracer for the instrumentation scope called name.
// Use WithVersion to set the scope version and WithTracerProvider to pick a
// provider other than the global one.
func New(name string, opts ...Option) *Tracer {
	cfg := newTracerConfig(opts)

	provider := cfg.provider
	if provider == nil {
		provider = otel.GetTracerProvider()
	}

	var tracerOpts []oteltrace.TracerOption
	if cfg.version != "" {
		tracerOpts = append(tracerOpts, oteltrace.WithInstrumentationVersion(cfg.version))
	}

	return &Tracer{
		tracer:     provider.Tracer(name, tracerOpts...),
		propagator: cfg.propagator,
	}
}

// FromTracer wraps an already constructed OpenTelemetry tracer.
// Only WithPropagator is honored; a nil tracer records nothing.
func FromTracer(tracer oteltrace.Tracer, opts ...Option) *Tracer {
	cfg := newTracerConfig(opts)

	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("")
	}

	return &Tracer{
		tracer:     tracer,
		propagator: cfg.propagator,
	}
}

// StartSpan starts a new root span named id at start.
//
// The span never has a parent, even when ctx already carries one; ctx only
// contributes its values and cancellation. Use Span.StartSpan to nest.
func (t *Tracer) StartSpan(ctx context.Context, id string, start time.Time, opts ...SpanOption) *Span {
	cfg := newSpanConfig(opts)
	startOpts := append(cfg.startOptions(start), oteltrace.WithNewRoot())

	ctx, span := t.tracer.Start(orBackground(ctx), id, startOpts...)
	return newSpan(ctx, t, liveRecord{span: span})
}

// Decode reconstructs the trace context held in carrier and returns a span
// that carries it without recording anything of its own.
//
// Any span already present in ctx is discarded first, so the result depends
// on the carrier alone. A carrier without valid trace data yields a span whose
// children are new roots.
func (t *Tracer) Decode(ctx context.Context, carrier Carrier) *Span {
	return t.DecodeFrom(ctx, carrier)
}

// DecodeFrom is Decode for any transport carrier, such as
// propagation.HeaderCarrier over http.Header.
func (t *Tracer) DecodeFrom(ctx context.Context, carrier propagation.TextMapCarrier) *Span {
	ctx = oteltrace.ContextWithSpanContext(orBackground(ctx), oteltrace.SpanContext{})
	if carrier != nil {
		ctx = t.propagator.Extract(ctx, carrier)
	}

	return newSpan(ctx, t, contextOnly{})
}

// Propagator returns the codec used by Encode and Decode.
func (t *Tracer) Propagator() propagation.TextMapPropagator {
	return t.propagator
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
