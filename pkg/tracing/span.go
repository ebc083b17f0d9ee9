package tracing

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/propagation"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// Span is one node in a trace tree.
//
// A Span returned by Tracer.StartSpan or Span.StartSpan owns a live record.
// A Span returned by Tracer.Decode only carries context: annotation and End
// are no-ops on it, while StartSpan and Encode behave normally.
//
// The zero value behaves like a decoded span with an empty carrier: it
// records nothing and its children are unrecorded roots.
type Span struct {
	tracer *Tracer
	ctx    context.Context
	record record
}

// detached backs zero-value spans, which have no tracer of their own.
var detached = FromTracer(nil)

func newSpan(ctx context.Context, tracer *Tracer, r record) *Span {
	return &Span{
		tracer: tracer,
		ctx:    ctx,
		record: r,
	}
}

func (s *Span) owner() *Tracer {
	if s.tracer == nil {
		return detached
	}
	return s.tracer
}

func (s *Span) activeContext() context.Context {
	return orBackground(s.ctx)
}

func (s *Span) rec() record {
	if s.record == nil {
		return contextOnly{}
	}
	return s.record
}

// StartSpan starts a child span named id at start, with s as its parent.
func (s *Span) StartSpan(id string, start time.Time, opts ...SpanOption) *Span {
	cfg := newSpanConfig(opts)

	tracer := s.owner()
	ctx, span := tracer.tracer.Start(s.activeContext(), id, cfg.startOptions(start)...)
	return newSpan(ctx, tracer, liveRecord{span: span})
}

// Encode serializes the span's context into a fresh carrier.
func (s *Span) Encode() Carrier {
	carrier := Carrier{}
	s.EncodeInto(carrier)
	return carrier
}

// EncodeInto injects the span's context into an existing transport carrier.
func (s *Span) EncodeInto(carrier propagation.TextMapCarrier) {
	if carrier == nil {
		return
	}
	s.owner().propagator.Inject(s.activeContext(), carrier)
}

// SetAttribute attaches key=value to the span. Strings, integers, floats and
// booleans keep their type; other values are stored as strings.
func (s *Span) SetAttribute(key string, value any) {
	s.rec().setAttributes(convertFieldToAttribute(Field{Key: key, Value: value}))
}

// SetAttributes attaches several attributes at once.
func (s *Span) SetAttributes(fields ...Field) {
	attrs := convertFieldsToAttributes(fields)
	if attrs == nil {
		return
	}
	s.rec().setAttributes(attrs...)
}

// SetStatus marks the outcome of the span. The message is kept for failures.
func (s *Span) SetStatus(success bool, message string) {
	s.rec().setStatus(convertStatus(success), message)
}

// RecordError records err as an exception event and marks the span failed.
func (s *Span) RecordError(err error, fields ...Field) {
	if err == nil {
		return
	}
	s.rec().recordError(err, convertFieldsToAttributes(fields))
	s.rec().setStatus(convertStatus(false), err.Error())
}

// AddEvent adds a timestamped event to the span.
func (s *Span) AddEvent(name string, fields ...Field) {
	s.rec().addEvent(name, convertFieldsToAttributes(fields))
}

// End closes the span at end. A zero end uses the current time.
// Calls after the first End have no effect.
func (s *Span) End(end time.Time) {
	s.rec().end(end)
}

// EndWith sets the status from err and closes the span, so a single deferred
// call covers both the success and the failure path.
func (s *Span) EndWith(err error, end time.Time) {
	if err != nil {
		s.RecordError(err)
	} else {
		s.SetStatus(true, "")
	}
	s.End(end)
}

// Context returns a context in which this span is active.
func (s *Span) Context() context.Context {
	return s.activeContext()
}

// SpanContext returns the identity of the span. For a decoded span this is
// the remote parent taken from the carrier.
func (s *Span) SpanContext() oteltrace.SpanContext {
	return oteltrace.SpanContextFromContext(s.activeContext())
}

// TraceID returns the trace ID as a hex string, or "" when there is none.
func (s *Span) TraceID() string {
	sc := s.SpanContext()
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span ID as a hex string, or "" when there is none.
func (s *Span) SpanID() string {
	sc := s.SpanContext()
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

// HasRecord reports whether the span owns a live record.
func (s *Span) HasRecord() bool {
	return s.rec().live()
}
