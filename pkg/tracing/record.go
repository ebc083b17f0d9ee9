package tracing

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// record is the recordable part of a Span: either a live OpenTelemetry span
// or nothing at all for spans that only carry a decoded context.
type record interface {
	live() bool
	setAttributes(attrs ...attribute.KeyValue)
	setStatus(code codes.Code, description string)
	recordError(err error, attrs []attribute.KeyValue)
	addEvent(name string, attrs []attribute.KeyValue)
	end(at time.Time)
}

type liveRecord struct {
	span oteltrace.Span
}

func (r liveRecord) live() bool {
	return true
}

func (r liveRecord) setAttributes(attrs ...attribute.KeyValue) {
	r.span.SetAttributes(attrs...)
}

func (r liveRecord) setStatus(code codes.Code, description string) {
	r.span.SetStatus(code, description)
}

func (r liveRecord) recordError(err error, attrs []attribute.KeyValue) {
	if attrs == nil {
		r.span.RecordError(err)
		return
	}
	r.span.RecordError(err, oteltrace.WithAttributes(attrs...))
}

func (r liveRecord) addEvent(name string, attrs []attribute.KeyValue) {
	if attrs == nil {
		r.span.AddEvent(name)
		return
	}
	r.span.AddEvent(name, oteltrace.WithAttributes(attrs...))
}

func (r liveRecord) end(at time.Time) {
	if at.IsZero() {
		r.span.End()
		return
	}
	r.span.End(oteltrace.WithTimestamp(at))
}

type contextOnly struct{}

func (contextOnly) live() bool {
	return false
}

func (contextOnly) setAttributes(...attribute.KeyValue) {}

func (contextOnly) setStatus(codes.Code, string) {}

func (contextOnly) recordError(error, []attribute.KeyValue) {}

func (contextOnly) addEvent(string, []attribute.KeyValue) {}

func (contextOnly) end(time.Time) {}
