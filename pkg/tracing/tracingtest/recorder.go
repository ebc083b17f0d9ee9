// Package tracingtest provides an in-memory recording engine for tests that
// need to inspect the spans produced through package tracing.
package tracingtest

import (
	"context"

	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// Recorder captures every span started and ended through its tracers.
type Recorder struct {
	recorder *tracetest.SpanRecorder
	provider *sdktrace.TracerProvider
}

// NewRecorder creates a recorder that samples every span.
func NewRecorder() *Recorder {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSpanProcessor(recorder),
	)

	return &Recorder{
		recorder: recorder,
		provider: provider,
	}
}

// Tracer returns a tracer for scope name backed by the recorder.
func (r *Recorder) Tracer(name string, opts ...tracing.Option) *tracing.Tracer {
	all := make([]tracing.Option, 0, len(opts)+1)
	all = append(all, tracing.WithTracerProvider(r.provider))
	all = append(all, opts...)
	return tracing.New(name, all...)
}

// Provider returns the underlying SDK provider.
func (r *Recorder) Provider() *sdktrace.TracerProvider {
	return r.provider
}

// Started returns every span started so far, ended or not.
func (r *Recorder) Started() []sdktrace.ReadOnlySpan {
	started := r.recorder.Started()
	spans := make([]sdktrace.ReadOnlySpan, len(started))
	for i, span := range started {
		spans[i] = span
	}
	return spans
}

// Ended returns every span ended so far, in the order they ended.
func (r *Recorder) Ended() []sdktrace.ReadOnlySpan {
	return r.recorder.Ended()
}

// Find returns the last ended span named name, falling back to started spans.
func (r *Recorder) Find(name string) (sdktrace.ReadOnlySpan, bool) {
	ended := r.Ended()
	for i := len(ended) - 1; i >= 0; i-- {
		if ended[i].Name() == name {
			return ended[i], true
		}
	}

	started := r.Started()
	for i := len(started) - 1; i >= 0; i-- {
		if started[i].Name() == name {
			return started[i], true
		}
	}

	return nil, false
}

// Shutdown stops the provider.
func (r *Recorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

// Attribute looks up key among the attributes of span.
func Attribute(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}
