// Package noop provides a tracer that records nothing.
//
// Decoding still works, so a span decoded from an inbound carrier encodes
// back to the same trace context when tracing is disabled locally.
package noop

import (
	"github.com/JailtonJunior94/devkit-tracing/pkg/tracing"
	otelnoop "go.opentelemetry.io/otel/trace/noop"
)

// NewTracer returns a tracer whose spans are never recorded.
// A WithTracerProvider option is overridden.
func NewTracer(opts ...tracing.Option) *tracing.Tracer {
	all := make([]tracing.Option, 0, len(opts)+1)
	all = append(all, opts...)
	all = append(all, tracing.WithTracerProvider(otelnoop.NewTracerProvider()))
	return tracing.New("", all...)
}
